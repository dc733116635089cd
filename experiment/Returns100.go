package experiment

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// ReturnsFile is the name of the file a run appends its rolling return
// statistics to
const ReturnsFile = "returns100.csv"

var returnsHeader = []string{"episode", "mean_return_last_100",
	"std_return_last_100"}

// ReturnsRow is one row of a returns file
type ReturnsRow struct {
	Episode int
	Mean    float64
	StdDev  float64
}

// appendReturns appends a row to the returns file at path, writing
// the header first if the file does not yet exist
func appendReturns(path string, row ReturnsRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	_, err := os.Stat(path)
	isNew := errors.Is(err, os.ErrNotExist)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(returnsHeader); err != nil {
			f.Close()
			return err
		}
	}
	record := []string{
		strconv.Itoa(row.Episode),
		strconv.FormatFloat(row.Mean, 'g', -1, 64),
		strconv.FormatFloat(row.StdDev, 'g', -1, 64),
	}
	if err := w.Write(record); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadReturns reads the rows of a returns file
func LoadReturns(path string) ([]ReturnsRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loadReturns: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(returnsHeader)
	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("loadReturns: could not read header: %w", err)
	}

	var rows []ReturnsRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("loadReturns: %w", err)
		}

		var row ReturnsRow
		if row.Episode, err = strconv.Atoi(record[0]); err != nil {
			return nil, fmt.Errorf("loadReturns: %w", err)
		}
		if row.Mean, err = strconv.ParseFloat(record[1], 64); err != nil {
			return nil, fmt.Errorf("loadReturns: %w", err)
		}
		if row.StdDev, err = strconv.ParseFloat(record[2], 64); err != nil {
			return nil, fmt.Errorf("loadReturns: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
