package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// ScalarsFile is the name of the file that File writes scalars to
const ScalarsFile = "scalars.csv"

// File is a Writer that appends scalars to a CSV file with columns
// name, step, value in its log directory.
type File struct {
	dir string

	mu   sync.Mutex
	file *os.File
	w    *csv.Writer
}

// NewFile returns a new File writer that logs to dir, creating the
// directory if needed
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("newFile: %w", err)
	}

	path := filepath.Join(dir, ScalarsFile)
	_, statErr := os.Stat(path)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("newFile: %w", err)
	}

	w := csv.NewWriter(f)
	if os.IsNotExist(statErr) {
		if err := w.Write([]string{"name", "step", "value"}); err != nil {
			f.Close()
			return nil, fmt.Errorf("newFile: %w", err)
		}
	}

	return &File{dir: dir, file: f, w: w}, nil
}

// AddScalar appends a row to the scalars file
func (f *File) AddScalar(name string, value float64, step int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.w == nil {
		return fmt.Errorf("addScalar: writer is closed")
	}
	row := []string{
		name,
		strconv.Itoa(step),
		strconv.FormatFloat(value, 'g', -1, 64),
	}
	if err := f.w.Write(row); err != nil {
		return fmt.Errorf("addScalar: %w", err)
	}
	f.w.Flush()
	return f.w.Error()
}

// LogDir returns the directory the File writes to
func (f *File) LogDir() string {
	return f.dir
}

// Close flushes and closes the scalars file
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.w == nil {
		return nil
	}
	f.w.Flush()
	err := f.w.Error()
	if closeErr := f.file.Close(); err == nil {
		err = closeErr
	}
	f.w = nil
	return err
}
