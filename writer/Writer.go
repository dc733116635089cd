// Package writer implements sinks for scalar metrics logged by agents,
// approximations, and experiments.
package writer

import (
	"errors"
	"strings"
)

// Writer records named scalar values at a given step
type Writer interface {
	AddScalar(name string, value float64, step int) error

	// LogDir returns the directory that artifacts of the run, such as
	// checkpoints, should be written to. An empty string means that no
	// artifacts should be written.
	LogDir() string

	Close() error
}

// Dummy is a Writer that discards all scalars
type Dummy struct {
	Dir string
}

// AddScalar discards the scalar
func (Dummy) AddScalar(string, float64, int) error { return nil }

// LogDir returns the artifact directory of the Dummy writer
func (d Dummy) LogDir() string { return d.Dir }

// Close does nothing
func (Dummy) Close() error { return nil }

// multi writes every scalar to each of a number of Writers
type multi struct {
	writers []Writer
}

// NewMulti returns a Writer that forwards all scalars to each of
// writers. The LogDir of the returned Writer is that of the first
// writer with a non-empty LogDir.
func NewMulti(writers ...Writer) Writer {
	return &multi{writers: writers}
}

func (m *multi) AddScalar(name string, value float64, step int) error {
	var errs []error
	for _, w := range m.writers {
		if err := w.AddScalar(name, value, step); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multi) LogDir() string {
	for _, w := range m.writers {
		if dir := w.LogDir(); dir != "" {
			return dir
		}
	}
	return ""
}

func (m *multi) Close() error {
	var errs []error
	for _, w := range m.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// filter drops scalars whose names start with a prefix
type filter struct {
	Writer
	prefix string
}

// WithoutPrefix returns a Writer that drops all scalars whose names
// begin with prefix and forwards everything else to w.
func WithoutPrefix(w Writer, prefix string) Writer {
	return &filter{Writer: w, prefix: prefix}
}

func (f *filter) AddScalar(name string, value float64, step int) error {
	if strings.HasPrefix(name, f.prefix) {
		return nil
	}
	return f.Writer.AddScalar(name, value, step)
}
