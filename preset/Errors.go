package preset

import (
	"errors"
	"fmt"
)

// ConfigurationError reports hyperparameters that are out of their
// domain or inconsistent with the environment
type ConfigurationError struct {
	Preset string
	Field  string
	Err    error
}

// Error satisifes the error interface
func (c *ConfigurationError) Error() string {
	if c.Field == "" {
		return fmt.Sprintf("%v: invalid configuration: %v", c.Preset, c.Err)
	}
	return fmt.Sprintf("%v: invalid configuration of %v: %v", c.Preset,
		c.Field, c.Err)
}

// Unwrap returns the underlying error
func (c *ConfigurationError) Unwrap() error {
	return c.Err
}

// Invalid returns a new *ConfigurationError for the field of the named
// preset. If err is already a *ConfigurationError, it is returned
// unchanged.
func Invalid(preset, field string, err error) error {
	if err == nil {
		return nil
	}
	var c *ConfigurationError
	if errors.As(err, &c) {
		return err
	}
	return &ConfigurationError{Preset: preset, Field: field, Err: err}
}

// IsConfigurationError returns whether err is or wraps a
// *ConfigurationError
func IsConfigurationError(err error) bool {
	var c *ConfigurationError
	return errors.As(err, &c)
}
