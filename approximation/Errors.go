package approximation

import (
	"errors"
	"fmt"
)

// ErrUnboundOptimizer is returned when an Approximation is constructed
// with an optimizer that is not bound to its function's parameters
var ErrUnboundOptimizer = errors.New("optimizer is not bound to the " +
	"function's parameters")

// ErrNoForward is returned by Reinforce when no forward pass precedes
// the call
var ErrNoForward = errors.New("reinforce: no preceding forward pass")

// InvalidGradientError is returned by Reinforce when the loss or its
// gradient is not finite. The optimizer step was skipped but the update
// counter was still incremented, so the error is recoverable.
type InvalidGradientError struct {
	Name   string
	Update int
}

func (i *InvalidGradientError) Error() string {
	return fmt.Sprintf("reinforce: non-finite gradient in %q at update %d, "+
		"optimizer step skipped", i.Name, i.Update)
}

// IsInvalidGradient returns whether err is or wraps an
// InvalidGradientError
func IsInvalidGradient(err error) bool {
	var invalid *InvalidGradientError
	return errors.As(err, &invalid)
}
