package approximation

import (
	"fmt"

	"go.uber.org/zap"
)

// CPU is the only supported device
const CPU = "cpu"

// Config describes how an Approximation is trained and maintained
type Config struct {
	// Name identifies the Approximation in logged scalars and
	// checkpoint file names
	Name string `yaml:"name"`

	TargetSync Sync `yaml:"target"`

	// ClipGrad is the maximum global L2 norm of the gradient. Values
	// <= 0 disable clipping.
	ClipGrad float64 `yaml:"clip_grad"`

	// CheckpointInterval is the number of updates between checkpoints.
	// A value of 0 disables checkpointing.
	CheckpointInterval int `yaml:"checkpoint_interval"`

	Device  string `yaml:"device"`
	LogLoss bool   `yaml:"log_loss"`

	Logger *zap.Logger `yaml:"-"`
}

// Validate returns an error if the Config is invalid
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("validate: approximation name cannot be empty")
	}
	if c.ClipGrad < 0 {
		return fmt.Errorf("validate: clip_grad must be non-negative"+
			"\n\thave(%v)", c.ClipGrad)
	}
	if c.CheckpointInterval < 0 {
		return fmt.Errorf("validate: checkpoint_interval must be "+
			"non-negative\n\thave(%v)", c.CheckpointInterval)
	}
	if c.Device != "" && c.Device != CPU {
		return fmt.Errorf("validate: unsupported device %q", c.Device)
	}
	if err := c.TargetSync.Validate(); err != nil {
		return fmt.Errorf("validate: %v", err)
	}
	return nil
}
