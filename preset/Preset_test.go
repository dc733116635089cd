package preset

import (
	"errors"
	"fmt"
	"testing"

	"github.com/samuelfneumann/autolearn/agent"
	"github.com/samuelfneumann/autolearn/environment"
	"github.com/samuelfneumann/autolearn/writer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func TestInvalid(t *testing.T) {
	err := Invalid("dqn", "solver", errors.New("negative step size"))
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.Equal(t, "dqn: invalid configuration of solver: negative step "+
		"size", err.Error())

	// Already a configuration error
	again := Invalid("other", "field", err)
	assert.Same(t, err, again)

	wrapped := fmt.Errorf("run: %w", err)
	assert.True(t, IsConfigurationError(wrapped))
	assert.False(t, IsConfigurationError(errors.New("x")))
	assert.NoError(t, Invalid("dqn", "x", nil))
}

func TestNewOptions(t *testing.T) {
	o := NewOptions("dqn")
	assert.Equal(t, "dqn", o.Name)
	assert.NotNil(t, o.Logger)

	logger := zap.NewExample()
	o = NewOptions("dqn", WithName("mine"), WithLogger(logger))
	assert.Equal(t, "mine", o.Name)
	assert.Same(t, logger, o.Logger)
}

type fake struct {
	Rate float64 `yaml:"rate"`
	name string
}

func (f fake) Name() string    { return f.name }
func (f fake) Validate() error { return nil }
func (f fake) Instantiate(environment.Environment,
	writer.Writer) (agent.Agent, error) {
	return nil, nil
}

func TestSeedOffset(t *testing.T) {
	o := NewOptions("dqn")
	assert.Equal(t, uint64(7), o.Seed(7))

	o = NewOptions("dqn", WithSeedOffset(2))
	assert.Equal(t, 7+2*RunSeedStride, o.Seed(7))

	// Derived seeds of one run never reach the next run's base seed
	next := NewOptions("dqn", WithSeedOffset(3))
	assert.Less(t, o.Seed(7)+2, next.Seed(7))
}

func TestRegistry(t *testing.T) {
	Register("fake", func(node *yaml.Node, opts ...Option) (Preset, error) {
		var f fake
		if err := node.Decode(&f); err != nil {
			return nil, err
		}
		f.name = NewOptions("fake", opts...).Name
		return f, nil
	})
	assert.Contains(t, Types(), Type("fake"))
	assert.Panics(t, func() { Register("fake", nil) })

	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte("rate: 0.5\n"), &node))
	p, err := Decode("fake", node.Content[0], WithName("f1"))
	require.NoError(t, err)
	assert.Equal(t, "f1", p.Name())
	assert.Equal(t, 0.5, p.(fake).Rate)

	_, err = Decode("missing", &node)
	assert.Error(t, err)
}
