package writer

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus is a Writer that exposes the latest value and step of each
// scalar as Prometheus gauges labelled by run and scalar name.
type Prometheus struct {
	run string
	dir string

	value *prometheus.GaugeVec
	step  *prometheus.GaugeVec
}

// NewPrometheus returns a new Prometheus writer for the named run. The
// gauges are registered with reg. Many runs may share the same
// registerer, in which case the gauges are shared and distinguished by
// the run label.
func NewPrometheus(reg prometheus.Registerer, namespace, run,
	dir string) (*Prometheus, error) {
	value := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scalar",
			Help:      "Latest value of a logged scalar",
		},
		[]string{"run", "name"},
	)
	step := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scalar_step",
			Help:      "Step at which a scalar was last logged",
		},
		[]string{"run", "name"},
	)

	var err error
	if value, err = register(reg, value); err != nil {
		return nil, fmt.Errorf("newPrometheus: %w", err)
	}
	if step, err = register(reg, step); err != nil {
		return nil, fmt.Errorf("newPrometheus: %w", err)
	}

	return &Prometheus{run: run, dir: dir, value: value, step: step}, nil
}

func register(reg prometheus.Registerer,
	g *prometheus.GaugeVec) (*prometheus.GaugeVec, error) {
	err := reg.Register(g)
	if err == nil {
		return g, nil
	}

	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(*prometheus.GaugeVec); ok {
			return existing, nil
		}
	}
	return nil, err
}

// AddScalar sets the gauges of the named scalar
func (p *Prometheus) AddScalar(name string, value float64, step int) error {
	p.value.WithLabelValues(p.run, name).Set(value)
	p.step.WithLabelValues(p.run, name).Set(float64(step))
	return nil
}

// LogDir returns the artifact directory of the run
func (p *Prometheus) LogDir() string {
	return p.dir
}

// Close removes the gauges of the run
func (p *Prometheus) Close() error {
	p.value.DeletePartialMatch(prometheus.Labels{"run": p.run})
	p.step.DeletePartialMatch(prometheus.Labels{"run": p.run})
	return nil
}
