// Package initwfn implements seeded weight initialization algorithms
// that can be JSON and YAML serialized into configuraiton files.
package initwfn

import (
	"encoding/json"
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

// Type describes different types of InitWFn that are available.
// Type is used to implement a basic type system of InitWFn's.
type Type string

// Available InitWFn types
const (
	GlorotU  Type = "GlorotU"
	GlorotN  Type = "GlorotN"
	HeU      Type = "HeU"
	HeN      Type = "HeN"
	Uniform  Type = "Uniform"
	Gaussian Type = "Gaussian"
	Zeroes   Type = "Zeroes"
	Ones     Type = "Ones"
	Constant Type = "Constant"
)

// registered maps each Type to the concrete Config that describes it
var registered = map[Type]reflect.Type{
	GlorotU:  reflect.TypeOf(GlorotUConfig{}),
	GlorotN:  reflect.TypeOf(GlorotNConfig{}),
	HeU:      reflect.TypeOf(HeUConfig{}),
	HeN:      reflect.TypeOf(HeNConfig{}),
	Uniform:  reflect.TypeOf(UniformConfig{}),
	Gaussian: reflect.TypeOf(GaussianConfig{}),
	Zeroes:   reflect.TypeOf(ZeroesConfig{}),
	Ones:     reflect.TypeOf(OnesConfig{}),
	Constant: reflect.TypeOf(ConstantConfig{}),
}

// Fn fills a rows x cols weight matrix, returning its row-major data.
// Successive calls to the same Fn continue the same random stream.
type Fn func(rows, cols int) []float64

// InitWFn wraps a weight initializer configuration so that it can be
// serialized and so that it can create seeded initializers.
type InitWFn struct {
	Type
	Config
}

// newInitWFn returns a new InitWFn
func newInitWFn(c Config) (*InitWFn, error) {
	return &InitWFn{Type: c.Type(), Config: c}, nil
}

// Fn returns a weight initializer whose random stream is determined by
// seed. Two Fns created with the same seed produce identical weights.
func (w *InitWFn) Fn(seed uint64) Fn {
	return w.Config.Create(seed)
}

// String implements the fmt.Stringer interface
func (w *InitWFn) String() string {
	return fmt.Sprintf("{%v InitWFn: %v}", w.Type, w.Config)
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (w *InitWFn) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   Type
		Config json.RawMessage
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	value, err := newConfig(raw.Type)
	if err != nil {
		return fmt.Errorf("unmarshalJSON: %v", err)
	}
	if len(raw.Config) > 0 {
		if err := json.Unmarshal(raw.Config, value); err != nil {
			return err
		}
	}

	return w.set(raw.Type, value)
}

// UnmarshalYAML implements the yaml.Unmarshaler interface. The YAML
// form is flat, e.g.
//
//	init:
//	  type: GlorotU
//	  gain: 1.0
func (w *InitWFn) UnmarshalYAML(node *yaml.Node) error {
	var head struct {
		Type Type `yaml:"type"`
	}
	if err := node.Decode(&head); err != nil {
		return err
	}

	value, err := newConfig(head.Type)
	if err != nil {
		return fmt.Errorf("unmarshalYAML: line %d: %v", node.Line, err)
	}
	if err := node.Decode(value); err != nil {
		return err
	}

	return w.set(head.Type, value)
}

// set stores the decoded concrete Config pointed to by value
func (w *InitWFn) set(t Type, value interface{}) error {
	concrete, ok := reflect.ValueOf(value).Elem().Interface().(Config)
	if !ok {
		return fmt.Errorf("set: %T is not an initwfn.Config", value)
	}
	w.Type = t
	w.Config = concrete
	return nil
}

// newConfig returns a pointer to a new zero Config of the given type
func newConfig(t Type) (interface{}, error) {
	ty, found := registered[t]
	if !found {
		return nil, fmt.Errorf("no such initializer type %q", t)
	}
	return reflect.New(ty).Interface(), nil
}

// Config implements a weight initializer configuration and can be used
// to create the described initializers.
type Config interface {
	// Create returns the seeded initializer that the Config describes
	Create(seed uint64) Fn

	// Type returns the type of initializer that is returned
	Type() Type
}
