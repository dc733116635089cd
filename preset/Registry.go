package preset

import (
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Type names an algorithm that Presets can be decoded for
type Type string

// Decoder decodes the hyperparameters in node into a Preset
type Decoder func(node *yaml.Node, opts ...Option) (Preset, error)

var (
	mu       sync.RWMutex
	decoders = make(map[Type]Decoder)
)

// Register registers the Decoder of a Type so that Presets of that
// Type can be decoded from configuration files.
//
// Each algorithm package registers its own Type upon initialization to
// avoid circular imports. Registering a Type twice panics.
func Register(t Type, d Decoder) {
	mu.Lock()
	defer mu.Unlock()

	if _, ok := decoders[t]; ok {
		panic(fmt.Sprintf("register: preset type %q already registered", t))
	}
	decoders[t] = d
}

// Decode decodes a Preset of Type t from node
func Decode(t Type, node *yaml.Node, opts ...Option) (Preset, error) {
	mu.RLock()
	d, ok := decoders[t]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("decode: unknown preset type %q", t)
	}
	p, err := d(node, opts...)
	if err != nil {
		return nil, fmt.Errorf("decode: %v: %w", t, err)
	}
	return p, nil
}

// Types returns the registered Types in sorted order
func Types() []Type {
	mu.RLock()
	defer mu.RUnlock()

	types := make([]Type, 0, len(decoders))
	for t := range decoders {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
