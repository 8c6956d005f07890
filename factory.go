package strobe

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Builder constructs a named node from a configuration bag. The node name
// is chosen by the caller assembling the graph, not by the builder, so
// one algorithm can appear several times in a topology.
type Builder func(name string, params Params) (Node, error)

// Factory maps algorithm identifiers to node builders. It is an explicit
// object passed to graph assembly, never process-global state, so test
// doubles and differently-stocked registries can coexist.
type Factory struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewFactory creates an empty factory.
func NewFactory() *Factory {
	return &Factory{builders: map[string]Builder{}}
}

// Register associates an algorithm identifier with a builder. Registering
// an existing identifier fails with ErrDuplicateAlgorithm; use Replace to
// overwrite deliberately.
func (f *Factory) Register(name string, b Builder) error {
	if name == "" || b == nil {
		return fmt.Errorf("%w: empty name or nil builder", ErrInvalidConfiguration)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, found := f.builders[name]; found {
		return fmt.Errorf("%w: %q", ErrDuplicateAlgorithm, name)
	}
	f.builders[name] = b
	return nil
}

// MustRegister registers a builder, panicking on error.
func (f *Factory) MustRegister(name string, b Builder) {
	if err := f.Register(name, b); err != nil {
		panic(err)
	}
}

// Replace registers a builder, overwriting any existing registration.
func (f *Factory) Replace(name string, b Builder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[name] = b
}

// Create instantiates the named algorithm as nodeName, validating its
// configuration. Unregistered algorithms fail with ErrUnknownAlgorithm;
// builder-side validation failures propagate wrapped with the algorithm
// identifier.
func (f *Factory) Create(algorithm, nodeName string, params Params) (Node, error) {
	f.mu.RLock()
	b, found := f.builders[algorithm]
	f.mu.RUnlock()

	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
	n, err := b(nodeName, params)
	if err != nil {
		return nil, fmt.Errorf("algorithm %q: %w", algorithm, err)
	}
	return n, nil
}

// Has reports whether an algorithm is registered.
func (f *Factory) Has(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, found := f.builders[name]
	return found
}

// Names returns the registered algorithm identifiers, sorted.
func (f *Factory) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Sorted(maps.Keys(f.builders))
}
