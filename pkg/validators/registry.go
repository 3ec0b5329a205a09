package validators

import (
	"fmt"
	"sync"

	"github.com/mbruna/espalier/pkg/controls"
)

// Registry maps names to validation functions so configuration files can
// reference validators symbolically.
type Registry struct {
	mu         sync.RWMutex
	validators map[string]controls.ValidationFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		validators: make(map[string]controls.ValidationFunc),
	}
}

// Register adds a validator under name. A validator with the same name is
// overwritten.
func (r *Registry) Register(name string, fn controls.ValidationFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators[name] = fn
}

// Lookup returns the validator registered under name.
func (r *Registry) Lookup(name string) (controls.ValidationFunc, error) {
	r.mu.RLock()
	fn, ok := r.validators[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("validator not found: %s", name)
	}
	return fn, nil
}

// Resolve maps a list of names to their validators, preserving order.
func (r *Registry) Resolve(names ...string) ([]controls.ValidationFunc, error) {
	fns := make([]controls.ValidationFunc, 0, len(names))
	for _, name := range names {
		fn, err := r.Lookup(name)
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	return fns, nil
}
