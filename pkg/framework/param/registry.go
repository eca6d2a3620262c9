package param

import (
	"fmt"
	"sync"
)

// Registry holds a fixed, densely indexed parameter set. A parameter's ID is
// its index, so lookups validate the id and never touch a map on the audio path.
type Registry struct {
	params []*Parameter
	mu     sync.RWMutex
}

// NewRegistry creates a registry from parameters whose ids are 0..n-1.
func NewRegistry(params ...*Parameter) (*Registry, error) {
	r := &Registry{}
	if err := r.Add(params...); err != nil {
		return nil, err
	}
	return r, nil
}

// Add registers parameters. Each id must equal the next free index.
func (r *Registry) Add(params ...*Parameter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range params {
		next := uint32(len(r.params))
		if p.ID < next {
			return fmt.Errorf("%w: %d (%s)", ErrDuplicateID, p.ID, p.Name)
		}
		if p.ID != next {
			return fmt.Errorf("%w: %d, expected %d", ErrInvalidID, p.ID, next)
		}
		r.params = append(r.params, p)
	}

	return nil
}

// Get retrieves a parameter by ID
func (r *Registry) Get(id uint32) (*Parameter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id >= uint32(len(r.params)) {
		return nil, false
	}
	return r.params[id], true
}

// Count returns the number of parameters
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.params)
}

// All returns all parameters in order
func (r *Registry) All() []*Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Parameter, len(r.params))
	copy(result, r.params)
	return result
}

// Defaults returns the default values in index order.
func (r *Registry) Defaults() []float32 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]float32, len(r.params))
	for i, p := range r.params {
		out[i] = float32(p.DefaultValue)
	}
	return out
}
