package suite

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds suites by name.
type Registry struct {
	mu     sync.RWMutex
	suites map[string]Suite
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{suites: make(map[string]Suite)}
}

// Register adds s. Registering two suites under one name is a programming
// error and panics.
func (r *Registry) Register(s Suite) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if _, dup := r.suites[name]; dup {
		panic(fmt.Sprintf("suite: duplicate registration of %q", name))
	}
	r.suites[name] = s
}

// Get returns the suite registered under name.
func (r *Registry) Get(name string) (Suite, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.suites[name]
	return s, ok
}

// Names returns all registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.suites))
	for name := range r.suites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves names to suites, preserving order. Unknown names are
// reported together.
func (r *Registry) Lookup(names []string) ([]Suite, error) {
	var (
		out     []Suite
		unknown []string
	)
	for _, name := range names {
		s, ok := r.Get(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		out = append(out, s)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnknownSuite, unknown)
	}
	return out, nil
}
