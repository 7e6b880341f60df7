package dialect

import (
	"fmt"
	"sort"
	"sync"

	"github.com/felixgeelhaar/scriptsmith/internal/errors"
)

// Registry maps dialect names to profiles
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		profiles: make(map[string]Profile),
	}
}

// Default returns a registry holding the built-in dialects
func Default() *Registry {
	r := NewRegistry()
	// Built-ins have distinct names, so registration cannot fail.
	_ = r.Register(PlaywrightProfile())
	_ = r.Register(PuppeteerProfile())
	return r
}

// Register adds a profile. Definitions are validated first.
func (r *Registry) Register(p Profile) error {
	if d, ok := p.(*Definition); ok {
		if err := d.Validate(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[p.Name()]; exists {
		return errors.New(errors.ErrCodeDuplicateDialect, fmt.Sprintf("dialect %s is already registered", p.Name())).
			WithSuggestion("Give the custom dialect a different name")
	}
	r.profiles[p.Name()] = p
	return nil
}

// Lookup returns the profile registered under name
func (r *Registry) Lookup(name string) (Profile, error) {
	r.mu.RLock()
	p, ok := r.profiles[name]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.NewUnknownDialectError(name, r.Names())
	}
	return p, nil
}

// Names returns the registered dialect names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Profiles returns all profiles ordered by name
func (r *Registry) Profiles() []Profile {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Profile, 0, len(names))
	for _, name := range names {
		if p, ok := r.profiles[name]; ok {
			out = append(out, p)
		}
	}
	return out
}
