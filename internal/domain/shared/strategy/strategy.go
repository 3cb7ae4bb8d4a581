// Package strategy holds the named, swappable rules of the pricing engine
// and a registry to select them by configuration key.
package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/phonestore/backend/internal/domain/shared"
)

// Strategy is a named rule implementation selectable from configuration
type Strategy interface {
	Name() string
	Description() string
}

// Base carries the name and description of a strategy
type Base struct {
	name        string
	description string
}

// NewBase creates a Base
func NewBase(name, description string) Base {
	return Base{name: name, description: description}
}

func (b Base) Name() string        { return b.name }
func (b Base) Description() string { return b.description }

// Registry maps names to strategies of one kind. The zero value is not usable.
type Registry[T Strategy] struct {
	mu       sync.RWMutex
	kind     string
	items    map[string]T
	fallback string
}

// NewRegistry creates a registry for kind. Get("") resolves to fallback.
func NewRegistry[T Strategy](kind, fallback string) *Registry[T] {
	return &Registry[T]{
		kind:     kind,
		items:    make(map[string]T),
		fallback: fallback,
	}
}

// Register adds s. Names are unique per registry.
func (r *Registry[T]) Register(s T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[s.Name()]; exists {
		return fmt.Errorf("%w: %s strategy %q already registered", shared.ErrAlreadyExists, r.kind, s.Name())
	}
	r.items[s.Name()] = s
	return nil
}

// MustRegister is Register for package initialisation
func (r *Registry[T]) MustRegister(items ...T) *Registry[T] {
	for _, s := range items {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	return r
}

// Get returns the strategy named name, or the fallback when name is empty
func (r *Registry[T]) Get(name string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.fallback
	}
	s, ok := r.items[name]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s strategy %q", shared.ErrNotFound, r.kind, name)
	}
	return s, nil
}

// Names lists registered names in sorted order
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
