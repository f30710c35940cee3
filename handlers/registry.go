/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package handlers

import (
	"fmt"
	"sort"
	"sync"

	"github.com/suparena/assetstore/errors"
)

// Registry maps spec names to handlers. Registries are instance-scoped so
// two stores in one process can carry different handler sets; resolution
// happens when the owning store is constructed, not at first retrieve.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register associates a handler with a spec name. Registering an empty
// spec, a nil handler, or a spec that already has a handler is rejected;
// an existing registration is never silently replaced.
func (r *Registry) Register(spec string, h Handler) error {
	if spec == "" {
		return errors.NewValidationError("spec", "must not be empty")
	}
	if h == nil {
		return errors.NewValidationError("handler", "must not be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[spec]; exists {
		return errors.NewValidationError("spec", fmt.Sprintf("handler already registered for spec %q", spec))
	}
	r.handlers[spec] = h
	return nil
}

// MustRegister is Register that panics on error, for wiring handler sets
// at program start.
func (r *Registry) MustRegister(spec string, h Handler) {
	if err := r.Register(spec, h); err != nil {
		panic(fmt.Sprintf("handler registry: %v", err))
	}
}

// Get returns the handler registered for a spec.
func (r *Registry) Get(spec string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[spec]
	if !ok {
		return nil, errors.NewUnknownSpecError(spec)
	}
	return h, nil
}

// Specs lists the registered spec names in sorted order.
func (r *Registry) Specs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	specs := make([]string, 0, len(r.handlers))
	for spec := range r.handlers {
		specs = append(specs, spec)
	}
	sort.Strings(specs)
	return specs
}
