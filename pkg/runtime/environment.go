package runtime

import (
	"fmt"
	"sort"
	"sync"
)

// Environment is one frame of the lexical scope chain.
type Environment struct {
	values map[string]Value
	parent *Environment
	mu     sync.RWMutex
}

// NewEnvironment creates a new frame, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Define inserts or shadows a binding in the current frame.
func (e *Environment) Define(name string, value Value) {
	e.mu.Lock()
	e.values[name] = value
	e.mu.Unlock()
}

// Set applies the assignment rule of the language: an existing binding
// anywhere in the chain is updated in place, otherwise the name is bound in
// this (innermost) frame.
func (e *Environment) Set(name string, value Value) {
	if e.AssignExisting(name, value) {
		return
	}
	e.Define(name, value)
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(name string) (Value, error) {
	if v, ok := e.Lookup(name); ok {
		return v, nil
	}
	return nil, fmt.Errorf("Undefined variable '%s'", name)
}

// Lookup is Get without the error allocation.
func (e *Environment) Lookup(name string) (Value, bool) {
	for env := e; env != nil; {
		env.mu.RLock()
		v, ok := env.values[name]
		parent := env.parent
		env.mu.RUnlock()
		if ok {
			return v, true
		}
		env = parent
	}
	return nil, false
}

// Keys returns the bindings of this frame in sorted order.
func (e *Environment) Keys() []string {
	e.mu.RLock()
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	e.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Extend creates a child frame.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}

// Has reports whether the binding exists anywhere in the scope chain.
func (e *Environment) Has(name string) bool {
	_, ok := e.Lookup(name)
	return ok
}

// AssignExisting assigns a name if it exists anywhere in the scope chain.
// Returns true when the assignment succeeded.
func (e *Environment) AssignExisting(name string, value Value) bool {
	for env := e; env != nil; {
		env.mu.Lock()
		if _, ok := env.values[name]; ok {
			env.values[name] = value
			env.mu.Unlock()
			return true
		}
		parent := env.parent
		env.mu.Unlock()
		env = parent
	}
	return false
}
