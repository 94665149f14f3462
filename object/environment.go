package object

import "sort"

// --- Environment ---

// Environment is one scope frame: the bindings of a block, a call or the
// global scope, plus a link to the enclosing frame. Closures keep the frame
// they were declared in alive for as long as they are reachable.
type Environment struct {
	store map[string]Object
	outer *Environment
}

// NewEnvironment creates a new, top-level environment.
func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Object)}
}

// NewEnclosedEnvironment creates a new environment that is enclosed by an outer one.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

// Get retrieves an object by name, checking outer scopes if necessary.
func (e *Environment) Get(name string) (Object, bool) {
	for env := e; env != nil; env = env.outer {
		if obj, ok := env.store[name]; ok {
			return obj, true
		}
	}
	return nil, false
}

// Define binds name in this frame only, overwriting an existing binding of
// this frame and shadowing any outer one.
func (e *Environment) Define(name string, val Object) Object {
	e.store[name] = val
	return val
}

// Assign updates the nearest frame that already binds name. It returns
// false if no frame does.
func (e *Environment) Assign(name string, val Object) bool {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name]; ok {
			env.store[name] = val
			return true
		}
	}
	return false
}

// Outer returns the enclosing environment.
func (e *Environment) Outer() *Environment {
	return e.outer
}

// GetAll returns a copy of the bindings of this frame, excluding outer frames.
func (e *Environment) GetAll() map[string]Object {
	all := make(map[string]Object, len(e.store))
	for k, v := range e.store {
		all[k] = v
	}
	return all
}

// Names returns the names bound in this frame, sorted.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.store))
	for k := range e.store {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
