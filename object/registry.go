package object

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/podhmo/swiftflow/token"
)

// NativeFunction is the signature of host functions. args holds the
// evaluated arguments (the count is len(args)) and env is the caller's
// environment. A plain error is reported as a runtime error at the call
// site; an *Error is propagated unchanged.
type NativeFunction func(ctx *NativeContext, args []Object, env *Environment) (Object, error)

// NativeContext provides the session facilities a native may need.
type NativeContext struct {
	Context context.Context
	Name    string    // registered name of the native being called
	Pos     token.Pos // position of the call expression
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger

	// Call invokes a Function or Native with args. For a Function the body
	// runs in a scratch frame enclosed by the function's captured
	// environment, with its parameters bound to args.
	Call func(fn Object, args ...Object) (Object, error)
}

// Registry maps names to native functions. A registry is populated by the
// host before evaluation; each session works on its own Clone.
type Registry struct {
	mu      sync.RWMutex
	natives map[string]*Native
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{natives: make(map[string]*Native)}
}

// Register adds or replaces the native called name.
func (r *Registry) Register(name string, fn NativeFunction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.natives[name] = &Native{Name: name, Fn: fn}
}

// Lookup returns the native called name.
func (r *Registry) Lookup(name string) (*Native, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.natives[name]
	return n, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.natives))
	for name := range r.natives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy. Registering into the copy does not
// affect r.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewRegistry()
	for name, n := range r.natives {
		clone.natives[name] = n
	}
	return clone
}
