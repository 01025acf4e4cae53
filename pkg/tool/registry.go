package tool

import (
	"sort"
	"sync"

	"github.com/fluxionai/fluxion-oss/pkg/stream"
)

// Func is an asynchronous tool invocation. It receives the upstream value
// (nil when the tool runs at the head of a dataflow) and a tool-specific
// configuration map, and returns the stream of its results. Cancellation
// reaches the tool through the context of the returned stream's
// subscription; implementations that cannot stop early still have their
// results discarded by the engine.
type Func func(input any, config map[string]any) *stream.Stream

// Registry maps tool names to invocation functions. Reads vastly outnumber
// writes; an RWMutex guards both.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Func
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Func)}
}

// Register stores fn under name, overwriting any prior registration.
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[name] = fn
}

// Get retrieves the function registered under name.
func (r *Registry) Get(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.tools[name]
	return fn, ok
}

// List returns the sorted names of all registered tools.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
