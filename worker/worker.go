// Package worker provides helpers around the core.Worker collaborator
// interface: a thread-safe registry keyed by agent type, a function adaptor
// for plain Go functions and a generic model-backed worker.
package worker

import (
	"sort"
	"sync"

	"github.com/hupe1980/agentplan/core"
)

// Registry is a thread-safe collection of workers keyed by agent type.
// Registering a worker for an existing type replaces it.
type Registry struct {
	mu      sync.RWMutex
	workers map[string]core.Worker
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{workers: make(map[string]core.Worker)}
}

// Register adds a worker, making it available for steps of its agent type.
func (r *Registry) Register(w core.Worker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workers[w.AgentType()] = w
}

// Get retrieves a registered worker by agent type.
func (r *Registry) Get(agentType string) (core.Worker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workers[agentType]
	return w, ok
}

// Types returns the sorted agent types currently registered.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.workers))
	for t := range r.workers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
