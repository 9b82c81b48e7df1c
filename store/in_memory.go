// Package store provides PlanStore implementations. The in-memory store
// suits tests and ephemeral runs; the sqlite subpackage persists plans across
// process restarts.
package store

import (
	"sort"
	"sync"

	"github.com/hupe1980/agentplan/core"
)

// InMemoryStore is a volatile PlanStore implementation keeping plan
// snapshots in a process local map. It is safe for concurrent access. Each
// stored and returned plan is cloned to prevent external mutation of
// internal state.
type InMemoryStore struct {
	mu    sync.RWMutex
	plans map[string]*core.ExecutionPlan
}

// NewInMemoryStore constructs an empty in-memory plan store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{plans: make(map[string]*core.ExecutionPlan)}
}

// Save stores a clone of the provided plan snapshot.
func (s *InMemoryStore) Save(plan *core.ExecutionPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[plan.ID] = plan.Clone()
	return nil
}

// Load returns a clone of the stored plan or core.ErrPlanNotFound.
func (s *InMemoryStore) Load(planID string) (*core.ExecutionPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	plan, ok := s.plans[planID]
	if !ok {
		return nil, core.ErrPlanNotFound
	}
	return plan.Clone(), nil
}

// List returns clones of all stored plans ordered by creation time.
func (s *InMemoryStore) List() ([]*core.ExecutionPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	plans := make([]*core.ExecutionPlan, 0, len(s.plans))
	for _, plan := range s.plans {
		plans = append(plans, plan.Clone())
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].Created.Before(plans[j].Created) })
	return plans, nil
}

// Delete removes the plan or returns core.ErrPlanNotFound.
func (s *InMemoryStore) Delete(planID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.plans[planID]; !ok {
		return core.ErrPlanNotFound
	}
	delete(s.plans, planID)
	return nil
}
