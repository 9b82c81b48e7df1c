// Package graph provides the dependency graph used to order plan steps into
// parallel-eligible batches. A graph is rebuilt per plan from its steps,
// queried during scheduling and discarded afterwards; it has no side effects
// and needs no locking.
package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hupe1980/agentplan/core"
)

// ErrCircularDependency indicates the step set cannot be fully ordered
// because at least one dependency cycle exists.
var ErrCircularDependency = errors.New("circular dependency detected")

// DependencyGraph is an adjacency view over a plan's steps. Edges point from
// a step to the steps it depends on ("blocked by").
type DependencyGraph struct {
	// edges maps step ID to the IDs it depends on.
	edges map[string][]string
	// dependents maps step ID to the IDs that depend on it (reverse edges).
	dependents map[string][]string
}

// New builds a graph from an unordered collection of plan steps. It rejects
// references to unknown steps and self-dependencies; cycles spanning several
// steps are detected lazily by Batches and HasCycles.
func New(steps []*core.PlanStep) (*DependencyGraph, error) {
	g := &DependencyGraph{
		edges:      make(map[string][]string, len(steps)),
		dependents: make(map[string][]string, len(steps)),
	}

	for _, step := range steps {
		if _, exists := g.edges[step.ID]; exists {
			return nil, fmt.Errorf("duplicate step id %s", step.ID)
		}
		g.edges[step.ID] = nil
	}

	for _, step := range steps {
		for _, depID := range step.DependsOn {
			if depID == step.ID {
				return nil, fmt.Errorf("step %s depends on itself: %w", step.ID, ErrCircularDependency)
			}
			if _, exists := g.edges[depID]; !exists {
				return nil, fmt.Errorf("step %s depends on unknown step %s", step.ID, depID)
			}
			g.edges[step.ID] = append(g.edges[step.ID], depID)
			g.dependents[depID] = append(g.dependents[depID], step.ID)
		}
	}

	return g, nil
}

// Batches returns an ordered sequence of maximal parallel-eligible batches.
// Every step appears in exactly one batch; for every dependency edge the
// dependency's batch index is strictly less than its dependent's; each batch
// contains every step whose dependencies are all satisfied by strictly
// earlier batches. Batches are sorted internally for determinism.
//
// The layering generalizes Kahn's algorithm: each round removes every
// currently satisfiable node at once, which yields the maximum parallelism
// achievable under the dependency constraints. If a cycle prevents consuming
// all nodes, ErrCircularDependency is returned.
func (g *DependencyGraph) Batches() ([][]string, error) {
	remaining := make(map[string]int, len(g.edges))
	for id, deps := range g.edges {
		remaining[id] = len(deps)
	}

	var batches [][]string
	placed := 0

	for placed < len(g.edges) {
		var batch []string
		for id, missing := range remaining {
			if missing == 0 {
				batch = append(batch, id)
			}
		}
		if len(batch) == 0 {
			return nil, ErrCircularDependency
		}
		sort.Strings(batch)

		for _, id := range batch {
			delete(remaining, id)
			for _, dep := range g.dependents[id] {
				if _, ok := remaining[dep]; ok {
					remaining[dep]--
				}
			}
		}

		batches = append(batches, batch)
		placed += len(batch)
	}

	return batches, nil
}

// HasCycles reports whether a full topological ordering is impossible.
func (g *DependencyGraph) HasCycles() bool {
	_, err := g.Batches()
	return errors.Is(err, ErrCircularDependency)
}

// Dependencies returns the IDs the given step depends on.
func (g *DependencyGraph) Dependencies(id string) []string {
	return append([]string(nil), g.edges[id]...)
}

// Dependents returns the IDs of steps that depend on the given step.
func (g *DependencyGraph) Dependents(id string) []string {
	return append([]string(nil), g.dependents[id]...)
}

// CanExecute reports whether every dependency of id is contained in the
// completed set.
func (g *DependencyGraph) CanExecute(id string, completed map[string]bool) bool {
	for _, dep := range g.edges[id] {
		if !completed[dep] {
			return false
		}
	}
	return true
}

// Size returns the number of steps in the graph.
func (g *DependencyGraph) Size() int { return len(g.edges) }
