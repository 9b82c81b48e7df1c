package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// StepStatus tracks the lifecycle of a single plan step.
type StepStatus string

const (
	// StepPending means the step has not been dispatched yet.
	StepPending StepStatus = "pending"
	// StepRunning means the step is currently executing on a worker.
	StepRunning StepStatus = "running"
	// StepSucceeded means the worker completed the step successfully.
	StepSucceeded StepStatus = "succeeded"
	// StepFailed means the worker reported an error for the step.
	StepFailed StepStatus = "failed"
	// StepSkipped means the step was never executed, typically because a
	// dependency failed or the plan was halted.
	StepSkipped StepStatus = "skipped"
)

// Terminal reports whether the step reached a final state.
func (s StepStatus) Terminal() bool {
	return s == StepSucceeded || s == StepFailed || s == StepSkipped
}

// PlanStatus tracks the overall lifecycle of an execution plan.
type PlanStatus string

const (
	// PlanCreated is the initial state before analysis starts.
	PlanCreated PlanStatus = "created"
	// PlanAnalyzing means the request is being classified.
	PlanAnalyzing PlanStatus = "analyzing"
	// PlanPlanning means steps and batches are being derived.
	PlanPlanning PlanStatus = "planning"
	// PlanRunning means batches are being dispatched to workers.
	PlanRunning PlanStatus = "running"
	// PlanPaused means no new batch will be dispatched until resumed.
	PlanPaused PlanStatus = "paused"
	// PlanWaitingInput means execution is parked on an unresolved user prompt.
	PlanWaitingInput PlanStatus = "waiting_input"
	// PlanCompleted means every step finished and none failed.
	PlanCompleted PlanStatus = "completed"
	// PlanFailed means the plan reached the end with at least one failed step
	// or an unrecoverable error.
	PlanFailed PlanStatus = "failed"
	// PlanCancelled means the plan was cancelled cooperatively.
	PlanCancelled PlanStatus = "cancelled"
)

// Terminal reports whether the plan status is final. Terminal plans are
// retained read-only in storage and never transition again.
func (s PlanStatus) Terminal() bool {
	return s == PlanCompleted || s == PlanFailed || s == PlanCancelled
}

// PlanStep is one unit of work assigned to a specific worker agent type.
// DependsOn lists step IDs that must succeed before this step is eligible.
// Cycle freedom is enforced by the graph package at plan-build time, not on
// mutation.
type PlanStep struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	AgentType   string     `json:"agent_type"`
	DependsOn   []string   `json:"depends_on,omitempty"`
	Status      StepStatus `json:"status"`
	Output      string     `json:"output,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Clone returns a deep copy of the step.
func (s *PlanStep) Clone() *PlanStep {
	c := *s
	c.DependsOn = append([]string(nil), s.DependsOn...)
	if s.StartedAt != nil {
		t := *s.StartedAt
		c.StartedAt = &t
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// Progress summarizes plan advancement for callers that render status
// without further core calls.
type Progress struct {
	Completed int  `json:"completed"`
	Total     int  `json:"total"`
	Terminal  bool `json:"terminal"`
	Succeeded bool `json:"succeeded"`
}

// ExecutionPlan is the dependency-ordered set of steps derived from one user
// request. It is owned by a single orchestrator driver while active; a Clone
// snapshot is handed to PlanStore for durability. Safe for concurrent access.
//
// Contract:
//   - Status / step mutations update the Updated timestamp
//   - Read accessors return defensive copies to avoid external mutation
//   - Once Status is terminal the plan is never mutated again.
type ExecutionPlan struct {
	ID       string      `json:"id"`
	Request  string      `json:"request"`
	Analysis Analysis    `json:"analysis"`
	Steps    []*PlanStep `json:"steps"`
	Status   PlanStatus  `json:"status"`
	Summary  string      `json:"summary,omitempty"`
	Created  time.Time   `json:"created"`
	Updated  time.Time   `json:"updated"`
	mu       sync.RWMutex
}

// NewExecutionPlan creates a plan in the created state with a fresh unique id.
func NewExecutionPlan(request string) *ExecutionPlan {
	now := time.Now().UTC()
	return &ExecutionPlan{
		ID:      uuid.NewString(),
		Request: request,
		Status:  PlanCreated,
		Created: now,
		Updated: now,
	}
}

// SetStatus transitions the overall plan status.
func (p *ExecutionPlan) SetStatus(status PlanStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = status
	p.Updated = time.Now().UTC()
}

// GetStatus returns the current overall status.
func (p *ExecutionPlan) GetStatus() PlanStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Status
}

// SetAnalysis records the originating analysis. Called once during planning.
func (p *ExecutionPlan) SetAnalysis(a Analysis) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Analysis = a
	p.Updated = time.Now().UTC()
}

// SetSteps replaces the step list. Called once during planning.
func (p *ExecutionPlan) SetSteps(steps []*PlanStep) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Steps = steps
	p.Updated = time.Now().UTC()
}

// SetSummary records the human-readable terminal summary.
func (p *ExecutionPlan) SetSummary(summary string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Summary = summary
	p.Updated = time.Now().UTC()
}

// Step returns a copy of the step with the given id.
func (p *ExecutionPlan) Step(id string) (*PlanStep, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, s := range p.Steps {
		if s.ID == id {
			return s.Clone(), true
		}
	}
	return nil, false
}

// UpdateStep applies fn to the step with the given id under the plan lock.
// Returns false when the id is unknown.
func (p *ExecutionPlan) UpdateStep(id string, fn func(*PlanStep)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.Steps {
		if s.ID == id {
			fn(s)
			p.Updated = time.Now().UTC()
			return true
		}
	}
	return false
}

// SucceededIDs returns the set of step ids that completed successfully.
// This is the "completed" set consulted for dependency eligibility.
func (p *ExecutionPlan) SucceededIDs() map[string]bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make(map[string]bool)
	for _, s := range p.Steps {
		if s.Status == StepSucceeded {
			ids[s.ID] = true
		}
	}
	return ids
}

// CountByStatus tallies steps per status.
func (p *ExecutionPlan) CountByStatus() map[StepStatus]int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	counts := make(map[StepStatus]int)
	for _, s := range p.Steps {
		counts[s.Status]++
	}
	return counts
}

// Progress reports completed vs total steps plus terminal/success flags.
// A step counts as completed once it reached any terminal status.
func (p *ExecutionPlan) Progress() Progress {
	p.mu.RLock()
	defer p.mu.RUnlock()
	completed := 0
	for _, s := range p.Steps {
		if s.Status.Terminal() {
			completed++
		}
	}
	return Progress{
		Completed: completed,
		Total:     len(p.Steps),
		Terminal:  p.Status.Terminal(),
		Succeeded: p.Status == PlanCompleted,
	}
}

// Clone returns a deep copy of the plan safe for independent mutation or
// serialization while the original keeps running.
func (p *ExecutionPlan) Clone() *ExecutionPlan {
	p.mu.RLock()
	defer p.mu.RUnlock()
	clone := &ExecutionPlan{
		ID:       p.ID,
		Request:  p.Request,
		Analysis: p.Analysis.Clone(),
		Steps:    make([]*PlanStep, len(p.Steps)),
		Status:   p.Status,
		Summary:  p.Summary,
		Created:  p.Created,
		Updated:  p.Updated,
	}
	for i, s := range p.Steps {
		clone.Steps[i] = s.Clone()
	}
	return clone
}
