package testutil

import (
	"github.com/hupe1980/agentplan/core"
)

// PlanBuilder provides a fluent helper for constructing execution plans in
// tests. Example:
//
//	plan := NewPlanBuilder("scan my project").
//		Step("s1", "Scan", "scanner").
//		StepAfter("s2", "Report", "reporter", "s1").
//		Status(core.PlanRunning).
//		Build()
//
// Chain only the parts you need; sensible defaults are applied.
type PlanBuilder struct {
	request  string
	analysis *core.Analysis
	steps    []*core.PlanStep
	status   core.PlanStatus
}

// NewPlanBuilder creates a builder for a plan over the given request.
func NewPlanBuilder(request string) *PlanBuilder {
	return &PlanBuilder{request: request, status: core.PlanCreated}
}

// Analysis sets the analysis recorded on the plan (chainable).
func (b *PlanBuilder) Analysis(a core.Analysis) *PlanBuilder {
	b.analysis = &a
	return b
}

// Step appends a pending step without dependencies (chainable).
func (b *PlanBuilder) Step(id, title, agentType string) *PlanBuilder {
	b.steps = append(b.steps, &core.PlanStep{
		ID:        id,
		Title:     title,
		AgentType: agentType,
		Status:    core.StepPending,
	})
	return b
}

// StepAfter appends a pending step depending on the given step ids (chainable).
func (b *PlanBuilder) StepAfter(id, title, agentType string, dependsOn ...string) *PlanBuilder {
	b.steps = append(b.steps, &core.PlanStep{
		ID:        id,
		Title:     title,
		AgentType: agentType,
		DependsOn: dependsOn,
		Status:    core.StepPending,
	})
	return b
}

// Succeeded marks the most recently added step succeeded with the given
// output (chainable).
func (b *PlanBuilder) Succeeded(output string) *PlanBuilder {
	if n := len(b.steps); n > 0 {
		b.steps[n-1].Status = core.StepSucceeded
		b.steps[n-1].Output = output
	}
	return b
}

// Failed marks the most recently added step failed with the given error text
// (chainable).
func (b *PlanBuilder) Failed(errText string) *PlanBuilder {
	if n := len(b.steps); n > 0 {
		b.steps[n-1].Status = core.StepFailed
		b.steps[n-1].Error = errText
	}
	return b
}

// Status sets the overall plan status applied by Build (chainable).
func (b *PlanBuilder) Status(s core.PlanStatus) *PlanBuilder {
	b.status = s
	return b
}

// Build materializes the plan.
func (b *PlanBuilder) Build() *core.ExecutionPlan {
	plan := core.NewExecutionPlan(b.request)
	if b.analysis != nil {
		plan.SetAnalysis(*b.analysis)
	}
	if len(b.steps) > 0 {
		plan.SetSteps(b.steps)
	}
	if b.status != core.PlanCreated {
		plan.SetStatus(b.status)
	}
	return plan
}
