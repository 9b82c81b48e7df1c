package worker

import (
	"context"

	"github.com/hupe1980/agentplan/core"
)

// ExecuteFunc is the signature accepted by the Func adaptor.
type ExecuteFunc func(ctx context.Context, step *core.PlanStep, execCtx *core.ExecutionContext) (*core.StepResult, error)

// Func adapts a plain Go function into a core.Worker.
type Func struct {
	agentType string
	fn        ExecuteFunc
}

// NewFunc constructs a function-backed worker serving the given agent type.
func NewFunc(agentType string, fn ExecuteFunc) *Func {
	return &Func{agentType: agentType, fn: fn}
}

// AgentType implements core.Worker.
func (f *Func) AgentType() string { return f.agentType }

// Execute implements core.Worker.
func (f *Func) Execute(ctx context.Context, step *core.PlanStep, execCtx *core.ExecutionContext) (*core.StepResult, error) {
	return f.fn(ctx, step, execCtx)
}
