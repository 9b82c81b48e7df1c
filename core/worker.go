package core

import "context"

// ExecutionContext is the read-only view of the owning plan handed to a
// worker alongside the step it executes. Outputs of earlier steps let later
// steps build on prior results; Inputs carries resolved user responses keyed
// by prompt id.
type ExecutionContext struct {
	PlanID     string            `json:"plan_id"`
	Request    string            `json:"request"`
	Parameters map[string]string `json:"parameters,omitempty"`
	Outputs    map[string]string `json:"outputs,omitempty"`
	Inputs     map[string]string `json:"inputs,omitempty"`
}

// StepResult is the successful outcome of a worker call. Output may feed
// later steps or the final summary; Metadata is opaque to the orchestrator.
type StepResult struct {
	Output   string            `json:"output"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Worker performs the actual domain work (scanning, detection, reporting)
// for plan steps of one agent type. The orchestrator is agnostic to what the
// worker does; it only consumes success/failure and the optional output.
//
// Implementations must respect context cancellation. A worker may interrupt
// execution to ask the user a question by returning *interaction.NeedsInput
// as the error; the orchestrator parks the plan and re-executes the step once
// a valid response is available in ExecutionContext.Inputs.
type Worker interface {
	// AgentType returns the step tag this worker serves.
	AgentType() string
	// Execute runs one step. A nil error marks the step succeeded.
	Execute(ctx context.Context, step *PlanStep, execCtx *ExecutionContext) (*StepResult, error)
}
