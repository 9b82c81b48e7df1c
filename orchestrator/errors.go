package orchestrator

import "errors"

var (
	// ErrPlanNotActive indicates the plan id does not belong to a currently
	// executing plan.
	ErrPlanNotActive = errors.New("plan is not active")

	// ErrPlanNotPaused indicates a resume was requested for a plan that is
	// not paused.
	ErrPlanNotPaused = errors.New("plan is not paused")

	// ErrNoPendingPrompt indicates user input arrived while no prompt was
	// outstanding, or for a different prompt id than the outstanding one.
	ErrNoPendingPrompt = errors.New("no matching pending prompt")

	// ErrPromptTimeout indicates an outstanding prompt expired before a valid
	// response arrived. The owning plan fails.
	ErrPromptTimeout = errors.New("prompt timed out")

	// ErrPlanTerminal indicates an operation on a plan that already reached a
	// terminal status.
	ErrPlanTerminal = errors.New("plan already reached a terminal status")

	// errCancelled flows through the driver when cancellation is observed.
	errCancelled = errors.New("plan cancelled")
)
