// Package orchestrator drives an execution plan from a natural-language
// request to a terminal state. It classifies the request, derives
// dependency-ordered steps, dispatches parallel-eligible batches to
// registered workers and mediates the plan lifecycle: pause and resume at
// batch boundaries, cooperative cancellation and parking on user prompts.
// Every state change is persisted to the configured PlanStore so plans can be
// resumed after a restart.
package orchestrator
