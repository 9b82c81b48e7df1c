// Package core provides the foundational domain types and interfaces used by
// AgentPlan. It defines the core abstractions for:
//
//   - ExecutionPlan / PlanStep (the dependency-ordered unit of work derived
//     from one user request and its individual steps)
//   - Analysis (the model-derived classification of a request)
//   - Worker (the collaborator that performs the actual domain work for one
//     plan step) and its execution context
//   - Notification (kind-discriminated progress records delivered to callers)
//   - PlanStore (pluggable persistence for plan snapshots)
//
// The package intentionally keeps implementation concerns (persistence,
// scheduling, concrete workers) out of scope, exposing small interfaces to
// enable custom backends and extensions.
package core
