package core

// NotificationKind discriminates progress notifications. A single flat event
// type with an explicit kind discriminator keeps UI integration to one
// callback instead of a listener per event.
type NotificationKind string

const (
	// NotifyPlanningComplete is emitted once the plan and its batches exist.
	NotifyPlanningComplete NotificationKind = "planning_complete"
	// NotifyStepComplete is emitted after every step transition to a terminal
	// status (succeeded, failed or skipped).
	NotifyStepComplete NotificationKind = "step_complete"
	// NotifyPlanComplete is emitted once the plan reaches a terminal status.
	NotifyPlanComplete NotificationKind = "plan_complete"
	// NotifyError is emitted for recoverable errors worth surfacing to a UI
	// (step failures, persistence problems).
	NotifyError NotificationKind = "error"
	// NotifyInputRequired is emitted when execution parks on a user prompt.
	NotifyInputRequired NotificationKind = "input_required"
	// NotifyInputInvalid is emitted when supplied user input failed
	// validation; the plan stays in its waiting state.
	NotifyInputInvalid NotificationKind = "input_invalid"
)

// Notification carries enough data for a UI layer to render progress without
// further core calls. Field population depends on Kind.
type Notification struct {
	Kind      NotificationKind `json:"kind"`
	PlanID    string           `json:"plan_id"`
	StepID    string           `json:"step_id,omitempty"`
	StepTitle string           `json:"step_title,omitempty"`
	// Content is free text: step output, prompt rendering or error detail.
	Content   string `json:"content,omitempty"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// NotifyFunc receives progress notifications. Invoked synchronously and in
// plan-step order by the orchestrator; implementations must not block for
// long periods.
type NotifyFunc func(Notification)
