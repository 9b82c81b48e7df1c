package core

// Complexity categorizes the estimated effort of a request.
type Complexity string

const (
	// ComplexityLow marks trivial, usually single-step requests.
	ComplexityLow Complexity = "low"
	// ComplexityMedium is the conservative default classification.
	ComplexityMedium Complexity = "medium"
	// ComplexityHigh marks requests expected to need many coordinated steps.
	ComplexityHigh Complexity = "high"
)

// Valid reports whether the value is one of the known complexity levels.
func (c Complexity) Valid() bool {
	return c == ComplexityLow || c == ComplexityMedium || c == ComplexityHigh
}

// Analysis is the classification of a user request produced once per plan by
// the request analyzer. Immutable thereafter.
type Analysis struct {
	// TaskType is a short label for the kind of work requested
	// (e.g. "code_scan", "bug_detection", "general").
	TaskType string `json:"task_type"`
	// RequiredAgents lists the worker agent types the plan should invoke.
	RequiredAgents []string `json:"required_agents"`
	// Complexity is the estimated effort level.
	Complexity Complexity `json:"complexity"`
	// EstimatedSteps is the model's step-count estimate, clamped to >= 1.
	EstimatedSteps int `json:"estimated_steps"`
	// RequiresUserInput signals that the plan should pause for clarification
	// before execution starts.
	RequiresUserInput bool `json:"requires_user_input"`
	// Confidence is the classification confidence in [0, 1].
	Confidence float64 `json:"confidence"`
	// Reasoning is free-text justification returned by the model (or the
	// fallback heuristic).
	Reasoning string `json:"reasoning,omitempty"`
	// Parameters is an opaque key/value bag forwarded to workers.
	Parameters map[string]string `json:"parameters,omitempty"`
}

// Clone returns a deep copy of the analysis.
func (a Analysis) Clone() Analysis {
	c := a
	c.RequiredAgents = append([]string(nil), a.RequiredAgents...)
	if a.Parameters != nil {
		c.Parameters = make(map[string]string, len(a.Parameters))
		for k, v := range a.Parameters {
			c.Parameters[k] = v
		}
	}
	return c
}
