package interaction

import (
	"fmt"
	"sync"
	"time"
)

// Response carries the raw user input that resolved a prompt.
type Response struct {
	PromptID string    `json:"prompt_id"`
	Value    string    `json:"value"`
	At       time.Time `json:"at"`
}

// Interaction pairs a prompt with its (possibly absent) response.
type Interaction struct {
	Prompt   *Prompt   `json:"prompt"`
	Response *Response `json:"response,omitempty"`
}

// Resolved reports whether a response has been recorded.
func (i *Interaction) Resolved() bool { return i.Response != nil }

// History is an append-only, plan-scoped ordered sequence of interactions.
// Safe for concurrent access.
type History struct {
	planID       string
	mu           sync.RWMutex
	interactions []*Interaction
}

// NewHistory creates an empty history for the given plan.
func NewHistory(planID string) *History {
	return &History{planID: planID}
}

// PlanID returns the owning plan id.
func (h *History) PlanID() string { return h.planID }

// Add appends an unresolved interaction for the prompt and returns it.
func (h *History) Add(prompt *Prompt) *Interaction {
	h.mu.Lock()
	defer h.mu.Unlock()
	in := &Interaction{Prompt: prompt}
	h.interactions = append(h.interactions, in)
	return in
}

// Resolve records the response for the prompt with the given id. A response
// is accepted at most once per prompt.
func (h *History) Resolve(promptID, value string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, in := range h.interactions {
		if in.Prompt.ID != promptID {
			continue
		}
		if in.Response != nil {
			return fmt.Errorf("prompt %s already resolved", promptID)
		}
		in.Response = &Response{PromptID: promptID, Value: value, At: time.Now().UTC()}
		return nil
	}
	return fmt.Errorf("prompt %s not found", promptID)
}

// Last returns the most recent interaction, or nil when empty.
func (h *History) Last() *Interaction {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.interactions) == 0 {
		return nil
	}
	return h.interactions[len(h.interactions)-1]
}

// ByPromptID returns the interaction for the given prompt id, or nil.
func (h *History) ByPromptID(promptID string) *Interaction {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, in := range h.interactions {
		if in.Prompt.ID == promptID {
			return in
		}
	}
	return nil
}

// Len returns the number of recorded interactions.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.interactions)
}
