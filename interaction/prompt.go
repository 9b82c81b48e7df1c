// Package interaction defines the value types and validation rules for
// pausing a plan to ask the user a question (confirmation, single choice,
// multi-choice, free-form input) and for recording the resulting
// conversation history.
package interaction

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates how a prompt is validated and rendered.
type Kind string

const (
	// KindConfirmation expects one of the configured options; any input is
	// accepted when no options are supplied.
	KindConfirmation Kind = "confirmation"
	// KindChoice expects exactly one of the configured options.
	KindChoice Kind = "choice"
	// KindMultiChoice expects a comma-separated subset of the options.
	KindMultiChoice Kind = "multi_choice"
	// KindInput expects free-form text.
	KindInput Kind = "input"
)

// ValidationResult is either success or failure carrying a non-empty list of
// human-readable error strings.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Valid returns a successful validation result.
func Valid() ValidationResult { return ValidationResult{Valid: true} }

// Invalid returns a failed validation result with the given reasons.
func Invalid(reasons ...string) ValidationResult {
	return ValidationResult{Valid: false, Errors: reasons}
}

// Prompt is a question directed at the user during plan execution. Validator,
// when set on an input prompt, takes precedence over the default empty-input
// rule. A zero Timeout means the orchestrator's default applies.
type Prompt struct {
	ID        string            `json:"id"`
	Kind      Kind              `json:"kind"`
	Message   string            `json:"message"`
	Options   []string          `json:"options,omitempty"`
	Default   string            `json:"default,omitempty"`
	Validator func(string) bool `json:"-"`
	Timeout   time.Duration     `json:"timeout,omitempty"`
}

// NewPrompt creates a prompt of the given kind with a fresh unique id.
func NewPrompt(kind Kind, message string, options ...string) *Prompt {
	return &Prompt{ID: uuid.NewString(), Kind: kind, Message: message, Options: options}
}

// NewConfirmation creates a yes/no confirmation prompt.
func NewConfirmation(message string) *Prompt {
	return NewPrompt(KindConfirmation, message, "yes", "no")
}

// Validate checks raw user input against the prompt's type-specific rules.
func (p *Prompt) Validate(raw string) ValidationResult {
	switch p.Kind {
	case KindConfirmation, KindChoice:
		return p.validateChoice(raw)
	case KindMultiChoice:
		return p.validateMultiChoice(raw)
	case KindInput:
		return p.validateInput(raw)
	default:
		return Invalid(fmt.Sprintf("unknown interaction kind %q", p.Kind))
	}
}

// validateChoice accepts input matching one option case-sensitively. A
// confirmation without options accepts anything.
func (p *Prompt) validateChoice(raw string) ValidationResult {
	if len(p.Options) == 0 {
		if p.Kind == KindConfirmation {
			return Valid()
		}
		return Invalid("no options configured")
	}
	for _, opt := range p.Options {
		if raw == opt {
			return Valid()
		}
	}
	return Invalid(fmt.Sprintf("%q is not one of: %s", raw, strings.Join(p.Options, ", ")))
}

// validateMultiChoice splits on commas, trims each token and requires every
// token to match an option. All invalid tokens are reported.
func (p *Prompt) validateMultiChoice(raw string) ValidationResult {
	allowed := make(map[string]bool, len(p.Options))
	for _, opt := range p.Options {
		allowed[opt] = true
	}

	var invalid []string
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if !allowed[token] {
			invalid = append(invalid, fmt.Sprintf("%q is not one of: %s", token, strings.Join(p.Options, ", ")))
		}
	}
	if len(invalid) > 0 {
		return Invalid(invalid...)
	}
	return Valid()
}

// validateInput rejects empty input unless a default is configured. A custom
// validator takes precedence over the default rule.
func (p *Prompt) validateInput(raw string) ValidationResult {
	if p.Validator != nil {
		if p.Validator(raw) {
			return Valid()
		}
		return Invalid("input rejected by validator")
	}
	if raw == "" && p.Default == "" {
		return Invalid("input must not be empty")
	}
	return Valid()
}

// Format renders the prompt for display: the message plus a numbered option
// list for choices, the default value for input prompts and a timeout hint
// when one is configured.
func (p *Prompt) Format() string {
	var b strings.Builder
	b.WriteString(p.Message)

	if len(p.Options) > 0 && p.Kind != KindInput {
		for i, opt := range p.Options {
			b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, opt))
		}
	}
	if p.Kind == KindInput && p.Default != "" {
		b.WriteString(fmt.Sprintf("\n  (default: %s)", p.Default))
	}
	if p.Timeout > 0 {
		b.WriteString(fmt.Sprintf("\n  (respond within %s)", p.Timeout))
	}
	return b.String()
}

// NeedsInput is the error a worker returns to interrupt execution and ask the
// user a question. The orchestrator parks the plan in its waiting state and
// re-executes the step once a valid response resolves the prompt.
type NeedsInput struct {
	Prompt *Prompt
}

// Error implements the error interface.
func (e *NeedsInput) Error() string {
	return fmt.Sprintf("user input required: %s", e.Prompt.Message)
}
