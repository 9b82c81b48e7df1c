package model

import (
	"context"
	"fmt"
)

// Message is one turn of conversational context supplied to a model.
// Role is "user" or "assistant"; system instructions travel separately on the
// request.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Request captures the normalized model input produced by the analyzer and
// model-backed workers.
type Request struct {
	// System carries the instructions framing the completion.
	System string `json:"system,omitempty"`
	// Messages is the ordered conversation history ending with the current
	// user message.
	Messages []Message `json:"messages"`
	// Temperature overrides the adapter default when > 0.
	Temperature float64 `json:"temperature,omitempty"`
	// MaxTokens overrides the adapter default when > 0.
	MaxTokens int64 `json:"max_tokens,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the completed model output. Content is an opaque structured
// text blob; callers parse it leniently and must never let parse failures
// propagate as crashes.
type Response struct {
	Content      string      `json:"content"`
	FinishReason string      `json:"finish_reason,omitempty"`
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "local", etc.
}

// Model is the minimal interface required to drive request classification
// and model-backed workers.
type Model interface {
	// Complete performs one blocking completion call.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
type MockModel struct {
	info      Info
	responses map[string]string
	err       error
}

// NewMockModel constructs a MockModel.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

// FailWith makes every subsequent Complete call return err.
func (m *MockModel) FailWith(err error) { m.err = err }

// Complete implements Model; it matches the last user message against the
// registered canned responses.
func (m *MockModel) Complete(_ context.Context, req Request) (*Response, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}
	input := req.Messages[len(req.Messages)-1].Text
	full := m.responses[input]
	if full == "" {
		full = fmt.Sprintf("Mock response to: %s", input)
	}
	return &Response{
		Content:      full,
		FinishReason: "stop",
		Usage:        &TokenUsage{PromptTokens: len(input), CompletionTokens: len(full), TotalTokens: len(input) + len(full)},
	}, nil
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
