package worker

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hupe1980/agentplan/core"
	"github.com/hupe1980/agentplan/logging"
	"github.com/hupe1980/agentplan/model"
)

// ModelWorkerOptions configures a ModelWorker.
type ModelWorkerOptions struct {
	// SystemPrompt frames every completion. When empty a generic prompt
	// derived from the agent type is used.
	SystemPrompt string
	// Temperature is passed through to the model when > 0.
	Temperature float64
	// MaxTokens caps the completion when > 0.
	MaxTokens int64
	// Logger receives model call telemetry. Defaults to NoOpLogger.
	Logger logging.Logger
}

// ModelWorker executes plan steps by delegating to a language model. The
// step description becomes the user message, enriched with the original
// request and the outputs of completed dependency steps so later steps can
// build on earlier results.
type ModelWorker struct {
	agentType string
	model     model.Model
	opts      ModelWorkerOptions
}

// NewModelWorker constructs a model-backed worker for the given agent type.
func NewModelWorker(agentType string, m model.Model, optFns ...func(o *ModelWorkerOptions)) *ModelWorker {
	opts := ModelWorkerOptions{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = fmt.Sprintf("You are a %s agent executing one step of a larger plan. Complete the step and reply with the result only.", agentType)
	}
	return &ModelWorker{agentType: agentType, model: m, opts: opts}
}

// AgentType implements core.Worker.
func (w *ModelWorker) AgentType() string { return w.agentType }

// Execute implements core.Worker.
func (w *ModelWorker) Execute(ctx context.Context, step *core.PlanStep, execCtx *core.ExecutionContext) (*core.StepResult, error) {
	req := model.Request{
		System:      w.opts.SystemPrompt,
		Messages:    []model.Message{{Role: "user", Text: w.buildPrompt(step, execCtx)}},
		Temperature: w.opts.Temperature,
		MaxTokens:   w.opts.MaxTokens,
	}

	start := time.Now()
	resp, err := w.model.Complete(ctx, req)

	tokens := 0
	if resp != nil && resp.Usage != nil {
		tokens = resp.Usage.TotalTokens
	}
	if pl, ok := w.opts.Logger.(*logging.PlanLogger); ok {
		pl.LogModelCall(w.model.Info().Name, tokens, time.Since(start), err == nil, err)
	}
	if err != nil {
		return nil, fmt.Errorf("model completion for step %s: %w", step.ID, err)
	}

	return &core.StepResult{
		Output: resp.Content,
		Metadata: map[string]string{
			"model":    w.model.Info().Name,
			"provider": w.model.Info().Provider,
		},
	}, nil
}

func (w *ModelWorker) buildPrompt(step *core.PlanStep, execCtx *core.ExecutionContext) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Original request: %s\n\n", execCtx.Request)
	fmt.Fprintf(&sb, "Current step: %s", step.Title)
	if step.Description != "" {
		fmt.Fprintf(&sb, "\n%s", step.Description)
	}

	if len(step.DependsOn) > 0 && len(execCtx.Outputs) > 0 {
		deps := append([]string(nil), step.DependsOn...)
		sort.Strings(deps)
		var wrote bool
		for _, dep := range deps {
			out, ok := execCtx.Outputs[dep]
			if !ok || out == "" {
				continue
			}
			if !wrote {
				sb.WriteString("\n\nResults from earlier steps:")
				wrote = true
			}
			fmt.Fprintf(&sb, "\n- %s: %s", dep, out)
		}
	}

	if len(execCtx.Inputs) > 0 {
		keys := make([]string, 0, len(execCtx.Inputs))
		for k := range execCtx.Inputs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString("\n\nUser clarifications:")
		for _, k := range keys {
			fmt.Fprintf(&sb, "\n- %s", execCtx.Inputs[k])
		}
	}

	return sb.String()
}
