// Package agentplan provides a high-level façade over the plan orchestration
// core (analysis, dependency graphs, batched worker execution, user
// interaction & persistence). Most applications interact with this package
// by:
//  1. Creating an AgentPlan via New() (optionally overriding the model, store and logger)
//  2. Registering one or more workers for the agent types the analyzer emits
//  3. Processing requests synchronously (Process) while steering active plans
//     through Pause/Resume/Cancel/HandleUserInput
//
// The façade delegates execution to orchestrator.Orchestrator while keeping
// setup and usage ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply a real
// model, a durable store implementation and a structured logger.
package agentplan

import (
	"context"

	"github.com/hupe1980/agentplan/analyzer"
	"github.com/hupe1980/agentplan/core"
	"github.com/hupe1980/agentplan/interaction"
	"github.com/hupe1980/agentplan/logging"
	"github.com/hupe1980/agentplan/model"
	"github.com/hupe1980/agentplan/orchestrator"
	"github.com/hupe1980/agentplan/store"
)

// Options configures the AgentPlan instance.
type Options struct {
	// Config tunes orchestration (concurrency, failure policy, timeouts).
	Config orchestrator.Config

	// Model classifies requests and backs model workers. Defaults to a mock
	// model suitable for local development.
	Model model.Model

	// Store persists plan snapshots (defaults to an in-memory implementation
	// if not provided).
	Store core.PlanStore

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// AgentPlan is the high-level façade aggregating the analyzer, the worker
// registry and the orchestrator.
type AgentPlan struct {
	opts Options
	orch *orchestrator.Orchestrator
}

// New creates a new AgentPlan instance with optional overrides. Any unset
// collaborator is initialized with a local default.
func New(optFns ...func(o *Options)) *AgentPlan {
	opts := Options{
		Config: orchestrator.DefaultConfig(),
		Model:  model.NewMockModel("mock", "local"),
		Store:  store.NewInMemoryStore(),
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	a := analyzer.New(opts.Model, func(o *analyzer.Options) {
		o.Logger = opts.Logger
	})

	orch := orchestrator.New(a, func(o *orchestrator.Options) {
		o.Config = opts.Config
		o.Store = opts.Store
		o.Logger = opts.Logger
	})

	return &AgentPlan{opts: opts, orch: orch}
}

// RegisterWorker adds a worker to the underlying registry.
func (p *AgentPlan) RegisterWorker(w core.Worker) { p.orch.RegisterWorker(w) }

// Process turns a request into a plan and drives it to a terminal state.
// Notifications are delivered synchronously to notify (which may be nil).
func (p *AgentPlan) Process(ctx context.Context, request string, notify core.NotifyFunc) (*core.ExecutionPlan, error) {
	return p.orch.Process(ctx, request, notify)
}

// PausePlan requests a pause at the next batch boundary.
func (p *AgentPlan) PausePlan(planID string) error { return p.orch.PausePlan(planID) }

// ResumePlan resumes a paused plan.
func (p *AgentPlan) ResumePlan(planID string) error { return p.orch.ResumePlan(planID) }

// CancelPlan requests cooperative cancellation of an active plan.
func (p *AgentPlan) CancelPlan(planID string) error { return p.orch.CancelPlan(planID) }

// HandleUserInput delivers a response for the outstanding prompt of a
// waiting plan.
func (p *AgentPlan) HandleUserInput(planID, promptID, value string) (interaction.ValidationResult, error) {
	return p.orch.HandleUserInput(planID, promptID, value)
}

// ActivePlans returns the ids of currently executing plans.
func (p *AgentPlan) ActivePlans() []string { return p.orch.ActivePlans() }

// PlanProgress reports progress for an active or stored plan.
func (p *AgentPlan) PlanProgress(planID string) (core.Progress, error) {
	return p.orch.PlanProgress(planID)
}

// ResumeStored loads a non-terminal plan from the store and drives it to a
// terminal state.
func (p *AgentPlan) ResumeStored(ctx context.Context, planID string, notify core.NotifyFunc) (*core.ExecutionPlan, error) {
	return p.orch.ResumeStored(ctx, planID, notify)
}
