package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/agentplan/core"
	"github.com/hupe1980/agentplan/graph"
	"github.com/hupe1980/agentplan/interaction"
	"github.com/hupe1980/agentplan/logging"
	"github.com/hupe1980/agentplan/model"
	"github.com/hupe1980/agentplan/store"
	"github.com/hupe1980/agentplan/worker"
)

// Analyzer classifies a request into an Analysis. Satisfied by
// analyzer.Analyzer; kept as an interface so tests can inject deterministic
// classifications.
type Analyzer interface {
	Analyze(ctx context.Context, request string, history []model.Message) core.Analysis
}

// Options configures an Orchestrator instance.
type Options struct {
	// Config tunes batching, timeouts and the failure policy.
	Config Config
	// Workers is the registry consulted per step agent type. A fresh empty
	// registry is used when nil.
	Workers *worker.Registry
	// Store persists plan snapshots. Defaults to an in-memory store.
	Store core.PlanStore
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Orchestrator turns user requests into execution plans and drives them to a
// terminal state. Safe for concurrent use; each Process call owns exactly one
// plan.
type Orchestrator struct {
	analyzer  Analyzer
	workers   *worker.Registry
	planStore core.PlanStore
	logger    logging.Logger
	cfg       Config

	mu     sync.RWMutex
	active map[string]*planState
}

// New creates an Orchestrator.
func New(a Analyzer, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Config: DefaultConfig(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Workers == nil {
		opts.Workers = worker.NewRegistry()
	}
	if opts.Store == nil {
		opts.Store = store.NewInMemoryStore()
	}
	if opts.Config.MaxConcurrentSteps < 1 {
		opts.Config.MaxConcurrentSteps = DefaultConfig().MaxConcurrentSteps
	}
	if !opts.Config.FailurePolicy.Valid() {
		opts.Config.FailurePolicy = DefaultConfig().FailurePolicy
	}
	return &Orchestrator{
		analyzer:  a,
		workers:   opts.Workers,
		planStore: opts.Store,
		logger:    opts.Logger,
		cfg:       opts.Config,
		active:    make(map[string]*planState),
	}
}

// RegisterWorker adds a worker to the registry.
func (o *Orchestrator) RegisterWorker(w core.Worker) {
	o.workers.Register(w)
}

// planState is the in-flight coordination record for one active plan. The
// driver goroutine owns the plan; lifecycle calls communicate through the
// channels and the mutex-guarded flags.
type planState struct {
	plan    *core.ExecutionPlan
	history *interaction.History
	notify  core.NotifyFunc

	mu            sync.Mutex
	paused        bool
	pendingPrompt *interaction.Prompt
	inputs        map[string]string

	resumeCh   chan struct{}
	inputCh    chan string
	cancelCh   chan struct{}
	cancelOnce sync.Once
}

func newPlanState(plan *core.ExecutionPlan, notify core.NotifyFunc) *planState {
	if notify == nil {
		notify = func(core.Notification) {}
	}
	return &planState{
		plan:     plan,
		history:  interaction.NewHistory(plan.ID),
		notify:   notify,
		inputs:   make(map[string]string),
		resumeCh: make(chan struct{}, 1),
		inputCh:  make(chan string, 1),
		cancelCh: make(chan struct{}),
	}
}

func (st *planState) cancel() {
	st.cancelOnce.Do(func() { close(st.cancelCh) })
}

// Process runs the full lifecycle for one request: analyze, plan, execute,
// finalize. It blocks until the plan reaches a terminal status and returns
// the plan alongside an error for failed or cancelled outcomes. Notifications
// are delivered synchronously to notify (which may be nil).
func (o *Orchestrator) Process(ctx context.Context, request string, notify core.NotifyFunc) (*core.ExecutionPlan, error) {
	plan := core.NewExecutionPlan(request)
	st := newPlanState(plan, notify)

	o.mu.Lock()
	o.active[plan.ID] = st
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		delete(o.active, plan.ID)
		o.mu.Unlock()
	}()

	o.logger.Info("processing request", "plan_id", plan.ID)

	plan.SetStatus(core.PlanAnalyzing)
	o.persist(st)

	analysis := o.analyzer.Analyze(ctx, request, nil)
	plan.SetAnalysis(analysis)

	plan.SetStatus(core.PlanPlanning)
	steps := buildSteps(analysis, request)
	plan.SetSteps(steps)

	g, err := graph.New(steps)
	if err != nil {
		return o.failPlan(st, fmt.Errorf("build dependency graph: %w", err))
	}
	batches, err := g.Batches()
	if err != nil {
		return o.failPlan(st, fmt.Errorf("order plan steps: %w", err))
	}
	o.persist(st)

	progress := plan.Progress()
	st.notify(core.Notification{
		Kind:      core.NotifyPlanningComplete,
		PlanID:    plan.ID,
		Content:   fmt.Sprintf("%d steps in %d batches", len(steps), len(batches)),
		Completed: progress.Completed,
		Total:     progress.Total,
	})

	if analysis.RequiresUserInput {
		prompt := interaction.NewPrompt(interaction.KindInput,
			"Your request needs clarification before execution. Please add detail.")
		value, err := o.awaitInput(ctx, st, prompt)
		if err != nil {
			return o.terminate(st, err)
		}
		st.mu.Lock()
		st.inputs[prompt.ID] = value
		st.mu.Unlock()
	}

	execCtx := &core.ExecutionContext{
		PlanID:     plan.ID,
		Request:    request,
		Parameters: analysis.Parameters,
		Outputs:    make(map[string]string),
		Inputs:     st.inputs,
	}

	plan.SetStatus(core.PlanRunning)
	o.persist(st)

	if err := o.drive(ctx, st, g, batches, execCtx); err != nil {
		return o.terminate(st, err)
	}
	return o.finalize(st)
}

// drive dispatches the batches in order, observing pause and cancel requests
// at batch boundaries and parking on user prompts raised by workers.
func (o *Orchestrator) drive(ctx context.Context, st *planState, g *graph.DependencyGraph, batches [][]string, execCtx *core.ExecutionContext) error {
	plan := st.plan

	for _, batch := range batches {
		if err := o.gate(ctx, st); err != nil {
			return err
		}

		for {
			ids := o.runnable(plan, g, batch)
			if len(ids) == 0 {
				break
			}

			outcomes := o.runBatch(ctx, st, ids, execCtx)
			o.persist(st)

			var prompts []*interaction.Prompt
			for _, out := range outcomes {
				var needs *interaction.NeedsInput
				if errors.As(out.err, &needs) {
					prompts = append(prompts, needs.Prompt)
					continue
				}
				if out.err == nil && out.result != nil {
					execCtx.Outputs[out.id] = out.result.Output
				}
			}

			if o.cfg.FailurePolicy == FailureSkipDependents {
				o.skipDependents(st, g, outcomes)
			}

			if o.cfg.FailurePolicy == FailureHalt {
				for _, out := range outcomes {
					if out.err != nil && !isNeedsInput(out.err) {
						o.skipPending(st)
						return nil
					}
				}
			}

			if len(prompts) == 0 {
				break
			}

			// Re-run the batch for the parked steps once every raised prompt
			// has a validated answer.
			for _, prompt := range prompts {
				value, err := o.awaitInput(ctx, st, prompt)
				if err != nil {
					return err
				}
				st.mu.Lock()
				st.inputs[prompt.ID] = value
				st.mu.Unlock()
			}
			plan.SetStatus(core.PlanRunning)
			o.persist(st)
		}
	}

	return nil
}

// gate is the batch-boundary checkpoint for cancellation and pause requests.
func (o *Orchestrator) gate(ctx context.Context, st *planState) error {
	select {
	case <-st.cancelCh:
		return errCancelled
	case <-ctx.Done():
		return errCancelled
	default:
	}

	st.mu.Lock()
	paused := st.paused
	st.mu.Unlock()
	if !paused {
		return nil
	}

	st.plan.SetStatus(core.PlanPaused)
	o.persist(st)
	o.logger.Info("plan paused", "plan_id", st.plan.ID)

	for {
		select {
		case <-st.resumeCh:
			st.mu.Lock()
			paused := st.paused
			st.mu.Unlock()
			if paused {
				// Stale wakeup from an earlier pause/resume round.
				continue
			}
			st.plan.SetStatus(core.PlanRunning)
			o.persist(st)
			o.logger.Info("plan resumed", "plan_id", st.plan.ID)
			return nil
		case <-st.cancelCh:
			return errCancelled
		case <-ctx.Done():
			return errCancelled
		}
	}
}

// runnable filters a batch down to pending steps whose dependencies are
// settled under the configured failure policy.
func (o *Orchestrator) runnable(plan *core.ExecutionPlan, g *graph.DependencyGraph, batch []string) []string {
	settled := plan.SucceededIDs()
	if o.cfg.FailurePolicy == FailureContinue {
		settled = terminalIDs(plan)
	}

	var ids []string
	for _, id := range batch {
		step, ok := plan.Step(id)
		if !ok || step.Status != core.StepPending {
			continue
		}
		if g.CanExecute(id, settled) {
			ids = append(ids, id)
		}
	}
	return ids
}

func terminalIDs(plan *core.ExecutionPlan) map[string]bool {
	ids := make(map[string]bool)
	for _, s := range plan.Clone().Steps {
		if s.Status.Terminal() {
			ids[s.ID] = true
		}
	}
	return ids
}

type stepOutcome struct {
	id     string
	result *core.StepResult
	err    error
}

// runBatch executes the given steps in parallel, bounded by
// MaxConcurrentSteps, and blocks until every one finished.
func (o *Orchestrator) runBatch(ctx context.Context, st *planState, ids []string, execCtx *core.ExecutionContext) []stepOutcome {
	sem := make(chan struct{}, o.cfg.MaxConcurrentSteps)
	outcomes := make([]stepOutcome, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[i] = o.runStep(ctx, st, id, execCtx)
		}(i, id)
	}
	wg.Wait()

	return outcomes
}

// runStep executes a single step on its registered worker and records the
// result on the plan.
func (o *Orchestrator) runStep(ctx context.Context, st *planState, id string, execCtx *core.ExecutionContext) stepOutcome {
	plan := st.plan
	step, _ := plan.Step(id)

	w, ok := o.workers.Get(step.AgentType)
	if !ok {
		err := fmt.Errorf("no worker registered for agent type %q", step.AgentType)
		o.recordFailure(st, id, err)
		return stepOutcome{id: id, err: err}
	}

	start := time.Now().UTC()
	plan.UpdateStep(id, func(s *core.PlanStep) {
		s.Status = core.StepRunning
		s.StartedAt = &start
	})

	stepCtx := ctx
	if o.cfg.StepTimeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, o.cfg.StepTimeout)
		defer cancel()
	}

	result, err := w.Execute(stepCtx, step, execCtx)
	dur := time.Since(start)

	var needs *interaction.NeedsInput
	switch {
	case errors.As(err, &needs):
		// The step never ran to completion; it stays pending and is retried
		// once the prompt resolves.
		plan.UpdateStep(id, func(s *core.PlanStep) {
			s.Status = core.StepPending
			s.StartedAt = nil
		})
		o.logger.Info("step requires user input", "plan_id", plan.ID, "step_id", id)
		return stepOutcome{id: id, err: err}
	case err != nil:
		o.recordFailure(st, id, err)
		o.logger.Error("step failed", "plan_id", plan.ID, "step_id", id, "duration", dur, "error", err)
		return stepOutcome{id: id, err: err}
	default:
		now := time.Now().UTC()
		plan.UpdateStep(id, func(s *core.PlanStep) {
			s.Status = core.StepSucceeded
			s.Output = result.Output
			s.CompletedAt = &now
		})
		progress := plan.Progress()
		st.notify(core.Notification{
			Kind:      core.NotifyStepComplete,
			PlanID:    plan.ID,
			StepID:    id,
			StepTitle: step.Title,
			Content:   result.Output,
			Completed: progress.Completed,
			Total:     progress.Total,
		})
		o.logger.Info("step succeeded", "plan_id", plan.ID, "step_id", id, "duration", dur)
		return stepOutcome{id: id, result: result}
	}
}

func (o *Orchestrator) recordFailure(st *planState, id string, err error) {
	plan := st.plan
	now := time.Now().UTC()
	var title string
	if step, ok := plan.Step(id); ok {
		title = step.Title
	}
	plan.UpdateStep(id, func(s *core.PlanStep) {
		s.Status = core.StepFailed
		s.Error = err.Error()
		s.CompletedAt = &now
	})
	progress := plan.Progress()
	st.notify(core.Notification{
		Kind:      core.NotifyError,
		PlanID:    plan.ID,
		StepID:    id,
		StepTitle: title,
		Content:   err.Error(),
		Completed: progress.Completed,
		Total:     progress.Total,
	})
}

// skipDependents marks the transitive dependents of every newly failed step
// as skipped.
func (o *Orchestrator) skipDependents(st *planState, g *graph.DependencyGraph, outcomes []stepOutcome) {
	plan := st.plan
	var frontier []string
	for _, out := range outcomes {
		if out.err != nil && !isNeedsInput(out.err) {
			frontier = append(frontier, out.id)
		}
	}

	seen := make(map[string]bool)
	for len(frontier) > 0 {
		id := frontier[0]
		frontier = frontier[1:]
		for _, dep := range g.Dependents(id) {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			plan.UpdateStep(dep, func(s *core.PlanStep) {
				if s.Status == core.StepPending {
					s.Status = core.StepSkipped
				}
			})
			frontier = append(frontier, dep)
		}
	}
}

// skipPending marks every still-pending step skipped.
func (o *Orchestrator) skipPending(st *planState) {
	for _, s := range st.plan.Clone().Steps {
		if s.Status == core.StepPending {
			st.plan.UpdateStep(s.ID, func(step *core.PlanStep) {
				step.Status = core.StepSkipped
			})
		}
	}
}

// awaitInput parks the plan on a prompt until a validated response, timeout
// or cancellation.
func (o *Orchestrator) awaitInput(ctx context.Context, st *planState, prompt *interaction.Prompt) (string, error) {
	plan := st.plan
	st.history.Add(prompt)

	// Drop a response that raced an earlier prompt's timeout.
	select {
	case <-st.inputCh:
	default:
	}

	st.mu.Lock()
	st.pendingPrompt = prompt
	st.mu.Unlock()

	plan.SetStatus(core.PlanWaitingInput)
	o.persist(st)

	progress := plan.Progress()
	st.notify(core.Notification{
		Kind:      core.NotifyInputRequired,
		PlanID:    plan.ID,
		Content:   prompt.Format(),
		Completed: progress.Completed,
		Total:     progress.Total,
	})
	o.logger.Info("awaiting user input", "plan_id", plan.ID, "prompt_id", prompt.ID)

	timeout := prompt.Timeout
	if timeout == 0 {
		timeout = o.cfg.PromptTimeout
	}
	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case value := <-st.inputCh:
		st.mu.Lock()
		st.pendingPrompt = nil
		st.mu.Unlock()
		return value, nil
	case <-timer:
		st.mu.Lock()
		st.pendingPrompt = nil
		st.mu.Unlock()
		return "", fmt.Errorf("prompt %s expired after %s: %w", prompt.ID, timeout, ErrPromptTimeout)
	case <-st.cancelCh:
		return "", errCancelled
	case <-ctx.Done():
		return "", errCancelled
	}
}

// finalize transitions a fully driven plan to completed or failed.
func (o *Orchestrator) finalize(st *planState) (*core.ExecutionPlan, error) {
	plan := st.plan
	o.skipPending(st)

	counts := plan.CountByStatus()
	failed := counts[core.StepFailed]
	succeeded := counts[core.StepSucceeded]
	total := 0
	for _, n := range counts {
		total += n
	}

	summary := fmt.Sprintf("%d of %d steps succeeded", succeeded, total)
	plan.SetSummary(summary)

	var err error
	if failed > 0 {
		plan.SetStatus(core.PlanFailed)
		err = fmt.Errorf("plan %s failed: %d steps failed", plan.ID, failed)
	} else {
		plan.SetStatus(core.PlanCompleted)
	}
	o.persist(st)

	progress := plan.Progress()
	st.notify(core.Notification{
		Kind:      core.NotifyPlanComplete,
		PlanID:    plan.ID,
		Content:   summary,
		Completed: progress.Completed,
		Total:     progress.Total,
	})
	o.logger.Info("plan finished", "plan_id", plan.ID, "status", plan.GetStatus(), "summary", summary)

	return plan, err
}

// terminate handles abnormal driver exits: cancellation and prompt timeouts.
func (o *Orchestrator) terminate(st *planState, cause error) (*core.ExecutionPlan, error) {
	plan := st.plan
	o.skipPending(st)

	if errors.Is(cause, errCancelled) {
		plan.SetStatus(core.PlanCancelled)
		plan.SetSummary("plan cancelled")
		o.persist(st)
		o.logger.Info("plan cancelled", "plan_id", plan.ID)
		st.notify(core.Notification{
			Kind:    core.NotifyPlanComplete,
			PlanID:  plan.ID,
			Content: "plan cancelled",
		})
		return plan, fmt.Errorf("plan %s cancelled", plan.ID)
	}
	return o.failPlan(st, cause)
}

// failPlan transitions the plan to failed with the given cause.
func (o *Orchestrator) failPlan(st *planState, cause error) (*core.ExecutionPlan, error) {
	plan := st.plan
	plan.SetSummary(cause.Error())
	plan.SetStatus(core.PlanFailed)
	o.persist(st)
	o.logger.Error("plan failed", "plan_id", plan.ID, "error", cause)
	st.notify(core.Notification{
		Kind:    core.NotifyError,
		PlanID:  plan.ID,
		Content: cause.Error(),
	})
	return plan, cause
}

// persist saves a plan snapshot. Persistence failures are surfaced as error
// notifications but never interrupt execution.
func (o *Orchestrator) persist(st *planState) {
	if err := o.planStore.Save(st.plan); err != nil {
		o.logger.Error("persist plan failed", "plan_id", st.plan.ID, "error", err)
		st.notify(core.Notification{
			Kind:    core.NotifyError,
			PlanID:  st.plan.ID,
			Content: fmt.Sprintf("persist plan: %v", err),
		})
	}
}

func isNeedsInput(err error) bool {
	var needs *interaction.NeedsInput
	return errors.As(err, &needs)
}
