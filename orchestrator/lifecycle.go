package orchestrator

import (
	"context"
	"fmt"
	"sort"

	"github.com/hupe1980/agentplan/core"
	"github.com/hupe1980/agentplan/graph"
	"github.com/hupe1980/agentplan/interaction"
)

// PausePlan requests a pause for an active plan. The pause takes effect at
// the next batch boundary; steps already dispatched run to completion.
func (o *Orchestrator) PausePlan(planID string) error {
	st, err := o.state(planID)
	if err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.paused {
		return fmt.Errorf("plan %s is already paused", planID)
	}
	st.paused = true
	return nil
}

// ResumePlan resumes a paused plan.
func (o *Orchestrator) ResumePlan(planID string) error {
	st, err := o.state(planID)
	if err != nil {
		return err
	}

	st.mu.Lock()
	if !st.paused {
		st.mu.Unlock()
		return fmt.Errorf("resume plan %s: %w", planID, ErrPlanNotPaused)
	}
	st.paused = false
	st.mu.Unlock()

	select {
	case st.resumeCh <- struct{}{}:
	default:
	}
	return nil
}

// CancelPlan requests cooperative cancellation of an active plan. The driver
// observes the request at the next batch boundary or prompt wait; results of
// steps already running are discarded with the plan. Idempotent.
func (o *Orchestrator) CancelPlan(planID string) error {
	st, err := o.state(planID)
	if err != nil {
		return err
	}
	st.cancel()
	return nil
}

// HandleUserInput delivers a response for the outstanding prompt of a waiting
// plan. Invalid input leaves the plan waiting and is reported both in the
// returned ValidationResult and as an input_invalid notification; the prompt
// stays open for another attempt.
func (o *Orchestrator) HandleUserInput(planID, promptID, value string) (interaction.ValidationResult, error) {
	st, err := o.state(planID)
	if err != nil {
		return interaction.ValidationResult{}, err
	}

	st.mu.Lock()
	prompt := st.pendingPrompt
	st.mu.Unlock()
	if prompt == nil || prompt.ID != promptID {
		return interaction.ValidationResult{}, fmt.Errorf("plan %s: %w", planID, ErrNoPendingPrompt)
	}

	result := prompt.Validate(value)
	if !result.Valid {
		st.notify(core.Notification{
			Kind:    core.NotifyInputInvalid,
			PlanID:  planID,
			Content: fmt.Sprintf("invalid response to prompt %s: %v", promptID, result.Errors),
		})
		return result, nil
	}

	if err := st.history.Resolve(promptID, value); err != nil {
		return interaction.ValidationResult{}, err
	}

	select {
	case st.inputCh <- value:
	default:
		return interaction.ValidationResult{}, fmt.Errorf("plan %s: response already delivered", planID)
	}
	return result, nil
}

// ActivePlans returns the sorted ids of currently executing plans.
func (o *Orchestrator) ActivePlans() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	ids := make([]string, 0, len(o.active))
	for id := range o.active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// PlanProgress reports progress for an active or stored plan.
func (o *Orchestrator) PlanProgress(planID string) (core.Progress, error) {
	o.mu.RLock()
	st, ok := o.active[planID]
	o.mu.RUnlock()
	if ok {
		return st.plan.Progress(), nil
	}

	plan, err := o.planStore.Load(planID)
	if err != nil {
		return core.Progress{}, err
	}
	return plan.Progress(), nil
}

// History returns the interaction history of an active plan.
func (o *Orchestrator) History(planID string) (*interaction.History, error) {
	st, err := o.state(planID)
	if err != nil {
		return nil, err
	}
	return st.history, nil
}

// ResumeStored loads a non-terminal plan from the store and drives it to a
// terminal state. Steps that were running when the snapshot was taken are
// re-executed; succeeded steps keep their recorded outputs. Prompts that were
// outstanding are raised again by the owning worker on re-execution.
func (o *Orchestrator) ResumeStored(ctx context.Context, planID string, notify core.NotifyFunc) (*core.ExecutionPlan, error) {
	plan, err := o.planStore.Load(planID)
	if err != nil {
		return nil, err
	}
	if plan.GetStatus().Terminal() {
		return plan, fmt.Errorf("resume plan %s: %w", planID, ErrPlanTerminal)
	}

	o.mu.Lock()
	if _, running := o.active[planID]; running {
		o.mu.Unlock()
		return plan, fmt.Errorf("plan %s is already active", planID)
	}
	st := newPlanState(plan, notify)
	o.active[planID] = st
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		delete(o.active, planID)
		o.mu.Unlock()
	}()

	o.logger.Info("resuming stored plan", "plan_id", planID, "status", plan.GetStatus())

	// Interrupted in-flight work starts over.
	for _, s := range plan.Clone().Steps {
		if s.Status == core.StepRunning {
			plan.UpdateStep(s.ID, func(step *core.PlanStep) {
				step.Status = core.StepPending
				step.StartedAt = nil
			})
		}
	}

	snapshot := plan.Clone()
	g, err := graph.New(snapshot.Steps)
	if err != nil {
		return o.failPlan(st, fmt.Errorf("rebuild dependency graph: %w", err))
	}
	batches, err := g.Batches()
	if err != nil {
		return o.failPlan(st, fmt.Errorf("order plan steps: %w", err))
	}

	execCtx := &core.ExecutionContext{
		PlanID:     plan.ID,
		Request:    plan.Request,
		Parameters: snapshot.Analysis.Parameters,
		Outputs:    make(map[string]string),
		Inputs:     st.inputs,
	}
	for _, s := range snapshot.Steps {
		if s.Status == core.StepSucceeded && s.Output != "" {
			execCtx.Outputs[s.ID] = s.Output
		}
	}

	plan.SetStatus(core.PlanRunning)
	o.persist(st)

	if err := o.drive(ctx, st, g, batches, execCtx); err != nil {
		return o.terminate(st, err)
	}
	return o.finalize(st)
}

func (o *Orchestrator) state(planID string) (*planState, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	st, ok := o.active[planID]
	if !ok {
		return nil, fmt.Errorf("plan %s: %w", planID, ErrPlanNotActive)
	}
	return st, nil
}
