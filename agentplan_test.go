package agentplan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentplan/core"
	"github.com/hupe1980/agentplan/model"
	"github.com/hupe1980/agentplan/store"
	"github.com/hupe1980/agentplan/worker"
)

func TestAgentPlan_ProcessWithDefaults(t *testing.T) {
	p := New()
	p.RegisterWorker(worker.NewFunc("general", func(_ context.Context, _ *core.PlanStep, _ *core.ExecutionContext) (*core.StepResult, error) {
		return &core.StepResult{Output: "done"}, nil
	}))

	// The default mock model returns prose, so classification degrades to
	// the conservative single-step fallback.
	plan, err := p.Process(context.Background(), "please do the general thing for me", nil)
	require.NoError(t, err)
	assert.Equal(t, core.PlanCompleted, plan.GetStatus())
	assert.Equal(t, "general", plan.Analysis.TaskType)
}

func TestAgentPlan_ClassifiedPipeline(t *testing.T) {
	m := model.NewMockModel("mock", "local")
	m.AddResponse("scan my project and write a report", `{
		"task_type": "code_scan",
		"required_agents": ["scanner", "reporter"],
		"complexity": "medium",
		"estimated_steps": 2,
		"requires_user_input": false,
		"confidence": 0.9
	}`)

	planStore := store.NewInMemoryStore()
	p := New(func(o *Options) {
		o.Model = m
		o.Store = planStore
	})
	p.RegisterWorker(worker.NewFunc("scanner", func(_ context.Context, _ *core.PlanStep, _ *core.ExecutionContext) (*core.StepResult, error) {
		return &core.StepResult{Output: "scanned"}, nil
	}))
	p.RegisterWorker(worker.NewFunc("reporter", func(_ context.Context, _ *core.PlanStep, execCtx *core.ExecutionContext) (*core.StepResult, error) {
		return &core.StepResult{Output: "report from " + execCtx.Outputs["step-1"]}, nil
	}))

	var kinds []core.NotificationKind
	plan, err := p.Process(context.Background(), "scan my project and write a report", func(n core.Notification) {
		kinds = append(kinds, n.Kind)
	})
	require.NoError(t, err)
	assert.Equal(t, core.PlanCompleted, plan.GetStatus())

	s2, ok := plan.Step("step-2")
	require.True(t, ok)
	assert.Equal(t, "report from scanned", s2.Output)

	require.NotEmpty(t, kinds)
	assert.Equal(t, core.NotifyPlanningComplete, kinds[0])
	assert.Equal(t, core.NotifyPlanComplete, kinds[len(kinds)-1])

	stored, err := planStore.Load(plan.ID)
	require.NoError(t, err)
	assert.Equal(t, core.PlanCompleted, stored.GetStatus())

	progress, err := p.PlanProgress(plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, progress.Completed)
	assert.True(t, progress.Succeeded)
}

func TestAgentPlan_LifecycleErrorsForUnknownPlan(t *testing.T) {
	p := New()
	assert.Error(t, p.PausePlan("ghost"))
	assert.Error(t, p.ResumePlan("ghost"))
	assert.Error(t, p.CancelPlan("ghost"))
	_, err := p.HandleUserInput("ghost", "prompt", "yes")
	assert.Error(t, err)
	assert.Empty(t, p.ActivePlans())
}
