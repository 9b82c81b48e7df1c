package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExecutionPlan(t *testing.T) {
	p := NewExecutionPlan("scan my project")

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, PlanCreated, p.GetStatus())
	assert.Equal(t, "scan my project", p.Request)
	assert.False(t, p.Created.IsZero())
}

func TestExecutionPlan_DistinctIDs(t *testing.T) {
	a := NewExecutionPlan("one")
	b := NewExecutionPlan("two")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestExecutionPlan_UpdateStep(t *testing.T) {
	p := NewExecutionPlan("req")
	p.SetSteps([]*PlanStep{
		{ID: "s1", Title: "Scan", AgentType: "scanner", Status: StepPending},
		{ID: "s2", Title: "Report", AgentType: "reporter", Status: StepPending, DependsOn: []string{"s1"}},
	})

	ok := p.UpdateStep("s1", func(s *PlanStep) {
		s.Status = StepSucceeded
		s.Output = "42 files"
	})
	require.True(t, ok)

	s1, found := p.Step("s1")
	require.True(t, found)
	assert.Equal(t, StepSucceeded, s1.Status)
	assert.Equal(t, "42 files", s1.Output)

	assert.False(t, p.UpdateStep("missing", func(*PlanStep) {}))
}

func TestExecutionPlan_Progress(t *testing.T) {
	p := NewExecutionPlan("req")
	p.SetSteps([]*PlanStep{
		{ID: "s1", Status: StepSucceeded},
		{ID: "s2", Status: StepFailed},
		{ID: "s3", Status: StepRunning},
		{ID: "s4", Status: StepPending},
	})
	p.SetStatus(PlanRunning)

	prog := p.Progress()
	assert.Equal(t, 2, prog.Completed)
	assert.Equal(t, 4, prog.Total)
	assert.False(t, prog.Terminal)
	assert.False(t, prog.Succeeded)

	p.SetStatus(PlanCompleted)
	prog = p.Progress()
	assert.True(t, prog.Terminal)
	assert.True(t, prog.Succeeded)
}

func TestExecutionPlan_SucceededIDs(t *testing.T) {
	p := NewExecutionPlan("req")
	p.SetSteps([]*PlanStep{
		{ID: "s1", Status: StepSucceeded},
		{ID: "s2", Status: StepSkipped},
		{ID: "s3", Status: StepPending},
	})

	ids := p.SucceededIDs()
	assert.Equal(t, map[string]bool{"s1": true}, ids)
}

func TestExecutionPlan_CloneIsolation(t *testing.T) {
	p := NewExecutionPlan("req")
	p.SetSteps([]*PlanStep{{ID: "s1", Status: StepPending, DependsOn: []string{}}})

	clone := p.Clone()
	clone.Steps[0].Status = StepFailed
	clone.Status = PlanFailed

	s1, _ := p.Step("s1")
	assert.Equal(t, StepPending, s1.Status)
	assert.Equal(t, PlanCreated, p.GetStatus())
}

func TestExecutionPlan_JSONRoundTrip(t *testing.T) {
	p := NewExecutionPlan("req")
	p.SetAnalysis(Analysis{
		TaskType:       "code_scan",
		RequiredAgents: []string{"scanner"},
		Complexity:     ComplexityLow,
		EstimatedSteps: 1,
		Confidence:     0.9,
	})
	p.SetSteps([]*PlanStep{{ID: "s1", Title: "Scan", AgentType: "scanner", Status: StepSucceeded}})
	p.SetStatus(PlanCompleted)

	data, err := json.Marshal(p.Clone())
	require.NoError(t, err)

	var restored ExecutionPlan
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, p.ID, restored.ID)
	assert.Equal(t, PlanCompleted, restored.Status)
	require.Len(t, restored.Steps, 1)
	assert.Equal(t, StepSucceeded, restored.Steps[0].Status)
	assert.Equal(t, "code_scan", restored.Analysis.TaskType)
}

func TestPlanStatus_Terminal(t *testing.T) {
	assert.True(t, PlanCompleted.Terminal())
	assert.True(t, PlanFailed.Terminal())
	assert.True(t, PlanCancelled.Terminal())
	assert.False(t, PlanRunning.Terminal())
	assert.False(t, PlanPaused.Terminal())
	assert.False(t, PlanWaitingInput.Terminal())
}
