package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentplan/core"
	"github.com/hupe1980/agentplan/internal/testutil"
)

// Interface compliance (compile-time assertion)
var _ core.PlanStore = (*Store)(nil)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plans.db")
	s, err := New(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func samplePlan() *core.ExecutionPlan {
	return testutil.NewPlanBuilder("scan my project").
		Analysis(core.Analysis{
			TaskType:       "code_scan",
			RequiredAgents: []string{"scanner", "reporter"},
			Complexity:     core.ComplexityMedium,
			EstimatedSteps: 2,
			Confidence:     0.8,
		}).
		Step("s1", "Scan", "scanner").Succeeded("12 files").
		StepAfter("s2", "Report", "reporter", "s1").
		Status(core.PlanPaused).
		Build()
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	p := samplePlan()

	require.NoError(t, s.Save(p))

	loaded, err := s.Load(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, loaded.ID)
	assert.Equal(t, core.PlanPaused, loaded.GetStatus())
	assert.Equal(t, "code_scan", loaded.Analysis.TaskType)

	s1, ok := loaded.Step("s1")
	require.True(t, ok)
	assert.Equal(t, core.StepSucceeded, s1.Status)
	assert.Equal(t, "12 files", s1.Output)
}

func TestStore_SurvivesRestart(t *testing.T) {
	s, path := newTestStore(t)
	p := samplePlan()
	require.NoError(t, s.Save(p))
	require.NoError(t, s.Close())

	// A fresh store over the same file simulates a process restart.
	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, loaded.ID)
	assert.Equal(t, core.PlanPaused, loaded.GetStatus())
	s2, ok := loaded.Step("s2")
	require.True(t, ok)
	assert.Equal(t, core.StepPending, s2.Status)
	assert.Equal(t, []string{"s1"}, s2.DependsOn)
}

func TestStore_SaveOverwrites(t *testing.T) {
	s, _ := newTestStore(t)
	p := samplePlan()
	require.NoError(t, s.Save(p))

	p.SetStatus(core.PlanCompleted)
	p.UpdateStep("s2", func(st *core.PlanStep) { st.Status = core.StepSucceeded })
	require.NoError(t, s.Save(p))

	loaded, err := s.Load(p.ID)
	require.NoError(t, err)
	assert.Equal(t, core.PlanCompleted, loaded.GetStatus())
	s2, _ := loaded.Step("s2")
	assert.Equal(t, core.StepSucceeded, s2.Status)
}

func TestStore_ListAndDelete(t *testing.T) {
	s, _ := newTestStore(t)
	p1 := samplePlan()
	p2 := samplePlan()
	require.NoError(t, s.Save(p1))
	require.NoError(t, s.Save(p2))

	plans, err := s.List()
	require.NoError(t, err)
	assert.Len(t, plans, 2)

	require.NoError(t, s.Delete(p1.ID))
	_, err = s.Load(p1.ID)
	assert.ErrorIs(t, err, core.ErrPlanNotFound)
	assert.ErrorIs(t, s.Delete(p1.ID), core.ErrPlanNotFound)
}

func TestStore_LoadMissing(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Load("ghost")
	assert.ErrorIs(t, err, core.ErrPlanNotFound)
}
