package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentplan/core"
	"github.com/hupe1980/agentplan/graph"
)

func TestBuildSteps_SingleAgent(t *testing.T) {
	steps := buildSteps(pipelineAnalysis("scanner"), "scan it")
	require.Len(t, steps, 1)
	assert.Equal(t, "step-1", steps[0].ID)
	assert.Equal(t, "scanner", steps[0].AgentType)
	assert.Empty(t, steps[0].DependsOn)
	assert.Equal(t, core.StepPending, steps[0].Status)
}

func TestBuildSteps_TwoAgentsChain(t *testing.T) {
	steps := buildSteps(pipelineAnalysis("scanner", "reporter"), "scan it")
	require.Len(t, steps, 2)
	assert.Empty(t, steps[0].DependsOn)
	assert.Equal(t, []string{"step-1"}, steps[1].DependsOn)
}

func TestBuildSteps_FanOutFanIn(t *testing.T) {
	steps := buildSteps(pipelineAnalysis("scanner", "detector", "quality", "reporter"), "scan it")
	require.Len(t, steps, 4)

	assert.Empty(t, steps[0].DependsOn)
	assert.Equal(t, []string{"step-1"}, steps[1].DependsOn)
	assert.Equal(t, []string{"step-1"}, steps[2].DependsOn)
	assert.Equal(t, []string{"step-2", "step-3"}, steps[3].DependsOn)

	g, err := graph.New(steps)
	require.NoError(t, err)
	batches, err := g.Batches()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"step-1"}, {"step-2", "step-3"}, {"step-4"}}, batches)
}

func TestBuildSteps_EmptyAgentsFallsBack(t *testing.T) {
	steps := buildSteps(core.Analysis{TaskType: "general"}, "whatever")
	require.Len(t, steps, 1)
	assert.Equal(t, "general", steps[0].AgentType)
}
