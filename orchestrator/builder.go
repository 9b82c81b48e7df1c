package orchestrator

import (
	"fmt"
	"strings"

	"github.com/hupe1980/agentplan/core"
)

// buildSteps derives the plan's step list from the analysis. One step per
// required agent, wired into a simple pipeline shape:
//
//   - one agent: a single independent step
//   - two agents: a sequential chain
//   - three or more: the first step gates a parallel middle stage whose
//     results feed the final step
func buildSteps(analysis core.Analysis, request string) []*core.PlanStep {
	agents := analysis.RequiredAgents
	if len(agents) == 0 {
		agents = []string{"general"}
	}

	steps := make([]*core.PlanStep, len(agents))
	for i, agent := range agents {
		steps[i] = &core.PlanStep{
			ID:          fmt.Sprintf("step-%d", i+1),
			Title:       stepTitle(agent),
			Description: fmt.Sprintf("%s work for: %s", agent, request),
			AgentType:   agent,
			Status:      core.StepPending,
		}
	}

	switch n := len(steps); {
	case n <= 1:
	case n == 2:
		steps[1].DependsOn = []string{steps[0].ID}
	default:
		for i := 1; i < n-1; i++ {
			steps[i].DependsOn = []string{steps[0].ID}
		}
		for i := 1; i < n-1; i++ {
			steps[n-1].DependsOn = append(steps[n-1].DependsOn, steps[i].ID)
		}
	}

	return steps
}

func stepTitle(agent string) string {
	if agent == "" {
		return "Step"
	}
	return strings.ToUpper(agent[:1]) + agent[1:]
}
