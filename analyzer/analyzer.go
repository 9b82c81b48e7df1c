// Package analyzer classifies a natural-language user request into an
// Analysis that drives plan construction. It sends a structured
// classification prompt to the configured language model and parses the
// structured reply leniently; model or parse failures never propagate, they
// degrade to a deterministic fallback Analysis. An uncertainty scorer
// additionally decides whether the plan should pause for clarification even
// when the model claims high confidence.
package analyzer

import (
	"context"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/hupe1980/agentplan/core"
	"github.com/hupe1980/agentplan/logging"
	"github.com/hupe1980/agentplan/model"
)

// classifySystem is the system prompt framing the classification call. The
// model must answer with a single JSON object.
const classifySystem = `You are a planning classifier for a code assistance system.
Classify the user request and respond with a single JSON object, no prose:
{
  "task_type": "short label, e.g. code_scan | bug_detection | quality_check | report | general",
  "required_agents": ["ordered worker agent types, e.g. scanner, detector, quality, reporter"],
  "complexity": "low | medium | high",
  "estimated_steps": 1,
  "requires_user_input": false,
  "confidence": 0.0,
  "reasoning": "one sentence",
  "parameters": {"key": "value"}
}`

// Options configures an Analyzer instance.
type Options struct {
	// UncertaintyThreshold is the score above which the analysis is forced
	// to require user clarification before execution.
	UncertaintyThreshold float64
	// Scorer overrides the default keyword-based uncertainty scorer.
	Scorer UncertaintyScorer
	// Temperature for the classification call. Low by default so the reply
	// stays parseable.
	Temperature float64
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Analyzer turns a request plus optional conversation context into a
// core.Analysis.
type Analyzer struct {
	model     model.Model
	scorer    UncertaintyScorer
	threshold float64
	temp      float64
	logger    logging.Logger
}

// New constructs an Analyzer backed by the given model.
func New(m model.Model, optFns ...func(o *Options)) *Analyzer {
	opts := Options{
		UncertaintyThreshold: 0.6,
		Scorer:               NewKeywordScorer(),
		Temperature:          0.1,
		Logger:               logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Analyzer{
		model:     m,
		scorer:    opts.Scorer,
		threshold: opts.UncertaintyThreshold,
		temp:      opts.Temperature,
		logger:    opts.Logger,
	}
}

// Analyze classifies the request. It never returns an error: classification
// failures of any kind are recovered locally with a conservative fallback so
// the plan can still proceed.
func (a *Analyzer) Analyze(ctx context.Context, request string, history []model.Message) core.Analysis {
	score := a.scorer.Score(request)

	messages := append(append([]model.Message(nil), history...), model.Message{Role: "user", Text: request})

	start := time.Now()
	resp, err := a.model.Complete(ctx, model.Request{
		System:      classifySystem,
		Messages:    messages,
		Temperature: a.temp,
	})
	if err != nil {
		a.logger.Warn("classification call failed, using fallback", "duration", time.Since(start), "error", err)
		return a.fallback(score)
	}

	analysis, ok := parseAnalysis(resp.Content)
	if !ok {
		a.logger.Warn("classification reply not parseable, using fallback")
		return a.fallback(score)
	}

	if score > a.threshold {
		analysis.RequiresUserInput = true
	}

	a.logger.Debug("request classified",
		"task_type", analysis.TaskType,
		"agents", analysis.RequiredAgents,
		"confidence", analysis.Confidence,
		"uncertainty", score)

	return analysis
}

// fallback is the deterministic conservative analysis substituted for failed
// or malformed classifications: a single generic step, medium complexity,
// low confidence. Clarification is requested only when the uncertainty
// signal exceeds the configured threshold.
func (a *Analyzer) fallback(score float64) core.Analysis {
	return core.Analysis{
		TaskType:          "general",
		RequiredAgents:    []string{"general"},
		Complexity:        core.ComplexityMedium,
		EstimatedSteps:    1,
		RequiresUserInput: score > a.threshold,
		Confidence:        0.2,
		Reasoning:         "classification unavailable, conservative defaults applied",
	}
}

// parseAnalysis extracts an Analysis from the model's structured-text reply.
// The reply may wrap the JSON object in prose or code fences; everything
// outside the outermost braces is ignored.
func parseAnalysis(content string) (core.Analysis, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return core.Analysis{}, false
	}
	raw := content[start : end+1]
	if !gjson.Valid(raw) {
		return core.Analysis{}, false
	}

	doc := gjson.Parse(raw)
	taskType := doc.Get("task_type").String()
	if taskType == "" {
		return core.Analysis{}, false
	}

	analysis := core.Analysis{
		TaskType:          taskType,
		Complexity:        core.Complexity(doc.Get("complexity").String()),
		EstimatedSteps:    int(doc.Get("estimated_steps").Int()),
		RequiresUserInput: doc.Get("requires_user_input").Bool(),
		Confidence:        doc.Get("confidence").Float(),
		Reasoning:         doc.Get("reasoning").String(),
	}

	for _, agent := range doc.Get("required_agents").Array() {
		if s := agent.String(); s != "" {
			analysis.RequiredAgents = append(analysis.RequiredAgents, s)
		}
	}
	if len(analysis.RequiredAgents) == 0 {
		analysis.RequiredAgents = []string{"general"}
	}

	if params := doc.Get("parameters"); params.IsObject() {
		analysis.Parameters = make(map[string]string)
		params.ForEach(func(key, value gjson.Result) bool {
			analysis.Parameters[key.String()] = value.String()
			return true
		})
	}

	// Clamp model-supplied values into their documented ranges.
	if !analysis.Complexity.Valid() {
		analysis.Complexity = core.ComplexityMedium
	}
	if analysis.EstimatedSteps < 1 {
		analysis.EstimatedSteps = len(analysis.RequiredAgents)
	}
	if analysis.Confidence < 0 {
		analysis.Confidence = 0
	}
	if analysis.Confidence > 1 {
		analysis.Confidence = 1
	}

	return analysis, true
}
