package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "INFO", LogLevelInfo.String())
	assert.Equal(t, "WARN", LogLevelWarn.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, nil)))

	logger.Info("plan started", "plan_id", "p1")
	assert.Contains(t, buf.String(), "plan started")
	assert.Contains(t, buf.String(), "p1")
}

func TestNoOpLogger(t *testing.T) {
	var logger Logger = NoOpLogger{}
	logger.Debug("a")
	logger.Info("b")
	logger.Warn("c")
	logger.Error("d")
}

func TestPlanLogger_ContextualFields(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultPlanLoggerConfig()
	cfg.Output = &buf
	cfg.Component = "orchestrator"

	logger := NewPlanLogger(cfg).WithStep("plan-1", "step-2")
	logger.Info("dispatching")

	out := buf.String()
	assert.Contains(t, out, `"component":"orchestrator"`)
	assert.Contains(t, out, `"plan_id":"plan-1"`)
	assert.Contains(t, out, `"step_id":"step-2"`)
	assert.Contains(t, out, "dispatching")
}

func TestPlanLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewPlanLogger(&PlanLoggerConfig{Level: LogLevelWarn, Output: &buf})

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestPlanLogger_LogStepExecution(t *testing.T) {
	var buf bytes.Buffer
	logger := NewPlanLogger(&PlanLoggerConfig{Level: LogLevelInfo, Output: &buf}).WithPlan("plan-1")

	logger.LogStepExecution("step-1", "scanner", 120*time.Millisecond, true, nil)
	require.Contains(t, buf.String(), "Step execution completed")
	assert.Contains(t, buf.String(), `"agent_type":"scanner"`)

	buf.Reset()
	logger.LogStepExecution("step-2", "reporter", time.Second, false, errors.New("boom"))
	assert.Contains(t, buf.String(), "Step execution failed")
	assert.Contains(t, buf.String(), "boom")
}

func TestPlanLogger_LogModelCall(t *testing.T) {
	var buf bytes.Buffer
	logger := NewPlanLogger(&PlanLoggerConfig{Level: LogLevelInfo, Output: &buf})

	logger.LogModelCall("mock-1", 128, 80*time.Millisecond, true, nil)
	out := buf.String()
	assert.Contains(t, out, "Model call completed")
	assert.Contains(t, out, `"model":"mock-1"`)
	assert.Contains(t, out, `"token_count":128`)
}
