package orchestrator

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FailurePolicy controls how the driver reacts when a step fails.
type FailurePolicy string

const (
	// FailureHalt stops dispatching after the failing batch; every remaining
	// step is skipped.
	FailureHalt FailurePolicy = "halt"
	// FailureSkipDependents skips the transitive dependents of a failed step
	// and keeps executing independent branches.
	FailureSkipDependents FailurePolicy = "skip_dependents"
	// FailureContinue keeps executing every step whose dependencies reached a
	// terminal state, successful or not.
	FailureContinue FailurePolicy = "continue"
)

// Valid reports whether the policy is one of the known values.
func (p FailurePolicy) Valid() bool {
	switch p {
	case FailureHalt, FailureSkipDependents, FailureContinue:
		return true
	default:
		return false
	}
}

// Config tunes orchestrator behavior.
type Config struct {
	// MaxConcurrentSteps bounds parallel worker calls within one batch.
	MaxConcurrentSteps int `yaml:"max_concurrent_steps"`
	// FailurePolicy selects the reaction to step failure.
	FailurePolicy FailurePolicy `yaml:"failure_policy"`
	// PromptTimeout is the default deadline for user prompts without their
	// own timeout. Zero disables the deadline.
	PromptTimeout time.Duration `yaml:"prompt_timeout"`
	// StepTimeout caps a single worker call. Zero disables the cap.
	StepTimeout time.Duration `yaml:"step_timeout"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentSteps: 4,
		FailurePolicy:      FailureSkipDependents,
		PromptTimeout:      5 * time.Minute,
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.MaxConcurrentSteps < 1 {
		return fmt.Errorf("max_concurrent_steps must be >= 1, got %d", c.MaxConcurrentSteps)
	}
	if !c.FailurePolicy.Valid() {
		return fmt.Errorf("unknown failure_policy %q", c.FailurePolicy)
	}
	if c.PromptTimeout < 0 {
		return fmt.Errorf("prompt_timeout must not be negative")
	}
	if c.StepTimeout < 0 {
		return fmt.Errorf("step_timeout must not be negative")
	}
	return nil
}

// LoadConfig reads a YAML configuration file and overlays it onto the
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
