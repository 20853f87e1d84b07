package domain

import (
	"fmt"
	"time"
)

// Reporter receives progress events from a characterization algorithm.
type Reporter interface {
	// PhaseChanged is called when an algorithm moves between internal phases.
	PhaseChanged(algorithm, from, to string)

	// ProbesProposed is called with every non-empty batch of requested test inputs.
	ProbesProposed(algorithm string, probes []Combination)

	// CombinationFound is called for every confirmed failure-inducing combination.
	CombinationFound(algorithm string, c Combination)
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) PhaseChanged(string, string, string)  {}
func (NopReporter) ProbesProposed(string, []Combination) {}
func (NopReporter) CombinationFound(string, Combination) {}

// Configuration binds a model, a constraint checker and a reporter into the
// value handed to algorithm construction. One is built per test run.
type Configuration struct {
	Model             *TestModel
	ConstraintChecker ConstraintChecker
	Reporter          Reporter
}

// ConfigurationOption customizes a Configuration.
type ConfigurationOption func(*Configuration)

// WithConstraintChecker sets the constraint checker.
func WithConstraintChecker(checker ConstraintChecker) ConfigurationOption {
	return func(c *Configuration) { c.ConstraintChecker = checker }
}

// WithReporter sets the reporter.
func WithReporter(reporter Reporter) ConfigurationOption {
	return func(c *Configuration) { c.Reporter = reporter }
}

// NewConfiguration creates a configuration for the model. Without options the
// checker is derived from the model's tuple lists and events are discarded.
func NewConfiguration(model *TestModel, opts ...ConfigurationOption) (Configuration, error) {
	if model == nil {
		return Configuration{}, fmt.Errorf("%w: model is required", ErrInvalidConfig)
	}
	config := Configuration{Model: model}
	for _, opt := range opts {
		opt(&config)
	}
	return config.WithDefaults(), nil
}

// WithDefaults returns a copy with nil collaborators replaced by defaults.
func (c Configuration) WithDefaults() Configuration {
	if c.ConstraintChecker == nil && c.Model != nil {
		c.ConstraintChecker = NewTupleConstraintChecker(c.Model)
	}
	if c.Reporter == nil {
		c.Reporter = NopReporter{}
	}
	return c
}

// ConstraintPolicy tells the driver what to do with probes that match a forbidden constraint.
type ConstraintPolicy string

const (
	// ConstraintPolicyIgnore executes forbidden probes anyway and logs a warning.
	ConstraintPolicyIgnore ConstraintPolicy = "ignore"

	// ConstraintPolicyFail does not execute forbidden probes and feeds back a failure.
	ConstraintPolicyFail ConstraintPolicy = "fail"
)

// SessionConfig holds configuration for one characterization session.
type SessionConfig struct {
	// Algorithm names the characterization algorithm ("idd", "aifl" or "ben").
	// Default: "idd"
	Algorithm string

	// Parallelism is the maximum number of concurrent test executions.
	// Default: 4
	Parallelism int

	// MaxRounds bounds the number of refinement rounds after the initial suite.
	// Default: 1000
	MaxRounds int

	// MaxAttempts is how often an execution is tried when the executor reports
	// an infrastructure error.
	// Default: 1
	MaxAttempts int

	// ExecutionTimeout bounds a single test execution. Zero means no timeout.
	ExecutionTimeout time.Duration

	// ConstraintPolicy controls handling of probes matching forbidden constraints.
	// Default: ConstraintPolicyIgnore
	ConstraintPolicy ConstraintPolicy

	// SuiteSeed seeds initial suite generation. Use 0 for a random seed.
	SuiteSeed int64

	// SuiteCandidates is the number of random candidates considered per suite row.
	// Default: 50
	SuiteCandidates int

	// BENProbesPerRound is the number of suspicious combinations BEN probes per round.
	// Default: 3
	BENProbesPerRound int
}

// DefaultSessionConfig returns the default configuration.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Algorithm:         "idd",
		Parallelism:       4,
		MaxRounds:         1000,
		MaxAttempts:       1,
		ConstraintPolicy:  ConstraintPolicyIgnore,
		SuiteCandidates:   50,
		BENProbesPerRound: 3,
	}
}

// Validate checks that the configuration is valid.
func (c *SessionConfig) Validate() error {
	if c.Algorithm == "" {
		return fmt.Errorf("%w: Algorithm must be set", ErrInvalidConfig)
	}
	if c.Parallelism < 1 || c.Parallelism > 256 {
		return fmt.Errorf("%w: Parallelism must be between 1 and 256, got %d",
			ErrInvalidConfig, c.Parallelism)
	}
	if c.MaxRounds < 1 {
		return fmt.Errorf("%w: MaxRounds must be at least 1, got %d",
			ErrInvalidConfig, c.MaxRounds)
	}
	if c.MaxAttempts < 1 || c.MaxAttempts > 10 {
		return fmt.Errorf("%w: MaxAttempts must be between 1 and 10, got %d",
			ErrInvalidConfig, c.MaxAttempts)
	}
	if c.ExecutionTimeout < 0 {
		return fmt.Errorf("%w: ExecutionTimeout must not be negative, got %s",
			ErrInvalidConfig, c.ExecutionTimeout)
	}
	switch c.ConstraintPolicy {
	case ConstraintPolicyIgnore, ConstraintPolicyFail:
	default:
		return fmt.Errorf("%w: unknown ConstraintPolicy %q", ErrInvalidConfig, c.ConstraintPolicy)
	}
	if c.SuiteCandidates < 1 {
		return fmt.Errorf("%w: SuiteCandidates must be at least 1, got %d",
			ErrInvalidConfig, c.SuiteCandidates)
	}
	if c.BENProbesPerRound < 1 {
		return fmt.Errorf("%w: BENProbesPerRound must be at least 1, got %d",
			ErrInvalidConfig, c.BENProbesPerRound)
	}
	return nil
}

// WithDefaults returns a new config with defaults applied for zero values.
func (c SessionConfig) WithDefaults() SessionConfig {
	defaults := DefaultSessionConfig()
	if c.Algorithm == "" {
		c.Algorithm = defaults.Algorithm
	}
	if c.Parallelism == 0 {
		c.Parallelism = defaults.Parallelism
	}
	if c.MaxRounds == 0 {
		c.MaxRounds = defaults.MaxRounds
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = defaults.MaxAttempts
	}
	if c.ConstraintPolicy == "" {
		c.ConstraintPolicy = defaults.ConstraintPolicy
	}
	if c.SuiteCandidates == 0 {
		c.SuiteCandidates = defaults.SuiteCandidates
	}
	if c.BENProbesPerRound == 0 {
		c.BENProbesPerRound = defaults.BENProbesPerRound
	}
	return c
}
