package domain

import (
	"errors"
	"testing"
	"time"
)

func TestSessionConfigDefaultsAreValid(t *testing.T) {
	c := SessionConfig{}.WithDefaults()
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if c != DefaultSessionConfig() {
		t.Errorf("WithDefaults() = %+v, want %+v", c, DefaultSessionConfig())
	}

	custom := SessionConfig{Algorithm: "aifl", Parallelism: 16}.WithDefaults()
	if custom.Algorithm != "aifl" || custom.Parallelism != 16 {
		t.Errorf("WithDefaults overwrote set fields: %+v", custom)
	}
}

func TestSessionConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*SessionConfig)
	}{
		{"no algorithm", func(c *SessionConfig) { c.Algorithm = "" }},
		{"parallelism too low", func(c *SessionConfig) { c.Parallelism = 0 }},
		{"parallelism too high", func(c *SessionConfig) { c.Parallelism = 257 }},
		{"no rounds", func(c *SessionConfig) { c.MaxRounds = 0 }},
		{"too many attempts", func(c *SessionConfig) { c.MaxAttempts = 11 }},
		{"negative timeout", func(c *SessionConfig) { c.ExecutionTimeout = -time.Second }},
		{"unknown policy", func(c *SessionConfig) { c.ConstraintPolicy = "skip" }},
		{"no candidates", func(c *SessionConfig) { c.SuiteCandidates = 0 }},
		{"no ben probes", func(c *SessionConfig) { c.BENProbesPerRound = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultSessionConfig()
			tt.modify(&c)
			if err := c.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestNewConfiguration(t *testing.T) {
	if _, err := NewConfiguration(nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nil model: err = %v", err)
	}

	m, err := NewTestModel(1, []int{2, 2}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewConfiguration(m)
	if err != nil {
		t.Fatal(err)
	}
	if c.ConstraintChecker == nil || c.Reporter == nil {
		t.Errorf("defaults not applied: %+v", c)
	}

	checker := NewTupleConstraintChecker(m)
	c, err = NewConfiguration(m, WithConstraintChecker(checker), WithReporter(NopReporter{}))
	if err != nil {
		t.Fatal(err)
	}
	if c.ConstraintChecker != ConstraintChecker(checker) {
		t.Error("WithConstraintChecker ignored")
	}
}
