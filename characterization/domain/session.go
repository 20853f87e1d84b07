package domain

import (
	"fmt"
	"time"
)

// SessionStatus represents the current state of a characterization session.
type SessionStatus int

const (
	StatusPending  SessionStatus = iota // Session not yet started
	StatusRunning                       // Test inputs are being executed
	StatusComplete                      // Failure-inducing combinations are available
	StatusFailed                        // Session failed (infrastructure or contract error)
)

func (s SessionStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusRunning:
		return "RUNNING"
	case StatusComplete:
		return "COMPLETE"
	case StatusFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// ParseSessionStatus is the inverse of SessionStatus.String.
func ParseSessionStatus(s string) (SessionStatus, error) {
	switch s {
	case "PENDING":
		return StatusPending, nil
	case "RUNNING":
		return StatusRunning, nil
	case "COMPLETE":
		return StatusComplete, nil
	case "FAILED":
		return StatusFailed, nil
	default:
		return StatusPending, fmt.Errorf("%w: unknown session status %q", ErrInvalidArgument, s)
	}
}

// IsTerminal returns true if this is a final status.
func (s SessionStatus) IsTerminal() bool {
	return s == StatusComplete || s == StatusFailed
}

// Execution records one executed test input within a session.
type Execution struct {
	// Round is 0 for the initial suite and n for the n-th refinement round.
	Round int

	// Combination is the executed full combination.
	Combination Combination

	// Result is the observed outcome.
	Result TestResult

	// Duration is how long the execution took.
	Duration time.Duration

	// ExecutedAt is when the execution finished.
	ExecutedAt time.Time
}

// Session tracks one characterization session: a single algorithm instance
// driven from an initial suite to its final read-out.
type Session struct {
	// ID is the unique identifier for this session.
	ID string

	// Algorithm is the name of the characterization algorithm.
	Algorithm string

	// Model is the input space being characterized.
	Model *TestModel

	// Config is the session configuration.
	Config SessionConfig

	// Status is the current session status.
	Status SessionStatus

	// Rounds is the number of completed refinement rounds.
	Rounds int

	// Executions is the number of executed test inputs, initial suite included.
	Executions int

	// FailureInducing holds the final read-out once Status is Complete.
	FailureInducing []Combination

	// FailureReason contains the failure reason if Status is Failed.
	FailureReason string

	// CreatedAt is when the session was created.
	CreatedAt time.Time

	// UpdatedAt is when the session was last updated.
	UpdatedAt time.Time

	// CompletedAt is when the session completed (if complete).
	CompletedAt *time.Time

	// Version is incremented by every stored update.
	Version int64
}

// NewSession creates a pending session.
func NewSession(id string, model *TestModel, config SessionConfig) *Session {
	now := time.Now().UTC()
	config = config.WithDefaults()
	return &Session{
		ID:        id,
		Algorithm: config.Algorithm,
		Model:     model,
		Config:    config,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}

// SetStatus transitions the session to a new status.
func (s *Session) SetStatus(newStatus SessionStatus) error {
	if s.Status.IsTerminal() {
		return fmt.Errorf("%w: cannot transition from terminal status %s",
			ErrSessionAlreadyComplete, s.Status)
	}
	s.Status = newStatus
	s.UpdatedAt = time.Now().UTC()
	if newStatus.IsTerminal() {
		now := time.Now().UTC()
		s.CompletedAt = &now
	}
	return nil
}

// RecordInitialSuite notes the executions of the initial suite.
func (s *Session) RecordInitialSuite(executions int) {
	s.Executions += executions
	s.UpdatedAt = time.Now().UTC()
}

// RecordRound notes a finished refinement round with the given number of executions.
func (s *Session) RecordRound(executions int) {
	s.Rounds++
	s.Executions += executions
	s.UpdatedAt = time.Now().UTC()
}

// SetResult stores the final read-out and completes the session.
func (s *Session) SetResult(combinations []Combination) error {
	if err := s.SetStatus(StatusComplete); err != nil {
		return err
	}
	s.FailureInducing = append([]Combination(nil), combinations...)
	return nil
}

// SetFailed marks the session as failed with a reason.
func (s *Session) SetFailed(reason string) {
	s.Status = StatusFailed
	s.FailureReason = reason
	now := time.Now().UTC()
	s.CompletedAt = &now
	s.UpdatedAt = now
}

// IsComplete returns true if the session reached a terminal status.
func (s *Session) IsComplete() bool {
	return s.Status.IsTerminal()
}
