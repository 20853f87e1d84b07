package web

import (
	"time"

	"github.com/example/faultchar/characterization/domain"
)

// ListSessionsResponse is the response for GET /api/sessions/
type ListSessionsResponse struct {
	Sessions []SessionSummary `json:"sessions"`
}

// SessionSummary is a summary of a session for listing
type SessionSummary struct {
	ID              string     `json:"id"`
	Algorithm       string     `json:"algorithm"`
	Status          string     `json:"status"`
	Rounds          int        `json:"rounds"`
	Executions      int        `json:"executions"`
	FailureInducing int        `json:"failureInducing"`
	CreatedAt       time.Time  `json:"createdAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

// SessionDetail is the response for GET /api/sessions/:id
type SessionDetail struct {
	SessionSummary
	Model         *domain.TestModel    `json:"model"`
	Config        ConfigInfo           `json:"config"`
	Combinations  []domain.Combination `json:"failureInducingCombinations"`
	FailureReason string               `json:"failureReason,omitempty"`
	UpdatedAt     time.Time            `json:"updatedAt"`
	Version       int64                `json:"version"`
}

// ConfigInfo mirrors domain.SessionConfig with readable durations
type ConfigInfo struct {
	Parallelism       int    `json:"parallelism"`
	MaxRounds         int    `json:"maxRounds"`
	MaxAttempts       int    `json:"maxAttempts"`
	ExecutionTimeout  string `json:"executionTimeout,omitempty"`
	ConstraintPolicy  string `json:"constraintPolicy"`
	SuiteSeed         int64  `json:"suiteSeed,omitempty"`
	BENProbesPerRound int    `json:"benProbesPerRound,omitempty"`
}

// TimelineResponse is the response for GET /api/sessions/:id/timeline
type TimelineResponse struct {
	SessionID  string          `json:"sessionId"`
	Status     string          `json:"status"`
	Executions []ExecutionInfo `json:"executions"`
}

// ExecutionInfo is one executed test input
type ExecutionInfo struct {
	Round       int                `json:"round"`
	Combination domain.Combination `json:"combination"`
	Outcome     string             `json:"outcome"`
	Cause       string             `json:"cause,omitempty"`
	DurationMs  int64              `json:"durationMs"`
	ExecutedAt  time.Time          `json:"executedAt"`
}

func convertSummary(s *domain.Session) SessionSummary {
	return SessionSummary{
		ID:              s.ID,
		Algorithm:       s.Algorithm,
		Status:          s.Status.String(),
		Rounds:          s.Rounds,
		Executions:      s.Executions,
		FailureInducing: len(s.FailureInducing),
		CreatedAt:       s.CreatedAt,
		CompletedAt:     s.CompletedAt,
	}
}

func convertSession(s *domain.Session) SessionDetail {
	detail := SessionDetail{
		SessionSummary: convertSummary(s),
		Model:          s.Model,
		Config: ConfigInfo{
			Parallelism:       s.Config.Parallelism,
			MaxRounds:         s.Config.MaxRounds,
			MaxAttempts:       s.Config.MaxAttempts,
			ConstraintPolicy:  string(s.Config.ConstraintPolicy),
			SuiteSeed:         s.Config.SuiteSeed,
			BENProbesPerRound: s.Config.BENProbesPerRound,
		},
		Combinations:  s.FailureInducing,
		FailureReason: s.FailureReason,
		UpdatedAt:     s.UpdatedAt,
		Version:       s.Version,
	}
	if s.Config.ExecutionTimeout > 0 {
		detail.Config.ExecutionTimeout = s.Config.ExecutionTimeout.String()
	}
	if detail.Combinations == nil {
		detail.Combinations = []domain.Combination{}
	}
	return detail
}

func convertExecution(e domain.Execution) ExecutionInfo {
	info := ExecutionInfo{
		Round:       e.Round,
		Combination: e.Combination,
		Outcome:     e.Result.Outcome.String(),
		DurationMs:  e.Duration.Milliseconds(),
		ExecutedAt:  e.ExecutedAt,
	}
	if e.Result.Cause != nil {
		info.Cause = e.Result.Cause.Error()
	}
	return info
}
