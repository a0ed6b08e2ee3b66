package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type SubmissionStatus string

const (
	SubmissionCompleted SubmissionStatus = "completed"
	SubmissionFailed    SubmissionStatus = "failed"
)

// Submission is one dispatched analyze request and how it ended. It is an
// audit record; sessions are never rebuilt from it.
type Submission struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`

	// Wire payload as sent
	ApplicationScenarios  string             `json:"application_scenarios"`
	TechnicalRequirements string             `json:"technical_requirements"`
	TechnologyStack       string             `json:"technology_stack"`
	CitySize              string             `json:"city_size"`
	BudgetRange           string             `json:"budget_range"`
	Weights               map[string]float64 `json:"weights"`

	// Outcome
	Status              SubmissionStatus `json:"status"`
	Error               string           `json:"error,omitempty"`
	ScorerSubmissionID  string           `json:"scorer_submission_id,omitempty"`
	RecommendationCount int              `json:"recommendation_count"`
	TopCase             string           `json:"top_case,omitempty"`
	DurationMs          int64            `json:"duration_ms"`

	CreatedAt time.Time `json:"created_at"`
}

type SubmissionFilter struct {
	SessionID *uuid.UUID
	Status    *SubmissionStatus
	CitySize  string
	Limit     int
	Offset    int
}

type SubmissionStats struct {
	Total         int     `json:"total"`
	Completed     int     `json:"completed"`
	Failed        int     `json:"failed"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
}

type Store interface {
	RecordSubmission(ctx context.Context, s *Submission) error
	ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]*Submission, error)
	GetStats(ctx context.Context) (*SubmissionStats, error)
	Close() error
}
