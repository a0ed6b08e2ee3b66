package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Advisor/internal/analyze"
	"github.com/MikeSquared-Agency/Advisor/internal/hermes"
	"github.com/MikeSquared-Agency/Advisor/internal/metrics"
	"github.com/MikeSquared-Agency/Advisor/internal/profile"
	"github.com/MikeSquared-Agency/Advisor/internal/scoring"
	"github.com/MikeSquared-Agency/Advisor/internal/store"
)

var (
	// ErrBusy is returned when an analysis is already in flight for the session.
	ErrBusy = errors.New("analysis already in progress")

	ErrNoResult     = errors.New("no such result")
	ErrNoSubmission = errors.New("no submission to report on")
)

// Deps are the collaborators shared by every session. Hermes and Store may be
// nil, which disables events and the submission journal respectively.
type Deps struct {
	Scorer analyze.Client
	Hermes hermes.Client
	Store  store.Store
	Logger *slog.Logger
}

// Session owns one user's profile form, weights and latest results.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	deps *Deps
	busy atomic.Bool

	mu           sync.Mutex
	form         *profile.Form
	weights      scoring.WeightVector
	results      []analyze.Recommendation
	lastError    string
	submissionID string
	lastActive   time.Time
}

// New returns a session with a default form and the given starting weights.
func New(deps *Deps, weights scoring.WeightVector) *Session {
	now := time.Now()
	return &Session{
		ID:         uuid.New(),
		CreatedAt:  now,
		deps:       deps,
		form:       profile.NewForm(),
		weights:    weights,
		lastActive: now,
	}
}

func (s *Session) SetWeight(c scoring.Criterion, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.weights.Set(c, value)
}

func (s *Session) ToggleTag(tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.form.Scenario.Toggle(tag)
}

func (s *Session) EditScenario(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.form.Scenario.EditFreeText(text)
}

// UpdateField sets one profile field by name.
func (s *Session) UpdateField(name, value string) error {
	field, err := profile.ParseField(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.form.Update(field, value)
}

// Busy reports whether an analysis is in flight.
func (s *Session) Busy() bool { return s.busy.Load() }

// Analyze submits the current profile and weights. Only one analysis runs at a
// time per session; a second call while one is in flight returns ErrBusy
// without contacting the scorer. On success the result list is replaced, on
// failure it is cleared and the error kept for display.
func (s *Session) Analyze(ctx context.Context) (*analyze.Analysis, error) {
	if !s.busy.CompareAndSwap(false, true) {
		metrics.AnalyzeRequests.WithLabelValues(metrics.OutcomeBusy).Inc()
		return nil, ErrBusy
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	s.touch()
	req := analyze.Build(s.form, s.weights)
	s.mu.Unlock()

	sid := s.ID.String()
	s.publish(ctx, hermes.SubjectAnalysisRequested(sid), hermes.AnalysisRequestedEvent{
		SessionID:            sid,
		ApplicationScenarios: req.ApplicationScenarios,
		CitySize:             req.CitySize,
		Weights:              req.Weights,
		Timestamp:            time.Now(),
	})

	// The outbound call outlives a caller that gives up; the client timeout
	// bounds it.
	start := time.Now()
	result, err := s.deps.Scorer.Analyze(context.WithoutCancel(ctx), req)
	elapsed := time.Since(start)
	metrics.AnalyzeDuration.Observe(elapsed.Seconds())

	s.mu.Lock()
	if err != nil {
		s.results = nil
		s.submissionID = ""
		s.lastError = analyze.UserMessage(err)
	} else {
		s.results = result.Recommendations
		s.submissionID = result.SubmissionID
		s.lastError = ""
	}
	s.touch()
	s.mu.Unlock()

	s.finish(ctx, req, result, err, elapsed)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Session) finish(ctx context.Context, req analyze.AnalyzeRequest, result *analyze.Analysis, err error, elapsed time.Duration) {
	sid := s.ID.String()
	sub := &store.Submission{
		SessionID:             s.ID,
		ApplicationScenarios:  req.ApplicationScenarios,
		TechnicalRequirements: req.TechnicalRequirements,
		TechnologyStack:       req.TechnologyStack,
		CitySize:              req.CitySize,
		BudgetRange:           req.BudgetRange,
		Weights:               req.Weights,
		DurationMs:            elapsed.Milliseconds(),
	}

	if err != nil {
		metrics.AnalyzeRequests.WithLabelValues(metrics.OutcomeFailed).Inc()
		var shapeErr *analyze.ShapeError
		if errors.As(err, &shapeErr) {
			metrics.ShapeErrors.Inc()
		}
		s.deps.Logger.Warn("analysis failed", "session_id", sid, "duration_ms", elapsed.Milliseconds(), "error", err)

		sub.Status = store.SubmissionFailed
		sub.Error = err.Error()
		s.publish(ctx, hermes.SubjectAnalysisFailed(sid), hermes.AnalysisFailedEvent{
			SessionID:  sid,
			Error:      err.Error(),
			DurationMs: elapsed.Milliseconds(),
			Timestamp:  time.Now(),
		})
	} else {
		metrics.AnalyzeRequests.WithLabelValues(metrics.OutcomeCompleted).Inc()
		metrics.RecommendationsReturned.Observe(float64(len(result.Recommendations)))
		topCase := ""
		if len(result.Recommendations) > 0 {
			topCase = result.Recommendations[0].CaseName
		}
		s.deps.Logger.Info("analysis completed",
			"session_id", sid,
			"recommendations", len(result.Recommendations),
			"submission_id", result.SubmissionID,
			"duration_ms", elapsed.Milliseconds(),
		)

		sub.Status = store.SubmissionCompleted
		sub.ScorerSubmissionID = result.SubmissionID
		sub.RecommendationCount = len(result.Recommendations)
		sub.TopCase = topCase
		s.publish(ctx, hermes.SubjectAnalysisCompleted(sid), hermes.AnalysisCompletedEvent{
			SessionID:           sid,
			SubmissionID:        result.SubmissionID,
			RecommendationCount: len(result.Recommendations),
			TopCase:             topCase,
			DurationMs:          elapsed.Milliseconds(),
			Timestamp:           time.Now(),
		})
	}

	if s.deps.Store != nil {
		if err := s.deps.Store.RecordSubmission(context.WithoutCancel(ctx), sub); err != nil {
			s.deps.Logger.Warn("failed to record submission", "session_id", sid, "error", err)
		}
	}
}

func (s *Session) publish(ctx context.Context, subject string, data any) {
	if s.deps.Hermes == nil {
		return
	}
	if err := s.deps.Hermes.Publish(context.WithoutCancel(ctx), subject, data); err != nil {
		s.deps.Logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

// Result returns the i-th recommendation of the latest analysis.
func (s *Session) Result(i int) (analyze.Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.results) {
		return analyze.Recommendation{}, fmt.Errorf("%w: %d", ErrNoResult, i)
	}
	return s.results[i], nil
}

// SubmissionID is the scorer id of the latest successful analysis.
func (s *Session) SubmissionID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submissionID == "" {
		return "", ErrNoSubmission
	}
	return s.submissionID, nil
}

// View is a consistent snapshot of the session for rendering.
type View struct {
	ID              uuid.UUID                `json:"id"`
	Profile         profile.Snapshot         `json:"profile"`
	Weights         map[string]float64       `json:"weights"`
	WeightSum       float64                  `json:"weight_sum"`
	Busy            bool                     `json:"busy"`
	Recommendations []analyze.Recommendation `json:"recommendations"`
	Error           string                   `json:"error,omitempty"`
	SubmissionID    string                   `json:"submission_id,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := make([]analyze.Recommendation, len(s.results))
	copy(recs, s.results)
	return View{
		ID:              s.ID,
		Profile:         s.form.Snapshot(),
		Weights:         s.weights.ToPayload(),
		WeightSum:       s.weights.Sum(),
		Busy:            s.busy.Load(),
		Recommendations: recs,
		Error:           s.lastError,
		SubmissionID:    s.submissionID,
		CreatedAt:       s.CreatedAt,
	}
}

// touch must be called with mu held.
func (s *Session) touch() { s.lastActive = time.Now() }

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}
