package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const submissionColumns = `id, session_id,
	application_scenarios, technical_requirements, technology_stack, city_size, budget_range, weights,
	status, error, scorer_submission_id, recommendation_count, top_case, duration_ms,
	created_at`

func (s *PostgresStore) RecordSubmission(ctx context.Context, sub *Submission) error {
	weightsJSON, err := json.Marshal(sub.Weights)
	if err != nil {
		return fmt.Errorf("encode weights: %w", err)
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO advisor_submissions (session_id,
			application_scenarios, technical_requirements, technology_stack, city_size, budget_range, weights,
			status, error, scorer_submission_id, recommendation_count, top_case, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`,
		sub.SessionID,
		sub.ApplicationScenarios, sub.TechnicalRequirements, sub.TechnologyStack, sub.CitySize, sub.BudgetRange, weightsJSON,
		sub.Status, nullIfEmpty(sub.Error), nullIfEmpty(sub.ScorerSubmissionID), sub.RecommendationCount, nullIfEmpty(sub.TopCase), sub.DurationMs,
	).Scan(&sub.ID, &sub.CreatedAt)
}

func (s *PostgresStore) ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]*Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM advisor_submissions WHERE 1=1`
	args := []any{}
	n := 0

	if filter.SessionID != nil {
		n++
		query += fmt.Sprintf(" AND session_id = $%d", n)
		args = append(args, *filter.SessionID)
	}
	if filter.Status != nil {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, string(*filter.Status))
	}
	if filter.CitySize != "" {
		n++
		query += fmt.Sprintf(" AND city_size = $%d", n)
		args = append(args, filter.CitySize)
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	n++
	query += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, limit)

	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubmissions(rows)
}

func (s *PostgresStore) GetStats(ctx context.Context) (*SubmissionStats, error) {
	stats := &SubmissionStats{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(duration_ms), 0)
		FROM advisor_submissions`,
	).Scan(&stats.Total, &stats.Completed, &stats.Failed, &stats.AvgDurationMs)
	return stats, err
}

func scanSubmissions(rows pgx.Rows) ([]*Submission, error) {
	var subs []*Submission
	for rows.Next() {
		sub := &Submission{}
		var weightsJSON []byte
		var subErr, scorerID, topCase sql.NullString
		if err := rows.Scan(
			&sub.ID, &sub.SessionID,
			&sub.ApplicationScenarios, &sub.TechnicalRequirements, &sub.TechnologyStack, &sub.CitySize, &sub.BudgetRange, &weightsJSON,
			&sub.Status, &subErr, &scorerID, &sub.RecommendationCount, &topCase, &sub.DurationMs,
			&sub.CreatedAt,
		); err != nil {
			return nil, err
		}
		sub.Error = subErr.String
		sub.ScorerSubmissionID = scorerID.String
		sub.TopCase = topCase.String
		if weightsJSON != nil {
			_ = json.Unmarshal(weightsJSON, &sub.Weights)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
