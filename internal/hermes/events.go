package hermes

import "time"

type SessionEvent struct {
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

type AnalysisRequestedEvent struct {
	SessionID            string             `json:"session_id"`
	ApplicationScenarios string             `json:"application_scenarios"`
	CitySize             string             `json:"city_size"`
	Weights              map[string]float64 `json:"weights"`
	Timestamp            time.Time          `json:"timestamp"`
}

type AnalysisCompletedEvent struct {
	SessionID           string    `json:"session_id"`
	SubmissionID        string    `json:"submission_id,omitempty"`
	RecommendationCount int       `json:"recommendation_count"`
	TopCase             string    `json:"top_case,omitempty"`
	DurationMs          int64     `json:"duration_ms"`
	Timestamp           time.Time `json:"timestamp"`
}

type AnalysisFailedEvent struct {
	SessionID  string    `json:"session_id"`
	Error      string    `json:"error"`
	DurationMs int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}
