package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/MikeSquared-Agency/Advisor/internal/analyze"
	"github.com/MikeSquared-Agency/Advisor/internal/scoring"
	"github.com/MikeSquared-Agency/Advisor/internal/session"
	"github.com/MikeSquared-Agency/Advisor/internal/store"
)

// Mocks
type fakeScorer struct {
	mu       sync.Mutex
	analysis *analyze.Analysis
	err      error
	requests []analyze.AnalyzeRequest
	reportID string
}

func (f *fakeScorer) Analyze(_ context.Context, req analyze.AnalyzeRequest) (*analyze.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.analysis, nil
}

func (f *fakeScorer) DownloadReport(_ context.Context, id string) (*analyze.Report, error) {
	f.mu.Lock()
	f.reportID = id
	f.mu.Unlock()
	return &analyze.Report{
		ContentType:        "application/pdf",
		ContentDisposition: `attachment; filename="report_` + id + `.pdf"`,
		Body:               io.NopCloser(strings.NewReader("%PDF-1.4 fake")),
	}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleAnalysis() *analyze.Analysis {
	return &analyze.Analysis{
		SubmissionID: "77",
		Recommendations: []analyze.Recommendation{
			{
				CaseName:    "Grid Ledger",
				Score:       0.91,
				BudgetRange: analyze.BudgetRange{10000, 50000},
				MatchBreakdown: map[string]float64{
					"scenario": 0.9, "tech_req": 0.5, "tech_stack": 0.4, "city_size": 1, "budget": 0.75,
				},
			},
			{CaseName: "Parcel Chain", Score: 0.4, BudgetRange: analyze.BudgetRange{0, 0}},
		},
	}
}

func setupTestRouter(journal store.Store) (http.Handler, *fakeScorer) {
	scorer := &fakeScorer{analysis: sampleAnalysis()}
	logger := testLogger()
	m := session.NewManager(session.Deps{Scorer: scorer, Store: journal, Logger: logger},
		session.Options{Weights: scoring.DefaultWeights()})
	router := NewRouter(m, scorer, journal, RouterConfig{AdminToken: "test-token"}, logger)
	return router, scorer
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, h http.Handler) session.View {
	t.Helper()
	w := do(t, h, "POST", "/api/v1/sessions", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var v session.View
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return v
}

func TestCreateSessionDefaults(t *testing.T) {
	router, _ := setupTestRouter(nil)
	v := createSession(t, router)

	if v.Profile.TPS != 1000 || v.Profile.LatencyMs != 200 {
		t.Errorf("unexpected numeric defaults: %+v", v.Profile)
	}
	if v.Profile.BudgetRangeRaw != "[0,100000]" {
		t.Errorf("unexpected budget default %q", v.Profile.BudgetRangeRaw)
	}
	if len(v.Weights) != 5 {
		t.Fatalf("expected 5 weights, got %d", len(v.Weights))
	}
	for k, w := range v.Weights {
		if w != 0.2 {
			t.Errorf("weight %s: expected 0.2, got %v", k, w)
		}
	}
	if v.Busy {
		t.Error("new session should not be busy")
	}
}

func TestGetSession_NotFound(t *testing.T) {
	router, _ := setupTestRouter(nil)

	w := do(t, router, "GET", "/api/v1/sessions/00000000-0000-0000-0000-000000000001", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	w = do(t, router, "GET", "/api/v1/sessions/not-a-uuid", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestDeleteSession(t *testing.T) {
	router, _ := setupTestRouter(nil)
	v := createSession(t, router)
	path := "/api/v1/sessions/" + v.ID.String()

	if w := do(t, router, "DELETE", path, ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w := do(t, router, "GET", path, ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
}

func TestSetWeight(t *testing.T) {
	router, _ := setupTestRouter(nil)
	v := createSession(t, router)
	base := "/api/v1/sessions/" + v.ID.String()

	w := do(t, router, "PUT", base+"/weights/budget", `{"value":1.4}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var got session.View
	json.NewDecoder(w.Body).Decode(&got)
	if got.Weights["budget"] != 1 {
		t.Errorf("expected clamped 1, got %v", got.Weights["budget"])
	}

	if w := do(t, router, "PUT", base+"/weights/speed", `{"value":0.5}`); w.Code != http.StatusBadRequest {
		t.Errorf("unknown criterion: expected 400, got %d", w.Code)
	}
	if w := do(t, router, "PUT", base+"/weights/budget", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing value: expected 400, got %d", w.Code)
	}
}

func TestToggleTagAndEditScenario(t *testing.T) {
	router, _ := setupTestRouter(nil)
	v := createSession(t, router)
	base := "/api/v1/sessions/" + v.ID.String()

	do(t, router, "POST", base+"/tags/Energy%20Grid/toggle", "")
	w := do(t, router, "POST", base+"/tags/Smart%20Traffic/toggle", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var got session.View
	json.NewDecoder(w.Body).Decode(&got)
	if got.Profile.ScenarioText != "Energy Grid, Smart Traffic" {
		t.Errorf("unexpected scenario text %q", got.Profile.ScenarioText)
	}

	w = do(t, router, "PUT", base+"/scenario", `{"text":"port logistics"}`)
	json.NewDecoder(w.Body).Decode(&got)
	if got.Profile.ScenarioText != "port logistics" {
		t.Errorf("expected free text, got %q", got.Profile.ScenarioText)
	}
	if len(got.Profile.SelectedTags) != 2 {
		t.Errorf("free text must not change selection, got %v", got.Profile.SelectedTags)
	}

	if w := do(t, router, "POST", base+"/tags/Mining/toggle", ""); w.Code != http.StatusBadRequest {
		t.Errorf("unknown tag: expected 400, got %d", w.Code)
	}
}

func TestUpdateProfile(t *testing.T) {
	router, _ := setupTestRouter(nil)
	v := createSession(t, router)
	base := "/api/v1/sessions/" + v.ID.String()

	w := do(t, router, "PATCH", base+"/profile", `{"field":"tps","value":"2500"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = do(t, router, "PATCH", base+"/profile", `{"field":"tps","value":"fast"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	w = do(t, router, "PATCH", base+"/profile", `{"field":"security_level","value":"extreme"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	w = do(t, router, "PATCH", base+"/profile", `{"field":"colour","value":"red"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	var got session.View
	json.NewDecoder(do(t, router, "GET", base, "").Body).Decode(&got)
	if got.Profile.TPS != 2500 {
		t.Errorf("rejected input must keep 2500, got %d", got.Profile.TPS)
	}
	if got.Profile.SecurityLevel != "medium" {
		t.Errorf("expected medium, got %s", got.Profile.SecurityLevel)
	}
}

func TestAnalyze_Success(t *testing.T) {
	router, scorer := setupTestRouter(nil)
	v := createSession(t, router)
	base := "/api/v1/sessions/" + v.ID.String()

	do(t, router, "POST", base+"/tags/Insurance/toggle", "")
	w := do(t, router, "POST", base+"/analyze", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var got session.View
	json.NewDecoder(w.Body).Decode(&got)
	if len(got.Recommendations) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(got.Recommendations))
	}
	if got.SubmissionID != "77" {
		t.Errorf("expected submission 77, got %q", got.SubmissionID)
	}

	if len(scorer.requests) != 1 {
		t.Fatalf("expected 1 scorer call, got %d", len(scorer.requests))
	}
	req := scorer.requests[0]
	if req.ApplicationScenarios != "Insurance" {
		t.Errorf("unexpected scenarios %q", req.ApplicationScenarios)
	}
	if req.TechnicalRequirements != `{"tps":1000,"latency":200,"security_level":"medium"}` {
		t.Errorf("unexpected technical requirements %s", req.TechnicalRequirements)
	}
}

func TestAnalyze_FailureMapsTo502(t *testing.T) {
	router, scorer := setupTestRouter(nil)
	scorer.err = &analyze.ShapeError{Path: "$.recommendations", Reason: "missing"}
	v := createSession(t, router)

	w := do(t, router, "POST", "/api/v1/sessions/"+v.ID.String()+"/analyze", "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	var body map[string]string
	json.NewDecoder(w.Body).Decode(&body)
	if body["error"] != "Analysis failed" {
		t.Errorf("expected collapsed message, got %q", body["error"])
	}
}

func TestBreakdown_JSONAndSVG(t *testing.T) {
	router, _ := setupTestRouter(nil)
	v := createSession(t, router)
	base := "/api/v1/sessions/" + v.ID.String()

	if w := do(t, router, "GET", base+"/results/0/breakdown", ""); w.Code != http.StatusNotFound {
		t.Errorf("before analyze: expected 404, got %d", w.Code)
	}

	do(t, router, "POST", base+"/analyze", "")

	w := do(t, router, "GET", base+"/results/0/breakdown", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var got struct {
		CaseName string `json:"case_name"`
		Axes     []scoring.Axis
	}
	json.NewDecoder(w.Body).Decode(&got)
	if got.CaseName != "Grid Ledger" || len(got.Axes) != 5 {
		t.Fatalf("unexpected breakdown %+v", got)
	}
	if got.Axes[1].Key != "tech_req" || got.Axes[1].Label != "requirements" {
		t.Errorf("expected relabelled tech_req, got %+v", got.Axes[1])
	}

	w = do(t, router, "GET", base+"/results/0/breakdown?format=svg&size=200", "")
	if ct := w.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("expected svg content type, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), `width="200"`) {
		t.Errorf("expected requested size in svg")
	}

	if w := do(t, router, "GET", base+"/results/1/breakdown", ""); w.Code != http.StatusNotFound {
		t.Errorf("result without breakdown: expected 404, got %d", w.Code)
	}
	if w := do(t, router, "GET", base+"/results/x/breakdown", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad index: expected 400, got %d", w.Code)
	}
}

func TestReport(t *testing.T) {
	router, scorer := setupTestRouter(nil)
	v := createSession(t, router)
	base := "/api/v1/sessions/" + v.ID.String()

	if w := do(t, router, "GET", base+"/report", ""); w.Code != http.StatusNotFound {
		t.Errorf("before analyze: expected 404, got %d", w.Code)
	}

	do(t, router, "POST", base+"/analyze", "")
	w := do(t, router, "GET", base+"/report", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if scorer.reportID != "77" {
		t.Errorf("expected report for 77, got %q", scorer.reportID)
	}
	if w.Header().Get("Content-Type") != "application/pdf" {
		t.Errorf("unexpected content type %q", w.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(w.Body.String(), "%PDF") {
		t.Errorf("expected report body to be passed through")
	}
}

func TestVocabulary(t *testing.T) {
	router, _ := setupTestRouter(nil)
	w := do(t, router, "GET", "/api/v1/vocabulary", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var vocab VocabularyResponse
	json.NewDecoder(w.Body).Decode(&vocab)
	if len(vocab.ScenarioTags) != 8 {
		t.Errorf("expected 8 tags, got %d", len(vocab.ScenarioTags))
	}
	if len(vocab.Criteria) != 5 || vocab.Criteria[1].Label != "requirements" {
		t.Errorf("unexpected criteria %+v", vocab.Criteria)
	}
	if vocab.WeightStep != 0.05 {
		t.Errorf("expected step 0.05, got %v", vocab.WeightStep)
	}
}

func TestMetricsRouter(t *testing.T) {
	router := NewMetricsRouter()
	w := do(t, router, "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	w = do(t, router, "GET", "/metrics", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
