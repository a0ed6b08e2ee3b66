package api

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/Advisor/internal/analyze"
	"github.com/MikeSquared-Agency/Advisor/internal/scoring"
	"github.com/MikeSquared-Agency/Advisor/internal/session"
)

const defaultChartSize = 360

type ResultsHandler struct {
	manager *session.Manager
	scorer  analyze.Client
	logger  *slog.Logger
}

func NewResultsHandler(m *session.Manager, scorer analyze.Client, logger *slog.Logger) *ResultsHandler {
	return &ResultsHandler{manager: m, scorer: scorer, logger: logger}
}

type BreakdownResponse struct {
	CaseName string  `json:"case_name"`
	Score    float64 `json:"score"`
	*scoring.Breakdown
}

func (h *ResultsHandler) Breakdown(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r, h.manager)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid result index")
		return
	}
	rec, err := s.Result(index)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	b := rec.Breakdown()
	if b == nil {
		writeError(w, http.StatusNotFound, "result has no breakdown")
		return
	}

	if r.URL.Query().Get("format") == "svg" {
		size := defaultChartSize
		if raw := r.URL.Query().Get("size"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 2048 {
				size = n
			}
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		if err := b.RenderSVG(w, size); err != nil {
			h.logger.Warn("failed to write breakdown svg", "error", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, BreakdownResponse{CaseName: rec.CaseName, Score: rec.Score, Breakdown: b})
}

// Report streams the scorer's report for the session's latest submission
// without inspecting it.
func (h *ResultsHandler) Report(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r, h.manager)
	if !ok {
		return
	}
	id, err := s.SubmissionID()
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	report, err := h.scorer.DownloadReport(r.Context(), id)
	if err != nil {
		h.logger.Warn("report download failed", "session_id", s.ID, "submission_id", id, "error", err)
		writeError(w, http.StatusBadGateway, "report download failed")
		return
	}
	defer report.Body.Close()

	if report.ContentType != "" {
		w.Header().Set("Content-Type", report.ContentType)
	}
	if report.ContentDisposition != "" {
		w.Header().Set("Content-Disposition", report.ContentDisposition)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, report.Body); err != nil {
		h.logger.Warn("report stream interrupted", "session_id", s.ID, "error", err)
	}
}
