package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Advisor/internal/analyze"
	"github.com/MikeSquared-Agency/Advisor/internal/profile"
	"github.com/MikeSquared-Agency/Advisor/internal/scoring"
	"github.com/MikeSquared-Agency/Advisor/internal/session"
)

type SessionsHandler struct {
	manager *session.Manager
	logger  *slog.Logger
}

func NewSessionsHandler(m *session.Manager, logger *slog.Logger) *SessionsHandler {
	return &SessionsHandler{manager: m, logger: logger}
}

func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, err := h.manager.Create(r.Context())
	if err != nil {
		if errors.Is(err, session.ErrTooManySessions) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, s.View())
}

func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r, h.manager)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	if err := h.manager.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type SetWeightRequest struct {
	Value *float64 `json:"value"`
}

func (h *SessionsHandler) SetWeight(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r, h.manager)
	if !ok {
		return
	}
	var req SetWeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
		writeError(w, http.StatusBadRequest, "value required")
		return
	}
	c, err := scoring.ParseCriterion(chi.URLParam(r, "criterion"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.SetWeight(c, *req.Value); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

func (h *SessionsHandler) ToggleTag(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r, h.manager)
	if !ok {
		return
	}
	tag, err := url.PathUnescape(chi.URLParam(r, "tag"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tag")
		return
	}
	if err := s.ToggleTag(tag); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

type EditScenarioRequest struct {
	Text string `json:"text"`
}

func (h *SessionsHandler) EditScenario(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r, h.manager)
	if !ok {
		return
	}
	var req EditScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.EditScenario(req.Text)
	writeJSON(w, http.StatusOK, s.View())
}

// UpdateProfileRequest carries raw form input. Numbers arrive as strings the
// same way a text box delivers them.
type UpdateProfileRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (h *SessionsHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r, h.manager)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Field == "" {
		writeError(w, http.StatusBadRequest, "field required")
		return
	}
	if err := s.UpdateField(req.Field, req.Value); err != nil {
		switch {
		case errors.Is(err, profile.ErrUnknownField), errors.Is(err, profile.ErrInvalidValue):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

func (h *SessionsHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r, h.manager)
	if !ok {
		return
	}
	if _, err := s.Analyze(r.Context()); err != nil {
		if errors.Is(err, session.ErrBusy) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, analyze.UserMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

func lookupSession(w http.ResponseWriter, r *http.Request, m *session.Manager) (*session.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return nil, false
	}
	s, err := m.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return s, true
}
