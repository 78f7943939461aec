// Package handler exposes the profiling wizard over HTTP. Routes are mounted
// as a chi sub-router carrying the full platform middleware chain.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"offsite/internal/platform/middleware"
	"offsite/internal/profiling/models"
	"offsite/internal/profiling/service"
	"offsite/internal/transport/http/shared"
	dErrors "offsite/pkg/domain-errors"
)

// Service defines the wizard operations the handler depends on.
type Service interface {
	Start(ctx context.Context, seed *models.ProfilingRecord) (service.State, error)
	SessionState(id string) (service.State, error)
	SessionDiagnostics(id string) (service.Diagnostics, error)
	Advance(id string) (service.State, error)
	Retreat(id string) (service.State, error)
	UpdateRecord(id string, record *models.ProfilingRecord) (service.State, error)
	SaveDraft(ctx context.Context, id string) error
	Submit(ctx context.Context, id string) (*service.SubmitResult, error)
}

// Handler handles profiling session endpoints.
type Handler struct {
	logger  *slog.Logger
	wizard  Service
	timeout time.Duration
}

// New creates a profiling Handler. timeout bounds every request; submit
// additionally carries the tighter ingest deadline inside the client.
func New(wizard Service, logger *slog.Logger, timeout time.Duration) *Handler {
	return &Handler{
		logger:  logger,
		wizard:  wizard,
		timeout: timeout,
	}
}

// Register registers the profiling routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	pr := chi.NewRouter()
	pr.Use(middleware.Recovery(h.logger))
	pr.Use(middleware.RequestID)
	pr.Use(middleware.Logger(h.logger))
	pr.Use(middleware.Timeout(h.timeout))
	pr.Use(middleware.ContentTypeJSON)
	pr.Post("/profiling/sessions", h.handleStart)
	pr.Get("/profiling/sessions/{sessionID}", h.handleGet)
	pr.Put("/profiling/sessions/{sessionID}/record", h.handleUpdateRecord)
	pr.Post("/profiling/sessions/{sessionID}/advance", h.handleAdvance)
	pr.Post("/profiling/sessions/{sessionID}/retreat", h.handleRetreat)
	pr.Post("/profiling/sessions/{sessionID}/draft", h.handleSaveDraft)
	pr.Post("/profiling/sessions/{sessionID}/submit", h.handleSubmit)
	pr.Get("/profiling/sessions/{sessionID}/diagnostics", h.handleDiagnostics)

	r.Mount("/", pr)
}

// startRequest optionally seeds the new session with a record.
type startRequest struct {
	Record *models.ProfilingRecord `json:"record"`
}

// handleStart opens a wizard session. An empty body starts from the stored
// draft, or from a blank record when no draft exists.
func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req startRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.WarnContext(ctx, "invalid start session request",
				"request_id", requestID,
				"error", err.Error(),
			)
			shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
			return
		}
	}

	st, err := h.wizard.Start(ctx, req.Record)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to start session",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, st)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	st, err := h.wizard.SessionState(chi.URLParam(r, "sessionID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, st)
}

// handleUpdateRecord replaces the session's record with the submitted copy.
// No validation runs here; rules are enforced on advance and submit.
func (h *Handler) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	var record models.ProfilingRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		h.logger.WarnContext(ctx, "invalid record body",
			"request_id", middleware.GetRequestID(ctx),
			"session_id", sessionID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	st, err := h.wizard.UpdateRecord(sessionID, &record)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, st)
}

// handleAdvance runs the current step's rules. A failed step is still a 200:
// the returned state carries the field errors and the unchanged step.
func (h *Handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	st, err := h.wizard.Advance(chi.URLParam(r, "sessionID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) handleRetreat(w http.ResponseWriter, r *http.Request) {
	st, err := h.wizard.Retreat(chi.URLParam(r, "sessionID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.wizard.SaveDraft(ctx, sessionID); err != nil {
		h.logger.ErrorContext(ctx, "failed to save draft",
			"request_id", middleware.GetRequestID(ctx),
			"session_id", sessionID,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	res, err := h.wizard.Submit(ctx, sessionID)
	if err != nil {
		h.logger.WarnContext(ctx, "submission attempt failed",
			"request_id", middleware.GetRequestID(ctx),
			"session_id", sessionID,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, res)
}

// handleDiagnostics returns the last request/response artifacts captured by
// the most recent submission attempt, for relaying to support.
func (h *Handler) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	diags, err := h.wizard.SessionDiagnostics(chi.URLParam(r, "sessionID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, diags)
}
