package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aurorains/insurance-platform/internal/core"
	"github.com/aurorains/insurance-platform/internal/middleware"
	"github.com/aurorains/insurance-platform/pkg/problem"
)

// UnderwritingHandler exposes the underwriter workbench: review queue,
// assessment lookups and manual decisions on referred applications.
type UnderwritingHandler struct {
	Svc  core.UnderwritingService
	Auth core.AuthService
	Log  *slog.Logger
}

func NewUnderwritingHandler(svc core.UnderwritingService, auth core.AuthService, log *slog.Logger) *UnderwritingHandler {
	return &UnderwritingHandler{Svc: svc, Auth: auth, Log: log}
}

func (h *UnderwritingHandler) Mount(r chi.Router) {
	r.Route("/underwriting", func(r chi.Router) {
		r.Use(middleware.RequireSession(h.Auth))
		r.Use(middleware.RequireRole(core.RoleUnderwriter, core.RoleAdmin))

		r.Get("/review-queue", h.ReviewQueue)
		r.Get("/assessments/{id}", h.GetAssessment)
		r.Get("/applications/{id}/assessment", h.GetByApplication)
		r.Post("/applications/{id}/decision", h.Decide)
	})
}

// ReviewQueue lists assessments referred for manual review.
// 200: JSON array; 500: internal error.
func (h *UnderwritingHandler) ReviewQueue(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	queue, err := h.Svc.ListReviewQueue(r.Context(), limit)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to list review queue")
		return
	}

	if queue == nil {
		queue = []core.RiskAssessment{}
	}
	if err := json.NewEncoder(w).Encode(queue); err != nil {
		h.Log.Error("failed to encode review queue", "err", err)
	}
}

// GetAssessment retrieves an assessment by id.
// 200: assessment; 404: not found.
func (h *UnderwritingHandler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	assessment, err := h.Svc.GetAssessment(r.Context(), id)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to get assessment")
		return
	}

	if err := json.NewEncoder(w).Encode(assessment); err != nil {
		h.Log.Error("failed to encode assessment", "id", id, "err", err)
	}
}

// GetByApplication retrieves the assessment for an application.
// 200: assessment; 404: not found.
func (h *UnderwritingHandler) GetByApplication(w http.ResponseWriter, r *http.Request) {
	appID := chi.URLParam(r, "id")

	assessment, err := h.Svc.GetAssessmentByApplicationID(r.Context(), appID)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to get assessment")
		return
	}

	if err := json.NewEncoder(w).Encode(assessment); err != nil {
		h.Log.Error("failed to encode assessment", "application_id", appID, "err", err)
	}
}

// Decide records a manual decision on a referred application.
// 201: decision; 400: invalid input; 409: already decided.
func (h *UnderwritingHandler) Decide(w http.ResponseWriter, r *http.Request) {
	appID := chi.URLParam(r, "id")

	var in core.DecisionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		problem.Write(w, http.StatusBadRequest, "Invalid Body", "Request body must be valid JSON.")
		return
	}

	session, _ := middleware.SessionFrom(r.Context())

	decision, err := h.Svc.MakeDecision(r.Context(), appID, session.UserID, in)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to record decision")
		return
	}

	h.Log.Info("manual decision recorded",
		"application_id", appID,
		"status", decision.Status,
		"decided_by", decision.DecidedBy,
	)

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(decision); err != nil {
		h.Log.Error("failed to encode decision", "application_id", appID, "err", err)
	}
}
