package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aurorains/insurance-platform/internal/core"
	"github.com/aurorains/insurance-platform/internal/middleware"
)

type ReportHandler struct {
	Svc  core.ReportService
	Auth core.AuthService
	Log  *slog.Logger
}

func NewReportHandler(svc core.ReportService, auth core.AuthService, log *slog.Logger) *ReportHandler {
	return &ReportHandler{Svc: svc, Auth: auth, Log: log}
}

func (h *ReportHandler) Mount(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(middleware.RequireSession(h.Auth))
		r.Use(middleware.RequireRole(core.RoleUnderwriter, core.RoleAdmin))

		r.Post("/", h.Generate)
		r.Get("/{id}", h.Get)
		r.Get("/", h.List)
	})
}

// Generate builds a fresh portfolio risk report and persists it.
// 201: report; 500: internal error.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	report, err := h.Svc.Generate(r.Context())
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to generate report")
		return
	}

	h.Log.Info("risk report generated",
		"report_id", report.ID,
		"applications", report.TotalApplications,
		"policies", report.TotalPolicies,
	)

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(report); err != nil {
		h.Log.Error("failed to encode report", "err", err)
	}
}

// Get retrieves a stored report.
// 200: report; 404: not found.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	report, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to get report")
		return
	}

	if err := json.NewEncoder(w).Encode(report); err != nil {
		h.Log.Error("failed to encode report", "id", id, "err", err)
	}
}

// List returns the most recent reports.
// 200: JSON array; 500: internal error.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	reports, err := h.Svc.List(r.Context(), limit)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to list reports")
		return
	}

	if reports == nil {
		reports = []core.RiskReport{}
	}
	if err := json.NewEncoder(w).Encode(reports); err != nil {
		h.Log.Error("failed to encode reports", "err", err)
	}
}
