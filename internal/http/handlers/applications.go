package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aurorains/insurance-platform/internal/core"
	"github.com/aurorains/insurance-platform/internal/middleware"
	"github.com/aurorains/insurance-platform/pkg/problem"
)

type ApplicationHandler struct {
	Svc  core.ApplicationService
	Auth core.AuthService
	Log  *slog.Logger
}

func NewApplicationHandler(svc core.ApplicationService, auth core.AuthService, log *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{Svc: svc, Auth: auth, Log: log}
}

func (h *ApplicationHandler) Mount(r chi.Router) {
	r.Route("/applications", func(r chi.Router) {
		r.Use(middleware.RequireSession(h.Auth))
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Get("/", h.List)
	})
}

// Create submits a new application. The risk score and premium are computed
// once here and never change; the application enters the book as pending.
// 201: application; 400: invalid input; 404: unknown customer or product.
func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in core.ApplicationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		problem.Write(w, http.StatusBadRequest, "Invalid Body", "Request body must be valid JSON.")
		return
	}

	// Customers always apply for themselves.
	session, _ := middleware.SessionFrom(r.Context())
	if session.Role == core.RoleCustomer {
		in.CustomerID = session.CustomerID
	}

	app, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to create application")
		return
	}

	h.Log.Info("application created",
		"application_id", app.ID,
		"customer_id", app.CustomerID,
		"risk_score", app.RiskScore,
	)

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(app); err != nil {
		h.Log.Error("failed to encode application", "err", err)
	}
}

// Get retrieves an application. Customers may only read their own.
// 200: application; 403: not the owner; 404: not found.
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	app, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to get application")
		return
	}

	session, _ := middleware.SessionFrom(r.Context())
	if session.Role == core.RoleCustomer && session.CustomerID != app.CustomerID {
		problem.Write(w, http.StatusForbidden, "Forbidden", "Customers may only access their own applications.")
		return
	}

	if err := json.NewEncoder(w).Encode(app); err != nil {
		h.Log.Error("failed to encode application", "id", id, "err", err)
	}
}

// List returns applications with optional status filtering and pagination.
// Customers are always scoped to their own applications.
// 200: JSON; 500: internal error.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := core.ApplicationFilter{
		CustomerID: r.URL.Query().Get("customer_id"),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = core.ApplicationStatus(status)
	}

	session, _ := middleware.SessionFrom(r.Context())
	if session.Role == core.RoleCustomer {
		filter.CustomerID = session.CustomerID
	}

	limit, offset := pagination(r)

	apps, err := h.Svc.List(r.Context(), filter, limit, offset)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to list applications")
		return
	}

	if apps == nil {
		apps = []core.Application{}
	}

	response := map[string]interface{}{
		"items":  apps,
		"limit":  limit,
		"offset": offset,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.Log.Error("failed to encode applications", "err", err)
	}
}
