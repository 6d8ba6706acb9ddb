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

type PolicyHandler struct {
	Svc  core.PolicyService
	Auth core.AuthService
	Log  *slog.Logger
}

func NewPolicyHandler(svc core.PolicyService, auth core.AuthService, log *slog.Logger) *PolicyHandler {
	return &PolicyHandler{Svc: svc, Auth: auth, Log: log}
}

func (h *PolicyHandler) Mount(r chi.Router) {
	r.Route("/policies", func(r chi.Router) {
		r.Use(middleware.RequireSession(h.Auth))
		r.Get("/number/{policy_number}", h.GetByNumber)
		r.Get("/{id}", h.Get)
		r.Get("/", h.List)
	})
}

// Get retrieves a policy by id. Customers may only read their own.
// 200: policy; 403: not the owner; 404: not found.
func (h *PolicyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	policy, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to get policy")
		return
	}

	if !h.mayRead(r, policy) {
		problem.Write(w, http.StatusForbidden, "Forbidden", "Customers may only access their own policies.")
		return
	}

	if err := json.NewEncoder(w).Encode(policy); err != nil {
		h.Log.Error("failed to encode policy", "id", id, "err", err)
	}
}

// GetByNumber retrieves a policy by its number.
// 200: policy; 403: not the owner; 404: not found.
func (h *PolicyHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "policy_number")

	policy, err := h.Svc.GetByNumber(r.Context(), number)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to get policy")
		return
	}

	if !h.mayRead(r, policy) {
		problem.Write(w, http.StatusForbidden, "Forbidden", "Customers may only access their own policies.")
		return
	}

	if err := json.NewEncoder(w).Encode(policy); err != nil {
		h.Log.Error("failed to encode policy", "policy_number", number, "err", err)
	}
}

// List returns policies with optional filtering and pagination. Customers
// are always scoped to their own policies.
// 200: JSON; 500: internal error.
func (h *PolicyHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := core.PolicyFilter{
		CustomerID: r.URL.Query().Get("customer_id"),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = core.PolicyStatus(status)
	}

	session, _ := middleware.SessionFrom(r.Context())
	if session.Role == core.RoleCustomer {
		filter.CustomerID = session.CustomerID
	}

	limit, offset := pagination(r)

	policies, total, err := h.Svc.List(r.Context(), filter, limit, offset)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to list policies")
		return
	}

	// Return empty array instead of null
	if policies == nil {
		policies = []core.Policy{}
	}

	response := map[string]interface{}{
		"items":  policies,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.Log.Error("failed to encode policies", "err", err)
	}
}

func (h *PolicyHandler) mayRead(r *http.Request, policy core.Policy) bool {
	session, _ := middleware.SessionFrom(r.Context())
	return session.Role != core.RoleCustomer || session.CustomerID == policy.CustomerID
}
