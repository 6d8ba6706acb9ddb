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

type PaymentHandler struct {
	Svc      core.PaymentService
	Policies core.PolicyService
	Auth     core.AuthService
	Log      *slog.Logger
}

func NewPaymentHandler(svc core.PaymentService, policies core.PolicyService, auth core.AuthService, log *slog.Logger) *PaymentHandler {
	return &PaymentHandler{Svc: svc, Policies: policies, Auth: auth, Log: log}
}

func (h *PaymentHandler) Mount(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		r.Use(middleware.RequireSession(h.Auth))
		r.Get("/", h.ListByPolicy)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/pay", h.Pay)
	})
}

// Get retrieves a payment. Customers may only read payments on their own
// policies.
// 200: payment; 403: not the owner; 404: not found.
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	payment, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to get payment")
		return
	}

	if ok, err := h.mayAccess(r, payment.PolicyID); err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to check payment access")
		return
	} else if !ok {
		problem.Write(w, http.StatusForbidden, "Forbidden", "Customers may only access payments on their own policies.")
		return
	}

	if err := json.NewEncoder(w).Encode(payment); err != nil {
		h.Log.Error("failed to encode payment", "id", id, "err", err)
	}
}

// ListByPolicy returns the payments of one policy (?policy_id=).
// 200: JSON array; 400: missing policy_id; 403: not the owner.
func (h *PaymentHandler) ListByPolicy(w http.ResponseWriter, r *http.Request) {
	policyID := r.URL.Query().Get("policy_id")
	if policyID == "" {
		problem.Write(w, http.StatusBadRequest, "Missing Policy ID", "Query parameter policy_id is required.")
		return
	}

	if ok, err := h.mayAccess(r, policyID); err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to check payment access")
		return
	} else if !ok {
		problem.Write(w, http.StatusForbidden, "Forbidden", "Customers may only access payments on their own policies.")
		return
	}

	payments, err := h.Svc.ListByPolicy(r.Context(), policyID)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to list payments")
		return
	}

	if payments == nil {
		payments = []core.PremiumPayment{}
	}
	if err := json.NewEncoder(w).Encode(payments); err != nil {
		h.Log.Error("failed to encode payments", "policy_id", policyID, "err", err)
	}
}

// Pay records a payment as paid. Paying an already paid payment is rejected.
// 200: payment; 403: not the owner; 422: already paid.
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	payment, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to get payment")
		return
	}

	if ok, err := h.mayAccess(r, payment.PolicyID); err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to check payment access")
		return
	} else if !ok {
		problem.Write(w, http.StatusForbidden, "Forbidden", "Customers may only pay on their own policies.")
		return
	}

	paid, err := h.Svc.RecordPayment(r.Context(), id)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to record payment")
		return
	}

	h.Log.Info("payment recorded", "payment_id", id, "policy_id", paid.PolicyID)
	if err := json.NewEncoder(w).Encode(paid); err != nil {
		h.Log.Error("failed to encode payment", "id", id, "err", err)
	}
}

// mayAccess reports whether the session may touch payments on the policy.
func (h *PaymentHandler) mayAccess(r *http.Request, policyID string) (bool, error) {
	session, _ := middleware.SessionFrom(r.Context())
	if session.Role != core.RoleCustomer {
		return true, nil
	}

	policy, err := h.Policies.Get(r.Context(), policyID)
	if err != nil {
		return false, err
	}
	return policy.CustomerID == session.CustomerID, nil
}
