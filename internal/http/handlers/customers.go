package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aurorains/insurance-platform/internal/core"
	"github.com/aurorains/insurance-platform/internal/middleware"
	"github.com/aurorains/insurance-platform/internal/platform/ids"
	"github.com/aurorains/insurance-platform/pkg/problem"
)

type CustomerHandler struct {
	Customers core.CustomerRepo
	Auth      core.AuthService
	Log       *slog.Logger
}

func NewCustomerHandler(customers core.CustomerRepo, auth core.AuthService, log *slog.Logger) *CustomerHandler {
	return &CustomerHandler{Customers: customers, Auth: auth, Log: log}
}

func (h *CustomerHandler) Mount(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Post("/", h.SignUp)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(h.Auth))
			r.Get("/{id}", h.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(core.RoleUnderwriter, core.RoleAdmin))
				r.Get("/", h.List)
			})
		})
	})
}

type signUpRequest struct {
	core.CustomerInput
	Password string `json:"password"`
}

// SignUp registers a customer profile together with its portal login.
// 201: customer; 400: invalid input; 409: email already registered.
func (h *CustomerHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, http.StatusBadRequest, "Invalid Body", "Request body must be valid JSON.")
		return
	}

	if err := req.CustomerInput.Validate(); err != nil {
		writeError(r.Context(), h.Log, w, err, "Invalid customer details")
		return
	}

	// Check the credential rules before writing the profile. Creating the
	// customer first and then failing Register would strand a profile whose
	// unique email blocks every retry.
	if len(req.Password) < core.MinPasswordLength {
		problem.Write(w, http.StatusBadRequest, "Invalid Password",
			fmt.Sprintf("Password must be at least %d characters.", core.MinPasswordLength))
		return
	}

	customer := core.Customer{
		ID:          ids.New(),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		DateOfBirth: req.DateOfBirth,
		Phone:       req.Phone,
		Address:     req.Address,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.Customers.Create(r.Context(), customer); err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to create customer")
		return
	}

	if _, err := h.Auth.Register(r.Context(), req.Email, req.Password, core.RoleCustomer, customer.ID); err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to register login")
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(customer); err != nil {
		h.Log.Error("failed to encode customer", "err", err)
	}
}

// Get retrieves a customer. Customers may only read their own record; staff
// roles may read any.
// 200: customer; 403: not the owner; 404: not found.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, _ := middleware.SessionFrom(r.Context())

	if session.Role == core.RoleCustomer && session.CustomerID != id {
		problem.Write(w, http.StatusForbidden, "Forbidden", "Customers may only access their own profile.")
		return
	}

	customer, err := h.Customers.Get(r.Context(), id)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to get customer")
		return
	}

	if err := json.NewEncoder(w).Encode(customer); err != nil {
		h.Log.Error("failed to encode customer", "id", id, "err", err)
	}
}

// List returns customers with pagination. Staff only.
// 200: JSON; 500: internal error.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	customers, err := h.Customers.List(r.Context(), limit, offset)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to list customers")
		return
	}

	if customers == nil {
		customers = []core.Customer{}
	}

	response := map[string]interface{}{
		"items":  customers,
		"limit":  limit,
		"offset": offset,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.Log.Error("failed to encode customers", "err", err)
	}
}
