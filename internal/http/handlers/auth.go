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

type AuthHandler struct {
	Svc core.AuthService
	Log *slog.Logger
}

func NewAuthHandler(svc core.AuthService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Log: log}
}

func (h *AuthHandler) Mount(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(h.Svc))
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
		})
	})
}

// Login exchanges credentials for a session token. Credentials travel only
// in the JSON body, never in the URL.
// 200: session; 400: bad body; 401: bad credentials.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in core.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		problem.Write(w, http.StatusBadRequest, "Invalid Body", "Request body must be valid JSON.")
		return
	}

	session, err := h.Svc.Login(r.Context(), in)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Login failed")
		return
	}

	if err := json.NewEncoder(w).Encode(session); err != nil {
		h.Log.Error("failed to encode session", "err", err)
	}
}

// Logout invalidates the current session token.
// 204: logged out; 401: no session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r.Context())

	if err := h.Svc.Logout(r.Context(), session.Token); err != nil {
		writeError(r.Context(), h.Log, w, err, "Logout failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated principal.
// 200: session; 401: no session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r.Context())

	if err := json.NewEncoder(w).Encode(session); err != nil {
		h.Log.Error("failed to encode session", "err", err)
	}
}
