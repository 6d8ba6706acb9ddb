package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aurorains/insurance-platform/internal/core"
	"github.com/aurorains/insurance-platform/internal/middleware"
	"github.com/aurorains/insurance-platform/internal/platform/ids"
	"github.com/aurorains/insurance-platform/pkg/problem"
)

type ProductHandler struct {
	Repo core.ProductRepo
	Auth core.AuthService
	Log  *slog.Logger
}

func NewProductHandler(repo core.ProductRepo, auth core.AuthService, log *slog.Logger) *ProductHandler {
	return &ProductHandler{Repo: repo, Auth: auth, Log: log}
}

func (h *ProductHandler) Mount(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		// Catalogue browsing is public
		r.Get("/", h.List)
		r.Get("/{slug}", h.GetBySlug)

		// Catalogue management is admin-only
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(h.Auth))
			r.Use(middleware.RequireRole(core.RoleAdmin))
			r.Put("/{slug}", h.Upsert)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List returns the product catalogue.
// 200: JSON array; 500: internal error.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.Repo.List(r.Context())
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to list products")
		return
	}

	if products == nil {
		products = []core.Product{}
	}
	if err := json.NewEncoder(w).Encode(products); err != nil {
		h.Log.Error("failed to encode products", "err", err)
	}
}

// GetBySlug retrieves one product.
// 200: product; 404: not found.
func (h *ProductHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	product, err := h.Repo.GetBySlug(r.Context(), slug)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to get product")
		return
	}

	if err := json.NewEncoder(w).Encode(product); err != nil {
		h.Log.Error("failed to encode product", "slug", slug, "err", err)
	}
}

// Upsert creates or replaces a catalogue entry under the path slug.
// 200: product; 400: invalid payload.
func (h *ProductHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var product core.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		problem.Write(w, http.StatusBadRequest, "Invalid Body", "Request body must be valid JSON.")
		return
	}

	product.Slug = slug
	if product.ID == "" {
		product.ID = ids.New()
	}
	if err := product.Validate(); err != nil {
		writeError(r.Context(), h.Log, w, err, "Invalid product")
		return
	}

	if err := h.Repo.UpsertBySlug(r.Context(), product); err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to upsert product")
		return
	}

	h.Log.Info("product upserted", "slug", slug)
	if err := json.NewEncoder(w).Encode(product); err != nil {
		h.Log.Error("failed to encode product", "slug", slug, "err", err)
	}
}

// Delete removes a catalogue entry by id.
// 204: deleted; 404: not found.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
