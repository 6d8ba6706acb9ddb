package transporthttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aurorains/insurance-platform/internal/http/handlers"
	"github.com/aurorains/insurance-platform/internal/middleware"
)

// Deps bundles the global middleware stack and the feature handlers that
// implement handlers.Mountable.
type Deps struct {
	Use    []func(http.Handler) http.Handler
	Mounts []handlers.Mountable
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	for _, mw := range d.Use {
		r.Use(mw)
	}
	r.Use(middleware.SetJSONContentType)

	// Mount each feature's routes into this router.
	for _, m := range d.Mounts {
		m.Mount(r)
	}

	return r
}
