package handlers

import "github.com/go-chi/chi/v5"

type Mountable interface {
	Mount(r chi.Router)
}

// MountFunc adapts a plain function (e.g. a metrics endpoint) to Mountable.
type MountFunc func(r chi.Router)

func (f MountFunc) Mount(r chi.Router) { f(r) }
