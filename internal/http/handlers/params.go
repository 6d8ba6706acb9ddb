package handlers

import (
	"net/http"
	"strconv"
)

// pagination reads limit/offset query params with sane defaults.
func pagination(r *http.Request) (limit, offset int) {
	limit = 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	offset = 0
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
