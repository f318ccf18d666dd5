// internal/app/features/login/routes.go
package login

import (
	"github.com/dalemusser/admissions/internal/app/system/limits"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(limits.Body(limits.MaxLoginFormSize))
	r.Get("/", h.ServeLogin)
	r.Post("/", h.HandleLoginPost)
	return r
}
