// internal/app/features/registration/routes.go
package registration

import (
	"github.com/dalemusser/admissions/internal/app/system/limits"
	"github.com/dalemusser/admissions/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the wizard. Submissions from one address are throttled
// by submitLimit; nil disables throttling.
func Routes(h *Handler, submitLimit *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()
	r.Use(limits.Body(limits.MaxRegistrationFormSize))
	r.Get("/", h.ServeForm)
	r.Get("/draft", h.RestoreDraft)
	r.Post("/step", h.Step)
	r.Post("/jump", h.Jump)
	r.Get("/geo/{level}", h.Geo)
	r.Post("/address/mirror", h.MirrorToggle)

	r.Group(func(r chi.Router) {
		if submitLimit != nil {
			r.Use(submitLimit.Middleware)
		}
		r.Post("/submit", h.Submit)
	})

	r.Get("/done/{ref}", h.Done)
	r.Get("/done/{ref}/slip.pdf", h.Slip)
	return r
}
