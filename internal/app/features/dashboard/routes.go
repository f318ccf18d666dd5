// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/admissions/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes wires the admin dashboard under whatever mount point the
// top-level router chooses (e.g., "/dashboard"). Every route requires
// the admin role.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(auth.RoleAdmin))
		pr.Get("/", h.ServeDashboard)
		pr.Get("/charts.json", h.ServeCharts)
		pr.Get("/students", h.ServeStudents)
		pr.Get("/students/export.csv", h.ServeExport)
		pr.Get("/import", h.ServeImport)
		pr.Post("/import", h.HandleImport)
		pr.Get("/students/{id}/features.json", h.ServeFeatures)
	})

	return r
}
