// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/admissions/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the basic view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Message string
}

// Handler is the errors feature handler.
// No DB needed; it just renders templates.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound renders the friendly 404 page. Mounted as the router's NotFound handler.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	RenderMessage(w, r, http.StatusNotFound, "Page not found", "We couldn't find that page.", "/")
}

// RenderMessage renders the shared error page with the given status.
// If backURL is empty, a safe back URL is resolved with "/" as fallback.
func RenderMessage(w http.ResponseWriter, r *http.Request, status int, title, msg, backURL string) {
	vm := viewdata.NewBaseVM(r, title, "/")
	if backURL != "" {
		vm.BackURL = backURL
	}
	w.WriteHeader(status)
	templates.Render(w, r, "error_page", pageData{BaseVM: vm, Message: msg})
}
