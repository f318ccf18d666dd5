package home

import (
	"net/http"

	"github.com/dalemusser/admissions/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// RegisterPath is where the landing countdown leads.
const RegisterPath = "/register"

// Handler holds dependencies needed to serve the home page.
type Handler struct {
	Countdown int
	Log       *zap.Logger
}

// NewHandler creates the landing handler. countdown is in seconds; zero
// or less sends visitors straight to the form.
func NewHandler(countdown int, logger *zap.Logger) *Handler {
	return &Handler{
		Countdown: countdown,
		Log:       logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	if h.Countdown <= 0 {
		http.Redirect(w, r, RegisterPath, http.StatusSeeOther)
		return
	}
	data := struct {
		viewdata.BaseVM
		Countdown   int
		RedirectURL string
	}{
		BaseVM:      viewdata.NewBaseVM(r, "Welcome", "/"),
		Countdown:   h.Countdown,
		RedirectURL: RegisterPath,
	}

	templates.Render(w, r, "home", data)
}
