package registration

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dalemusser/admissions/internal/app/system/drafts"
	"github.com/dalemusser/admissions/internal/app/system/timeouts"
	"github.com/dalemusser/admissions/internal/app/system/wizard"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /register – fresh wizard                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeForm starts a new wizard. A browser reload discards the saved
// draft; any other arrival keeps it and offers to restore it.
func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.freshForm(w, r))
}

func (h *Handler) freshForm(w http.ResponseWriter, r *http.Request) pageVM {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "registration form")
	defer cancel()

	hasDraft := false
	if ds := h.drafts(w, r); ds != nil {
		ds.ClearIfReloaded(ctx, drafts.NavigationFromRequest(r))
		_, hasDraft = ds.Load(ctx)
	}

	st := wizard.NewFormState()
	h.saveState(w, r, st)

	view := wizard.NewValuesView(h.Form, nil)
	wizard.NewNavigator(h.Form, st, view, nil).Render()

	vm := h.page(r, view, h.hydrate(ctx, view.Values()))
	vm.HasDraft = hasDraft
	return vm
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /register/draft – explicit restore                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// RestoreDraft refills the wizard from the saved snapshot, starting over
// at the first section.
func (h *Handler) RestoreDraft(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "restore draft")
	defer cancel()

	values := url.Values{}
	notice := "No saved draft was found."
	if ds := h.drafts(w, r); ds != nil {
		if snap, ok := ds.Load(ctx); ok {
			for k, v := range drafts.Values(snap) {
				values.Set(k, v)
			}
			notice = "Your saved draft has been restored."
		}
	}

	st := wizard.NewFormState()
	h.saveState(w, r, st)

	view := wizard.NewValuesView(h.Form, values)
	wizard.NewNavigator(h.Form, st, view, nil).Render()

	vm := h.page(r, view, h.hydrate(ctx, values))
	vm.Notice = notice
	h.render(w, r, vm)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /register/step – next / previous                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// Step moves one section in the posted direction (1 or -1).
func (h *Handler) Step(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse registration form", err, "The form could not be read.")
		return
	}
	direction, err := strconv.Atoi(r.PostForm.Get("direction"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad step direction", err, "Unknown direction.")
		return
	}

	vm, err := h.step(w, r, direction)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad step direction", err, "Unknown direction.")
		return
	}
	h.render(w, r, vm)
}

// step moves the session's wizard and returns the page to show.
func (h *Handler) step(w http.ResponseWriter, r *http.Request, direction int) (pageVM, error) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "registration step")
	defer cancel()

	h.followMirror(r.PostForm)
	st := h.loadState(r)
	view := wizard.NewValuesView(h.Form, r.PostForm)
	nav := wizard.NewNavigator(h.Form, st, view, saver(h.drafts(w, r)))
	if _, err := nav.ChangeSection(ctx, direction); err != nil {
		return pageVM{}, err
	}
	h.saveState(w, r, nav.State())
	return h.page(r, view, h.hydrate(ctx, r.PostForm)), nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /register/jump – progress step click                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// Jump moves to a clicked progress step. Steps that are neither active
// nor completed are ignored.
func (h *Handler) Jump(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse registration form", err, "The form could not be read.")
		return
	}
	index, err := strconv.Atoi(r.PostForm.Get("index"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad step index", err, "Unknown step.")
		return
	}

	h.render(w, r, h.jump(w, r, index))
}

func (h *Handler) jump(w http.ResponseWriter, r *http.Request, index int) pageVM {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "registration jump")
	defer cancel()

	h.followMirror(r.PostForm)
	st := h.loadState(r)
	view := wizard.NewValuesView(h.Form, r.PostForm)
	nav := wizard.NewNavigator(h.Form, st, view, saver(h.drafts(w, r)))
	if _, err := nav.JumpTo(ctx, index); err != nil {
		if !errors.Is(err, wizard.ErrStepLocked) {
			h.Log.Warn("jump failed", zap.Error(err))
		}
		nav.Render()
	}
	h.saveState(w, r, nav.State())
	return h.page(r, view, h.hydrate(ctx, r.PostForm))
}
