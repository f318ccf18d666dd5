package registration

import (
	"errors"
	"net/http"
	"net/url"

	errorsfeature "github.com/dalemusser/admissions/internal/app/features/errors"
	studentstore "github.com/dalemusser/admissions/internal/app/store/students"
	"github.com/dalemusser/admissions/internal/app/system/inputval"
	"github.com/dalemusser/admissions/internal/app/system/timeouts"
	"github.com/dalemusser/admissions/internal/app/system/viewdata"
	"github.com/dalemusser/admissions/internal/app/system/wizard"
	"github.com/dalemusser/admissions/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MsgInvalid heads the modal listing format errors found at submit.
const MsgInvalid = "Please correct the following:"

/*─────────────────────────────────────────────────────────────────────────────*
| POST /register/submit                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// Submit validates every section, stores the registration and sends the
// applicant to the confirmation page. Missing fields show the first
// offending section; format errors are listed in the modal.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse registration form", err, "The form could not be read.")
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "registration submit")
	defer cancel()

	h.followMirror(r.PostForm)
	st := h.loadState(r)
	view := wizard.NewValuesView(h.Form, r.PostForm)
	nav := wizard.NewNavigator(h.Form, st, view, nil)
	addrs := h.hydrate(ctx, r.PostForm)

	if !nav.Submit() {
		h.saveState(w, r, nav.State())
		h.render(w, r, h.page(r, view, addrs))
		return
	}

	student := h.buildStudent(r.PostForm, addrs, h.now())
	if res := inputval.Validate(student); res.HasErrors() {
		h.saveState(w, r, nav.State())
		vm := h.page(r, view, addrs)
		vm.Modal = MsgInvalid
		vm.ModalItems = res.Messages()
		h.render(w, r, vm)
		return
	}

	saved, err := h.Students.Create(ctx, student)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "store registration", err, "Your registration could not be saved. Please try again.", "/register")
		return
	}
	h.Log.Info("registration stored",
		zap.String("reference", saved.Reference),
		zap.String("program", saved.ProgramFirstChoice))

	if ds := h.drafts(w, r); ds != nil {
		ds.Clear(ctx)
	}
	h.saveState(w, r, nil)

	dest := "/register/done/" + url.PathEscape(saved.Reference)
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /register/done/{ref}                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

type doneVM struct {
	viewdata.BaseVM
	Student models.Student
	SlipURL string
}

// Done shows the confirmation page of a stored registration.
func (h *Handler) Done(w http.ResponseWriter, r *http.Request) {
	st, ok := h.lookup(w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "registration_done", doneVM{
		BaseVM:  viewdata.NewBaseVM(r, "Registration received", "/"),
		Student: st,
		SlipURL: "/register/done/" + url.PathEscape(st.Reference) + "/slip.pdf",
	})
}

// lookup loads the registration named by the {ref} parameter, writing
// the error page itself when it cannot.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (models.Student, bool) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "registration lookup")
	defer cancel()

	st, err := h.Students.GetByReference(ctx, chi.URLParam(r, "ref"))
	switch {
	case errors.Is(err, studentstore.ErrNotFound):
		errorsfeature.RenderMessage(w, r, http.StatusNotFound, "Not found",
			"We could not find that registration.", "/register")
		return models.Student{}, false
	case err != nil:
		h.ErrLog.LogServerError(w, r, "load registration", err, "The registration could not be loaded.", "/")
		return models.Student{}, false
	}
	return st, true
}
