// internal/app/features/registration/handler.go
package registration

import (
	"context"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/admissions/internal/app/features/errors"
	"github.com/dalemusser/admissions/internal/app/system/auth"
	"github.com/dalemusser/admissions/internal/app/system/cascade"
	"github.com/dalemusser/admissions/internal/app/system/drafts"
	"github.com/dalemusser/admissions/internal/app/system/wizard"
	"github.com/dalemusser/admissions/internal/domain/models"
	"go.uber.org/zap"
)

// StudentStore is the part of the student store the wizard needs.
type StudentStore interface {
	Create(ctx context.Context, st models.Student) (models.Student, error)
	GetByReference(ctx context.Context, ref string) (models.Student, error)
}

// DraftOpener returns the draft store bound to one request.
type DraftOpener func(w http.ResponseWriter, r *http.Request) (*drafts.Store, error)

// Handler serves the registration wizard.
type Handler struct {
	Form     *wizard.FormDef
	Sessions *auth.SessionManager
	Students StudentStore
	Loader   *cascade.Loader
	Mirror   *cascade.Mirror
	Drafts   DraftOpener
	Log      *zap.Logger
	ErrLog   *errorsfeature.ErrorLogger

	now func() time.Time
}

// NewHandler wires the wizard to its form, session, student store and
// geographic source. A nil opener disables drafts.
func NewHandler(form *wizard.FormDef, sm *auth.SessionManager, students StudentStore, geo cascade.Fetcher, opener DraftOpener, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	loader := cascade.NewLoader(geo, logger)
	return &Handler{
		Form:     form,
		Sessions: sm,
		Students: students,
		Loader:   loader,
		Mirror:   cascade.NewMirror(loader, logger),
		Drafts:   opener,
		Log:      logger,
		ErrLog:   errLog,
		now:      time.Now,
	}
}

// drafts opens the request's draft store. Failures are logged and yield
// nil; navigation then runs without snapshots.
func (h *Handler) drafts(w http.ResponseWriter, r *http.Request) *drafts.Store {
	if h.Drafts == nil {
		return nil
	}
	ds, err := h.Drafts(w, r)
	if err != nil {
		h.Log.Warn("draft store unavailable", zap.Error(err))
		return nil
	}
	return ds
}

// saver adapts a possibly nil draft store to the navigator.
func saver(ds *drafts.Store) wizard.DraftSaver {
	if ds == nil {
		return nil
	}
	return ds
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
