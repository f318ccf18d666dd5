package registration

import (
	"net/http"

	draftstore "github.com/dalemusser/admissions/internal/app/store/drafts"
	"github.com/dalemusser/admissions/internal/app/system/auth"
	"github.com/dalemusser/admissions/internal/app/system/drafts"
	"go.uber.org/zap"
)

// Draft backend names accepted by configuration.
const (
	DraftBackendSession = "session"
	DraftBackendMongo   = "mongo"
)

// DraftCookieName holds the whole snapshot (session backend) or the draft
// id (mongo backend).
const DraftCookieName = "admissions-draft"

// CookieDrafts keeps snapshots in a signed cookie next to the session.
func CookieDrafts(sm *auth.SessionManager, logger *zap.Logger) DraftOpener {
	return func(w http.ResponseWriter, r *http.Request) (*drafts.Store, error) {
		return drafts.New(drafts.NewCookieBackend(sm.Store(), DraftCookieName, w, r), logger), nil
	}
}

// MongoDrafts keeps snapshots in the drafts collection keyed by an id
// stored in a cookie.
func MongoDrafts(sm *auth.SessionManager, store *draftstore.Store, logger *zap.Logger) DraftOpener {
	return func(w http.ResponseWriter, r *http.Request) (*drafts.Store, error) {
		id, err := drafts.EnsureDraftID(sm.Store(), DraftCookieName, w, r)
		if err != nil {
			return nil, err
		}
		return drafts.New(drafts.NewMongoBackend(store, id), logger), nil
	}
}
