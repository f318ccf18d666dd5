package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/admissions/internal/domain/models"
	"github.com/gorilla/sessions"
)

// MaxCookieSnapshot caps the JSON snapshot kept in a cookie. Gob, two
// rounds of base64 and the signature grow it about 1.8 times, and the
// result must stay under securecookie's 4096 byte limit.
const MaxCookieSnapshot = 2000

// ErrSnapshotTooLarge is returned when a compacted snapshot still does not
// fit in a cookie. The mongo backend has no such limit.
var ErrSnapshotTooLarge = errors.New("draft snapshot too large for a cookie")

// CookieBackend keeps the snapshot in a signed cookie of its own, apart
// from the login session. It is bound to a single request.
type CookieBackend struct {
	store sessions.Store
	name  string
	w     http.ResponseWriter
	r     *http.Request
}

// NewCookieBackend binds the cookie named name to the request.
func NewCookieBackend(store sessions.Store, name string, w http.ResponseWriter, r *http.Request) *CookieBackend {
	return &CookieBackend{store: store, name: name, w: w, r: r}
}

func (b *CookieBackend) session() (*sessions.Session, error) {
	sess, err := b.store.Get(b.r, b.name)
	if err != nil {
		// A tampered or rotated cookie still yields a fresh session.
		if sess == nil {
			return nil, fmt.Errorf("open draft cookie: %w", err)
		}
	}
	return sess, nil
}

// Read implements Backend.
func (b *CookieBackend) Read(_ context.Context) (models.DraftSnapshot, bool, error) {
	sess, err := b.session()
	if err != nil {
		return models.DraftSnapshot{}, false, err
	}
	raw, ok := sess.Values[Key].(string)
	if !ok || raw == "" {
		return models.DraftSnapshot{}, false, nil
	}
	var snap models.DraftSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return models.DraftSnapshot{}, false, fmt.Errorf("decode draft: %w", err)
	}
	return snap, true, nil
}

// Write implements Backend.
func (b *CookieBackend) Write(_ context.Context, snap models.DraftSnapshot) error {
	sess, err := b.session()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(compact(snap))
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if len(raw) > MaxCookieSnapshot {
		return fmt.Errorf("%w: %d bytes", ErrSnapshotTooLarge, len(raw))
	}
	sess.Values[Key] = string(raw)
	if err := sess.Save(b.r, b.w); err != nil {
		return fmt.Errorf("save draft cookie: %w", err)
	}
	return nil
}

// Remove implements Backend.
func (b *CookieBackend) Remove(_ context.Context) error {
	sess, err := b.session()
	if err != nil {
		return err
	}
	if _, ok := sess.Values[Key]; !ok {
		return nil
	}
	delete(sess.Values, Key)
	return sess.Save(b.r, b.w)
}

// compact drops blank text and unchecked boxes. Restoring a snapshot
// treats a missing field the same as either.
func compact(snap models.DraftSnapshot) models.DraftSnapshot {
	fields := make(map[string]any, len(snap.Fields))
	for k, v := range snap.Fields {
		switch tv := v.(type) {
		case string:
			if tv == "" {
				continue
			}
		case bool:
			if !tv {
				continue
			}
		}
		fields[k] = v
	}
	snap.Fields = fields
	return snap
}
