package drafts

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	draftstore "github.com/dalemusser/admissions/internal/app/store/drafts"
	"github.com/dalemusser/admissions/internal/domain/models"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// draftIDKey is the cookie value holding the applicant's draft id.
const draftIDKey = "draft_id"

// MongoBackend keeps the snapshot in the drafts collection under one id.
type MongoBackend struct {
	store *draftstore.Store
	id    string
}

// NewMongoBackend binds a draft id to the store.
func NewMongoBackend(store *draftstore.Store, draftID string) *MongoBackend {
	return &MongoBackend{store: store, id: draftID}
}

// Read implements Backend.
func (b *MongoBackend) Read(ctx context.Context) (models.DraftSnapshot, bool, error) {
	d, err := b.store.Get(ctx, b.id)
	if errors.Is(err, draftstore.ErrNotFound) {
		return models.DraftSnapshot{}, false, nil
	}
	if err != nil {
		return models.DraftSnapshot{}, false, err
	}
	return d.Snapshot, true, nil
}

// Write implements Backend.
func (b *MongoBackend) Write(ctx context.Context, snap models.DraftSnapshot) error {
	return b.store.Put(ctx, b.id, snap)
}

// Remove implements Backend.
func (b *MongoBackend) Remove(ctx context.Context) error {
	return b.store.Delete(ctx, b.id)
}

// EnsureDraftID returns the draft id carried by the cookie named name,
// minting and saving a new one when absent.
func EnsureDraftID(store sessions.Store, name string, w http.ResponseWriter, r *http.Request) (string, error) {
	sess, err := store.Get(r, name)
	if sess == nil {
		return "", fmt.Errorf("open draft cookie: %w", err)
	}
	if id, ok := sess.Values[draftIDKey].(string); ok && id != "" {
		return id, nil
	}
	id := uuid.NewString()
	sess.Values[draftIDKey] = id
	if err := sess.Save(r, w); err != nil {
		return "", fmt.Errorf("save draft cookie: %w", err)
	}
	return id, nil
}
