// internal/app/store/drafts/draftstore.go
package draftstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/admissions/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no draft exists for an id.
var ErrNotFound = errors.New("draft not found")

// Store persists registration drafts keyed by an opaque draft id.
type Store struct {
	c *mongo.Collection
}

// New creates a new drafts Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("drafts")}
}

// EnsureIndexes creates the unique draft id index and the expiry scan index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "draft_id", Value: 1}},
			Options: options.Index().SetName("uniq_drafts_draft_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetName("idx_drafts_updated"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Get returns the draft for id.
func (s *Store) Get(ctx context.Context, draftID string) (models.Draft, error) {
	var d models.Draft
	err := s.c.FindOne(ctx, bson.M{"draft_id": draftID}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Draft{}, ErrNotFound
	}
	return d, err
}

// Put replaces the snapshot for id, creating the draft if needed.
func (s *Store) Put(ctx context.Context, draftID string, snap models.DraftSnapshot) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"draft_id": draftID},
		bson.M{
			"$set":         bson.M{"snapshot": snap, "updated_at": now},
			"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// Delete removes the draft for id. Deleting a missing draft is not an error.
func (s *Store) Delete(ctx context.Context, draftID string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"draft_id": draftID})
	return err
}

// DeleteOlderThan removes drafts last written before cutoff.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"updated_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Count returns the number of stored drafts.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
