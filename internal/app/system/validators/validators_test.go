package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/admissions/internal/app/system/validators"
	"github.com/dalemusser/admissions/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	collMap := make(map[string]bool)
	for _, name := range names {
		collMap[name] = true
	}
	for _, expected := range []string{"students", "drafts"} {
		if !collMap[expected] {
			t.Errorf("expected collection %q to exist", expected)
		}
	}
}

func TestStudentsValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	valid := bson.M{
		"reference":  "ref-1",
		"full_name":  "Juan Dela Cruz",
		"first_name": "Juan",
		"last_name":  "Dela Cruz",
		"created_at": time.Now(),
	}

	tests := []struct {
		name    string
		doc     bson.M
		wantErr bool
	}{
		{"valid", valid, false},
		{"missing reference", bson.M{"full_name": "X", "first_name": "X", "last_name": "Y", "created_at": time.Now()}, true},
		{"empty first name", bson.M{"reference": "ref-2", "full_name": "Y", "first_name": "", "last_name": "Y", "created_at": time.Now()}, true},
		{"chance out of range", bson.M{"reference": "ref-3", "full_name": "X Y", "first_name": "X", "last_name": "Y", "created_at": time.Now(), "enrollment_chance": 140.0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Collection("students").InsertOne(ctx, tt.doc)
			if (err != nil) != tt.wantErr {
				t.Errorf("InsertOne err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDraftsValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection("drafts").InsertOne(ctx, bson.M{
		"draft_id":   "d-1",
		"snapshot":   bson.M{"fields": bson.M{"first_name": "Juan"}, "last_saved_section": 1, "saved_at": time.Now()},
		"updated_at": time.Now(),
	})
	if err != nil {
		t.Errorf("Insert valid draft failed: %v", err)
	}

	_, err = db.Collection("drafts").InsertOne(ctx, bson.M{"draft_id": "d-2"})
	if err == nil {
		t.Error("expected validation error for a draft without a snapshot")
	}
}
