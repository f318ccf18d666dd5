// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the students and drafts collections if missing and
// attaches their JSON-Schema validators. Servers without collMod support
// (some DocumentDB versions) are logged and skipped.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema, logger); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("students", studentsSchema())
	ensure("drafts", draftsSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists reports whether name is already in db.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection creates name unless it exists. created is true only
// when this call made it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		logger.Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			logger.Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	logger.Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M, logger *zap.Logger) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	logger.Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

// studentsSchema requires what every stored registration carries. The
// optional form fields stay unconstrained so the form can grow without
// a migration.
func studentsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"reference", "full_name", "first_name", "last_name", "created_at"},
			"properties": bson.M{
				"reference":             bson.M{"bsonType": "string", "minLength": 1},
				"full_name":             bson.M{"bsonType": "string"},
				"full_name_ci":          bson.M{"bsonType": "string"},
				"first_name":            bson.M{"bsonType": "string", "minLength": 1},
				"last_name":             bson.M{"bsonType": "string", "minLength": 1},
				"requirement_agreement": bson.M{"bsonType": "bool"},
				"enrollment_chance":     bson.M{"bsonType": bson.A{"double", "int", "long"}, "minimum": 0, "maximum": 100},
				"age_at_enrollment":     bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"present":               bson.M{"bsonType": "object"},
				"permanent":             bson.M{"bsonType": "object"},
				"created_at":            bson.M{"bsonType": "date"},
				"updated_at":            bson.M{"bsonType": "date"},
			},
		},
	}
}

func draftsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"draft_id", "snapshot", "updated_at"},
			"properties": bson.M{
				"draft_id": bson.M{"bsonType": "string", "minLength": 1},
				"snapshot": bson.M{
					"bsonType": "object",
					"required": bson.A{"fields"},
					"properties": bson.M{
						"fields":             bson.M{"bsonType": "object"},
						"last_saved_section": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
						"saved_at":           bson.M{"bsonType": "date"},
					},
				},
				"updated_at": bson.M{"bsonType": "date"},
			},
		},
	}
}
