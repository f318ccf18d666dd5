// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	registrationfeature "github.com/dalemusser/admissions/internal/app/features/registration"
	draftstore "github.com/dalemusser/admissions/internal/app/store/drafts"
	studentstore "github.com/dalemusser/admissions/internal/app/store/students"
	"github.com/dalemusser/admissions/internal/app/system/timeouts"
	"github.com/dalemusser/admissions/internal/app/system/validators"
	"github.com/dalemusser/admissions/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB client, verifies it with a ping and builds
// the stores on top of it.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().ApplyURI(appCfg.MongoURI)
	if appCfg.MongoMaxPoolSize > 0 {
		opts.SetMaxPoolSize(appCfg.MongoMaxPoolSize)
	}
	if appCfg.MongoMinPoolSize > 0 {
		opts.SetMinPoolSize(appCfg.MongoMinPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(appCfg.MongoDatabase)
	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Students:      studentstore.New(db),
		Drafts:        draftstore.New(db),
	}
	if appCfg.DraftBackend == registrationfeature.DraftBackendMongo {
		deps.DraftCleanup = workers.NewDraftCleanup(deps.Drafts, logger, appCfg.DraftCleanupInterval, appCfg.DraftTTL)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool", appCfg.MongoMaxPoolSize))
	return deps, nil
}

// EnsureSchema creates the collections with their validators, then the
// indexes the stores rely on.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), logger, "ensure schema")
	defer cancel()

	if err := validators.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		// Not fatal: some servers reject collMod.
		logger.Warn("collection validators incomplete", zap.Error(err))
	}
	if err := deps.Students.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("student indexes: %w", err)
	}
	if err := deps.Drafts.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("draft indexes: %w", err)
	}
	return nil
}
