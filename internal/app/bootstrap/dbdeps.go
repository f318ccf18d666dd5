// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	draftstore "github.com/dalemusser/admissions/internal/app/store/drafts"
	studentstore "github.com/dalemusser/admissions/internal/app/store/students"
	"github.com/dalemusser/admissions/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Students *studentstore.Store
	Drafts   *draftstore.Store

	// DraftCleanup is nil unless drafts are kept in MongoDB.
	DraftCleanup *workers.DraftCleanup
}
