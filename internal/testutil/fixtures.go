package testutil

import (
	"context"
	"net/http"
	"testing"

	studentstore "github.com/dalemusser/admissions/internal/app/store/students"
	"github.com/dalemusser/admissions/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// CreateStudent stores a registration with the given names and program.
func (f *Fixtures) CreateStudent(ctx context.Context, first, last, program string) models.Student {
	f.t.Helper()
	return f.CreateStudentWith(ctx, models.Student{
		FirstName:          first,
		LastName:           last,
		ProgramFirstChoice: program,
		SchoolYear:         "2025-2026",
		SchoolTerm:         "1st",
		Gender:             "Female",
	})
}

// CreateStudentWith stores st as given.
func (f *Fixtures) CreateStudentWith(ctx context.Context, st models.Student) models.Student {
	f.t.Helper()
	created, err := studentstore.New(f.db).Create(ctx, st)
	if err != nil {
		f.t.Fatalf("CreateStudent: %v", err)
	}
	return created
}
