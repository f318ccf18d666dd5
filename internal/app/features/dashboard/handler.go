// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/admissions/internal/app/features/errors"
	studentstore "github.com/dalemusser/admissions/internal/app/store/students"
	"github.com/dalemusser/admissions/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// StudentStore is the part of the student store the dashboard uses. Create
// serves the CSV import; everything else is read-only.
type StudentStore interface {
	Create(ctx context.Context, st models.Student) (models.Student, error)
	Search(ctx context.Context, f studentstore.Filter, skip, limit int) ([]models.Student, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Student, error)
	CountByMonth(ctx context.Context, since time.Time) ([]studentstore.Bucket, error)
	CountBy(ctx context.Context, field string) ([]studentstore.Bucket, error)
	CountByStatus(ctx context.Context) ([]studentstore.Bucket, error)
}

type Handler struct {
	Students StudentStore
	ErrLog   *errorsfeature.ErrorLogger
	Log      *zap.Logger

	now func() time.Time
}

func NewHandler(students StudentStore, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Students: students,
		ErrLog:   errLog,
		Log:      logger,
		now:      time.Now,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
