package studentstore_test

import (
	"errors"
	"testing"
	"time"

	studentstore "github.com/dalemusser/admissions/internal/app/store/students"
	"github.com/dalemusser/admissions/internal/domain/models"
	"github.com/dalemusser/admissions/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func chance(v float64) *float64 { return &v }

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	st, err := store.Create(ctx, models.Student{
		FirstName:          "José",
		MiddleName:         "P.",
		LastName:           "Rizal",
		ProgramFirstChoice: "BSCS",
		EnrollmentChance:   chance(0.7235),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if st.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if st.Reference == "" {
		t.Error("expected a reference to be generated")
	}
	if st.FullName != "José P. Rizal" {
		t.Errorf("FullName: got %q", st.FullName)
	}
	if st.FullNameCI != "jose p. rizal" {
		t.Errorf("FullNameCI: got %q", st.FullNameCI)
	}
	if st.EnrollmentChance == nil || *st.EnrollmentChance < 72.34 || *st.EnrollmentChance > 72.36 {
		t.Errorf("EnrollmentChance: got %v, want 72.35", st.EnrollmentChance)
	}

	got, err := store.GetByReference(ctx, st.Reference)
	if err != nil {
		t.Fatalf("GetByReference failed: %v", err)
	}
	if got.ID != st.ID {
		t.Errorf("GetByReference returned %v, want %v", got.ID, st.ID)
	}
}

func TestStore_Create_DuplicateReference(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Student{Reference: "ref-1", FirstName: "A", LastName: "B"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.Student{Reference: "ref-1", FirstName: "C", LastName: "D"})
	if !errors.Is(err, studentstore.ErrDuplicateReference) {
		t.Errorf("second Create: got %v, want ErrDuplicateReference", err)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if !errors.Is(err, studentstore.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestStore_SetStudentID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	st := fx.CreateStudent(ctx, "Ana", "Cruz", "BSIT")
	if st.Status() != models.StatusNotEnrolled {
		t.Fatalf("new student status = %q", st.Status())
	}
	if err := store.SetStudentID(ctx, st.ID, " 2025-00012 "); err != nil {
		t.Fatalf("SetStudentID failed: %v", err)
	}
	got, err := store.GetByID(ctx, st.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.StudentID != "2025-00012" || got.Status() != models.StatusEnrolled {
		t.Errorf("StudentID=%q Status=%q", got.StudentID, got.Status())
	}

	if err := store.SetStudentID(ctx, primitive.NewObjectID(), "x"); !errors.Is(err, studentstore.ErrNotFound) {
		t.Errorf("unknown id: got %v, want ErrNotFound", err)
	}
}

func TestStore_Search(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateStudentWith(ctx, models.Student{FirstName: "María", LastName: "Santos", ProgramFirstChoice: "BSCS", EnrollmentChance: chance(72.35)})
	fx.CreateStudentWith(ctx, models.Student{FirstName: "Mario", LastName: "Reyes", ProgramFirstChoice: "BSIT", EnrollmentChance: chance(40)})
	fx.CreateStudentWith(ctx, models.Student{FirstName: "Liza", LastName: "Tan", ProgramFirstChoice: "BSCS"})

	tests := []struct {
		name   string
		filter studentstore.Filter
		want   int
	}{
		{"empty filter matches all", studentstore.Filter{}, 3},
		{"name ignores case and accents", studentstore.Filter{Name: "MARI"}, 2},
		{"program substring", studentstore.Filter{Program: "cs"}, 2},
		{"chance substring", studentstore.Filter{Chance: "72.3"}, 1},
		{"unscored chance", studentstore.Filter{Chance: "N/A"}, 1},
		{"combined filters", studentstore.Filter{Name: "mar", Program: "BSIT"}, 1},
		{"regex characters are literal", studentstore.Filter{Name: ".*"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Search(ctx, tt.filter, 0, 50)
			if err != nil {
				t.Fatalf("Search failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d rows, want %d", len(got), tt.want)
			}
		})
	}

	page, err := store.Search(ctx, studentstore.Filter{Chance: "Enrollment"}, 1, 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(page) != 1 {
		t.Errorf("paged chance search: got %d rows, want 1", len(page))
	}
}

func TestStore_Aggregations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateStudentWith(ctx, models.Student{FirstName: "A", LastName: "A", Gender: "Female", ProgramFirstChoice: "BSCS"})
	fx.CreateStudentWith(ctx, models.Student{FirstName: "B", LastName: "B", Gender: "Female", ProgramFirstChoice: "BSIT"})
	enrolled := fx.CreateStudentWith(ctx, models.Student{FirstName: "C", LastName: "C", ProgramFirstChoice: "BSCS"})
	if err := store.SetStudentID(ctx, enrolled.ID, "S-1"); err != nil {
		t.Fatalf("SetStudentID failed: %v", err)
	}

	genders, err := store.CountBy(ctx, "gender")
	if err != nil {
		t.Fatalf("CountBy failed: %v", err)
	}
	if len(genders) != 2 || genders[0].Label != "Female" || genders[0].Count != 2 || genders[1].Label != "Unspecified" {
		t.Errorf("genders = %+v", genders)
	}

	if _, err := store.CountBy(ctx, "email"); err == nil {
		t.Error("expected error grouping by a non-whitelisted field")
	}

	status, err := store.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}
	if status[0].Count != 1 || status[1].Count != 2 {
		t.Errorf("status = %+v", status)
	}

	months, err := store.CountByMonth(ctx, time.Now().AddDate(0, -1, 0))
	if err != nil {
		t.Fatalf("CountByMonth failed: %v", err)
	}
	var total int64
	for _, b := range months {
		total += b.Count
	}
	if total != 3 {
		t.Errorf("months = %+v, want 3 registrations", months)
	}
}

func TestStore_ScaleEnrollmentChance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	st := fx.CreateStudent(ctx, "A", "A", "BSCS")
	// Write a raw probability, bypassing the normalisation in Create.
	if _, err := db.Collection("students").UpdateByID(ctx, st.ID, bson.M{"$set": bson.M{"enrollment_chance": 0.5}}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	fx.CreateStudentWith(ctx, models.Student{FirstName: "B", LastName: "B", EnrollmentChance: chance(88)})

	dry, err := store.ScaleEnrollmentChance(ctx, true)
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if dry.Found != 1 || dry.Changed != 0 || !dry.DryRun {
		t.Errorf("dry run report = %+v", dry)
	}

	rep, err := store.ScaleEnrollmentChance(ctx, false)
	if err != nil {
		t.Fatalf("scale failed: %v", err)
	}
	if rep.Found != 1 || rep.Changed != 1 || rep.Items[0].New != 50 {
		t.Errorf("report = %+v", rep)
	}
	got, _ := store.GetByID(ctx, st.ID)
	if got.EnrollmentChance == nil || *got.EnrollmentChance != 50 {
		t.Errorf("stored chance = %v, want 50", got.EnrollmentChance)
	}
}
