// internal/app/store/students/studentstore.go
package studentstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/admissions/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound           = errors.New("student not found")
	ErrDuplicateReference = errors.New("a registration with this reference already exists")
)

// chanceCeiling is the largest value still read as a 0..1 probability.
const chanceCeiling = 1.0000001

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("students")}
}

// EnsureIndexes creates the indexes used by lookups, table search and charts.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "reference", Value: 1}},
			Options: options.Index().SetName("uniq_students_reference").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_students_name"),
		},
		{
			Keys:    bson.D{{Key: "program_first_choice_ci", Value: 1}},
			Options: options.Index().SetName("idx_students_program"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_students_created"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a registration. It assigns the ID, a reference when
// none is set, folded search fields, timestamps, and stores a
// probability-style enrollment chance as a percentage.
func (s *Store) Create(ctx context.Context, st models.Student) (models.Student, error) {
	now := time.Now().UTC()
	st.ID = primitive.NewObjectID()
	if st.Reference == "" {
		st.Reference = uuid.NewString()
	}
	if st.FullName == "" {
		st.FullName = composeName(st.FirstName, st.MiddleName, st.LastName, st.Suffix)
	}
	st.FullNameCI = text.Fold(st.FullName)
	st.ProgramFirstCI = text.Fold(st.ProgramFirstChoice)
	if st.EnrollmentChance != nil {
		v := models.NormalizeChance(*st.EnrollmentChance)
		st.EnrollmentChance = &v
	}
	st.CreatedAt = now
	st.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, st); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Student{}, ErrDuplicateReference
		}
		return models.Student{}, err
	}
	return st, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Student, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Store) GetByReference(ctx context.Context, ref string) (models.Student, error) {
	return s.findOne(ctx, bson.M{"reference": ref})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.Student, error) {
	var st models.Student
	err := s.c.FindOne(ctx, filter).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Student{}, ErrNotFound
	}
	if err != nil {
		return models.Student{}, err
	}
	return st, nil
}

// SetStudentID marks a registration as enrolled. An empty id reverts it.
func (s *Store) SetStudentID(ctx context.Context, id primitive.ObjectID, studentID string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"student_id": strings.TrimSpace(studentID),
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetEnrollmentChance stores a chance, normalising probabilities to percentages.
func (s *Store) SetEnrollmentChance(ctx context.Context, id primitive.ObjectID, chance float64) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"enrollment_chance": models.NormalizeChance(chance),
		"updated_at":        time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Filter selects rows of the admin students table. Empty fields match all.
type Filter struct {
	Name    string // substring of the full name, case and accent insensitive
	Program string // substring of the first program choice
	Chance  string // substring of the displayed chance, e.g. "72.3"
}

// IsZero reports whether no filter is set.
func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Name) == "" && strings.TrimSpace(f.Program) == "" && strings.TrimSpace(f.Chance) == ""
}

// BSON returns the Mongo filter for Name and Program. Chance is matched
// on the formatted value by MatchChance.
func (f Filter) BSON() bson.M {
	q := bson.M{}
	if n := text.Fold(strings.TrimSpace(f.Name)); n != "" {
		q["full_name_ci"] = bson.M{"$regex": regexp.QuoteMeta(n)}
	}
	if p := text.Fold(strings.TrimSpace(f.Program)); p != "" {
		q["program_first_choice_ci"] = bson.M{"$regex": regexp.QuoteMeta(p)}
	}
	return q
}

// MatchChance reports whether st's displayed chance contains f.Chance.
func (f Filter) MatchChance(st models.Student) bool {
	c := strings.TrimSpace(f.Chance)
	if c == "" {
		return true
	}
	return strings.Contains(st.EnrollmentChanceDisplay(), c)
}

// Search returns up to limit students matching f, newest first, skipping
// the first skip matches.
func (s *Store) Search(ctx context.Context, f Filter, skip, limit int) ([]models.Student, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if strings.TrimSpace(f.Chance) == "" {
		opts.SetSkip(int64(skip)).SetLimit(int64(limit))
	}
	cur, err := s.c.Find(ctx, f.BSON(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Student
	if strings.TrimSpace(f.Chance) == "" {
		if err := cur.All(ctx, &out); err != nil {
			return nil, err
		}
		return out, nil
	}

	// Chance is filtered on its display form, so paging happens here.
	matched := 0
	for cur.Next(ctx) {
		var st models.Student
		if err := cur.Decode(&st); err != nil {
			return nil, err
		}
		if !f.MatchChance(st) {
			continue
		}
		matched++
		if matched <= skip {
			continue
		}
		out = append(out, st)
		if len(out) >= limit {
			break
		}
	}
	return out, cur.Err()
}

// Count returns the number of registrations matching filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

// Bucket is one bar or slice of a dashboard chart.
type Bucket struct {
	Label string `bson:"_id" json:"label"`
	Count int64  `bson:"count" json:"count"`
}

// CountByMonth counts registrations per "YYYY-MM" of creation since the given time.
func (s *Store) CountByMonth(ctx context.Context, since time.Time) ([]Bucket, error) {
	return s.aggregate(ctx, []bson.M{
		{"$match": bson.M{"created_at": bson.M{"$gte": since}}},
		{"$group": bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$created_at"}},
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"_id": 1}},
	})
}

// CountBy counts registrations per distinct value of field, largest first.
// Missing or empty values are grouped under "Unspecified".
func (s *Store) CountBy(ctx context.Context, field string) ([]Bucket, error) {
	switch field {
	case "school_year", "program_first_choice", "gender", "campus_code", "student_type":
	default:
		return nil, fmt.Errorf("studentstore: field %q cannot be grouped", field)
	}
	return s.aggregate(ctx, []bson.M{
		{"$group": bson.M{
			"_id": bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{bson.M{"$ifNull": bson.A{"$" + field, ""}}, bson.A{"", nil}}},
				"Unspecified",
				"$" + field,
			}},
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}},
	})
}

// CountByStatus counts enrolled versus not-enrolled registrations.
func (s *Store) CountByStatus(ctx context.Context) ([]Bucket, error) {
	enrolled, err := s.c.CountDocuments(ctx, bson.M{"student_id": bson.M{"$nin": bson.A{"", nil}}})
	if err != nil {
		return nil, err
	}
	total, err := s.c.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	return []Bucket{
		{Label: models.StatusEnrolled, Count: enrolled},
		{Label: models.StatusNotEnrolled, Count: total - enrolled},
	}, nil
}

func (s *Store) aggregate(ctx context.Context, pipeline []bson.M) ([]Bucket, error) {
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []Bucket
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ScaledChance is one probability-style value found by ScaleEnrollmentChance.
type ScaledChance struct {
	ID  primitive.ObjectID
	Old float64
	New float64
}

// ScaleReport summarises a ScaleEnrollmentChance run.
type ScaleReport struct {
	Found   int
	Changed int
	DryRun  bool
	Items   []ScaledChance
}

// ScaleEnrollmentChance rewrites every stored chance <= 1 as a
// percentage. With dryRun it only reports what would change.
func (s *Store) ScaleEnrollmentChance(ctx context.Context, dryRun bool) (ScaleReport, error) {
	rep := ScaleReport{DryRun: dryRun}
	cur, err := s.c.Find(ctx,
		bson.M{"enrollment_chance": bson.M{"$ne": nil, "$lte": chanceCeiling}},
		options.Find().SetProjection(bson.M{"enrollment_chance": 1}),
	)
	if err != nil {
		return rep, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc struct {
			ID     primitive.ObjectID `bson:"_id"`
			Chance float64            `bson:"enrollment_chance"`
		}
		if err := cur.Decode(&doc); err != nil {
			return rep, err
		}
		item := ScaledChance{ID: doc.ID, Old: doc.Chance, New: doc.Chance * 100.0}
		rep.Found++
		rep.Items = append(rep.Items, item)
		if dryRun {
			continue
		}
		if _, err := s.c.UpdateByID(ctx, doc.ID, bson.M{"$set": bson.M{"enrollment_chance": item.New}}); err != nil {
			return rep, fmt.Errorf("scale %s: %w", doc.ID.Hex(), err)
		}
		rep.Changed++
	}
	return rep, cur.Err()
}

func composeName(parts ...string) string {
	var b []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			b = append(b, p)
		}
	}
	return strings.Join(b, " ")
}
