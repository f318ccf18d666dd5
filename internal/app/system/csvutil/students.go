// internal/app/system/csvutil/students.go
package csvutil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/admissions/internal/domain/models"
)

// birthDateLayouts are tried in order; month-first wins when a date reads
// both ways.
var birthDateLayouts = []string{"2006-01-02", "01/02/2006", "02/01/2006"}

// column binds one CSV header to a Student field. A nil set marks an
// export-only column.
type column struct {
	header string
	get    func(*models.Student) string
	set    func(*models.Student, string) error
}

func textCol(header string, field func(*models.Student) *string) column {
	return column{
		header: header,
		get:    func(s *models.Student) string { return *field(s) },
		set:    func(s *models.Student, v string) error { *field(s) = v; return nil },
	}
}

func flagCol(header string, field func(*models.Student) *bool) column {
	return column{
		header: header,
		get:    func(s *models.Student) string { return yesNo(*field(s)) },
		set: func(s *models.Student, v string) error {
			b, err := parseBool(v)
			if err != nil {
				return err
			}
			*field(s) = b
			return nil
		},
	}
}

var columns = []column{
	{header: "ID", get: func(s *models.Student) string {
		if s.ID.IsZero() {
			return ""
		}
		return s.ID.Hex()
	}},
	textCol("Reference", func(s *models.Student) *string { return &s.Reference }),
	textCol("Student ID", func(s *models.Student) *string { return &s.StudentID }),
	textCol("School Year", func(s *models.Student) *string { return &s.SchoolYear }),
	textCol("School Term", func(s *models.Student) *string { return &s.SchoolTerm }),
	textCol("Campus Code", func(s *models.Student) *string { return &s.CampusCode }),
	textCol("Program (First Choice)", func(s *models.Student) *string { return &s.ProgramFirstChoice }),
	textCol("Program (Second Choice)", func(s *models.Student) *string { return &s.ProgramSecondChoice }),
	textCol("Full Name", func(s *models.Student) *string { return &s.FullName }),
	textCol("First Name", func(s *models.Student) *string { return &s.FirstName }),
	textCol("Middle Name", func(s *models.Student) *string { return &s.MiddleName }),
	textCol("Last Name", func(s *models.Student) *string { return &s.LastName }),
	textCol("Suffix", func(s *models.Student) *string { return &s.Suffix }),
	{header: "Birth Date", get: func(s *models.Student) string { return s.BirthDate }, set: setBirthDate},
	textCol("Birth Place", func(s *models.Student) *string { return &s.BirthPlace }),
	textCol("Birth City", func(s *models.Student) *string { return &s.BirthCity }),
	textCol("Place of Birth (Province)", func(s *models.Student) *string { return &s.BirthProvince }),
	textCol("Gender", func(s *models.Student) *string { return &s.Gender }),
	textCol("Citizen of", func(s *models.Student) *string { return &s.CitizenOf }),
	textCol("Religion", func(s *models.Student) *string { return &s.Religion }),
	textCol("Civil Status", func(s *models.Student) *string { return &s.CivilStatus }),
	textCol("Current Region", func(s *models.Student) *string { return &s.Present.Region }),
	textCol("Current Province", func(s *models.Student) *string { return &s.Present.Province }),
	textCol("City/Municipality", func(s *models.Student) *string { return &s.Present.City }),
	textCol("Current Brgy.", func(s *models.Student) *string { return &s.Present.Barangay }),
	textCol("Current Street", func(s *models.Student) *string { return &s.Present.Street }),
	textCol("Current Postal Code", func(s *models.Student) *string { return &s.Present.PostalCode }),
	textCol("Complete Present Address", func(s *models.Student) *string { return &s.Present.Complete }),
	textCol("Telephone No.", func(s *models.Student) *string { return &s.TelephoneNo }),
	textCol("Mobile Number", func(s *models.Student) *string { return &s.MobileNumber }),
	textCol("Email", func(s *models.Student) *string { return &s.Email }),
	textCol("Permanent Country", func(s *models.Student) *string { return &s.Permanent.Country }),
	textCol("Permanent Region", func(s *models.Student) *string { return &s.Permanent.Region }),
	textCol("Permanent Province", func(s *models.Student) *string { return &s.Permanent.Province }),
	textCol("Permanent City", func(s *models.Student) *string { return &s.Permanent.City }),
	textCol("Permanent Brgy.", func(s *models.Student) *string { return &s.Permanent.Barangay }),
	textCol("Permanent Street", func(s *models.Student) *string { return &s.Permanent.Street }),
	textCol("Permanent Postal Code", func(s *models.Student) *string { return &s.Permanent.PostalCode }),
	textCol("Complete Permanent Address", func(s *models.Student) *string { return &s.Permanent.Complete }),
	flagCol("Disability", func(s *models.Student) *bool { return &s.Disability }),
	flagCol("Indigenous", func(s *models.Student) *bool { return &s.Indigenous }),
	textCol("Birth Country", func(s *models.Student) *string { return &s.BirthCountry }),
	flagCol("Requirement Agreement", func(s *models.Student) *bool { return &s.RequirementAgreement }),
	textCol("Student Type", func(s *models.Student) *string { return &s.StudentType }),
	textCol("Last School Attended", func(s *models.Student) *string { return &s.LastSchoolAttended }),
	textCol("School Type", func(s *models.Student) *string { return &s.SchoolType }),
	{header: "Enrollment Chance", get: func(s *models.Student) string {
		if s.EnrollmentChance == nil {
			return ""
		}
		return strconv.FormatFloat(*s.EnrollmentChance, 'f', 2, 64)
	}, set: setChance},
	{header: "Enrolled", get: func(s *models.Student) string { return yesNo(s.StudentID != "") }},
}

// Headers returns the export header row.
func Headers() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.header
	}
	return out
}

// ParseOptions configures student CSV parsing.
type ParseOptions struct {
	// MaxRows limits data rows. 0 means MaxRows.
	MaxRows int
}

// ParseStudentsCSV reads a student CSV with a header row. Columns are
// matched to headers case-insensitively and unknown columns are ignored.
// Every data row is checked so all problems can be reported at once.
func ParseStudentsCSV(r io.Reader, opts ParseOptions) (*ParseResult, error) {
	limit := opts.MaxRows
	if limit <= 0 {
		limit = MaxRows
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &ParseResult{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	bound, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	res := &ParseResult{}
	seenRef := map[string]int{}
	rows := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, err
			}
			res.Errors = append(res.Errors, RowError{Line: pe.Line, Reason: pe.Err.Error()})
			continue
		}
		line, _ := cr.FieldPos(0)
		if blank(rec) {
			continue
		}
		rows++
		if rows > limit {
			return nil, fmt.Errorf("%w: more than %d", ErrTooManyRows, limit)
		}

		st, reason := parseRow(rec, bound)
		if reason == "" && st.Reference != "" {
			if first, dup := seenRef[st.Reference]; dup {
				reason = fmt.Sprintf("reference %s already used on line %d", st.Reference, first)
			} else {
				seenRef[st.Reference] = line
			}
		}
		if reason != "" {
			res.Errors = append(res.Errors, RowError{Line: line, Reason: reason, Raw: rec})
			continue
		}
		res.Students = append(res.Students, st)
	}
	return res, nil
}

// mapHeader returns, per CSV position, the column it fills (nil to skip).
func mapHeader(header []string) ([]*column, error) {
	byName := make(map[string]*column, len(columns))
	for i := range columns {
		if columns[i].set != nil {
			byName[strings.ToLower(columns[i].header)] = &columns[i]
		}
	}
	exportOnly := map[string]bool{"id": true, "enrolled": true}

	bound := make([]*column, len(header))
	known := 0
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if c, ok := byName[key]; ok {
			bound[i] = c
			known++
		} else if exportOnly[key] {
			known++
		}
	}
	if known == 0 {
		return nil, ErrNoHeader
	}
	return bound, nil
}

func parseRow(rec []string, bound []*column) (models.Student, string) {
	var st models.Student
	for i, raw := range rec {
		if i >= len(bound) || bound[i] == nil {
			continue
		}
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		if err := bound[i].set(&st, v); err != nil {
			return st, fmt.Sprintf("%s: %v", bound[i].header, err)
		}
	}

	if st.FirstName == "" && st.LastName == "" && st.FullName != "" {
		st.FirstName, st.LastName = splitName(st.FullName)
	}
	switch {
	case st.FirstName == "" && st.LastName == "":
		return st, "missing name"
	case st.FirstName == "":
		return st, "missing first name"
	case st.LastName == "":
		return st, "missing last name"
	}
	return st, ""
}

// splitName takes the last word as the surname.
func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) < 2 {
		return full, ""
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}

func setBirthDate(s *models.Student, v string) error {
	for _, layout := range birthDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			s.BirthDate = t.Format("2006-01-02")
			return nil
		}
	}
	return fmt.Errorf("unrecognised date %q", v)
}

func setChance(s *models.Student, v string) error {
	f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", v)
	}
	s.EnrollmentChance = &f
	return nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "1", "y", "yes", "true", "on":
		return true, nil
	case "0", "n", "no", "false", "off":
		return false, nil
	}
	return false, fmt.Errorf("expected yes or no, got %q", v)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// WriteStudentsCSV writes a header row then one row per student.
func WriteStudentsCSV(w io.Writer, list []models.Student) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers()); err != nil {
		return err
	}
	row := make([]string, len(columns))
	for i := range list {
		for j, c := range columns {
			row[j] = c.get(&list[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
