package dashboard

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	errorsfeature "github.com/dalemusser/admissions/internal/app/features/errors"
	studentstore "github.com/dalemusser/admissions/internal/app/store/students"
	"github.com/dalemusser/admissions/internal/app/system/normalize"
	"github.com/dalemusser/admissions/internal/app/system/timeouts"
	"github.com/dalemusser/admissions/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeatureRecord is the flat export of one registration used by offline
// scoring. Categorical values are uppercased; missing numbers are null.
type FeatureRecord struct {
	ID                   string `json:"ID"`
	SchoolYear           any    `json:"School Year"`
	SchoolTerm           *int   `json:"School Term"`
	CampusCode           string `json:"Campus Code"`
	ProgramFirstChoice   string `json:"Program (First Choice)"`
	ProgramSecondChoice  string `json:"Program (Second Choice)"`
	EntryLevel           string `json:"Entry Level"`
	FullName             string `json:"Full Name"`
	LastName             string `json:"Last Name"`
	FirstName            string `json:"First Name"`
	Suffix               string `json:"Suffix"`
	MiddleName           string `json:"Middle Name"`
	AgeAtEnrollment      *int   `json:"Age at Enrollment"`
	BirthDate            string `json:"Birth Date,omitempty"`
	BirthPlace           string `json:"Birth Place,omitempty"`
	BirthCity            string `json:"Birth City,omitempty"`
	BirthProvince        string `json:"Place of Birth (Province),omitempty"`
	Gender               string `json:"Gender"`
	CitizenOf            string `json:"Citizen of"`
	Religion             string `json:"Religion"`
	CivilStatus          string `json:"Civil Status"`
	CurrentRegion        string `json:"Current Region"`
	CurrentProvince      string `json:"Current Province"`
	CurrentCity          string `json:"City/Municipality"`
	CurrentBarangay      string `json:"Current Brgy."`
	CurrentStreet        string `json:"Current Street"`
	CurrentPostalCode    *int   `json:"Current Postal Code"`
	PermanentCountry     string `json:"Permanent Country"`
	PermanentRegion      string `json:"Permanent Region"`
	PermanentProvince    string `json:"Permanent Province"`
	PermanentCity        string `json:"Permanent City"`
	PermanentBarangay    string `json:"Permanent Brgy."`
	PermanentStreet      string `json:"Permanent Street"`
	PermanentPostalCode  *int   `json:"Permanent Postal Code"`
	Disability           int    `json:"Disability"`
	Indigenous           int    `json:"Indigenous"`
	BirthCountry         string `json:"Birth Country"`
	RequirementAgreement int    `json:"Requirement Agreement"`
	StudentType          string `json:"Student Type"`
	LastSchoolAttended   string `json:"Last School Attended"`
	SchoolType           string `json:"School Type"`
	Status               string `json:"Status"`
}

// NewFeatureRecord flattens st.
func NewFeatureRecord(st models.Student) FeatureRecord {
	up := normalize.Upper
	rec := FeatureRecord{
		ID:                   st.ID.Hex(),
		SchoolYear:           schoolYear(st.SchoolYear),
		SchoolTerm:           schoolTerm(st.SchoolTerm),
		CampusCode:           up(st.CampusCode),
		ProgramFirstChoice:   up(st.ProgramFirstChoice),
		ProgramSecondChoice:  up(st.ProgramSecondChoice),
		EntryLevel:           up(st.EntryLevel),
		FullName:             up(st.FullName),
		LastName:             up(st.LastName),
		FirstName:            up(st.FirstName),
		Suffix:               st.Suffix,
		MiddleName:           up(st.MiddleName),
		AgeAtEnrollment:      st.AgeAtEnrollment,
		BirthDate:            st.BirthDate,
		BirthPlace:           birthPlace(st),
		BirthCity:            st.BirthCity,
		BirthProvince:        st.BirthProvince,
		Gender:               up(st.Gender),
		CitizenOf:            up(st.CitizenOf),
		Religion:             st.Religion,
		CivilStatus:          up(st.CivilStatus),
		CurrentRegion:        st.Present.Region,
		CurrentProvince:      st.Present.Province,
		CurrentCity:          st.Present.City,
		CurrentBarangay:      st.Present.Barangay,
		CurrentStreet:        st.Present.Street,
		CurrentPostalCode:    atoi(st.Present.PostalCode),
		PermanentCountry:     up(st.Permanent.Country),
		PermanentRegion:      st.Permanent.Region,
		PermanentProvince:    st.Permanent.Province,
		PermanentCity:        st.Permanent.City,
		PermanentBarangay:    st.Permanent.Barangay,
		PermanentStreet:      st.Permanent.Street,
		PermanentPostalCode:  atoi(st.Permanent.PostalCode),
		Disability:           flag(st.Disability),
		Indigenous:           flag(st.Indigenous),
		BirthCountry:         up(st.BirthCountry),
		RequirementAgreement: flag(st.RequirementAgreement),
		StudentType:          st.StudentType,
		LastSchoolAttended:   st.LastSchoolAttended,
		SchoolType:           up(st.SchoolType),
		Status:               strings.ToUpper(st.Status()),
	}
	return rec
}

// schoolYear turns "2025-2026" into 2026. Anything else is kept as text.
func schoolYear(v string) any {
	if i := strings.LastIndex(v, "-"); i >= 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(v[i+1:])); err == nil {
			return n
		}
	}
	if v == "" {
		return nil
	}
	return v
}

// schoolTerm turns "1st", "2nd" or "3" into its number.
func schoolTerm(v string) *int {
	return atoi(strings.TrimRight(strings.TrimSpace(v), "stndrdhSTNDRDH"))
}

// birthPlace joins city and province; it falls back to the free-text place.
func birthPlace(st models.Student) string {
	var parts []string
	for _, p := range []string{st.BirthCity, st.BirthProvince} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return st.BirthPlace
	}
	return strings.Join(parts, ", ")
}

func atoi(v string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return nil
	}
	return &n
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ServeFeatures returns the flat record of one student.
func (h *Handler) ServeFeatures(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad student id", err, "Unknown student.")
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "student features")
	defer cancel()

	st, err := h.Students.GetByID(ctx, id)
	switch {
	case errors.Is(err, studentstore.ErrNotFound):
		errorsfeature.RenderMessage(w, r, http.StatusNotFound, "Not found", "No such student.", "/dashboard")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "load student", err, "The student could not be loaded.", "/dashboard")
		return
	}
	writeJSON(w, NewFeatureRecord(st))
}
