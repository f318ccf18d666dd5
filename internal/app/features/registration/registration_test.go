package registration

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	errorsfeature "github.com/dalemusser/admissions/internal/app/features/errors"
	studentstore "github.com/dalemusser/admissions/internal/app/store/students"
	"github.com/dalemusser/admissions/internal/app/system/auth"
	"github.com/dalemusser/admissions/internal/app/system/wizard"
	"github.com/dalemusser/admissions/internal/domain/models"
	"go.uber.org/zap"
)

// fakeGeo serves a two-branch hierarchy.
type fakeGeo struct{}

var geoData = map[string][]models.GeoOption{
	"region:":            {{Name: "Ilocos Region", Code: "010000000"}},
	"province:010000000": {{Name: "Ilocos Norte", Code: "012800000"}, {Name: "Pangasinan", Code: "015500000"}},
	"city:012800000":     {{Name: "Batac", Code: "012805000"}},
	"city:015500000":     {{Name: "Dagupan", Code: "015518000"}},
	"barangay:012805000": {{Name: "Ablan", Code: "012805001"}},
	"barangay:015518000": {{Name: "Bonuan", Code: "015518010"}},
}

func (fakeGeo) Children(_ context.Context, level models.GeoLevel, parent string) ([]models.GeoOption, error) {
	return geoData[string(level)+":"+parent], nil
}

// memStudents is an in-memory StudentStore.
type memStudents struct {
	mu    sync.Mutex
	byRef map[string]models.Student
}

func (m *memStudents) Create(_ context.Context, st models.Student) (models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byRef == nil {
		m.byRef = map[string]models.Student{}
	}
	if st.Reference == "" {
		st.Reference = "ref-1"
	}
	m.byRef[st.Reference] = st
	return st, nil
}

func (m *memStudents) GetByReference(_ context.Context, ref string) (models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.byRef[ref]
	if !ok {
		return models.Student{}, studentstore.ErrNotFound
	}
	return st, nil
}

func newTestHandler(t *testing.T) (*Handler, *memStudents) {
	t.Helper()
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager(strings.Repeat("k", 32), "", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	students := &memStudents{}
	h := NewHandler(wizard.DefaultForm(), sm, students, fakeGeo{}, nil, errorsfeature.NewErrorLogger(logger), logger)
	h.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	return h, students
}

// completeValues fills every required field of the default form.
func completeValues() url.Values {
	return url.Values{
		"schoolYear":      {"2026-2027"},
		"schoolTerm":      {"1st"},
		"campus":          {"MAIN"},
		"firstChoice":     {"BSCS"},
		"studentType":     {"New"},
		"firstName":       {"<b>Maria</b>"},
		"middleName":      {"Santos"},
		"lastName":        {"  Dela   Cruz "},
		"gender":          {"Female"},
		"civilStatus":     {"Single"},
		"birthDate":       {"2008-06-02"},
		"birthPlace":      {"Batac"},
		"nationality":     {"Filipino"},
		"presentRegion":   {"010000000"},
		"presentProvince": {"012800000"},
		"presentCity":     {"012805000"},
		"presentBarangay": {"012805001"},
		"presentStreet":   {"12 Rizal St"},
		"presentZip":      {"2906"},
		"presentAddress":  {"12 Rizal St, Ablan, Batac"},
		"sameAsPresent":   {"on"},
		"mobileNumber":    {"0917 123 4567"},
		"emailAddress":    {" Maria@Example.COM "},
		"guardianContact": {"0917-765-4321"},
		"lastSchool":      {"Batac National High School"},
		"truthfulInfo":    {"on"},
		"dataPrivacy":     {"on"},
	}
}

func TestBuildStudent(t *testing.T) {
	h, _ := newTestHandler(t)
	values := completeValues()
	addrs := h.hydrate(context.Background(), values)

	st := h.buildStudent(values, addrs, h.now())

	if st.FirstName != "Maria" {
		t.Errorf("FirstName = %q, want markup stripped", st.FirstName)
	}
	if st.LastName != "Dela Cruz" {
		t.Errorf("LastName = %q", st.LastName)
	}
	if st.Email != "maria@example.com" {
		t.Errorf("Email = %q", st.Email)
	}
	if st.MobileNumber != "09171234567" {
		t.Errorf("MobileNumber = %q", st.MobileNumber)
	}
	if !st.RequirementAgreement {
		t.Error("RequirementAgreement = false with both agreements checked")
	}
	if st.AgeAtEnrollment == nil || *st.AgeAtEnrollment != 17 {
		t.Errorf("AgeAtEnrollment = %v, want 17", st.AgeAtEnrollment)
	}
	if st.Present.City != "Batac" || st.Present.Barangay != "Ablan" || st.Present.Country != Country {
		t.Errorf("Present = %+v", st.Present)
	}
	if st.Permanent != st.Present {
		t.Errorf("Permanent = %+v, want copy of present", st.Permanent)
	}
	if st.CitizenOf != "Filipino" {
		t.Errorf("CitizenOf = %q", st.CitizenOf)
	}
}

func TestBuildStudent_OneAgreement(t *testing.T) {
	h, _ := newTestHandler(t)
	values := completeValues()
	values.Del("dataPrivacy")
	values.Del("sameAsPresent")
	values.Set("birthDate", "not a date")

	st := h.buildStudent(values, h.hydrate(context.Background(), values), h.now())
	if st.RequirementAgreement {
		t.Error("RequirementAgreement = true with one agreement")
	}
	if st.AgeAtEnrollment != nil {
		t.Errorf("AgeAtEnrollment = %d, want nil for bad date", *st.AgeAtEnrollment)
	}
	if st.Permanent.City != "" {
		t.Errorf("Permanent = %+v, want empty when not mirrored", st.Permanent)
	}
}

func TestSubmit_StoresAndRedirects(t *testing.T) {
	h, students := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/register/submit", strings.NewReader(completeValues().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/register/done/ref-1" {
		t.Errorf("Location = %q", loc)
	}
	st, err := students.GetByReference(context.Background(), "ref-1")
	if err != nil {
		t.Fatalf("student not stored: %v", err)
	}
	if st.ProgramFirstChoice != "BSCS" || st.Present.Province != "Ilocos Norte" {
		t.Errorf("stored = %+v", st)
	}
}

func TestSubmit_HTMXRedirect(t *testing.T) {
	h, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/register/submit", strings.NewReader(completeValues().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/register/done/ref-1" {
		t.Errorf("HX-Redirect = %q", got)
	}
}

func TestStep_BadDirection(t *testing.T) {
	h, _ := newTestHandler(t)
	for _, dir := range []string{"", "2", "forward"} {
		req := httptest.NewRequest(http.MethodPost, "/register/step", strings.NewReader("direction="+dir))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.Step(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("direction %q: status = %d, want 400", dir, rec.Code)
		}
	}
}

func TestState_RoundTripsThroughSession(t *testing.T) {
	h, _ := newTestHandler(t)
	st := wizard.NewFormState()
	st.Active = 2
	st.Completed[0], st.Completed[1] = true, true

	rec := httptest.NewRecorder()
	h.saveState(rec, httptest.NewRequest(http.MethodGet, "/register", nil), st)

	req := httptest.NewRequest(http.MethodPost, "/register/step", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	got := h.loadState(req)
	if got.Active != 2 || !got.IsCompleted(0) || !got.IsCompleted(1) || got.IsCompleted(2) {
		t.Errorf("state = %+v", got)
	}
}

func TestGeoBlocks_MirrorFollowsPresent(t *testing.T) {
	h, _ := newTestHandler(t)
	values := completeValues()
	values.Set("presentProvince", "015500000")

	blocks := h.geoBlocks(context.Background(), "present", models.LevelProvince, values)
	if len(blocks) != 2 {
		t.Fatalf("blocks = %d, want present and permanent", len(blocks))
	}
	if values.Get("presentCity") != "" || values.Get("presentBarangay") != "" {
		t.Errorf("descendants not cleared: city=%q barangay=%q", values.Get("presentCity"), values.Get("presentBarangay"))
	}

	perm := blocks[1]
	if !perm.OOB || !perm.Locked || perm.Group != "permanent" {
		t.Errorf("permanent block = %+v", perm)
	}
	for _, f := range perm.Fields {
		switch f.Name {
		case "permanentProvince":
			if f.Value != "015500000" {
				t.Errorf("permanent province = %q", f.Value)
			}
		case "permanentCity":
			if len(f.Geo) != 1 || f.Geo[0].Name != "Dagupan" {
				t.Errorf("permanent cities = %+v", f.Geo)
			}
		case "permanentStreet":
			if f.Value != "12 Rizal St" {
				t.Errorf("permanent street = %q", f.Value)
			}
		}
	}
}

func TestGeoBlocks_NoMirrorForPermanent(t *testing.T) {
	h, _ := newTestHandler(t)
	values := url.Values{"permanentRegion": {"010000000"}}

	blocks := h.geoBlocks(context.Background(), "permanent", models.LevelRegion, values)
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(blocks))
	}
	for _, f := range blocks[0].Fields {
		if f.Name == "permanentProvince" && len(f.Geo) != 2 {
			t.Errorf("provinces = %+v", f.Geo)
		}
	}
}

func TestMirrorBlock_OffResets(t *testing.T) {
	h, _ := newTestHandler(t)
	values := completeValues()
	values.Del("sameAsPresent")
	values.Set("permanentRegion", "010000000")
	values.Set("permanentStreet", "Old street")

	blk := h.mirrorBlock(context.Background(), values)
	if blk.Locked {
		t.Error("block locked with toggle off")
	}
	for _, f := range blk.Fields {
		if f.Value != "" {
			t.Errorf("%s = %q, want reset", f.Name, f.Value)
		}
		if f.Name == "permanentRegion" && len(f.Geo) != 1 {
			t.Errorf("regions = %+v, want reloaded", f.Geo)
		}
	}
}

func TestRenderSlip(t *testing.T) {
	st := models.Student{
		Reference:          "abc-123",
		FullName:           "Maria Santos Dela Cruz",
		ProgramFirstChoice: "BSCS",
		Present:            models.Address{Street: "12 Rizal St", City: "Batac"},
		CreatedAt:          time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC),
	}
	body, err := renderSlip(st, "Student Admission Form")
	if err != nil {
		t.Fatalf("renderSlip: %v", err)
	}
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Errorf("body does not start with a PDF header: %q", body[:8])
	}
}

func TestAddressLine(t *testing.T) {
	tests := []struct {
		in   models.Address
		want string
	}{
		{models.Address{Complete: "Full text"}, "Full text"},
		{models.Address{Street: "12 Rizal St", City: "Batac", Region: "Ilocos"}, "12 Rizal St, Batac, Ilocos"},
		{models.Address{}, ""},
	}
	for _, tt := range tests {
		if got := addressLine(tt.in); got != tt.want {
			t.Errorf("addressLine(%+v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
