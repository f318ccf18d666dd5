package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	errorsfeature "github.com/dalemusser/admissions/internal/app/features/errors"
	studentstore "github.com/dalemusser/admissions/internal/app/store/students"
	"github.com/dalemusser/admissions/internal/domain/models"
	"go.uber.org/zap"
)

// creator records Create calls; the read methods are never reached.
type creator struct {
	StudentStore
	created []models.Student
	taken   map[string]bool
	fail    error
}

func (c *creator) Create(_ context.Context, st models.Student) (models.Student, error) {
	if c.fail != nil {
		return models.Student{}, c.fail
	}
	if c.taken[st.Reference] {
		return models.Student{}, studentstore.ErrDuplicateReference
	}
	c.created = append(c.created, st)
	return st, nil
}

func importWith(t *testing.T, store *creator, body string) (importVM, error) {
	t.Helper()
	logger := zap.NewNop()
	h := NewHandler(store, errorsfeature.NewErrorLogger(logger), logger)
	vm := h.importPage(httptest.NewRequest(http.MethodGet, importURL, nil))
	return h.importCSV(context.Background(), vm, strings.NewReader(body))
}

func TestImportCSV(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		taken       map[string]bool
		wantCreated int
		wantDups    []string
		wantError   string
	}{
		{
			name:        "creates each row",
			body:        "First Name,Last Name,Birth Date\nAna,Cruz,03/14/2006\nBen,Reyes,2007-01-31\n",
			wantCreated: 2,
		},
		{
			name:        "existing reference skipped",
			body:        "Reference,First Name,Last Name\nR-1,Ana,Cruz\nR-2,Ben,Reyes\n",
			taken:       map[string]bool{"R-1": true},
			wantCreated: 1,
			wantDups:    []string{"R-1"},
		},
		{
			name:      "bad row imports nothing",
			body:      "First Name,Last Name\nAna,Cruz\n,Reyes\n",
			wantError: "Line 3: missing first name",
		},
		{
			name:      "no header",
			body:      "Ana,Cruz\n",
			wantError: "first row must name the columns",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &creator{taken: tc.taken}
			vm, err := importWith(t, store, tc.body)
			if err != nil {
				t.Fatalf("importCSV: %v", err)
			}
			if tc.wantError != "" {
				if !strings.Contains(string(vm.Error), tc.wantError) {
					t.Errorf("error = %q, want %q", vm.Error, tc.wantError)
				}
				if len(store.created) != 0 || vm.ShowSummary {
					t.Errorf("created %d rows on a rejected file", len(store.created))
				}
				return
			}
			if vm.Error != "" || !vm.ShowSummary {
				t.Fatalf("vm = %+v, want a summary", vm)
			}
			if vm.Created != tc.wantCreated || len(store.created) != tc.wantCreated {
				t.Errorf("created = %d (store %d), want %d", vm.Created, len(store.created), tc.wantCreated)
			}
			if strings.Join(vm.Duplicates, ",") != strings.Join(tc.wantDups, ",") {
				t.Errorf("duplicates = %v, want %v", vm.Duplicates, tc.wantDups)
			}
		})
	}
}

func TestImportCSV_NormalizesBirthDate(t *testing.T) {
	store := &creator{}
	if _, err := importWith(t, store, "Full Name,Birth Date\nAna Cruz,14/03/2006\n"); err != nil {
		t.Fatal(err)
	}
	if len(store.created) != 1 || store.created[0].BirthDate != "2006-03-14" {
		t.Errorf("created = %+v", store.created)
	}
}

func TestImportCSV_StoreFailure(t *testing.T) {
	store := &creator{fail: errors.New("mongo down")}
	if _, err := importWith(t, store, "First Name,Last Name\nAna,Cruz\n"); err == nil {
		t.Fatal("want the store error")
	}
}
