package dashboard

import (
	"net/http"

	studentstore "github.com/dalemusser/admissions/internal/app/store/students"
	"github.com/dalemusser/admissions/internal/app/system/normalize"
	"github.com/dalemusser/admissions/internal/app/system/paging"
	"github.com/dalemusser/admissions/internal/app/system/timeouts"
	"github.com/dalemusser/admissions/internal/app/system/viewdata"
	"github.com/dalemusser/admissions/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
)

type studentRow struct {
	ID      string
	Name    string
	Program string
	Chance  string
	Status  string
	Created string
}

type tableVM struct {
	Filter studentstore.Filter
	Rows   []studentRow
	Range  paging.Range
}

type pageVM struct {
	viewdata.BaseVM
	Table tableVM
}

// ServeDashboard renders the admin page with the first page of the table.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	table, err := h.table(r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard students", err, "The student list is unavailable.", "/")
		return
	}
	templates.Render(w, r, "dashboard_page", pageVM{
		BaseVM: viewdata.NewBaseVM(r, "Admin Dashboard", "/"),
		Table:  table,
	})
}

// ServeStudents returns the students table. Empty filters match all, so
// a reset is a request without them.
func (h *Handler) ServeStudents(w http.ResponseWriter, r *http.Request) {
	table, err := h.table(r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard students", err, "The student list is unavailable.", "/dashboard")
		return
	}
	if r.Header.Get("HX-Request") == "true" {
		templates.RenderSnippet(w, "dashboard_students", table)
		return
	}
	templates.Render(w, r, "dashboard_page", pageVM{
		BaseVM: viewdata.NewBaseVM(r, "Admin Dashboard", "/"),
		Table:  table,
	})
}

func (h *Handler) table(r *http.Request) (tableVM, error) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "students table")
	defer cancel()

	f := filterFrom(r)
	start := paging.ParseStart(r)
	skip, limit := paging.Window(start)
	list, err := h.Students.Search(ctx, f, skip, limit)
	if err != nil {
		return tableVM{}, err
	}
	rng := paging.Trim(&list, start)

	rows := make([]studentRow, 0, len(list))
	for _, st := range list {
		rows = append(rows, toRow(st))
	}
	return tableVM{Filter: f, Rows: rows, Range: rng}, nil
}

func filterFrom(r *http.Request) studentstore.Filter {
	return studentstore.Filter{
		Name:    normalize.QueryParam(query.Get(r, "name")),
		Program: normalize.QueryParam(query.Get(r, "program")),
		Chance:  normalize.QueryParam(query.Get(r, "chance")),
	}
}

func toRow(st models.Student) studentRow {
	return studentRow{
		ID:      st.ID.Hex(),
		Name:    st.DisplayName(),
		Program: st.ProgramFirstChoice,
		Chance:  st.EnrollmentChanceDisplay(),
		Status:  st.Status(),
		Created: st.CreatedAt.Format("2006-01-02"),
	}
}
