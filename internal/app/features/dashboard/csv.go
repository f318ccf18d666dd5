// internal/app/features/dashboard/csv.go
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"

	studentstore "github.com/dalemusser/admissions/internal/app/store/students"
	"github.com/dalemusser/admissions/internal/app/system/csvutil"
	"github.com/dalemusser/admissions/internal/app/system/timeouts"
	"github.com/dalemusser/admissions/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const importURL = "/dashboard/import"

type importVM struct {
	viewdata.BaseVM
	MaxRows int
	Error   template.HTML

	ShowSummary bool
	Created     int
	Duplicates  []string
}

// ServeExport streams the students matching the current filters as CSV.
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "students export")
	defer cancel()

	list, err := h.Students.Search(ctx, filterFrom(r), 0, csvutil.MaxRows)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "students export", err, "The export is unavailable.", "/dashboard")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="students-`+h.now().Format("20060102")+`.csv"`)
	if err := csvutil.WriteStudentsCSV(w, list); err != nil {
		h.Log.Warn("students export write failed", zap.Error(err), zap.Int("rows", len(list)))
	}
}

// ServeImport shows the upload form.
func (h *Handler) ServeImport(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "dashboard_import", h.importPage(r))
}

// HandleImport parses the uploaded file and creates a student per row.
// A file with any bad row imports nothing.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, csvutil.MaxUploadSize)

	vm := h.importPage(r)
	file, _, err := r.FormFile("csv")
	if err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			vm.Error = "CSV file is too large. Maximum size is 5 MB."
		} else {
			vm.Error = "Please choose a CSV file to upload."
		}
		templates.Render(w, r, "dashboard_import", vm)
		return
	}
	defer file.Close()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "students import")
	defer cancel()

	vm, err = h.importCSV(ctx, vm, file)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "students import", err, "A database error occurred during the import.", importURL)
		return
	}
	templates.Render(w, r, "dashboard_import", vm)
}

func (h *Handler) importPage(r *http.Request) importVM {
	return importVM{
		BaseVM:  viewdata.NewBaseVM(r, "Import Students", "/dashboard"),
		MaxRows: csvutil.MaxRows,
	}
}

// importCSV fills vm with the parse errors or the import summary. The
// returned error is a store failure; rows already created stay created.
func (h *Handler) importCSV(ctx context.Context, vm importVM, src io.Reader) (importVM, error) {
	res, err := csvutil.ParseStudentsCSV(src, csvutil.ParseOptions{})
	switch {
	case errors.Is(err, csvutil.ErrTooManyRows):
		vm.Error = template.HTML(fmt.Sprintf("The file has too many rows. Split it into files of at most %d students.", csvutil.MaxRows))
		return vm, nil
	case errors.Is(err, csvutil.ErrNoHeader):
		vm.Error = "The first row must name the columns, as in an exported file."
		return vm, nil
	case err != nil:
		vm.Error = template.HTML(template.HTMLEscapeString("The file could not be read as CSV: " + err.Error()))
		return vm, nil
	}
	if res.HasErrors() {
		vm.Error = res.FormatErrorsHTML(5)
		return vm, nil
	}

	for _, st := range res.Students {
		_, err := h.Students.Create(ctx, st)
		if errors.Is(err, studentstore.ErrDuplicateReference) {
			vm.Duplicates = append(vm.Duplicates, st.Reference)
			continue
		}
		if err != nil {
			return vm, err
		}
		vm.Created++
	}
	h.Log.Info("students imported", zap.Int("created", vm.Created), zap.Int("duplicates", len(vm.Duplicates)))
	vm.ShowSummary = true
	return vm, nil
}
