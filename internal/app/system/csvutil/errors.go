// internal/app/system/csvutil/errors.go
package csvutil

import (
	"errors"
	"html/template"
	"strconv"
	"strings"

	"github.com/dalemusser/admissions/internal/domain/models"
)

// ErrTooManyRows is returned when a file has more data rows than allowed.
var ErrTooManyRows = errors.New("csv: too many rows")

// ErrNoHeader is returned when the first row names no known column.
var ErrNoHeader = errors.New("csv: first row is not a recognised header")

// RowError describes one rejected row. Line is the 1-based line in the
// file; 0 means the error is not tied to a row.
type RowError struct {
	Line   int
	Reason string
	Raw    []string
}

// ParseResult holds the rows that parsed and the rows that did not.
type ParseResult struct {
	Students []models.Student
	Errors   []RowError
}

// HasErrors reports whether any row was rejected.
func (r *ParseResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// FormatErrorsHTML summarises the first maxShow errors for display above
// the upload form. Row content is escaped.
func (r *ParseResult) FormatErrorsHTML(maxShow int) template.HTML {
	if len(r.Errors) == 0 {
		return ""
	}
	if maxShow <= 0 {
		maxShow = 5
	}
	show := min(maxShow, len(r.Errors))

	var b strings.Builder
	b.WriteString("Upload rejected: ")
	b.WriteString(strconv.Itoa(len(r.Errors)))
	b.WriteString(" row(s) are invalid. Nothing was imported.<br>")
	for _, e := range r.Errors[:show] {
		b.WriteString("• ")
		if e.Line > 0 {
			b.WriteString("Line ")
			b.WriteString(strconv.Itoa(e.Line))
			b.WriteString(": ")
		}
		b.WriteString(template.HTMLEscapeString(e.Reason))
		b.WriteString("<br>")
	}
	if rest := len(r.Errors) - show; rest > 0 {
		b.WriteString("... and ")
		b.WriteString(strconv.Itoa(rest))
		b.WriteString(" more.")
	}
	return template.HTML(b.String())
}
