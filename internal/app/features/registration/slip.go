package registration

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dalemusser/admissions/internal/domain/models"
	"github.com/go-pdf/fpdf"
)

const (
	slipMargin = 20.0
	slipWidth  = 210.0 - 2*slipMargin
	slipLabel  = 55.0
)

// Slip writes the confirmation slip of a stored registration as a PDF.
func (h *Handler) Slip(w http.ResponseWriter, r *http.Request) {
	st, ok := h.lookup(w, r)
	if !ok {
		return
	}
	body, err := renderSlip(st, h.Form.Title)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "render registration slip", err, "The slip could not be generated.", "/")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "registration-"+st.Reference+".pdf"))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	_, _ = w.Write(body)
}

// renderSlip lays out one A4 page: a heading, the reference and a table
// of the main answers.
func renderSlip(st models.Student, title string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(slipMargin, slipMargin, slipMargin)
	pdf.SetAutoPageBreak(true, slipMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(slipWidth, 12, tr(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(slipWidth, 7, "Registration slip", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFillColor(245, 247, 250)
	pdf.CellFormat(slipWidth, 9, "Reference: "+st.Reference, "1", 1, "C", true, 0, "")
	pdf.Ln(4)

	rows := [][2]string{
		{"Name", st.DisplayName()},
		{"School year", st.SchoolYear},
		{"School term", st.SchoolTerm},
		{"Campus", st.CampusCode},
		{"First choice", st.ProgramFirstChoice},
		{"Second choice", st.ProgramSecondChoice},
		{"Student type", st.StudentType},
		{"Birth date", st.BirthDate},
		{"Present address", addressLine(st.Present)},
		{"Permanent address", addressLine(st.Permanent)},
		{"Mobile number", st.MobileNumber},
		{"Email", st.Email},
		{"Submitted", st.CreatedAt.Format("2 January 2006 15:04")},
	}
	pdf.SetDrawColor(200, 200, 200)
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(slipLabel, 8, row[0], "1", 0, "L", true, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(slipWidth-slipLabel, 8, tr(row[1]), "1", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(slipWidth, 5, "Present this slip with your requirements at the registrar's office.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// addressLine joins the named parts of a, most specific first.
func addressLine(a models.Address) string {
	if a.Complete != "" {
		return a.Complete
	}
	var out string
	for _, p := range []string{a.Street, a.Barangay, a.City, a.Province, a.Region} {
		if p == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += p
	}
	return out
}
