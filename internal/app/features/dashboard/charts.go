package dashboard

import (
	"net/http"
	"time"

	studentstore "github.com/dalemusser/admissions/internal/app/store/students"
	"github.com/dalemusser/admissions/internal/app/system/timeouts"
	"golang.org/x/sync/errgroup"
)

// trendMonths is how far back the enrollment trend reaches.
const trendMonths = 12

// Charts is the data behind the dashboard charts. Rendering is left to
// the client charting library.
type Charts struct {
	Trend        []studentstore.Bucket `json:"enrollment_trend"`
	AcademicYear []studentstore.Bucket `json:"academic_year"`
	Programs     []studentstore.Bucket `json:"programs"`
	Gender       []studentstore.Bucket `json:"gender"`
	Status       []studentstore.Bucket `json:"status"`
}

// ServeCharts returns every chart series as one JSON document. The
// aggregations run in parallel; any failure fails the request.
func (h *Handler) ServeCharts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "dashboard charts")
	defer cancel()

	var c Charts
	since := trendStart(h.now())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		c.Trend, err = h.Students.CountByMonth(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		c.AcademicYear, err = h.Students.CountBy(gctx, "school_year")
		return err
	})
	g.Go(func() (err error) {
		c.Programs, err = h.Students.CountBy(gctx, "program_first_choice")
		return err
	})
	g.Go(func() (err error) {
		c.Gender, err = h.Students.CountBy(gctx, "gender")
		return err
	})
	g.Go(func() (err error) {
		c.Status, err = h.Students.CountByStatus(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard charts", err, "Chart data is unavailable.", "/dashboard")
		return
	}
	writeJSON(w, c)
}

// trendStart is the first day of the month trendMonths-1 months before now.
func trendStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month()-(trendMonths-1), 1, 0, 0, 0, 0, time.UTC)
}
