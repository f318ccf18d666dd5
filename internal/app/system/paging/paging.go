// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows shown in the students table.
const PageSize = 50

// ParseStart extracts the human-friendly "start" query parameter (1-based index).
// Returns 1 if not present or invalid.
func ParseStart(r *http.Request) int {
	s := query.Get(r, "start")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Window converts a 1-based start into the skip and look-ahead limit to
// query with. The extra row tells Trim whether a next page exists.
func Window(start int) (skip, limit int) {
	if start < 1 {
		start = 1
	}
	return start - 1, PageSize + 1
}

// Range holds computed display range values for a paginated list.
type Range struct {
	Start     int // 1-based start index (0 if no results)
	End       int // 1-based end index (0 if no results)
	HasPrev   bool
	HasNext   bool
	PrevStart int // start value for previous page link
	NextStart int // start value for next page link
}

// Trim drops the look-ahead row fetched through Window and returns the
// range to display.
func Trim[T any](rows *[]T, start int) Range {
	if start < 1 {
		start = 1
	}
	hasNext := len(*rows) > PageSize
	if hasNext {
		*rows = (*rows)[:PageSize]
	}
	shown := len(*rows)

	prev := start - PageSize
	if prev < 1 {
		prev = 1
	}
	if shown == 0 {
		return Range{PrevStart: prev, NextStart: start, HasPrev: start > 1}
	}
	return Range{
		Start:     start,
		End:       start + shown - 1,
		HasPrev:   start > 1,
		HasNext:   hasNext,
		PrevStart: prev,
		NextStart: start + shown,
	}
}
