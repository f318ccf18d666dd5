package wizard

import (
	"encoding/json"
	"sort"
)

// FormState is the navigator's state: the visible section and the set of
// sections that passed validation on the way forward.
type FormState struct {
	Active    int
	Completed map[int]bool
}

// NewFormState returns the initial state (first section, nothing completed).
func NewFormState() *FormState {
	return &FormState{Completed: make(map[int]bool)}
}

// IsCompleted reports whether section i has been completed.
func (s *FormState) IsCompleted(i int) bool { return s.Completed[i] }

// CompletedSections returns completed indices in ascending order.
func (s *FormState) CompletedSections() []int {
	out := make([]int, 0, len(s.Completed))
	for i, done := range s.Completed {
		if done {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

type stateJSON struct {
	Active    int   `json:"active"`
	Completed []int `json:"completed"`
}

// Encode serializes the state for storage between requests.
func (s *FormState) Encode() string {
	b, _ := json.Marshal(stateJSON{Active: s.Active, Completed: s.CompletedSections()})
	return string(b)
}

// DecodeFormState restores a state produced by Encode, clamping it to a
// form of n sections. Anything unreadable yields the initial state.
func DecodeFormState(raw string, n int) *FormState {
	st := NewFormState()
	if raw == "" || n <= 0 {
		return st
	}
	var sj stateJSON
	if err := json.Unmarshal([]byte(raw), &sj); err != nil {
		return st
	}
	st.Active = clamp(sj.Active, 0, n-1)
	for _, i := range sj.Completed {
		if i >= 0 && i < n {
			st.Completed[i] = true
		}
	}
	return st
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
