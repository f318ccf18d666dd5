// Package cascade drives the region → province → city → barangay selects
// of an address and mirrors one address into another.
package cascade

import (
	"maps"
	"sync"

	"github.com/dalemusser/admissions/internal/domain/models"
)

// Select is the state of one geographic select. Empty Options is the
// placeholder-only state.
type Select struct {
	Level   models.GeoLevel
	Options []models.GeoOption
	Value   string
}

// Name returns the label of the selected option, or "".
func (s Select) Name() string {
	for _, o := range s.Options {
		if o.Code == s.Value {
			return o.Name
		}
	}
	return ""
}

// AddressForm is one address group: four cascading selects plus plain
// text parts (street, postal code, complete address). It is safe for
// concurrent use.
type AddressForm struct {
	Group string

	mu      sync.Mutex
	parts   map[string]string
	selects map[models.GeoLevel]*Select
	seq     map[models.GeoLevel]uint64
}

// NewAddressForm returns an empty address with every select at its placeholder.
func NewAddressForm(group string) *AddressForm {
	a := &AddressForm{
		Group:   group,
		parts:   make(map[string]string),
		selects: make(map[models.GeoLevel]*Select, len(models.GeoLevels)),
		seq:     make(map[models.GeoLevel]uint64, len(models.GeoLevels)),
	}
	for _, lv := range models.GeoLevels {
		a.selects[lv] = &Select{Level: lv}
	}
	return a
}

// Select returns a copy of the select at level.
func (a *AddressForm) Select(level models.GeoLevel) Select {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.selects[level]
	if !ok {
		return Select{Level: level}
	}
	cp := *s
	cp.Options = append([]models.GeoOption(nil), s.Options...)
	return cp
}

// Selects returns copies of all four selects, parent first.
func (a *AddressForm) Selects() []Select {
	out := make([]Select, 0, len(models.GeoLevels))
	for _, lv := range models.GeoLevels {
		out = append(out, a.Select(lv))
	}
	return out
}

// Value returns the selected code at level.
func (a *AddressForm) Value(level models.GeoLevel) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s, ok := a.selects[level]; ok {
		return s.Value
	}
	return ""
}

// SetValue records a selection without touching options or descendants.
// It is used to rebuild an address from submitted values.
func (a *AddressForm) SetValue(level models.GeoLevel, code string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s, ok := a.selects[level]; ok {
		s.Value = code
	}
}

// Part returns a plain text part.
func (a *AddressForm) Part(name string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.parts[name]
}

// SetPart sets a plain text part.
func (a *AddressForm) SetPart(name, v string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.parts[name] = v
}

// Parts returns a copy of the text parts.
func (a *AddressForm) Parts() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return maps.Clone(a.parts)
}

// Reset clears every part and selection. Region options survive; every
// other select returns to its placeholder. Outstanding fetches become stale.
func (a *AddressForm) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.parts)
	for _, lv := range models.GeoLevels {
		s := a.selects[lv]
		s.Value = ""
		if lv != models.LevelRegion {
			s.Options = nil
		}
		a.seq[lv]++
	}
}

// choose selects code at level and resets every descendant to its
// placeholder. It returns the sequence tokens a fetch must present to
// apply options to each descendant.
func (a *AddressForm) choose(level models.GeoLevel, code string) map[models.GeoLevel]uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.selects[level].Value = code
	tokens := make(map[models.GeoLevel]uint64)
	for _, lv := range level.Descendants() {
		s := a.selects[lv]
		s.Options = nil
		s.Value = ""
		a.seq[lv]++
		tokens[lv] = a.seq[lv]
	}
	return tokens
}

// token returns the current sequence number of level.
func (a *AddressForm) token(level models.GeoLevel) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.seq[level]
}

// apply installs options at level if tok is still current.
func (a *AddressForm) apply(level models.GeoLevel, tok uint64, opts []models.GeoOption) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.seq[level] != tok {
		return false
	}
	a.selects[level].Options = opts
	return true
}
