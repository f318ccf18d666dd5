// Package drafts persists partially completed registrations between
// requests. Every operation is best-effort: storage failures are logged
// and swallowed so a broken backend only costs the applicant the draft.
package drafts

import (
	"context"
	"maps"
	"time"

	"github.com/dalemusser/admissions/internal/app/system/wizard"
	"github.com/dalemusser/admissions/internal/domain/models"
	"go.uber.org/zap"
)

// Key is the fixed name the snapshot is stored under.
const Key = "registration_draft"

// Backend reads and writes one applicant's snapshot.
type Backend interface {
	Read(ctx context.Context) (models.DraftSnapshot, bool, error)
	Write(ctx context.Context, snap models.DraftSnapshot) error
	Remove(ctx context.Context) error
}

// Store applies the draft rules on top of a Backend.
type Store struct {
	b   Backend
	log *zap.Logger
	now func() time.Time
}

// New wraps a backend.
func New(b Backend, logger *zap.Logger) *Store {
	return &Store{b: b, log: logger, now: time.Now}
}

// SaveSection merges one section's controls into the snapshot. Text
// controls are recorded verbatim, checkboxes as booleans; the last write
// wins per field name.
func (s *Store) SaveSection(ctx context.Context, section int, controls []wizard.Control) {
	snap, _, err := s.b.Read(ctx)
	if err != nil {
		// An unreadable snapshot is replaced rather than blocking the save.
		s.log.Warn("draft read failed; starting a new snapshot", zap.Error(err))
		snap = models.DraftSnapshot{}
	}
	fields := make(map[string]any, len(snap.Fields)+len(controls))
	maps.Copy(fields, snap.Fields)
	for _, c := range controls {
		if c.Name == "" {
			continue
		}
		if c.Kind == wizard.KindCheckbox {
			fields[c.Name] = c.Checked
		} else {
			fields[c.Name] = c.Value
		}
	}
	snap.Fields = fields
	snap.LastSavedSection = section
	snap.SavedAt = s.now().UTC()

	if err := s.b.Write(ctx, snap); err != nil {
		s.log.Warn("draft save failed", zap.Int("section", section), zap.Error(err))
	}
}

// Load returns the saved snapshot. The page lifecycle never calls it; it
// backs the explicit "restore draft" action.
func (s *Store) Load(ctx context.Context) (models.DraftSnapshot, bool) {
	snap, ok, err := s.b.Read(ctx)
	if err != nil {
		s.log.Warn("draft load failed", zap.Error(err))
		return models.DraftSnapshot{}, false
	}
	return snap, ok
}

// Clear deletes the snapshot.
func (s *Store) Clear(ctx context.Context) {
	if err := s.b.Remove(ctx); err != nil {
		s.log.Warn("draft clear failed", zap.Error(err))
	}
}

// ClearIfReloaded deletes the snapshot when the page load was a reload.
// It reports whether a clear was attempted.
func (s *Store) ClearIfReloaded(ctx context.Context, nav NavigationType) bool {
	if nav != NavReload {
		return false
	}
	s.Clear(ctx)
	return true
}

// Values flattens a snapshot into form values: strings verbatim, true
// checkboxes as "on", false checkboxes omitted.
func Values(snap models.DraftSnapshot) map[string]string {
	out := make(map[string]string, len(snap.Fields))
	for k, v := range snap.Fields {
		switch tv := v.(type) {
		case string:
			out[k] = tv
		case bool:
			if tv {
				out[k] = "on"
			}
		}
	}
	return out
}
