package cascade

import (
	"context"
	"errors"

	"github.com/dalemusser/admissions/internal/domain/models"
	"go.uber.org/zap"
)

// Mirror copies one address into another through a Loader, so the target
// selects are repopulated level by level before each value is copied.
type Mirror struct {
	loader *Loader
	log    *zap.Logger
}

// NewMirror creates a mirror over loader.
func NewMirror(loader *Loader, logger *zap.Logger) *Mirror {
	return &Mirror{loader: loader, log: logger}
}

// Copy makes dst match src. Text parts are copied at once. Then, parent
// first, each non-empty selection of src is chosen on dst and Copy waits
// for the child level to load before moving on. Empty levels are skipped
// so a city under a province-less region still copies.
//
// A failed or superseded level stops the sequence; dst keeps whatever had
// been copied so far and the error is returned.
func (m *Mirror) Copy(ctx context.Context, src, dst *AddressForm) error {
	for k, v := range src.Parts() {
		dst.SetPart(k, v)
	}

	if len(dst.Select(models.LevelRegion).Options) == 0 {
		if opts := src.Select(models.LevelRegion).Options; len(opts) > 0 {
			dst.apply(models.LevelRegion, dst.token(models.LevelRegion), opts)
		} else if err := m.await(ctx, m.loader.LoadRoots(ctx, dst)); err != nil {
			return m.stopped(dst, models.LevelRegion, err)
		}
	}

	for _, lv := range models.GeoLevels {
		code := src.Value(lv)
		if code == "" {
			continue
		}
		if err := m.await(ctx, m.loader.Select(ctx, dst, lv, code)); err != nil {
			return m.stopped(dst, lv, err)
		}
	}
	return nil
}

// Clear returns every part and select of dst to its placeholder.
func (m *Mirror) Clear(dst *AddressForm) {
	dst.Reset()
}

func (m *Mirror) await(ctx context.Context, done <-chan error) error {
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mirror) stopped(dst *AddressForm, level models.GeoLevel, err error) error {
	if !errors.Is(err, ErrStale) {
		m.log.Warn("address copy stopped",
			zap.String("group", dst.Group),
			zap.String("level", string(level)),
			zap.Error(err))
	}
	return err
}
