package cascade

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/admissions/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrStale is reported when a newer selection superseded a fetch before
// its options could be applied.
var ErrStale = errors.New("cascade: superseded by a newer selection")

// Fetcher returns the options at level whose parent is the given code.
// The region level ignores parent.
type Fetcher interface {
	Children(ctx context.Context, level models.GeoLevel, parent string) ([]models.GeoOption, error)
}

// Loader fills dependent selects from a Fetcher.
type Loader struct {
	f   Fetcher
	log *zap.Logger
}

// NewLoader creates a loader.
func NewLoader(f Fetcher, logger *zap.Logger) *Loader {
	return &Loader{f: f, log: logger}
}

// LoadRoots fetches the region list. The returned channel yields one
// result and is then closed.
func (l *Loader) LoadRoots(ctx context.Context, addr *AddressForm) <-chan error {
	done := make(chan error, 1)
	tok := addr.token(models.LevelRegion)
	go func() {
		defer close(done)
		done <- l.fill(ctx, addr, models.LevelRegion, "", tok)
	}()
	return done
}

// Select records code at level, clears every descendant select to its
// placeholder and fetches the child level's options. The returned channel
// yields nil once the child is populated, the fetch error, or ErrStale if
// a newer selection won; it is then closed.
//
// A region with no provinces has its cities loaded straight into the city
// select, leaving the province select at its placeholder.
func (l *Loader) Select(ctx context.Context, addr *AddressForm, level models.GeoLevel, code string) <-chan error {
	done := make(chan error, 1)
	if !level.Valid() {
		done <- fmt.Errorf("cascade: unknown level %q", level)
		close(done)
		return done
	}
	tokens := addr.choose(level, code)
	child := level.Child()
	if child == "" || code == "" {
		done <- nil
		close(done)
		return done
	}

	go func() {
		defer close(done)
		err := l.fill(ctx, addr, child, code, tokens[child])
		if err == nil && child == models.LevelProvince && len(addr.Select(child).Options) == 0 {
			err = l.fill(ctx, addr, models.LevelCity, code, tokens[models.LevelCity])
		}
		done <- err
	}()
	return done
}

// Hydrate rebuilds the options of every level from region down to through
// using the values already recorded on addr. Fetches run in parallel; a
// failed level stays at its placeholder and the first error is returned.
func (l *Loader) Hydrate(ctx context.Context, addr *AddressForm, through models.GeoLevel) error {
	var g errgroup.Group
	parent := ""
	for _, lv := range models.GeoLevels {
		if lv != models.LevelRegion && parent == "" {
			// A city chosen without a province belongs to a region that
			// has none; its region parents the city list.
			if lv != models.LevelCity || addr.Value(models.LevelCity) == "" {
				break
			}
			parent = addr.Value(models.LevelRegion)
			if parent == "" {
				break
			}
		}
		lv, p, tok := lv, parent, addr.token(lv)
		g.Go(func() error { return l.fill(ctx, addr, lv, p, tok) })
		if lv == through {
			break
		}
		parent = addr.Value(lv)
	}
	return g.Wait()
}

func (l *Loader) fill(ctx context.Context, addr *AddressForm, level models.GeoLevel, parent string, tok uint64) error {
	opts, err := l.f.Children(ctx, level, parent)
	if err != nil {
		l.log.Warn("address options unavailable",
			zap.String("group", addr.Group),
			zap.String("level", string(level)),
			zap.String("parent", parent),
			zap.Error(err))
		return err
	}
	if !addr.apply(level, tok, opts) {
		l.log.Debug("discarded stale address options",
			zap.String("group", addr.Group),
			zap.String("level", string(level)))
		return ErrStale
	}
	return nil
}
