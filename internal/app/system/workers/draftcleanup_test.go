package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakePurger struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (f *fakePurger) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	if f.err != nil {
		return 0, f.err
	}
	return 4, nil
}

func (f *fakePurger) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestDraftCleanup_CutoffIsNowMinusTTL(t *testing.T) {
	p := &fakePurger{}
	w := NewDraftCleanup(p, zap.NewNop(), time.Hour, 30*24*time.Hour)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	if n := w.cleanup(); n != 4 {
		t.Errorf("cleanup() = %d, want 4", n)
	}
	if want := now.Add(-30 * 24 * time.Hour); !p.cutoffs[0].Equal(want) {
		t.Errorf("cutoff = %v, want %v", p.cutoffs[0], want)
	}
}

func TestDraftCleanup_ErrorIsLogged(t *testing.T) {
	w := NewDraftCleanup(&fakePurger{err: errors.New("db down")}, zap.NewNop(), time.Hour, time.Hour)
	if n := w.cleanup(); n != 0 {
		t.Errorf("cleanup() = %d on error, want 0", n)
	}
}

func TestDraftCleanup_StartStop(t *testing.T) {
	p := &fakePurger{}
	w := NewDraftCleanup(p, zap.NewNop(), 5*time.Millisecond, time.Hour)
	w.Start()

	deadline := time.Now().Add(2 * time.Second)
	for p.calls() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()
	w.Stop()

	if p.calls() == 0 {
		t.Error("worker never ran")
	}
}
