package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakePruner struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (f *fakePruner) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	return 3, f.err
}

func (f *fakePruner) calls() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Time(nil), f.cutoffs...)
}

func TestAuditRetention_PrunesOnStart(t *testing.T) {
	store := &fakePruner{}
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	w := NewAuditRetention(store, zap.NewNop(), time.Hour, 24*time.Hour)
	w.now = func() time.Time { return fixed }
	w.Start()

	deadline := time.Now().Add(2 * time.Second)
	for len(store.calls()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()

	calls := store.calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 prune before the first tick, got %d", len(calls))
	}
	if want := fixed.Add(-24 * time.Hour); !calls[0].Equal(want) {
		t.Errorf("cutoff = %v, want %v", calls[0], want)
	}
}

func TestAuditRetention_KeepsRunningAfterError(t *testing.T) {
	store := &fakePruner{err: errors.New("db down")}

	w := NewAuditRetention(store, zap.NewNop(), 10*time.Millisecond, time.Hour)
	w.Start()

	deadline := time.Now().Add(2 * time.Second)
	for len(store.calls()) < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()

	if n := len(store.calls()); n < 3 {
		t.Errorf("expected repeated prunes after errors, got %d", n)
	}
}
