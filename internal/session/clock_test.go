package session

import (
	"sync"
	"testing"
	"time"
)

// fakeClock drives controllers in tests without real waits. Tickers
// never fire on their own; tests push ticks through fire().
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
	// created receives one signal per NewTicker call so tests can
	// wait until the run loop has its tickers in place.
	created chan time.Duration
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start, created: make(chan time.Duration, 16)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func (f *fakeClock) NewTicker(d time.Duration) Ticker {
	t := &fakeTicker{period: d, ch: make(chan time.Time, 1)}
	f.mu.Lock()
	f.tickers = append(f.tickers, t)
	f.mu.Unlock()
	f.created <- d
	return t
}

// fire delivers one tick to every ticker with the given period.
func (f *fakeClock) fire(period time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tickers {
		if t.period == period {
			t.ch <- f.now
		}
	}
}

// waitForTickers blocks until n tickers have been created.
func (f *fakeClock) waitForTickers(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.created:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for ticker %d of %d", i+1, n)
		}
	}
}

type fakeTicker struct {
	period time.Duration
	ch     chan time.Time
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               {}
