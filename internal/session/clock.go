package session

import "time"

// Clock abstracts wall time and ticker creation so the accrual
// controller can be tested without real waits. The production
// implementation wraps time.Ticker.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker is the subset of time.Ticker the controller needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realClock struct{}

// RealClock returns the wall-clock implementation.
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now().UTC() }

func (realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct{ t *time.Ticker }

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }
