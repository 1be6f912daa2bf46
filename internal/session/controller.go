// Package session drives point accrual for active play sessions. A
// controller owns the lifecycle of one player's session: start, the
// periodic point award, heartbeat emission, stop (by the player or
// forced by an admin) and the countdown displays.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aghpoints/loyalty-server/internal/config"
	"github.com/aghpoints/loyalty-server/internal/model"
	"github.com/aghpoints/loyalty-server/internal/repository"
)

// ErrSessionActive is returned by Start when this player already has a
// running session on this server instance.
var ErrSessionActive = errors.New("session already active")

// Controller is the accrual state machine for one player. It is Idle
// until Start succeeds, Running until Stop (or a force-stop noticed
// via heartbeat), then Idle again and restartable.
//
// While Running, two periodic actions fire on independent tickers: the
// point award every accrual interval and the heartbeat refresh. Awards
// are time-driven and non-cumulative: if the process is suspended past
// an accrual boundary nothing is awarded retroactively, and a restart
// loses all progress toward the next point. Elapsed time is never
// persisted.
type Controller struct {
	username string
	cfg      config.SessionConfig
	clock    Clock
	ledger   *repository.LedgerRepo
	registry *repository.SessionRegistry
	errlog   *repository.ErrorLogRepo

	mu        sync.Mutex
	running   bool
	sessionID string
	tabID     string
	startedAt time.Time
	stop      chan struct{}
	done      chan struct{}
}

// NewController builds an Idle controller for one player. The error
// log repo may be nil when error logging is disabled.
func NewController(username string, cfg config.SessionConfig, clock Clock,
	ledger *repository.LedgerRepo, registry *repository.SessionRegistry,
	errlog *repository.ErrorLogRepo) *Controller {
	return &Controller{
		username: username,
		cfg:      cfg,
		clock:    clock,
		ledger:   ledger,
		registry: registry,
		errlog:   errlog,
	}
}

// Start moves the controller to Running. It fails with ErrSessionActive
// if already running and with repository.ErrNotFound for an unknown
// player. On success it writes a fresh ActiveSession record (new
// session and tab ids, heartbeat = now) and launches the ticker loop.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return ErrSessionActive
	}

	// A session needs a registered player behind it.
	if _, err := c.ledger.GetBalance(ctx, c.username); err != nil {
		return err
	}

	now := c.clock.Now()
	c.sessionID = uuid.NewString()
	c.tabID = uuid.NewString()
	c.startedAt = now
	if err := c.registry.Upsert(ctx, model.ActiveSession{
		Username:      c.username,
		SessionID:     c.sessionID,
		TabID:         c.tabID,
		StartTime:     now,
		LastHeartbeat: now,
	}); err != nil {
		return err
	}

	c.running = true
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.run(c.stop, c.done)
	return nil
}

// run fires the two periodic actions until stopped. Each ticker is
// independent; no ordering holds between an award and a heartbeat.
func (c *Controller) run(stop, done chan struct{}) {
	defer close(done)
	award := c.clock.NewTicker(c.cfg.PointInterval)
	defer award.Stop()
	heartbeat := c.clock.NewTicker(c.cfg.HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-stop:
			return
		case <-award.C():
			c.awardPoint()
		case <-heartbeat.C():
			c.emitHeartbeat()
		}
	}
}

// awardPoint credits exactly one point through the ledger and tags the
// transaction so history can tell auto-accrual from admin adjustments.
// A failed write is reported and dropped: no retry, no backlog, and
// the timer keeps running (at-most-once, best-effort award).
func (c *Controller) awardPoint() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := c.ledger.Adjust(ctx, c.username, 1, model.AutoAccrualDescription, ""); err != nil {
		log.Printf("session: award point to %s failed: %v", c.username, err)
		if c.errlog != nil {
			c.errlog.Record(ctx, c.username, "accrual_write_failed", model.SeverityError,
				err.Error(), map[string]string{"sessionId": c.sessionID})
		}
	}
}

// emitHeartbeat refreshes the registry record. A missing record means
// an admin force-stopped this session; the controller shuts itself
// down instead of resurrecting the record.
func (c *Controller) emitHeartbeat() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := c.registry.Heartbeat(ctx, c.username, c.clock.Now())
	if errors.Is(err, repository.ErrNotFound) {
		log.Printf("session: registry record for %s gone, stopping", c.username)
		go func() { _ = c.Stop(context.Background()) }()
		return
	}
	if err != nil {
		log.Printf("session: heartbeat for %s failed: %v", c.username, err)
	}
}

// Stop cancels both periodic actions, clears the running state and
// deletes the registry record. Calling it on an Idle controller (or
// twice in a row) is a no-op: no error, no second registry mutation.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	close(c.stop)
	c.running = false
	c.startedAt = time.Time{}
	done := c.done
	c.mu.Unlock()

	// Wait for the ticker loop to exit so no award fires after Stop
	// returns.
	<-done
	return c.registry.Remove(ctx, c.username)
}

// Status is the presentation snapshot for the timer view. Elapsed and
// NextPointIn render as MM:SS; both are derived from the clock on
// demand and never stored.
type Status struct {
	Active           bool      `json:"active"`
	SessionID        string    `json:"sessionId,omitempty"`
	StartedAt        time.Time `json:"startedAt,omitempty"`
	ElapsedSeconds   int       `json:"elapsedSeconds"`
	Elapsed          string    `json:"elapsed"`
	NextPointSeconds int       `json:"nextPointSeconds"`
	NextPointIn      string    `json:"nextPointIn"`
}

// Status derives the current display values. For an Idle controller it
// reports zero elapsed and a full interval until the next point.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	interval := int(c.cfg.PointInterval / time.Second)
	if !c.running {
		return Status{
			Elapsed:          FormatClock(0),
			NextPointSeconds: interval,
			NextPointIn:      FormatClock(interval),
		}
	}

	elapsed := int(c.clock.Now().Sub(c.startedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := interval - elapsed%interval
	return Status{
		Active:           true,
		SessionID:        c.sessionID,
		StartedAt:        c.startedAt,
		ElapsedSeconds:   elapsed,
		Elapsed:          FormatClock(elapsed),
		NextPointSeconds: remaining,
		NextPointIn:      FormatClock(remaining),
	}
}

// Running reports whether the controller is in the Running state.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// FormatClock renders a second count as MM:SS. Minutes are not capped
// at 59, matching the original timer display.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
