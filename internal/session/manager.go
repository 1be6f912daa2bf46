package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/aghpoints/loyalty-server/internal/config"
	"github.com/aghpoints/loyalty-server/internal/repository"
)

// Manager hands out one controller per username and runs the reaper
// that cleans registry records left behind by crashed or closed
// clients. Explicit Stop deletes records immediately; the reaper is
// only the fallback for abnormal termination.
type Manager struct {
	cfg      config.SessionConfig
	clock    Clock
	ledger   *repository.LedgerRepo
	registry *repository.SessionRegistry
	errlog   *repository.ErrorLogRepo

	mu          sync.Mutex
	controllers map[string]*Controller
}

func NewManager(cfg config.SessionConfig, clock Clock, ledger *repository.LedgerRepo,
	registry *repository.SessionRegistry, errlog *repository.ErrorLogRepo) *Manager {
	return &Manager{
		cfg:         cfg,
		clock:       clock,
		ledger:      ledger,
		registry:    registry,
		errlog:      errlog,
		controllers: make(map[string]*Controller),
	}
}

// controller returns the player's controller, creating an Idle one on
// first use. Controllers are reused across sessions.
func (m *Manager) controller(username string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.controllers[username]
	if !ok {
		c = NewController(username, m.cfg, m.clock, m.ledger, m.registry, m.errlog)
		m.controllers[username] = c
	}
	return c
}

// Start begins a session for the player. ErrSessionActive if one is
// already running here, repository.ErrNotFound for unknown players.
func (m *Manager) Start(ctx context.Context, username string) (Status, error) {
	c := m.controller(username)
	if err := c.Start(ctx); err != nil {
		return Status{}, err
	}
	return c.Status(), nil
}

// Stop ends the player's session. Idempotent: stopping a player with
// no running session still removes any stale registry record and
// succeeds.
func (m *Manager) Stop(ctx context.Context, username string) error {
	c := m.controller(username)
	if err := c.Stop(ctx); err != nil {
		return err
	}
	// Covers a record left by a previous process for this player.
	return m.registry.Remove(ctx, username)
}

// Status reports the player's timer display snapshot.
func (m *Manager) Status(username string) Status {
	return m.controller(username).Status()
}

// ForceStop is the admin path: it deletes the registry record and, if
// this instance runs the player's controller, stops it too. A session
// driven by another instance notices the deleted record at its next
// heartbeat and shuts itself down.
func (m *Manager) ForceStop(ctx context.Context, username string) error {
	m.mu.Lock()
	c := m.controllers[username]
	m.mu.Unlock()
	if c != nil {
		if err := c.Stop(ctx); err != nil {
			return err
		}
	}
	return m.registry.Remove(ctx, username)
}

// StartReaper launches the background loop that deletes registry
// records whose heartbeat is older than the liveness threshold. It
// returns immediately; the loop ends when ctx is cancelled.
func (m *Manager) StartReaper(ctx context.Context) {
	go func() {
		t := m.clock.NewTicker(m.cfg.ReapInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C():
				m.reap(ctx)
			}
		}
	}()
}

// reap removes every stale registry record in one pass.
func (m *Manager) reap(ctx context.Context) {
	sessions, err := m.registry.List(ctx)
	if err != nil {
		log.Printf("session: reaper list failed: %v", err)
		return
	}
	now := m.clock.Now()
	for username, s := range sessions {
		if m.registry.IsActive(s.LastHeartbeat, now) {
			continue
		}
		if err := m.registry.Remove(ctx, username); err != nil {
			log.Printf("session: reap %s failed: %v", username, err)
			continue
		}
		log.Printf("session: reaped expired session for %s (last heartbeat %s)",
			username, s.LastHeartbeat.Format(time.RFC3339))
	}
}
