package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aghpoints/loyalty-server/internal/model"
	"github.com/aghpoints/loyalty-server/internal/store"
)

// SessionRegistry manages the ephemeral `activeSessions/{username}`
// records consulted by the admin live-session view. Records do not
// store liveness; IsActive derives it from the last heartbeat against
// the configured threshold.
type SessionRegistry struct {
	Store store.Store
	// Threshold is the liveness window: a session counts as active
	// while now - lastHeartbeat < Threshold.
	Threshold time.Duration
}

func NewSessionRegistry(s store.Store, threshold time.Duration) *SessionRegistry {
	return &SessionRegistry{Store: s, Threshold: threshold}
}

func sessionPath(username string) string { return "activeSessions/" + username }

// Upsert creates or overwrites the record for this username. The last
// writer wins; a second tab starting a session replaces the first
// tab's record.
func (r *SessionRegistry) Upsert(ctx context.Context, s model.ActiveSession) error {
	return r.Store.Set(ctx, sessionPath(s.Username), s)
}

// Get returns the record for one username or ErrNotFound.
func (r *SessionRegistry) Get(ctx context.Context, username string) (model.ActiveSession, error) {
	body, err := r.Store.Get(ctx, sessionPath(username))
	if errors.Is(err, store.ErrNoDocument) {
		return model.ActiveSession{}, ErrNotFound
	}
	if err != nil {
		return model.ActiveSession{}, err
	}
	var s model.ActiveSession
	if err := json.Unmarshal(body, &s); err != nil {
		return model.ActiveSession{}, err
	}
	return s, nil
}

// Heartbeat refreshes LastHeartbeat on an existing record. A missing
// record yields ErrNotFound so the caller can notice its session was
// force-stopped by an admin.
func (r *SessionRegistry) Heartbeat(ctx context.Context, username string, at time.Time) error {
	s, err := r.Get(ctx, username)
	if err != nil {
		return err
	}
	s.LastHeartbeat = at.UTC()
	return r.Store.Set(ctx, sessionPath(username), s)
}

// Remove deletes the record. Removing an already-absent record is not
// an error, so stop and force-stop stay idempotent.
func (r *SessionRegistry) Remove(ctx context.Context, username string) error {
	return r.Store.Delete(ctx, sessionPath(username))
}

// List returns all registry records keyed by username, live or stale.
// Consumers filter with IsActive; no ordering is guaranteed.
func (r *SessionRegistry) List(ctx context.Context) (map[string]model.ActiveSession, error) {
	docs, err := r.Store.GetAll(ctx, "activeSessions")
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.ActiveSession, len(docs))
	for username, body := range docs {
		var s model.ActiveSession
		if err := json.Unmarshal(body, &s); err != nil {
			return nil, err
		}
		out[username] = s
	}
	return out, nil
}

// IsActive reports whether a session with the given heartbeat counts
// as live at the reference time. The comparison is strictly less-than:
// a heartbeat exactly one threshold old is already stale.
func (r *SessionRegistry) IsActive(lastHeartbeat, now time.Time) bool {
	return now.Sub(lastHeartbeat) < r.Threshold
}
