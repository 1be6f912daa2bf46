package model

import "time"

// ActiveSession is the ephemeral record kept under
// `activeSessions/{username}` while a play session runs. It is
// created on start, refreshed by heartbeats and deleted on stop.
// Liveness is never stored; observers derive it from LastHeartbeat
// against the configured threshold. A username owns at most one
// record at a time (last writer wins, no locking).
//
// Fields:
//  Username      – player the session belongs to (document key).
//  SessionID     – identifier generated when the session starts.
//  TabID         – identifier of the client instance that started it.
//  StartTime     – when the session began (UTC).
//  LastHeartbeat – last liveness signal written by the running session.
type ActiveSession struct {
	Username      string    `json:"username"`
	SessionID     string    `json:"sessionId"`
	TabID         string    `json:"tabId"`
	StartTime     time.Time `json:"startTime"`
	LastHeartbeat time.Time `json:"lastHeartbeat"`
}
