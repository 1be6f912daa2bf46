package config

import "time"

// SessionConfig carries the timing knobs of the accrual controller and
// session registry. The liveness threshold varied between deployments
// (60s and 720s were both observed); it is deliberately configurable
// with a middle-ground default of three missed heartbeats.
type SessionConfig struct {
	PointInterval     time.Duration // one point is awarded per interval; canonical 30m
	HeartbeatInterval time.Duration // registry heartbeat period; must be below the threshold
	LivenessThreshold time.Duration // session counts as active while now-lastHeartbeat < threshold
	ReapInterval      time.Duration // how often stale registry records are swept
}

// LoadSessionConfig reads the session timing environment variables,
// falling back to defaults when unset.
func LoadSessionConfig() SessionConfig {
	cfg := SessionConfig{
		PointInterval:     envDur("SESSION_POINT_INTERVAL", 30*time.Minute),
		HeartbeatInterval: envDur("SESSION_HEARTBEAT_INTERVAL", time.Minute),
		LivenessThreshold: envDur("SESSION_LIVENESS_THRESHOLD", 3*time.Minute),
		ReapInterval:      envDur("SESSION_REAP_INTERVAL", time.Minute),
	}
	if cfg.PointInterval <= 0 {
		cfg.PointInterval = 30 * time.Minute
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = time.Minute
	}
	// A heartbeat period at or above the threshold would mark every
	// session stale between beats.
	if cfg.LivenessThreshold <= cfg.HeartbeatInterval {
		cfg.LivenessThreshold = 3 * cfg.HeartbeatInterval
	}
	if cfg.ReapInterval <= 0 {
		cfg.ReapInterval = time.Minute
	}
	return cfg
}
