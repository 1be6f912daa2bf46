package model

import "time"

// Error log severities.
const (
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// ErrorLog is a best-effort diagnostic record stored under
// `errorLogs/{id}`. Writes are fire-and-forget: a failure to log an
// error is itself swallowed. Admins browse these filtered by type,
// severity or free text.
type ErrorLog struct {
	ID        string            `json:"id"`
	Username  string            `json:"username,omitempty"`
	ErrorType string            `json:"errorType"`
	Severity  string            `json:"severity"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Context   map[string]string `json:"context,omitempty"`
}
