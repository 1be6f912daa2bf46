package repository

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aghpoints/loyalty-server/internal/model"
	"github.com/aghpoints/loyalty-server/internal/store"
)

// ErrorLogRepo appends diagnostic records under `errorLogs/{id}` and
// lists them for the admin browser. Everything here is best-effort:
// Record never returns an error because failing to log a failure must
// not break whatever was already going wrong.
type ErrorLogRepo struct {
	Store store.Store
}

func NewErrorLogRepo(s store.Store) *ErrorLogRepo { return &ErrorLogRepo{Store: s} }

// Record writes one error entry. Store failures are logged locally and
// swallowed.
func (r *ErrorLogRepo) Record(ctx context.Context, username, errorType, severity, message string, extra map[string]string) {
	e := model.ErrorLog{
		ID:        uuid.NewString(),
		Username:  username,
		ErrorType: errorType,
		Severity:  severity,
		Message:   message,
		Timestamp: time.Now().UTC(),
		Context:   extra,
	}
	if err := r.Store.Set(ctx, "errorLogs/"+e.ID, e); err != nil {
		log.Printf("errorlog: write failed (%s/%s): %v", errorType, severity, err)
	}
}

// ErrorLogFilter narrows List results. Zero values match everything.
type ErrorLogFilter struct {
	Type     string // exact errorType match
	Severity string // exact severity match
	Text     string // case-insensitive substring of message or username
}

// List returns matching entries newest-first.
func (r *ErrorLogRepo) List(ctx context.Context, f ErrorLogFilter) ([]model.ErrorLog, error) {
	docs, err := r.Store.GetAll(ctx, "errorLogs")
	if err != nil {
		return nil, err
	}
	text := strings.ToLower(strings.TrimSpace(f.Text))
	out := make([]model.ErrorLog, 0, len(docs))
	for _, body := range docs {
		var e model.ErrorLog
		if err := json.Unmarshal(body, &e); err != nil {
			return nil, err
		}
		if f.Type != "" && e.ErrorType != f.Type {
			continue
		}
		if f.Severity != "" && e.Severity != f.Severity {
			continue
		}
		if text != "" &&
			!strings.Contains(strings.ToLower(e.Message), text) &&
			!strings.Contains(strings.ToLower(e.Username), text) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}
