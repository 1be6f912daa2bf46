package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/aghpoints/loyalty-server/internal/model"
)

func TestAdminStats(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "alice", 10)
	e.seed(t, "bob", 5)

	rec := e.request(t, http.MethodGet, "/v1/admin/stats", "", "admin", e.admin.Stats, nil)
	wantStatus(t, rec, http.StatusOK)

	var resp struct {
		TotalCustomers int `json:"totalCustomers"`
		TotalPoints    int `json:"totalPoints"`
	}
	decode(t, rec, &resp)
	if resp.TotalCustomers != 2 || resp.TotalPoints != 15 {
		t.Errorf("stats = %+v, want 2 customers / 15 points", resp)
	}
}

func TestAdminPlayers_Search(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "alice", 0)
	e.seed(t, "bob", 0)

	rec := e.request(t, http.MethodGet, "/v1/admin/players?search=ALI", "", "admin", e.admin.Players, nil)
	wantStatus(t, rec, http.StatusOK)

	var resp struct {
		Customers []model.Customer `json:"customers"`
	}
	decode(t, rec, &resp)
	if len(resp.Customers) != 1 || resp.Customers[0].Username != "alice" {
		t.Errorf("search = %+v, want just alice", resp.Customers)
	}

	rec = e.request(t, http.MethodGet, "/v1/admin/players", "", "admin", e.admin.Players, nil)
	decode(t, rec, &resp)
	if len(resp.Customers) != 2 {
		t.Errorf("unfiltered list has %d players, want 2", len(resp.Customers))
	}
}

func TestAdminAdjustPoints(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "alice", 10)

	rec := e.request(t, http.MethodPost, "/v1/admin/players/alice/points",
		`{"points":5,"action":"add","description":"tournament prize"}`, "admin",
		e.admin.AdjustPoints, map[string]string{"username": "alice"})
	wantStatus(t, rec, http.StatusOK)

	var resp struct {
		Points int `json:"points"`
	}
	decode(t, rec, &resp)
	if resp.Points != 15 {
		t.Errorf("balance after add = %d, want 15", resp.Points)
	}

	// The acting admin is recorded on the transaction.
	txs, _ := e.txs.ListByCustomer(context.Background(), "alice")
	if len(txs) != 1 || txs[0].AdminUserID != "admin" {
		t.Errorf("transaction = %+v, want one entry attributed to admin", txs)
	}

	rec = e.request(t, http.MethodPost, "/v1/admin/players/alice/points",
		`{"points":20,"action":"redeem","description":"oops"}`, "admin",
		e.admin.AdjustPoints, map[string]string{"username": "alice"})
	wantStatus(t, rec, http.StatusUnprocessableEntity)
}

func TestAdminAdjustPoints_Validation(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "alice", 10)

	cases := []struct {
		name string
		body string
	}{
		{"zero points", `{"points":0,"action":"add","description":"x"}`},
		{"negative points", `{"points":-5,"action":"add","description":"x"}`},
		{"missing description", `{"points":5,"action":"add"}`},
		{"unknown action", `{"points":5,"action":"grant","description":"x"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := e.request(t, http.MethodPost, "/v1/admin/players/alice/points",
				tc.body, "admin", e.admin.AdjustPoints, map[string]string{"username": "alice"})
			wantStatus(t, rec, http.StatusBadRequest)
		})
	}
}

func TestAdminLiveSessions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// One fresh session, one whose heartbeat went stale.
	_ = e.registry.Upsert(ctx, model.ActiveSession{
		Username: "bob", SessionID: "s2", StartTime: now, LastHeartbeat: now,
	})
	_ = e.registry.Upsert(ctx, model.ActiveSession{
		Username: "alice", SessionID: "s1", StartTime: now.Add(-time.Hour),
		LastHeartbeat: now.Add(-10 * time.Minute),
	})

	rec := e.request(t, http.MethodGet, "/v1/admin/sessions", "", "admin", e.admin.LiveSessions, nil)
	wantStatus(t, rec, http.StatusOK)

	var resp struct {
		Sessions []struct {
			Username string `json:"username"`
			Active   bool   `json:"active"`
		} `json:"sessions"`
	}
	decode(t, rec, &resp)
	if len(resp.Sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(resp.Sessions))
	}
	// Sorted by username, liveness derived per row.
	if resp.Sessions[0].Username != "alice" || resp.Sessions[0].Active {
		t.Errorf("sessions[0] = %+v, want stale alice", resp.Sessions[0])
	}
	if resp.Sessions[1].Username != "bob" || !resp.Sessions[1].Active {
		t.Errorf("sessions[1] = %+v, want live bob", resp.Sessions[1])
	}
}

func TestAdminForceStopSession(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "alice", 0)

	wantStatus(t, e.request(t, http.MethodPost, "/v1/session/start", "", "alice", e.sess.Start, nil), http.StatusOK)

	rec := e.request(t, http.MethodDelete, "/v1/admin/sessions/alice", "", "admin",
		e.admin.ForceStopSession, map[string]string{"username": "alice"})
	wantStatus(t, rec, http.StatusNoContent)

	if e.sessions.Status("alice").Active {
		t.Error("session still active after admin force stop")
	}

	// Idempotent for players with no session.
	rec = e.request(t, http.MethodDelete, "/v1/admin/sessions/ghost", "", "admin",
		e.admin.ForceStopSession, map[string]string{"username": "ghost"})
	wantStatus(t, rec, http.StatusNoContent)
}

func TestAdminErrorLogs(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.errlog.Record(ctx, "alice", "accrual_write_failed", model.SeverityError, "write timed out", nil)
	e.errlog.Record(ctx, "", "registry_list_failed", model.SeverityWarning, "slow store", nil)

	rec := e.request(t, http.MethodGet, "/v1/admin/errors?type=accrual_write_failed", "", "admin",
		e.admin.ErrorLogs, nil)
	wantStatus(t, rec, http.StatusOK)

	var resp struct {
		Errors []model.ErrorLog `json:"errors"`
	}
	decode(t, rec, &resp)
	if len(resp.Errors) != 1 || resp.Errors[0].Username != "alice" {
		t.Errorf("filtered errors = %+v, want just alice's entry", resp.Errors)
	}
}
