package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/aghpoints/loyalty-server/internal/model"
	"github.com/aghpoints/loyalty-server/internal/session"
)

func TestSessionStart(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "alice", 0)

	rec := e.request(t, http.MethodPost, "/v1/session/start", "", "alice", e.sess.Start, nil)
	wantStatus(t, rec, http.StatusOK)

	var st session.Status
	decode(t, rec, &st)
	if !st.Active || st.SessionID == "" {
		t.Errorf("start status = %+v, want active with a session id", st)
	}
	if st.NextPointIn != "30:00" {
		t.Errorf("NextPointIn = %q, want the full interval", st.NextPointIn)
	}

	// A "Session started" marker lands in the history with zero points.
	txs, err := e.txs.ListByCustomer(context.Background(), "alice")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(txs) != 1 || txs[0].Type != model.TxSession || txs[0].Points != 0 {
		t.Errorf("history after start = %+v, want one zero-point session marker", txs)
	}
}

func TestSessionStart_Conflict(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "alice", 0)

	wantStatus(t, e.request(t, http.MethodPost, "/v1/session/start", "", "alice", e.sess.Start, nil), http.StatusOK)
	wantStatus(t, e.request(t, http.MethodPost, "/v1/session/start", "", "alice", e.sess.Start, nil), http.StatusConflict)
}

func TestSessionStart_UnknownPlayer(t *testing.T) {
	e := newEnv(t)
	rec := e.request(t, http.MethodPost, "/v1/session/start", "", "ghost", e.sess.Start, nil)
	wantStatus(t, rec, http.StatusNotFound)
}

func TestSessionStop(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "alice", 0)

	wantStatus(t, e.request(t, http.MethodPost, "/v1/session/start", "", "alice", e.sess.Start, nil), http.StatusOK)

	rec := e.request(t, http.MethodPost, "/v1/session/stop", "", "alice", e.sess.Stop, nil)
	wantStatus(t, rec, http.StatusOK)

	var st session.Status
	decode(t, rec, &st)
	if st.Active {
		t.Error("status still active after stop")
	}

	// Start + stop markers bracket the session in the history.
	txs, _ := e.txs.ListByCustomer(context.Background(), "alice")
	if len(txs) != 2 {
		t.Fatalf("history has %d entries, want start and stop markers", len(txs))
	}
	if txs[0].Description != "Session stopped" {
		t.Errorf("newest marker = %q, want Session stopped", txs[0].Description)
	}
}

func TestSessionStop_Idempotent(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "alice", 0)

	// Stopping with nothing running is a 200 and writes no marker.
	rec := e.request(t, http.MethodPost, "/v1/session/stop", "", "alice", e.sess.Stop, nil)
	wantStatus(t, rec, http.StatusOK)

	txs, _ := e.txs.ListByCustomer(context.Background(), "alice")
	if len(txs) != 0 {
		t.Errorf("stop without a session wrote %d markers", len(txs))
	}
}

func TestSessionStatus_Idle(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "alice", 0)

	rec := e.request(t, http.MethodGet, "/v1/session/status", "", "alice", e.sess.Status, nil)
	wantStatus(t, rec, http.StatusOK)

	var st session.Status
	decode(t, rec, &st)
	if st.Active || st.Elapsed != "00:00" {
		t.Errorf("idle status = %+v", st)
	}
}
