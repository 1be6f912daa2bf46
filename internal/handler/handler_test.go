package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/aghpoints/loyalty-server/internal/config"
	"github.com/aghpoints/loyalty-server/internal/repository"
	"github.com/aghpoints/loyalty-server/internal/session"
	"github.com/aghpoints/loyalty-server/internal/store"
	"github.com/aghpoints/loyalty-server/internal/utils"
)

const testAdminPassword = "venue-secret"

// env wires the full handler stack over an in-memory store, the same
// shape main assembles in demo mode.
type env struct {
	echo      *echo.Echo
	cfg       config.Config
	store     store.Store
	customers *repository.CustomerRepo
	txs       *repository.TransactionRepo
	ledger    *repository.LedgerRepo
	registry  *repository.SessionRegistry
	errlog    *repository.ErrorLogRepo
	sessions  *session.Manager

	auth    *AuthHandler
	player  *PlayerHandler
	sess    *SessionHandler
	admin   *AdminHandler
	cleanup []func()
}

func newEnv(t *testing.T) *env {
	t.Helper()
	hash, err := utils.HashPassword(testAdminPassword, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash admin password: %v", err)
	}
	cfg := config.Config{
		Env:               "test",
		JWTSecret:         "test-secret",
		AccessTTLMin:      15,
		AdminPasswordHash: hash,
		StoreDriver:       config.DriverMemory,
	}
	scfg := config.SessionConfig{
		PointInterval:     30 * time.Minute,
		HeartbeatInterval: time.Minute,
		LivenessThreshold: 3 * time.Minute,
		ReapInterval:      time.Minute,
	}

	s := store.NewMemoryStore()
	customers := repository.NewCustomerRepo(s)
	txs := repository.NewTransactionRepo(s)
	ledger := repository.NewLedgerRepo(customers, txs, nil)
	registry := repository.NewSessionRegistry(s, scfg.LivenessThreshold)
	errlog := repository.NewErrorLogRepo(s)
	sessions := session.NewManager(scfg, session.RealClock(), ledger, registry, errlog)

	e := &env{
		echo:      echo.New(),
		cfg:       cfg,
		store:     s,
		customers: customers,
		txs:       txs,
		ledger:    ledger,
		registry:  registry,
		errlog:    errlog,
		sessions:  sessions,
		auth:      NewAuthHandler(cfg, customers),
		player:    NewPlayerHandler(customers, txs, ledger),
		sess:      NewSessionHandler(sessions, txs),
		admin:     NewAdminHandler(customers, ledger, registry, sessions, errlog),
	}
	t.Cleanup(func() {
		for _, u := range []string{"alice", "bob"} {
			_ = sessions.Stop(context.Background(), u)
		}
	})
	return e
}

func (e *env) seed(t *testing.T, username string, points int) {
	t.Helper()
	cust, err := e.customers.Create(context.Background(), username, "Player "+username, "", "")
	if err != nil {
		t.Fatalf("seed %s: %v", username, err)
	}
	if points != 0 {
		cust.Points = points
		if err := e.customers.Save(context.Background(), cust); err != nil {
			t.Fatalf("seed balance for %s: %v", username, err)
		}
	}
}

// request runs one handler with an optional JSON body and an optional
// authenticated identity, skipping the JWT middleware the way the
// route tests in this package do.
func (e *env) request(t *testing.T, method, target, body, as string,
	h echo.HandlerFunc, pathParams map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.echo.NewContext(req, rec)
	if as != "" {
		c.Set("username", as)
	}
	for k, v := range pathParams {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	if err := h(c); err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}
