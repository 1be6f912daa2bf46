package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aghpoints/loyalty-server/internal/model"
	"github.com/aghpoints/loyalty-server/internal/repository"
	"github.com/aghpoints/loyalty-server/internal/session"
)

// SessionHandler exposes the player's session timer: start, stop and
// the countdown snapshot the UI polls every second.
type SessionHandler struct {
	Sessions *session.Manager
	Txs      *repository.TransactionRepo
}

func NewSessionHandler(m *session.Manager, t *repository.TransactionRepo) *SessionHandler {
	return &SessionHandler{Sessions: m, Txs: t}
}

// Start begins point accrual for the authenticated player. 409 when a
// session is already running.
func (h *SessionHandler) Start(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user := username(c)
	status, err := h.Sessions.Start(ctx, user)
	switch {
	case errors.Is(err, session.ErrSessionActive):
		return c.JSON(http.StatusConflict, echo.Map{"error": "session already active"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "start session failed"})
	}

	h.appendMarker(ctx, user, "Session started")
	return c.JSON(http.StatusOK, status)
}

// Stop ends the session. Idempotent: stopping with nothing running
// still returns 200.
func (h *SessionHandler) Stop(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user := username(c)
	wasRunning := h.Sessions.Status(user).Active
	if err := h.Sessions.Stop(ctx, user); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stop session failed"})
	}
	if wasRunning {
		h.appendMarker(ctx, user, "Session stopped")
	}
	return c.JSON(http.StatusOK, h.Sessions.Status(user))
}

// Status returns the timer snapshot: elapsed MM:SS and the countdown
// to the next point.
func (h *SessionHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Sessions.Status(username(c)))
}

// appendMarker writes a zero-point session entry into the history.
// Best-effort: a failed marker never fails the session operation.
func (h *SessionHandler) appendMarker(ctx context.Context, user, text string) {
	err := h.Txs.Append(ctx, model.Transaction{
		CustomerUsername: user,
		Points:           0,
		Type:             model.TxSession,
		Description:      text,
		Timestamp:        time.Now().UTC(),
	})
	if err != nil {
		log.Printf("session: append %q marker for %s failed: %v", text, user, err)
	}
}
