package handler

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aghpoints/loyalty-server/internal/repository"
	"github.com/aghpoints/loyalty-server/internal/session"
)

// AdminHandler serves the dashboard: stats, player search, manual
// point adjustments, the live session list with force-stop and the
// error-log browser.
type AdminHandler struct {
	Customers *repository.CustomerRepo
	Ledger    *repository.LedgerRepo
	Registry  *repository.SessionRegistry
	Sessions  *session.Manager
	Errors    *repository.ErrorLogRepo
}

func NewAdminHandler(c *repository.CustomerRepo, l *repository.LedgerRepo,
	r *repository.SessionRegistry, m *session.Manager, e *repository.ErrorLogRepo) *AdminHandler {
	return &AdminHandler{Customers: c, Ledger: l, Registry: r, Sessions: m, Errors: e}
}

type adjustReq struct {
	Points      int    `json:"points"`
	Action      string `json:"action"` // add | redeem
	Description string `json:"description"`
}

// Stats returns the dashboard counters: player count and total points
// outstanding.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	customers, err := h.Customers.All(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load stats failed"})
	}
	total := 0
	for _, cust := range customers {
		total += cust.Points
	}
	return c.JSON(http.StatusOK, echo.Map{
		"totalCustomers": len(customers),
		"totalPoints":    total,
	})
}

// Players lists registered players, optionally filtered by the
// ?search= term (matches name, username, phone or email).
func (h *AdminHandler) Players(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	customers, err := h.Customers.Search(ctx, c.QueryParam("search"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load players failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"customers": customers})
}

// AdjustPoints is the manual balance adjustment: add or redeem a
// positive amount with a required description. The acting admin is
// recorded on the transaction.
func (h *AdminHandler) AdjustPoints(c echo.Context) error {
	var req adjustReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Points <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "points must be positive"})
	}
	if strings.TrimSpace(req.Description) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description required"})
	}
	delta := req.Points
	switch req.Action {
	case "add":
	case "redeem":
		delta = -delta
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "action must be add or redeem"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	balance, err := h.Ledger.Adjust(ctx, c.Param("username"), delta,
		strings.TrimSpace(req.Description), username(c))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	case errors.Is(err, repository.ErrInsufficientBalance):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "customer doesn't have enough points"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "adjust failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"points": balance})
}

// liveSession is one row of the live session table. Active is derived
// from the last heartbeat, never stored.
type liveSession struct {
	Username      string    `json:"username"`
	SessionID     string    `json:"sessionId"`
	StartTime     time.Time `json:"startTime"`
	LastHeartbeat time.Time `json:"lastHeartbeat"`
	Active        bool      `json:"active"`
}

// LiveSessions lists registry records sorted by username, each flagged
// with derived liveness. Stale records linger until the reaper or a
// force-stop removes them.
func (h *AdminHandler) LiveSessions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	records, err := h.Registry.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load sessions failed"})
	}
	now := time.Now().UTC()
	out := make([]liveSession, 0, len(records))
	for _, s := range records {
		out = append(out, liveSession{
			Username:      s.Username,
			SessionID:     s.SessionID,
			StartTime:     s.StartTime,
			LastHeartbeat: s.LastHeartbeat,
			Active:        h.Registry.IsActive(s.LastHeartbeat, now),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return c.JSON(http.StatusOK, echo.Map{"sessions": out})
}

// ForceStopSession ends a player's session from the admin view.
// Idempotent: force-stopping a player with no session succeeds.
func (h *AdminHandler) ForceStopSession(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Sessions.ForceStop(ctx, c.Param("username")); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "force stop failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ErrorLogs serves the error browser with ?type=, ?severity= and ?q=
// filters.
func (h *AdminHandler) ErrorLogs(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	logs, err := h.Errors.List(ctx, repository.ErrorLogFilter{
		Type:     c.QueryParam("type"),
		Severity: c.QueryParam("severity"),
		Text:     c.QueryParam("q"),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load error logs failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"errors": logs})
}
