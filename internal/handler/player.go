package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aghpoints/loyalty-server/internal/repository"
)

// PlayerHandler serves the player screen: profile with current
// balance, transaction history and redemption.
type PlayerHandler struct {
	Customers *repository.CustomerRepo
	Txs       *repository.TransactionRepo
	Ledger    *repository.LedgerRepo
}

func NewPlayerHandler(c *repository.CustomerRepo, t *repository.TransactionRepo, l *repository.LedgerRepo) *PlayerHandler {
	return &PlayerHandler{Customers: c, Txs: t, Ledger: l}
}

type redeemReq struct {
	Points      int    `json:"points"`
	Description string `json:"description"`
}

// username pulls the authenticated player out of the JWT context.
func username(c echo.Context) string {
	u, _ := c.Get("username").(string)
	return u
}

// Me returns the player's profile including the live balance.
func (h *PlayerHandler) Me(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cust, err := h.Customers.Get(ctx, username(c))
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
	}
	return c.JSON(http.StatusOK, cust)
}

// History returns the player's transactions newest-first.
func (h *PlayerHandler) History(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	txs, err := h.Txs.ListByCustomer(ctx, username(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load history failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": txs})
}

// Redeem spends points from the player's own balance. Redeeming more
// than the current balance fails with 422 and changes nothing;
// redeeming exactly the balance leaves it at zero.
func (h *PlayerHandler) Redeem(c echo.Context) error {
	var req redeemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Points <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "points must be positive"})
	}
	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		desc = "Points redeemed"
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	balance, err := h.Ledger.Adjust(ctx, username(c), -req.Points, desc, "")
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	case errors.Is(err, repository.ErrInsufficientBalance):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "not enough points"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "redeem failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"points": balance})
}
