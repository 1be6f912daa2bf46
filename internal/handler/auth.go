package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aghpoints/loyalty-server/internal/config"
	"github.com/aghpoints/loyalty-server/internal/middleware"
	"github.com/aghpoints/loyalty-server/internal/repository"
	"github.com/aghpoints/loyalty-server/internal/utils"
)

// AuthHandler bundles dependencies for registration and the two login
// flows: players log in with just their username, admins with the
// shared venue password.
type AuthHandler struct {
	Cfg       config.Config
	Customers *repository.CustomerRepo
}

func NewAuthHandler(cfg config.Config, customers *repository.CustomerRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Customers: customers}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}
type playerLoginReq struct {
	Username string `json:"username"`
}
type adminLoginReq struct {
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type customerPart struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Points   int    `json:"points"`
}
type authResp struct {
	Customer customerPart `json:"customer"`
	Access   tokenPart    `json:"access"`
}

// Register creates a new player with zero points. Username and name
// are required; phone and email are optional. Usernames must be at
// least three characters of letters, numbers and underscores.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cust, err := h.Customers.Create(ctx, req.Username, req.Name, req.Phone, req.Email)
	switch {
	case errors.Is(err, repository.ErrInvalidUsername),
		errors.Is(err, repository.ErrNameRequired):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrUsernameExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already taken"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "register failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"customer": customerPart{Username: cust.Username, Name: cust.Name, Points: cust.Points},
	})
}

// PlayerLogin looks the username up and returns an access token. There
// is no player password; possession of the username is the credential,
// as in the original kiosk flow.
func (h *AuthHandler) PlayerLogin(c echo.Context) error {
	var req playerLoginReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Username) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cust, err := h.Customers.Get(ctx, req.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "username not found, please register first"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, cust.Username, middleware.RolePlayer, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return c.JSON(http.StatusOK, authResp{
		Customer: customerPart{Username: cust.Username, Name: cust.Name, Points: cust.Points},
		Access:   tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// AdminLogin checks the shared admin password against its bcrypt hash
// and returns an ADMIN token.
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	var req adminLoginReq
	if err := c.Bind(&req); err != nil || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password required"})
	}
	if !utils.VerifyPassword(h.Cfg.AdminPasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid admin password"})
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, "admin", middleware.RoleAdmin, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}
