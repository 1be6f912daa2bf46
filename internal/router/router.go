package router // registers the HTTP routes for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/aghpoints/loyalty-server/internal/handler"
	"github.com/aghpoints/loyalty-server/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires registration and the two login flows under
// /v1/auth. None of these require an existing token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.PlayerLogin)
	g.POST("/admin", a.AdminLogin)
}

// RegisterPlayer wires the player screen: profile, history, redemption
// and the session timer. All routes require a PLAYER token.
func RegisterPlayer(e *echo.Echo, p *handler.PlayerHandler, s *handler.SessionHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(middleware.RolePlayer))

	g.GET("/me", p.Me)
	g.GET("/me/history", p.History)
	g.POST("/me/redeem", p.Redeem)

	g.POST("/session/start", s.Start)
	g.POST("/session/stop", s.Stop)
	g.GET("/session/status", s.Status)
}

// RegisterAdmin wires the dashboard under /v1/admin. All routes
// require an ADMIN token.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(middleware.RoleAdmin))

	g.GET("/stats", a.Stats)
	g.GET("/players", a.Players)
	g.POST("/players/:username/points", a.AdjustPoints)
	g.GET("/sessions", a.LiveSessions)
	g.DELETE("/sessions/:username", a.ForceStopSession)
	g.GET("/errors", a.ErrorLogs)
}
