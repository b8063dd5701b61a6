// Package router wires handlers, middleware and route groups onto the
// Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/kost-management/internal/handler"
	"github.com/iliyamo/kost-management/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication: the health
// check and the static proof-image directory.
func RegisterRoutes(e *echo.Echo, uploadDir string) {
	e.GET("/healthz", handler.Health)
	// Proof images are referenced by /uploads/<name> in report payloads.
	e.Static("/uploads", uploadDir)
}

// RegisterAuth registers the session endpoints.  Register, login and
// refresh live under /v1/auth without middleware; logout and /v1/me sit
// behind JWTAuth so the handler can see the authenticated user.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout, middleware.JWTAuth(jwtSecret))

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}
