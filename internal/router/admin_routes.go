package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/kost-management/internal/handler"
	"github.com/iliyamo/kost-management/internal/middleware"
	"github.com/iliyamo/kost-management/internal/model"
)

// RegisterDashboard registers the audit feed and the admin dashboard
// endpoints.  The read-heavy monitoring and tenant listings take the
// optional Redis response cache; pass nil to skip caching.
func RegisterDashboard(e *echo.Echo, hist *handler.HistoryHandler, mon *handler.MonitoringHandler,
	users *handler.UserHandler, jwtSecret string, cache echo.MiddlewareFunc) {

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/history", hist.List)

	admin := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleAdmin))
	if cache != nil {
		admin.GET("/monitoring", mon.ByRoom, cache)
		admin.GET("/users/with-room", users.ListWithRoom, cache)
	} else {
		admin.GET("/monitoring", mon.ByRoom)
		admin.GET("/users/with-room", users.ListWithRoom)
	}
}
