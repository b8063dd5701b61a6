package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/kost-management/internal/handler"
	"github.com/iliyamo/kost-management/internal/middleware"
	"github.com/iliyamo/kost-management/internal/model"
)

// RegisterReports registers the payment-report endpoints under /v1.
// Submission is tenant-only, the decision and full listing admin-only;
// the revenue aggregate sits under the same prefix and takes the optional
// response cache (pass nil to skip caching).
func RegisterReports(e *echo.Echo, h *handler.PaymentReportHandler, rev *handler.RevenueHandler,
	jwtSecret string, cache echo.MiddlewareFunc) {

	g := e.Group("/v1/reports", middleware.JWTAuth(jwtSecret))

	g.POST("", h.Submit, middleware.RequireRole(model.RoleTenant))
	g.GET("/mine", h.Mine, middleware.RequireRole(model.RoleTenant))

	g.GET("", h.List, middleware.RequireRole(model.RoleAdmin))
	if cache != nil {
		g.GET("/revenue", rev.Monthly, middleware.RequireRole(model.RoleAdmin), cache)
	} else {
		g.GET("/revenue", rev.Monthly, middleware.RequireRole(model.RoleAdmin))
	}
	g.GET("/:id", h.GetByID)
	g.PATCH("/:id/confirmation", h.Decide, middleware.RequireRole(model.RoleAdmin))
}
