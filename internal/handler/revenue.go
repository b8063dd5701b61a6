package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/kost-management/internal/service"
)

type revenueReader interface {
	Monthly(ctx context.Context, month string) (*service.MonthlyRevenue, error)
}

// RevenueHandler serves the admin revenue dashboard.
type RevenueHandler struct {
	Revenue revenueReader
}

func NewRevenueHandler(r revenueReader) *RevenueHandler {
	return &RevenueHandler{Revenue: r}
}

// Monthly aggregates confirmed payments for the month given as
// ?month=YYYY-MM.
func (h *RevenueHandler) Monthly(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Revenue.Monthly(ctx, c.QueryParam("month"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidMonth) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "month must be YYYY-MM"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, out)
}
