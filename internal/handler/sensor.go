package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/kost-management/internal/model"
)

type sensorReader interface {
	ListByRoom(ctx context.Context, roomNumber string, limit int) ([]model.SensorReading, error)
}

// MonitoringHandler exposes recent sensor readings per room.
type MonitoringHandler struct {
	Sensors sensorReader
}

func NewMonitoringHandler(s sensorReader) *MonitoringHandler {
	return &MonitoringHandler{Sensors: s}
}

// ByRoom returns the most recent readings for ?room=, oldest first so the
// dashboard can chart them directly.  ?limit= caps the sample count
// (default 100, max 1000).
func (h *MonitoringHandler) ByRoom(c echo.Context) error {
	room := strings.TrimSpace(c.QueryParam("room"))
	if room == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room required"})
	}
	limit := 100
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 1000 {
		limit = 1000
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Sensors.ListByRoom(ctx, room, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, items)
}
