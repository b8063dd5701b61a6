package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/kost-management/internal/repository"
)

type historyReader interface {
	ListAll(ctx context.Context, category string) ([]repository.HistoryFeedItem, error)
}

// HistoryHandler serves the audit feed.
type HistoryHandler struct {
	History historyReader
}

func NewHistoryHandler(h historyReader) *HistoryHandler {
	return &HistoryHandler{History: h}
}

// List returns history entries newest first, optionally filtered by
// ?category=.
func (h *HistoryHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.History.ListAll(ctx, c.QueryParam("category"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, items)
}
