package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/kost-management/internal/model"
)

type userLister interface {
	ListWithRoom(ctx context.Context) ([]model.UserSummary, error)
}

// UserHandler serves admin-facing tenant listings.
type UserHandler struct {
	Users userLister
}

func NewUserHandler(u userLister) *UserHandler {
	return &UserHandler{Users: u}
}

// ListWithRoom returns every tenant that has a room assigned, ordered by
// room number.
func (h *UserHandler) ListWithRoom(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Users.ListWithRoom(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, items)
}
