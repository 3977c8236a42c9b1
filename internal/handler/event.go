package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-reservation/internal/model"
)

// EventReader loads bookable events.
type EventReader interface {
	GetActive(ctx context.Context, id uint64) (model.Event, error)
}

// EventHandler serves the public event catalog read.
type EventHandler struct {
	Events EventReader
}

func NewEventHandler(events EventReader) *EventHandler {
	return &EventHandler{Events: events}
}

// Get returns one active event.  Inactive and unknown events are 404.
func (h *EventHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	ev, err := h.Events.GetActive(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ev)
}
