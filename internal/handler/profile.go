package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-reservation/internal/model"
	"github.com/iliyamo/tour-reservation/internal/service"
)

// ProfileHandler serves the caller's profile and passenger book.
type ProfileHandler struct {
	Profiles *service.ProfileService
}

func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles}
}

func (h *ProfileHandler) GetProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Profiles.Get(ctx, uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateProfile applies only the allow-listed fields present in the body.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	var req model.ProfileUpdate
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Empty() {
		return fmt.Errorf("%w: nothing to update", model.ErrValidation)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Profiles.Update(ctx, uid, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (h *ProfileHandler) ListPassengers(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	items, err := h.Profiles.Passengers(ctx, uid)
	if err != nil {
		return err
	}
	if items == nil {
		items = []model.Passenger{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *ProfileHandler) AddPassenger(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	var req service.PassengerInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := h.Profiles.AddPassenger(ctx, uid, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *ProfileHandler) DeletePassenger(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	pid, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Profiles.DeletePassenger(ctx, uid, pid); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
