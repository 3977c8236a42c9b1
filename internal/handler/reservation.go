package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-reservation/internal/model"
	"github.com/iliyamo/tour-reservation/internal/service"
)

// ReservationHandler exposes the reservation ledger to customers.
type ReservationHandler struct {
	Ledger *service.ReservationLedger
}

func NewReservationHandler(ledger *service.ReservationLedger) *ReservationHandler {
	return &ReservationHandler{Ledger: ledger}
}

type reserveReq struct {
	Adults   int  `json:"num_of_adults"`
	Children int  `json:"num_of_children"`
	Beds     int  `json:"num_of_beds"`
	PayNow   bool `json:"pay_now"`
}

type cancelResp struct {
	ReservationID uint64 `json:"reservation_id"`
	Refund        int64  `json:"refund"`
}

type listResp struct {
	Items []model.Reservation `json:"items"`
}

// Reserve handles POST /v1/events/:id/reserve.
func (h *ReservationHandler) Reserve(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	eventID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req reserveReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	r, err := h.Ledger.Create(ctx, service.CreateReservationInput{
		UserID:   uid,
		EventID:  eventID,
		Adults:   req.Adults,
		Children: req.Children,
		Beds:     req.Beds,
		PayNow:   req.PayNow,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, r)
}

// Cancel handles POST /v1/reservations/:id/cancel and reports the refund.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	rid, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	refund, err := h.Ledger.Cancel(ctx, rid, uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cancelResp{ReservationID: rid, Refund: refund})
}

// Get returns one of the caller's reservations.
func (h *ReservationHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	rid, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	r, err := h.Ledger.Get(ctx, rid, uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (h *ReservationHandler) Unpaid(c echo.Context) error   { return h.list(c, h.Ledger.Unpaid) }
func (h *ReservationHandler) Upcoming(c echo.Context) error { return h.list(c, h.Ledger.Upcoming) }
func (h *ReservationHandler) Past(c echo.Context) error     { return h.list(c, h.Ledger.Past) }

func (h *ReservationHandler) list(c echo.Context, load func(context.Context, uint64) ([]model.Reservation, error)) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	items, err := load(ctx, uid)
	if err != nil {
		return err
	}
	if items == nil {
		items = []model.Reservation{}
	}
	return c.JSON(http.StatusOK, listResp{Items: items})
}
