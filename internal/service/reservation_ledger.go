package service

import (
	"context"
	"log/slog"

	"github.com/iliyamo/tour-reservation/internal/clock"
	"github.com/iliyamo/tour-reservation/internal/model"
	"github.com/iliyamo/tour-reservation/internal/queue"
)

// ReservationLedger creates and cancels reservations.  Payment and the
// reservation row are written in one unit of work, as are the refund and
// the status flip, so no reservation exists without its debit and no
// refund is paid twice.
type ReservationLedger struct {
	uow          UnitOfWork
	wallets      WalletStore
	reservations ReservationStore
	events       EventCatalog
	clock        clock.Clock
	options
}

func NewReservationLedger(uow UnitOfWork, wallets WalletStore, reservations ReservationStore, events EventCatalog, clk clock.Clock, opts ...Option) *ReservationLedger {
	return &ReservationLedger{
		uow:          uow,
		wallets:      wallets,
		reservations: reservations,
		events:       events,
		clock:        clk,
		options:      buildOptions(opts),
	}
}

type CreateReservationInput struct {
	UserID   uint64
	EventID  uint64
	Adults   int
	Children int
	Beds     int
	PayNow   bool
}

// Create reserves an event for the user.  With PayNow the total is debited
// from the user's wallet and the reservation is stored as paid; otherwise
// it is stored unpaid and no money moves.
func (l *ReservationLedger) Create(ctx context.Context, in CreateReservationInput) (model.Reservation, error) {
	event, err := l.events.GetSnapshot(ctx, in.EventID)
	if err != nil {
		return model.Reservation{}, err
	}
	if !event.Active {
		return model.Reservation{}, model.ErrEventUnavailable
	}
	if !validCounts(in.Adults, in.Children, in.Beds) {
		return model.Reservation{}, model.ErrInvalidTravelers
	}
	total, err := event.Price(in.Adults, in.Children)
	if err != nil {
		return model.Reservation{}, err
	}

	res := model.Reservation{
		UserID:     in.UserID,
		EventID:    in.EventID,
		Adults:     in.Adults,
		Children:   in.Children,
		Beds:       in.Beds,
		TotalPrice: total,
		Status:     in.PayNow,
	}

	var balance int64
	err = l.uow.WithTx(ctx, func(ctx context.Context) error {
		if l.capacity != nil {
			if err := l.capacity.Check(ctx, event, res.Travelers()); err != nil {
				return err
			}
		}
		wallet, err := l.wallets.GetByUser(ctx, in.UserID)
		if err != nil {
			return err
		}
		balance = wallet.Balance
		if in.PayNow && res.TotalPrice > 0 {
			if balance, err = l.wallets.Debit(ctx, wallet.ID, res.TotalPrice); err != nil {
				return err
			}
		}
		return l.reservations.Create(ctx, &res)
	})
	if err != nil {
		l.logger.Debug("reservation rejected",
			slog.Uint64("user_id", in.UserID), slog.Uint64("event_id", in.EventID), slog.Any("err", err))
		return model.Reservation{}, err
	}

	l.logger.Info("reservation created",
		slog.Uint64("reservation_id", res.ID), slog.Uint64("user_id", res.UserID),
		slog.Int64("total", res.TotalPrice), slog.Bool("paid", res.Status))
	l.publish(ctx, queue.LedgerEvent{
		Type:          queue.TypeReservationCreated,
		UserID:        res.UserID,
		ReservationID: res.ID,
		EventID:       res.EventID,
		Amount:        res.TotalPrice,
		Balance:       balance,
		Paid:          res.Status,
		OccurredAt:    res.CreatedAt,
	})
	return res, nil
}

// validCounts bounds each count before anything is summed or priced.
func validCounts(adults, children, beds int) bool {
	for _, n := range []int{adults, children, beds} {
		if n < 0 || n > model.MaxTravelers {
			return false
		}
	}
	travelers := adults + children
	return travelers > 0 && travelers <= model.MaxTravelers
}

// Cancel cancels a paid reservation and credits the refund to the user's
// wallet.  It returns the refunded amount.
func (l *ReservationLedger) Cancel(ctx context.Context, reservationID, userID uint64) (int64, error) {
	res, err := l.reservations.GetForUser(ctx, reservationID, userID)
	if err != nil {
		return 0, err
	}
	if !res.Status {
		return 0, model.ErrAlreadyCancelled
	}
	event, err := l.events.GetSnapshot(ctx, res.EventID)
	if err != nil {
		return 0, err
	}
	now := l.clock.Now()
	refund, err := ComputeRefund(event.StartDate, now, res.TotalPrice)
	if err != nil {
		return 0, err
	}

	var balance int64
	err = l.uow.WithTx(ctx, func(ctx context.Context) error {
		// The conditional status update is what guarantees a single refund
		// when two cancels race past the check above.
		if err := l.reservations.MarkCancelled(ctx, reservationID, userID); err != nil {
			return err
		}
		wallet, err := l.wallets.GetByUser(ctx, userID)
		if err != nil {
			return err
		}
		balance, err = l.wallets.Credit(ctx, wallet.ID, refund)
		return err
	})
	if err != nil {
		l.logger.Debug("cancellation rejected",
			slog.Uint64("reservation_id", reservationID), slog.Uint64("user_id", userID), slog.Any("err", err))
		return 0, err
	}

	l.logger.Info("reservation cancelled",
		slog.Uint64("reservation_id", reservationID), slog.Uint64("user_id", userID), slog.Int64("refund", refund))
	l.publish(ctx, queue.LedgerEvent{
		Type:          queue.TypeReservationCancelled,
		UserID:        userID,
		ReservationID: reservationID,
		EventID:       res.EventID,
		Amount:        refund,
		Balance:       balance,
		OccurredAt:    now,
	})
	return refund, nil
}

// Get returns one of the user's reservations.
func (l *ReservationLedger) Get(ctx context.Context, reservationID, userID uint64) (model.Reservation, error) {
	return l.reservations.GetForUser(ctx, reservationID, userID)
}

// Unpaid lists the user's reservations with status false.
func (l *ReservationLedger) Unpaid(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return l.reservations.ListUnpaid(ctx, userID)
}

// Upcoming lists paid reservations for events that start after today.
func (l *ReservationLedger) Upcoming(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return l.reservations.ListUpcoming(ctx, userID, l.clock.Now())
}

// Past lists paid reservations for events that started today or earlier.
func (l *ReservationLedger) Past(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return l.reservations.ListPast(ctx, userID, l.clock.Now())
}
