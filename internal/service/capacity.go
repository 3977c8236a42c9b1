package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/tour-reservation/internal/model"
)

// CapacityChecker is consulted inside the reservation unit of work before
// any money moves.  Returning an error aborts the reservation.
type CapacityChecker interface {
	Check(ctx context.Context, event model.EventSnapshot, travelers int) error
}

// TravelerCounter reports how many travelers hold paid seats on an event.
type TravelerCounter interface {
	ReservedTravelers(ctx context.Context, eventID uint64) (int, error)
}

// EventLocker serialises reservations for one event until the current
// unit of work ends.
type EventLocker interface {
	Lock(ctx context.Context, eventID uint64) error
}

// SeatCapacity rejects reservations that would put more travelers on an
// event than its capacity.  Only paid reservations occupy seats.
type SeatCapacity struct {
	locker  EventLocker
	counter TravelerCounter
}

// NewSeatCapacity returns a SeatCapacity backed by the given stores.
func NewSeatCapacity(locker EventLocker, counter TravelerCounter) *SeatCapacity {
	return &SeatCapacity{locker: locker, counter: counter}
}

func (s *SeatCapacity) Check(ctx context.Context, event model.EventSnapshot, travelers int) error {
	if err := s.locker.Lock(ctx, event.ID); err != nil {
		return err
	}
	taken, err := s.counter.ReservedTravelers(ctx, event.ID)
	if err != nil {
		return err
	}
	if travelers < 0 || taken > event.Capacity || travelers > event.Capacity-taken {
		return fmt.Errorf("%w: %d of %d seats taken", model.ErrCapacityExceeded, taken, event.Capacity)
	}
	return nil
}
