package model

import (
	"math"
	"time"
)

// Event is the public view of a tour in the `events` table.  Catalog
// management happens elsewhere; this service only reads events.
type Event struct {
	ID            uint64    `json:"id"`
	Title         string    `json:"title"`
	Source        string    `json:"source"`
	Destination   string    `json:"destination"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	PricePerAdult int64     `json:"price_per_adult"`
	PricePerChild int64     `json:"price_per_child"`
	Capacity      int       `json:"capacity"`
	Active        bool      `json:"status"`
}

// EventSnapshot is the subset of an event the reservation ledger needs
// at the moment a reservation is created or cancelled.
type EventSnapshot struct {
	ID            uint64
	Active        bool
	PricePerAdult int64
	PricePerChild int64
	StartDate     time.Time
	Capacity      int
}

// Price returns the total for the given traveler counts.  Negative counts
// and totals that do not fit in an int64 are ErrInvalidTravelers.
func (e EventSnapshot) Price(adults, children int) (int64, error) {
	if adults < 0 || children < 0 {
		return 0, ErrInvalidTravelers
	}
	a, ok := mulPrice(int64(adults), e.PricePerAdult)
	if !ok {
		return 0, ErrInvalidTravelers
	}
	c, ok := mulPrice(int64(children), e.PricePerChild)
	if !ok || a > math.MaxInt64-c {
		return 0, ErrInvalidTravelers
	}
	return a + c, nil
}

// mulPrice multiplies two non-negative values, reporting overflow.
func mulPrice(n, price int64) (int64, bool) {
	if n == 0 || price == 0 {
		return 0, true
	}
	if price < 0 || n > math.MaxInt64/price {
		return 0, false
	}
	return n * price, true
}
