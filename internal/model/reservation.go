package model

import "time"

// Reservation records a user's booking against an event.  TotalPrice is
// computed from the event prices when the reservation is created and
// never changes afterwards.
//
// Status is true while the reservation is paid and active.  It is false
// for unpaid ("watchlist") reservations and for cancelled ones; the only
// transition is paid -> cancelled, exactly once.
//
// Fields:
//
//	ID         – primary key identifier.
//	UserID     – user who made the reservation.
//	EventID    – event being reserved.
//	Adults     – number of adult travelers.
//	Children   – number of child travelers.
//	Beds       – number of beds requested.
//	TotalPrice – amount charged, in the smallest currency unit.
//	Status     – paid/active flag.
//	CreatedAt  – creation timestamp.
//	UpdatedAt  – last update timestamp.
type Reservation struct {
	ID         uint64    `json:"id"`              // reservations.id
	UserID     uint64    `json:"user_id"`         // reservations.user_id
	EventID    uint64    `json:"event_id"`        // reservations.event_id
	Adults     int       `json:"num_of_adults"`   // reservations.num_of_adults
	Children   int       `json:"num_of_children"` // reservations.num_of_children
	Beds       int       `json:"num_of_beds"`     // reservations.num_of_beds
	TotalPrice int64     `json:"total_price"`     // reservations.total_price
	Status     bool      `json:"status"`          // reservations.status
	CreatedAt  time.Time `json:"created_at"`      // reservations.created_at
	UpdatedAt  time.Time `json:"updated_at"`      // reservations.updated_at
}

// MaxTravelers caps adults plus children on one reservation.
const MaxTravelers = 1000

// Travelers returns the number of people covered by the reservation.
func (r Reservation) Travelers() int { return r.Adults + r.Children }
