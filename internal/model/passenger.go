package model

import "time"

// Passenger is a traveler profile saved by a user for reuse when booking.
type Passenger struct {
	ID           uint64     `json:"id"`            // passengers.id
	UserID       uint64     `json:"user_id"`       // passengers.user_id
	Firstname    string     `json:"firstname"`     // passengers.firstname
	Lastname     string     `json:"lastname"`      // passengers.lastname
	Gender       int        `json:"gender"`        // passengers.gender
	DOB          *time.Time `json:"dob,omitempty"` // passengers.dob (nullable)
	NationalCode string     `json:"national_code"` // passengers.national_code
}
