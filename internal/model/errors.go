package model

import (
	"errors"
	"fmt"
)

// Error kinds shared by repositories, services and handlers.  Lower
// layers wrap these with context; callers match them with errors.Is.
var (
	// ErrNotFound covers wallets, reservations, events and passengers that
	// are absent or not owned by the caller.
	ErrNotFound = errors.New("not found")

	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount is returned for non-positive money amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidTravelers is returned when traveler or bed counts are
	// negative or no traveler is booked at all.  It is a kind of
	// ErrInvalidAmount.
	ErrInvalidTravelers = fmt.Errorf("invalid traveler counts: %w", ErrInvalidAmount)

	ErrEventUnavailable         = errors.New("event unavailable")
	ErrAlreadyCancelled         = errors.New("reservation already cancelled")
	ErrCancellationWindowClosed = errors.New("cancellation window closed")
	ErrSelfTransfer             = errors.New("cannot transfer to own wallet")

	// ErrCapacityExceeded is only produced when capacity checking is
	// switched on.
	ErrCapacityExceeded = errors.New("event capacity exceeded")

	// ErrTransient marks lock contention the database gave up on
	// (deadlock, lock wait timeout).  The request may be retried.
	ErrTransient = errors.New("transient storage failure")

	// ErrValidation is wrapped by every request-shape error so the
	// message can be returned to the client as is.
	ErrValidation = errors.New("validation failed")

	// ErrConflict covers writes rejected by a uniqueness rule.
	ErrConflict = errors.New("conflict")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = fmt.Errorf("username already exists: %w", ErrConflict)
)
