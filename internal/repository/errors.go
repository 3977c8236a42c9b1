// Package repository persists users, wallets, events, reservations,
// passengers and refresh tokens in MySQL.  Every method accepts a context
// and transparently joins the transaction opened by UnitOfWork.WithTx.
//
// Absent rows are reported with the sentinels below, each of which wraps
// model.ErrNotFound so callers can match either the specific or the
// general kind with errors.Is.
package repository

import (
	"fmt"

	"github.com/iliyamo/tour-reservation/internal/model"
)

var (
	ErrWalletNotFound      = fmt.Errorf("wallet %w", model.ErrNotFound)
	ErrReservationNotFound = fmt.Errorf("reservation %w", model.ErrNotFound)
	ErrEventNotFound       = fmt.Errorf("event %w", model.ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("user %w", model.ErrNotFound)
	ErrPassengerNotFound   = fmt.Errorf("passenger %w", model.ErrNotFound)

	// ErrTokenInvalid is returned for refresh tokens that are unknown,
	// revoked or expired.
	ErrTokenInvalid = fmt.Errorf("refresh token %w", model.ErrNotFound)

	// ErrDuplicate is returned when a unique column (email, national
	// code) already holds the value being written.
	ErrDuplicate = fmt.Errorf("duplicate value: %w", model.ErrConflict)
)
