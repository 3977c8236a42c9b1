package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/tour-reservation/internal/clock"
	"github.com/iliyamo/tour-reservation/internal/model"
)

// ReservationRepo provides persistence for reservations.  Rows are never
// deleted; cancelling flips status from paid to false.  DATE comparisons
// use the caller's "today" so that results do not depend on the database
// server's clock or time zone.
type ReservationRepo struct {
	db    *sql.DB
	clock clock.Clock
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB, c clock.Clock) *ReservationRepo {
	return &ReservationRepo{db: db, clock: c}
}

const reservationColumns = `r.id, r.user_id, r.event_id, r.num_of_adults, r.num_of_children, r.num_of_beds,
       r.total_price, r.status, r.created_at, r.updated_at`

// Create inserts res and populates its ID and timestamps.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	now := r.clock.Now()
	const q = `INSERT INTO reservations
    (user_id, event_id, num_of_adults, num_of_children, num_of_beds, total_price, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := conn(ctx, r.db).ExecContext(ctx, q,
		res.UserID, res.EventID, res.Adults, res.Children, res.Beds, res.TotalPrice, res.Status, now, now)
	if err != nil {
		return classify(fmt.Errorf("create reservation: %w", err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	res.CreatedAt = now
	res.UpdatedAt = now
	return nil
}

// GetForUser returns the reservation only if it belongs to userID.
func (r *ReservationRepo) GetForUser(ctx context.Context, id, userID uint64) (model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations r WHERE r.id = ? AND r.user_id = ?`
	var res model.Reservation
	err := scanReservation(conn(ctx, r.db).QueryRowContext(ctx, q, id, userID), &res)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, ErrReservationNotFound
	}
	if err != nil {
		return model.Reservation{}, classify(fmt.Errorf("get reservation: %w", err))
	}
	return res, nil
}

// MarkCancelled flips a paid reservation to cancelled.  The status
// predicate makes the transition happen at most once: a reservation that
// is already false yields model.ErrAlreadyCancelled.
func (r *ReservationRepo) MarkCancelled(ctx context.Context, id, userID uint64) error {
	const q = `UPDATE reservations SET status = 0, updated_at = ? WHERE id = ? AND user_id = ? AND status = 1`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, r.clock.Now(), id, userID)
	if err != nil {
		return classify(fmt.Errorf("cancel reservation %d: %w", id, err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	if _, err := r.GetForUser(ctx, id, userID); err != nil {
		return err
	}
	return model.ErrAlreadyCancelled
}

// ListUnpaid returns the user's reservations whose status is false,
// newest first.  Cancelled reservations share that status and are
// included.
func (r *ReservationRepo) ListUnpaid(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + `
FROM reservations r
WHERE r.user_id = ? AND r.status = 0
ORDER BY r.id DESC`
	return r.list(ctx, q, userID)
}

// ListUpcoming returns paid reservations for events starting after today.
func (r *ReservationRepo) ListUpcoming(ctx context.Context, userID uint64, today time.Time) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + `
FROM reservations r
JOIN events e ON e.id = r.event_id
WHERE r.user_id = ? AND r.status = 1 AND e.start_date > ?
ORDER BY e.start_date, r.id`
	return r.list(ctx, q, userID, dateParam(today))
}

// ListPast returns paid reservations for events that started today or earlier.
func (r *ReservationRepo) ListPast(ctx context.Context, userID uint64, today time.Time) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + `
FROM reservations r
JOIN events e ON e.id = r.event_id
WHERE r.user_id = ? AND r.status = 1 AND e.start_date <= ?
ORDER BY e.start_date DESC, r.id DESC`
	return r.list(ctx, q, userID, dateParam(today))
}

// ReservedTravelers sums adults and children over the paid reservations
// of an event.
func (r *ReservationRepo) ReservedTravelers(ctx context.Context, eventID uint64) (int, error) {
	const q = `SELECT COALESCE(SUM(num_of_adults + num_of_children), 0) FROM reservations WHERE event_id = ? AND status = 1`
	var total int
	if err := conn(ctx, r.db).QueryRowContext(ctx, q, eventID).Scan(&total); err != nil {
		return 0, classify(fmt.Errorf("sum reserved travelers: %w", err))
	}
	return total, nil
}

func (r *ReservationRepo) list(ctx context.Context, q string, args ...any) ([]model.Reservation, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("list reservations: %w", err))
	}
	defer rows.Close()

	out := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		if err := scanReservation(rows, &res); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(s rowScanner, res *model.Reservation) error {
	return s.Scan(&res.ID, &res.UserID, &res.EventID, &res.Adults, &res.Children, &res.Beds,
		&res.TotalPrice, &res.Status, &res.CreatedAt, &res.UpdatedAt)
}

// dateParam renders a calendar date for comparison with DATE columns.
func dateParam(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
