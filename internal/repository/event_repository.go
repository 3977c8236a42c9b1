package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/tour-reservation/internal/model"
)

// EventRepo reads the tour catalog.  Events are managed by another
// service; nothing here writes to the events table.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns an EventRepo bound to db.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// GetSnapshot returns the pricing and scheduling view of an event,
// active or not.
func (r *EventRepo) GetSnapshot(ctx context.Context, id uint64) (model.EventSnapshot, error) {
	const q = `SELECT id, status, price_per_adult, price_per_child, start_date, capacity FROM events WHERE id = ?`
	var s model.EventSnapshot
	err := conn(ctx, r.db).QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.Active, &s.PricePerAdult, &s.PricePerChild, &s.StartDate, &s.Capacity,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.EventSnapshot{}, ErrEventNotFound
	}
	if err != nil {
		return model.EventSnapshot{}, classify(fmt.Errorf("get event snapshot: %w", err))
	}
	return s, nil
}

// GetActive returns the public view of an active event.  Inactive events
// are reported as not found.
func (r *EventRepo) GetActive(ctx context.Context, id uint64) (model.Event, error) {
	const q = `SELECT id, title, source, destination, start_date, end_date,
       price_per_adult, price_per_child, capacity, status
FROM events WHERE id = ? AND status = 1`
	var e model.Event
	err := conn(ctx, r.db).QueryRowContext(ctx, q, id).Scan(
		&e.ID, &e.Title, &e.Source, &e.Destination, &e.StartDate, &e.EndDate,
		&e.PricePerAdult, &e.PricePerChild, &e.Capacity, &e.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrEventNotFound
	}
	if err != nil {
		return model.Event{}, classify(fmt.Errorf("get event: %w", err))
	}
	return e, nil
}

// Lock takes the event row's write lock for the rest of the current
// transaction.  It must be called inside UnitOfWork.WithTx.
func (r *EventRepo) Lock(ctx context.Context, id uint64) error {
	if txFromContext(ctx) == nil {
		return fmt.Errorf("lock event %d: no transaction in context", id)
	}
	res, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE events SET updated_at = updated_at WHERE id = ?`, id)
	if err != nil {
		return classify(fmt.Errorf("lock event %d: %w", id, err))
	}
	if _, err := res.RowsAffected(); err != nil {
		return err
	}
	return nil
}
