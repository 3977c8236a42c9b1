package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/tour-reservation/internal/model"
)

// PassengerRepo stores the traveler profiles a user keeps for booking.
type PassengerRepo struct {
	db *sql.DB
}

func NewPassengerRepo(db *sql.DB) *PassengerRepo { return &PassengerRepo{db: db} }

// ListByUser returns the user's passengers ordered by id.
func (r *PassengerRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Passenger, error) {
	const q = `SELECT id, user_id, firstname, lastname, gender, dob, national_code
FROM passengers WHERE user_id = ? ORDER BY id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, userID)
	if err != nil {
		return nil, classify(fmt.Errorf("list passengers: %w", err))
	}
	defer rows.Close()

	out := make([]model.Passenger, 0)
	for rows.Next() {
		var p model.Passenger
		if err := rows.Scan(&p.ID, &p.UserID, &p.Firstname, &p.Lastname, &p.Gender, &p.DOB, &p.NationalCode); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create inserts p for its UserID and sets p.ID.  dob is a YYYY-MM-DD
// date or empty.
func (r *PassengerRepo) Create(ctx context.Context, p *model.Passenger, dob string) error {
	var dobArg any
	if dob != "" {
		dobArg = dob
	}
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO passengers (user_id, firstname, lastname, gender, dob, national_code) VALUES (?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Firstname, p.Lastname, p.Gender, dobArg, p.NationalCode)
	if err != nil {
		return classify(fmt.Errorf("create passenger: %w", err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// DeleteForUser removes a passenger owned by userID.
func (r *PassengerRepo) DeleteForUser(ctx context.Context, id, userID uint64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM passengers WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return classify(fmt.Errorf("delete passenger: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPassengerNotFound
	}
	return nil
}
