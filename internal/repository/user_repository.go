package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/tour-reservation/internal/clock"
	"github.com/iliyamo/tour-reservation/internal/model"
)

type UserRepo struct {
	db    *sql.DB
	clock clock.Clock
}

func NewUserRepo(db *sql.DB, c clock.Clock) *UserRepo { return &UserRepo{db: db, clock: c} }

const userColumns = `id, username, password_hash, firstname, lastname, email, gender, dob, national_code,
       is_admin, created_at, updated_at`

// Create inserts a user with an already hashed password.  A taken
// username yields model.ErrUsernameTaken.
func (r *UserRepo) Create(ctx context.Context, username, passwordHash string) (model.User, error) {
	now := r.clock.Now()
	u := model.User{
		Username:     strings.TrimSpace(username),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	res, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO users (username, password_hash, is_admin, created_at, updated_at) VALUES (?, ?, 0, ?, ?)",
		u.Username, u.PasswordHash, now, now)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, model.ErrUsernameTaken
		}
		return model.User{}, classify(fmt.Errorf("create user: %w", err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	u.ID = uint64(id)
	return u, nil
}

// GetByUsername fetches a user by login name.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE username = ? LIMIT 1", strings.TrimSpace(username))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (model.User, error) {
	var u model.User
	err := conn(ctx, r.db).QueryRowContext(ctx, q, arg).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Firstname, &u.Lastname, &u.Email,
		&u.Gender, &u.DOB, &u.NationalCode, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	if err != nil {
		return model.User{}, classify(fmt.Errorf("get user: %w", err))
	}
	return u, nil
}

// UpdateProfile writes the non-nil fields of p and returns the updated
// user.  Only the columns enumerated by model.ProfileUpdate can change.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, p model.ProfileUpdate) (model.User, error) {
	if p.Empty() {
		return r.GetByID(ctx, id)
	}

	sets := make([]string, 0, 7)
	args := make([]any, 0, 8)
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if p.Firstname != nil {
		add("firstname", *p.Firstname)
	}
	if p.Lastname != nil {
		add("lastname", *p.Lastname)
	}
	if p.Email != nil {
		add("email", *p.Email)
	}
	if p.Gender != nil {
		add("gender", *p.Gender)
	}
	if p.DOB != nil {
		add("dob", *p.DOB)
	}
	if p.NationalCode != nil {
		add("national_code", *p.NationalCode)
	}
	add("updated_at", r.clock.Now())
	args = append(args, id)

	q := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := conn(ctx, r.db).ExecContext(ctx, q, args...)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, fmt.Errorf("update profile: %w", ErrDuplicate)
		}
		return model.User{}, classify(fmt.Errorf("update profile: %w", err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.User{}, ErrUserNotFound
	}
	return r.GetByID(ctx, id)
}
