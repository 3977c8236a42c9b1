package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/tour-reservation/internal/clock"
)

// TokenRepo persists/validates refresh tokens (single 'token_hash' column).
type TokenRepo struct {
	db    *sql.DB
	clock clock.Clock
}

func NewTokenRepo(db *sql.DB, c clock.Clock) *TokenRepo { return &TokenRepo{db: db, clock: c} }

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at, created_at) VALUES (?, ?, ?, ?)",
		userID, tokenHash, exp, r.clock.Now())
	if err != nil {
		return classify(fmt.Errorf("store refresh token: %w", err))
	}
	return nil
}

// ValidateRefresh returns userID if a non-revoked, non-expired token exists.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	var (
		userID    uint64
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash = ? LIMIT 1",
		tokenHash).Scan(&userID, &expiresAt, &revokedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrTokenInvalid
	}
	if err != nil {
		return 0, classify(fmt.Errorf("validate refresh token: %w", err))
	}
	if revokedAt.Valid || !r.clock.Now().Before(expiresAt) {
		return 0, ErrTokenInvalid
	}
	return userID, nil
}

// RevokeByHash marks a token as revoked.  Revoking an unknown or already
// revoked token yields ErrTokenInvalid.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at = ? WHERE token_hash = ? AND revoked_at IS NULL",
		r.clock.Now(), tokenHash)
	if err != nil {
		return classify(fmt.Errorf("revoke refresh token: %w", err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTokenInvalid
	}
	return nil
}

// RevokeAllForUser revokes all user's active tokens.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL",
		r.clock.Now(), userID)
	if err != nil {
		return classify(fmt.Errorf("revoke user tokens: %w", err))
	}
	return nil
}
