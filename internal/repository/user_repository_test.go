package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tour-reservation/internal/clock"
	"github.com/iliyamo/tour-reservation/internal/model"
	"github.com/iliyamo/tour-reservation/internal/repository"
	"github.com/iliyamo/tour-reservation/internal/testutil"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestUserRepo(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepo(db, clock.NewFixed(now))
	ctx := context.Background()

	u, err := repo.Create(ctx, " sara ", "hash")
	require.NoError(t, err)
	assert.Equal(t, "sara", u.Username)

	_, err = repo.Create(ctx, "sara", "hash")
	assert.ErrorIs(t, err, model.ErrUsernameTaken)

	got, err := repo.GetByUsername(ctx, "sara")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Nil(t, got.Email)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepo_UpdateProfile(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepo(db, clock.NewFixed(now))
	ctx := context.Background()
	u, err := repo.Create(ctx, "sara", "hash")
	require.NoError(t, err)
	other, err := repo.Create(ctx, "ali", "hash")
	require.NoError(t, err)

	updated, err := repo.UpdateProfile(ctx, u.ID, model.ProfileUpdate{
		Firstname: strPtr("Sara"),
		Email:     strPtr("sara@example.com"),
		Gender:    intPtr(2),
		DOB:       strPtr("1990-05-01"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Firstname)
	assert.Equal(t, "Sara", *updated.Firstname)
	assert.Nil(t, updated.Lastname)
	require.NotNil(t, updated.DOB)
	assert.Equal(t, time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC), updated.DOB.UTC())
	assert.Equal(t, "hash", updated.PasswordHash)

	unchanged, err := repo.UpdateProfile(ctx, u.ID, model.ProfileUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "sara@example.com", *unchanged.Email)

	_, err = repo.UpdateProfile(ctx, other.ID, model.ProfileUpdate{Email: strPtr("sara@example.com")})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = repo.UpdateProfile(ctx, 999, model.ProfileUpdate{Firstname: strPtr("x")})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestTokenRepo(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewTokenRepo(db, clock.NewFixed(now))
	ctx := context.Background()
	userID := testutil.InsertUser(t, db, "sara")

	require.NoError(t, repo.StoreRefresh(ctx, userID, "live", now.Add(time.Hour)))
	require.NoError(t, repo.StoreRefresh(ctx, userID, "stale", now.Add(-time.Hour)))

	id, err := repo.ValidateRefresh(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, userID, id)

	_, err = repo.ValidateRefresh(ctx, "stale")
	assert.ErrorIs(t, err, repository.ErrTokenInvalid)
	_, err = repo.ValidateRefresh(ctx, "unknown")
	assert.ErrorIs(t, err, repository.ErrTokenInvalid)

	require.NoError(t, repo.RevokeByHash(ctx, "live"))
	assert.ErrorIs(t, repo.RevokeByHash(ctx, "live"), repository.ErrTokenInvalid)
	_, err = repo.ValidateRefresh(ctx, "live")
	assert.ErrorIs(t, err, repository.ErrTokenInvalid)

	require.NoError(t, repo.StoreRefresh(ctx, userID, "another", now.Add(time.Hour)))
	require.NoError(t, repo.RevokeAllForUser(ctx, userID))
	_, err = repo.ValidateRefresh(ctx, "another")
	assert.ErrorIs(t, err, repository.ErrTokenInvalid)
}

func TestPassengerRepo(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewPassengerRepo(db)
	ctx := context.Background()
	userID := testutil.InsertUser(t, db, "sara")
	otherID := testutil.InsertUser(t, db, "ali")

	p := model.Passenger{UserID: userID, Firstname: "Dara", Lastname: "K", Gender: 1, NationalCode: "0012345678"}
	require.NoError(t, repo.Create(ctx, &p, "2015-02-03"))
	assert.NotZero(t, p.ID)
	q := model.Passenger{UserID: userID, Firstname: "Nika", Lastname: "K", Gender: 2, NationalCode: "0087654321"}
	require.NoError(t, repo.Create(ctx, &q, ""))

	list, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].DOB)
	assert.Nil(t, list[1].DOB)

	assert.ErrorIs(t, repo.DeleteForUser(ctx, p.ID, otherID), repository.ErrPassengerNotFound)
	require.NoError(t, repo.DeleteForUser(ctx, p.ID, userID))
	list, err = repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
