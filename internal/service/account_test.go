package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tour-reservation/internal/model"
	"github.com/iliyamo/tour-reservation/internal/service"
	"github.com/iliyamo/tour-reservation/internal/testutil"
	"github.com/iliyamo/tour-reservation/internal/utils"
)

var settings = service.TokenSettings{
	Secret:     "test-secret",
	AccessTTL:  15 * time.Minute,
	RefreshTTL: 24 * time.Hour,
	BcryptCost: 4,
}

func newAccounts(e *env) *service.AccountService {
	return service.NewAccountService(e.uow, e.users, e.wallets, e.tokens, e.clock, settings, quiet)
}

func TestAccountService_Register(t *testing.T) {
	e := newEnv(t)
	svc := newAccounts(e)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "sara", "correct-horse")
	require.NoError(t, err)
	assert.NotZero(t, sess.User.ID)
	assert.NotEmpty(t, sess.Access.Token)
	assert.Equal(t, now.Add(settings.AccessTTL), sess.Access.Exp)
	assert.Len(t, sess.Refresh.Raw, 96)

	w, err := e.wallets.GetByUser(ctx, sess.User.ID)
	require.NoError(t, err)
	assert.Zero(t, w.Balance)
	assert.Len(t, w.TransferID, 32)

	_, err = svc.Register(ctx, "sara", "another-pass")
	assert.ErrorIs(t, err, model.ErrConflict)
	assert.Equal(t, 1, testutil.Count(t, e.db, "wallets"))
}

func TestAccountService_RegisterValidation(t *testing.T) {
	e := newEnv(t)
	svc := newAccounts(e)

	_, err := svc.Register(context.Background(), "a!", "correct-horse")
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = svc.Register(context.Background(), "sara", "short")
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Zero(t, testutil.Count(t, e.db, "users"))
}

type failingWallets struct{}

func (failingWallets) Create(context.Context, uint64) (model.Wallet, error) {
	return model.Wallet{}, errors.New("disk full")
}

func TestAccountService_RegisterRollsBackUserWithoutWallet(t *testing.T) {
	e := newEnv(t)
	svc := service.NewAccountService(e.uow, e.users, failingWallets{}, e.tokens, e.clock, settings, quiet)

	_, err := svc.Register(context.Background(), "sara", "correct-horse")
	require.Error(t, err)
	assert.Zero(t, testutil.Count(t, e.db, "users"))
}

func TestAccountService_LoginRefreshLogout(t *testing.T) {
	e := newEnv(t)
	svc := newAccounts(e)
	ctx := context.Background()
	_, err := svc.Register(ctx, "sara", "correct-horse")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "sara", "wrong-horse")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "correct-horse")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	sess, err := svc.Login(ctx, "sara", "correct-horse")
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, sess.Refresh.Raw)
	require.NoError(t, err)
	assert.NotEqual(t, sess.Refresh.Raw, rotated.Refresh.Raw)
	assert.Equal(t, sess.User.ID, rotated.User.ID)

	_, err = svc.Refresh(ctx, sess.Refresh.Raw)
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	require.NoError(t, svc.Logout(ctx, rotated.Refresh.Raw))
	assert.ErrorIs(t, svc.Logout(ctx, rotated.Refresh.Raw), model.ErrInvalidCredentials)
	_, err = svc.Refresh(ctx, rotated.Refresh.Raw)
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestAccountService_LogoutAll(t *testing.T) {
	e := newEnv(t)
	svc := newAccounts(e)
	ctx := context.Background()
	first, err := svc.Register(ctx, "sara", "correct-horse")
	require.NoError(t, err)
	second, err := svc.Login(ctx, "sara", "correct-horse")
	require.NoError(t, err)

	require.NoError(t, svc.LogoutAll(ctx, first.User.ID))
	for _, raw := range []string{first.Refresh.Raw, second.Refresh.Raw} {
		_, err := e.tokens.ValidateRefresh(ctx, utils.HashRefreshRaw(raw))
		assert.ErrorIs(t, err, model.ErrNotFound)
	}
}
