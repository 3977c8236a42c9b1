package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tour-reservation/internal/model"
	"github.com/iliyamo/tour-reservation/internal/queue"
	"github.com/iliyamo/tour-reservation/internal/service"
	"github.com/iliyamo/tour-reservation/internal/testutil"
)

func TestTransferService_Transfer(t *testing.T) {
	e := newEnv(t)
	sender, senderWallet := e.user(t, "sara", 500)
	_, destWallet := e.user(t, "ali", 20)
	e.pub.On("Publish", mock.Anything, mock.MatchedBy(func(ev queue.LedgerEvent) bool {
		return ev.Type == queue.TypeWalletTransferred && ev.WalletID == senderWallet && ev.CounterpartyWalletID == destWallet && ev.Amount == 200
	})).Return(nil).Once()
	svc := service.NewTransferService(e.uow, e.wallets, e.clock, service.WithPublisher(e.pub), service.WithLogger(quiet))

	receipt, err := svc.Transfer(context.Background(), sender, "ali-transfer-id", 200)
	require.NoError(t, err)
	assert.Equal(t, senderWallet, receipt.FromWalletID)
	assert.Equal(t, destWallet, receipt.ToWalletID)
	assert.Equal(t, int64(300), receipt.SenderBalance)
	assert.Equal(t, now, receipt.At)
	assert.Equal(t, int64(300), testutil.Balance(t, e.db, senderWallet))
	assert.Equal(t, int64(220), testutil.Balance(t, e.db, destWallet))
}

func TestTransferService_Rejects(t *testing.T) {
	e := newEnv(t)
	sender, senderWallet := e.user(t, "sara", 100)
	_, destWallet := e.user(t, "ali", 0)
	svc := service.NewTransferService(e.uow, e.wallets, e.clock, service.WithPublisher(e.pub), service.WithLogger(quiet))
	ctx := context.Background()

	tests := []struct {
		name   string
		sender uint64
		dest   string
		amount int64
		want   error
	}{
		{"zero amount", sender, "ali-transfer-id", 0, model.ErrInvalidAmount},
		{"negative amount", sender, "ali-transfer-id", -10, model.ErrInvalidAmount},
		{"unknown destination", sender, "nope", 10, model.ErrNotFound},
		{"unknown sender", 999, "ali-transfer-id", 10, model.ErrNotFound},
		{"self transfer", sender, "sara-transfer-id", 10, model.ErrSelfTransfer},
		{"insufficient funds", sender, "ali-transfer-id", 101, model.ErrInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Transfer(ctx, tt.sender, tt.dest, tt.amount)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, int64(100), testutil.Balance(t, e.db, senderWallet))
	assert.Zero(t, testutil.Balance(t, e.db, destWallet))
}

// recordingWallets logs the order in which wallets are written.
type recordingWallets struct {
	service.WalletStore
	mu    sync.Mutex
	calls []string
}

func (r *recordingWallets) Debit(ctx context.Context, id uint64, amount int64) (int64, error) {
	r.record(fmt.Sprintf("debit %d", id))
	return r.WalletStore.Debit(ctx, id, amount)
}

func (r *recordingWallets) Credit(ctx context.Context, id uint64, amount int64) (int64, error) {
	r.record(fmt.Sprintf("credit %d", id))
	return r.WalletStore.Credit(ctx, id, amount)
}

func (r *recordingWallets) record(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

func TestTransferService_WritesInAscendingWalletOrder(t *testing.T) {
	e := newEnv(t)
	low, lowWallet := e.user(t, "sara", 100)
	high, highWallet := e.user(t, "ali", 100)
	rec := &recordingWallets{WalletStore: e.wallets}
	svc := service.NewTransferService(e.uow, rec, e.clock, service.WithLogger(quiet))
	ctx := context.Background()

	_, err := svc.Transfer(ctx, low, "ali-transfer-id", 10)
	require.NoError(t, err)
	_, err = svc.Transfer(ctx, high, "sara-transfer-id", 10)
	require.NoError(t, err)

	assert.Equal(t, []string{
		fmt.Sprintf("debit %d", lowWallet), fmt.Sprintf("credit %d", highWallet),
		fmt.Sprintf("credit %d", lowWallet), fmt.Sprintf("debit %d", highWallet),
	}, rec.calls)
}

func TestTransferService_CreditRolledBackWhenDebitFails(t *testing.T) {
	e := newEnv(t)
	_, lowWallet := e.user(t, "sara", 0)
	high, highWallet := e.user(t, "ali", 5)
	svc := service.NewTransferService(e.uow, e.wallets, e.clock, service.WithLogger(quiet))

	// Destination has the lower id, so it is credited before the debit fails.
	_, err := svc.Transfer(context.Background(), high, "sara-transfer-id", 10)
	assert.ErrorIs(t, err, model.ErrInsufficientFunds)
	assert.Zero(t, testutil.Balance(t, e.db, lowWallet))
	assert.Equal(t, int64(5), testutil.Balance(t, e.db, highWallet))
}

func TestTransferService_OppositeConcurrentTransfers(t *testing.T) {
	e := newEnv(t)
	a, aWallet := e.user(t, "sara", 1000)
	b, bWallet := e.user(t, "ali", 1000)
	svc := service.NewTransferService(e.uow, e.wallets, e.clock, service.WithLogger(quiet))

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(context.Background(), a, "ali-transfer-id", 100)
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(context.Background(), b, "sara-transfer-id", 100)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil && !errors.Is(err, model.ErrInsufficientFunds) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	total := testutil.Balance(t, e.db, aWallet) + testutil.Balance(t, e.db, bWallet)
	assert.Equal(t, int64(2000), total)
}
