package service_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/tour-reservation/internal/clock"
	"github.com/iliyamo/tour-reservation/internal/logging"
	"github.com/iliyamo/tour-reservation/internal/queue"
	"github.com/iliyamo/tour-reservation/internal/repository"
	"github.com/iliyamo/tour-reservation/internal/testutil"
)

// 10:00 UTC on 10 June 2025.
var now = time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, ev queue.LedgerEvent) error {
	return m.Called(ctx, ev).Error(0)
}

func eventOfType(kind string) any {
	return mock.MatchedBy(func(ev queue.LedgerEvent) bool { return ev.Type == kind })
}

type env struct {
	db           *sql.DB
	clock        clock.Clock
	uow          *repository.UnitOfWork
	wallets      *repository.WalletRepo
	reservations *repository.ReservationRepo
	events       *repository.EventRepo
	users        *repository.UserRepo
	tokens       *repository.TokenRepo
	passengers   *repository.PassengerRepo
	pub          *mockPublisher
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	clk := clock.NewFixed(now)
	e := &env{
		db:           db,
		clock:        clk,
		uow:          repository.NewUnitOfWork(db),
		wallets:      repository.NewWalletRepo(db, clk),
		reservations: repository.NewReservationRepo(db, clk),
		events:       repository.NewEventRepo(db),
		users:        repository.NewUserRepo(db, clk),
		tokens:       repository.NewTokenRepo(db, clk),
		passengers:   repository.NewPassengerRepo(db),
		pub:          new(mockPublisher),
	}
	t.Cleanup(func() { e.pub.AssertExpectations(t) })
	return e
}

// user inserts a user with a wallet holding balance.
func (e *env) user(t *testing.T, name string, balance int64) (userID, walletID uint64) {
	t.Helper()
	userID = testutil.InsertUser(t, e.db, name)
	walletID = testutil.InsertWallet(t, e.db, userID, balance, name+"-transfer-id")
	return userID, walletID
}

var quiet = logging.Discard()
