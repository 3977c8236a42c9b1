// Package service holds the ledger: reservation payment and refunds,
// wallet transfers, deposits and withdrawals, plus account management.
// Services are the only writers of wallet balances; every money movement
// runs inside one UnitOfWork.
package service

import (
	"context"
	"time"

	"github.com/iliyamo/tour-reservation/internal/model"
	"github.com/iliyamo/tour-reservation/internal/queue"
)

// UnitOfWork runs fn in a transaction carried by the context it passes on.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// WalletStore is the balance store.  Debit and Credit are atomic
// conditional updates and join the unit of work found in ctx.
type WalletStore interface {
	GetByUser(ctx context.Context, userID uint64) (model.Wallet, error)
	GetByTransferID(ctx context.Context, transferID string) (model.Wallet, error)
	Debit(ctx context.Context, walletID uint64, amount int64) (int64, error)
	Credit(ctx context.Context, walletID uint64, amount int64) (int64, error)
}

// ReservationStore persists reservations.
type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetForUser(ctx context.Context, id, userID uint64) (model.Reservation, error)
	MarkCancelled(ctx context.Context, id, userID uint64) error
	ListUnpaid(ctx context.Context, userID uint64) ([]model.Reservation, error)
	ListUpcoming(ctx context.Context, userID uint64, today time.Time) ([]model.Reservation, error)
	ListPast(ctx context.Context, userID uint64, today time.Time) ([]model.Reservation, error)
}

// EventCatalog resolves event snapshots.
type EventCatalog interface {
	GetSnapshot(ctx context.Context, id uint64) (model.EventSnapshot, error)
}

// Publisher delivers ledger events after commit.
type Publisher interface {
	Publish(ctx context.Context, ev queue.LedgerEvent) error
}
