package service

import (
	"context"
	"log/slog"

	"github.com/iliyamo/tour-reservation/internal/clock"
	"github.com/iliyamo/tour-reservation/internal/model"
	"github.com/iliyamo/tour-reservation/internal/queue"
)

// WalletService exposes a user's own wallet: balance, deposits and
// withdrawals.
type WalletService struct {
	uow     UnitOfWork
	wallets WalletStore
	clock   clock.Clock
	options
}

func NewWalletService(uow UnitOfWork, wallets WalletStore, clk clock.Clock, opts ...Option) *WalletService {
	return &WalletService{uow: uow, wallets: wallets, clock: clk, options: buildOptions(opts)}
}

// Get returns the user's wallet.
func (s *WalletService) Get(ctx context.Context, userID uint64) (model.Wallet, error) {
	return s.wallets.GetByUser(ctx, userID)
}

// Deposit adds amount to the user's wallet and returns the new balance.
func (s *WalletService) Deposit(ctx context.Context, userID uint64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, model.ErrInvalidAmount
	}
	return s.move(ctx, userID, amount, queue.TypeWalletDeposited, s.wallets.Credit)
}

// Withdraw removes amount from the user's wallet and returns the new
// balance.  The balance never goes below zero.
func (s *WalletService) Withdraw(ctx context.Context, userID uint64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, model.ErrInvalidAmount
	}
	return s.move(ctx, userID, amount, queue.TypeWalletWithdrawn, s.wallets.Debit)
}

func (s *WalletService) move(ctx context.Context, userID uint64, amount int64, kind string,
	apply func(ctx context.Context, walletID uint64, amount int64) (int64, error)) (int64, error) {
	var (
		walletID uint64
		balance  int64
	)
	err := s.uow.WithTx(ctx, func(ctx context.Context) error {
		w, err := s.wallets.GetByUser(ctx, userID)
		if err != nil {
			return err
		}
		walletID = w.ID
		balance, err = apply(ctx, w.ID, amount)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("wallet balance changed",
		slog.String("type", kind), slog.Uint64("wallet_id", walletID), slog.Int64("amount", amount))
	s.publish(ctx, queue.LedgerEvent{
		Type:       kind,
		UserID:     userID,
		WalletID:   walletID,
		Amount:     amount,
		Balance:    balance,
		OccurredAt: s.clock.Now(),
	})
	return balance, nil
}
