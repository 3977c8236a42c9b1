package service

import (
	"context"
	"log/slog"

	"github.com/iliyamo/tour-reservation/internal/clock"
	"github.com/iliyamo/tour-reservation/internal/model"
	"github.com/iliyamo/tour-reservation/internal/queue"
)

// TransferService moves money between two users' wallets.
type TransferService struct {
	uow     UnitOfWork
	wallets WalletStore
	clock   clock.Clock
	options
}

func NewTransferService(uow UnitOfWork, wallets WalletStore, clk clock.Clock, opts ...Option) *TransferService {
	return &TransferService{uow: uow, wallets: wallets, clock: clk, options: buildOptions(opts)}
}

// Transfer debits amount from the sender's wallet and credits the wallet
// identified by destTransferID, both or neither.  The two rows are always
// written in ascending wallet id order so that opposite transfers between
// the same pair lock in the same order.
func (s *TransferService) Transfer(ctx context.Context, senderUserID uint64, destTransferID string, amount int64) (model.TransferReceipt, error) {
	if amount <= 0 {
		return model.TransferReceipt{}, model.ErrInvalidAmount
	}
	from, err := s.wallets.GetByUser(ctx, senderUserID)
	if err != nil {
		return model.TransferReceipt{}, err
	}
	to, err := s.wallets.GetByTransferID(ctx, destTransferID)
	if err != nil {
		return model.TransferReceipt{}, err
	}
	if from.ID == to.ID {
		return model.TransferReceipt{}, model.ErrSelfTransfer
	}

	var senderBalance int64
	debit := func(ctx context.Context) (err error) {
		senderBalance, err = s.wallets.Debit(ctx, from.ID, amount)
		return err
	}
	credit := func(ctx context.Context) error {
		_, err := s.wallets.Credit(ctx, to.ID, amount)
		return err
	}
	steps := []func(context.Context) error{debit, credit}
	if to.ID < from.ID {
		steps = []func(context.Context) error{credit, debit}
	}

	err = s.uow.WithTx(ctx, func(ctx context.Context) error {
		for _, step := range steps {
			if err := step(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Debug("transfer rejected",
			slog.Uint64("from_wallet_id", from.ID), slog.Uint64("to_wallet_id", to.ID), slog.Any("err", err))
		return model.TransferReceipt{}, err
	}

	receipt := model.TransferReceipt{
		FromWalletID:  from.ID,
		ToWalletID:    to.ID,
		ToTransferID:  to.TransferID,
		Amount:        amount,
		SenderBalance: senderBalance,
		At:            s.clock.Now(),
	}
	s.logger.Info("wallet transfer",
		slog.Uint64("from_wallet_id", from.ID), slog.Uint64("to_wallet_id", to.ID), slog.Int64("amount", amount))
	s.publish(ctx, queue.LedgerEvent{
		Type:                 queue.TypeWalletTransferred,
		UserID:               senderUserID,
		WalletID:             from.ID,
		CounterpartyWalletID: to.ID,
		Amount:               amount,
		Balance:              senderBalance,
		OccurredAt:           receipt.At,
	})
	return receipt, nil
}
