package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/tour-reservation/internal/clock"
	"github.com/iliyamo/tour-reservation/internal/model"
	"github.com/iliyamo/tour-reservation/internal/utils"
)

// WalletRepo stores one balance per user.  Balance changes are single
// conditional UPDATE statements, so the check and the write happen under
// the same row lock and concurrent debits cannot overdraw a wallet.
type WalletRepo struct {
	db    *sql.DB
	clock clock.Clock
}

// NewWalletRepo returns a WalletRepo bound to db.
func NewWalletRepo(db *sql.DB, c clock.Clock) *WalletRepo {
	return &WalletRepo{db: db, clock: c}
}

const walletColumns = `id, user_id, balance, transfer_id, created_at, updated_at`

// Create inserts an empty wallet for userID with a fresh transfer id.
func (r *WalletRepo) Create(ctx context.Context, userID uint64) (model.Wallet, error) {
	now := r.clock.Now()
	w := model.Wallet{
		UserID:     userID,
		TransferID: utils.NewTransferID(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	const q = `INSERT INTO wallets (user_id, balance, transfer_id, created_at, updated_at) VALUES (?, 0, ?, ?, ?)`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, w.UserID, w.TransferID, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return model.Wallet{}, fmt.Errorf("create wallet for user %d: %w", userID, ErrDuplicate)
		}
		return model.Wallet{}, classify(fmt.Errorf("create wallet: %w", err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Wallet{}, err
	}
	w.ID = uint64(id)
	return w, nil
}

// GetByID loads a wallet by primary key.
func (r *WalletRepo) GetByID(ctx context.Context, id uint64) (model.Wallet, error) {
	return r.getOne(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = ?`, id)
}

// GetByUser loads the wallet owned by userID.
func (r *WalletRepo) GetByUser(ctx context.Context, userID uint64) (model.Wallet, error) {
	return r.getOne(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = ?`, userID)
}

// GetByTransferID loads the wallet with the given public transfer id.
func (r *WalletRepo) GetByTransferID(ctx context.Context, transferID string) (model.Wallet, error) {
	return r.getOne(ctx, `SELECT `+walletColumns+` FROM wallets WHERE transfer_id = ?`, transferID)
}

func (r *WalletRepo) getOne(ctx context.Context, q string, arg any) (model.Wallet, error) {
	var w model.Wallet
	err := conn(ctx, r.db).QueryRowContext(ctx, q, arg).Scan(
		&w.ID, &w.UserID, &w.Balance, &w.TransferID, &w.CreatedAt, &w.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Wallet{}, ErrWalletNotFound
	}
	if err != nil {
		return model.Wallet{}, classify(fmt.Errorf("get wallet: %w", err))
	}
	return w, nil
}

// Debit subtracts amount from the wallet and returns the new balance.
// It fails with model.ErrInsufficientFunds, leaving the balance as it
// was, when the wallet holds less than amount.
func (r *WalletRepo) Debit(ctx context.Context, walletID uint64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, model.ErrInvalidAmount
	}
	var balance int64
	err := withTx(ctx, r.db, func(ctx context.Context) error {
		const q = `UPDATE wallets SET balance = balance - ?, updated_at = ? WHERE id = ? AND balance >= ?`
		res, err := conn(ctx, r.db).ExecContext(ctx, q, amount, r.clock.Now(), walletID, amount)
		if err != nil {
			return classify(fmt.Errorf("debit wallet %d: %w", walletID, err))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			if _, err := r.GetByID(ctx, walletID); err != nil {
				return err
			}
			return model.ErrInsufficientFunds
		}
		balance, err = r.balance(ctx, walletID)
		return err
	})
	return balance, err
}

// Credit adds amount to the wallet and returns the new balance.  A zero
// amount changes nothing.
func (r *WalletRepo) Credit(ctx context.Context, walletID uint64, amount int64) (int64, error) {
	if amount < 0 {
		return 0, model.ErrInvalidAmount
	}
	if amount == 0 {
		w, err := r.GetByID(ctx, walletID)
		return w.Balance, err
	}
	var balance int64
	err := withTx(ctx, r.db, func(ctx context.Context) error {
		const q = `UPDATE wallets SET balance = balance + ?, updated_at = ? WHERE id = ?`
		res, err := conn(ctx, r.db).ExecContext(ctx, q, amount, r.clock.Now(), walletID)
		if err != nil {
			return classify(fmt.Errorf("credit wallet %d: %w", walletID, err))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrWalletNotFound
		}
		balance, err = r.balance(ctx, walletID)
		return err
	})
	return balance, err
}

func (r *WalletRepo) balance(ctx context.Context, walletID uint64) (int64, error) {
	var b int64
	err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT balance FROM wallets WHERE id = ?`, walletID).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrWalletNotFound
	}
	if err != nil {
		return 0, classify(fmt.Errorf("read balance: %w", err))
	}
	return b, nil
}
