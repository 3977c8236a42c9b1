package model

import "time"

// Wallet holds the spendable balance of a single user.  Balance is an
// integer amount in the smallest currency unit and is never negative.
// TransferID is the public identifier other users send money to; it is
// generated once and never changes.
type Wallet struct {
	ID         uint64    `json:"id"`          // wallets.id
	UserID     uint64    `json:"user_id"`     // wallets.user_id (unique)
	Balance    int64     `json:"balance"`     // wallets.balance
	TransferID string    `json:"transfer_id"` // wallets.transfer_id (unique)
	CreatedAt  time.Time `json:"created_at"`  // wallets.created_at
	UpdatedAt  time.Time `json:"updated_at"`  // wallets.updated_at
}

// TransferReceipt describes a committed wallet-to-wallet transfer.  It
// is returned to the caller and published as an event, not stored.
type TransferReceipt struct {
	FromWalletID  uint64    `json:"from_wallet_id"`
	ToWalletID    uint64    `json:"to_wallet_id"`
	ToTransferID  string    `json:"to_transfer_id"`
	Amount        int64     `json:"amount"`
	SenderBalance int64     `json:"sender_balance"`
	At            time.Time `json:"at"`
}
