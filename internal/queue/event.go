// Package queue defines the ledger events published after money moves and
// the broker adapters (RabbitMQ, Kafka) that carry them.
package queue

import (
	"context"
	"time"
)

// Ledger event types.
const (
	TypeReservationCreated   = "reservation.created"
	TypeReservationCancelled = "reservation.cancelled"
	TypeWalletTransferred    = "wallet.transferred"
	TypeWalletDeposited      = "wallet.deposited"
	TypeWalletWithdrawn      = "wallet.withdrawn"
)

// LedgerQueueName is the durable RabbitMQ queue ledger events go to.
const LedgerQueueName = "ledger.events"

// LedgerEvent is published once the unit of work that produced it has
// committed.  Amount is the money that moved (the debit, refund or
// transfer amount); Balance is the acting wallet's balance afterwards.
// Fields that do not apply to a type are left zero.
type LedgerEvent struct {
	Type                 string    `json:"type"`
	UserID               uint64    `json:"user_id"`
	WalletID             uint64    `json:"wallet_id,omitempty"`
	CounterpartyWalletID uint64    `json:"counterparty_wallet_id,omitempty"`
	ReservationID        uint64    `json:"reservation_id,omitempty"`
	EventID              uint64    `json:"event_id,omitempty"`
	Amount               int64     `json:"amount"`
	Balance              int64     `json:"balance"`
	Paid                 bool      `json:"paid,omitempty"`
	OccurredAt           time.Time `json:"occurred_at"`
}

// NopPublisher drops every event.  It is used when no broker is configured.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, LedgerEvent) error { return nil }
