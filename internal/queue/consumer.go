package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AuditLogName is the file the consumer appends to inside its directory.
const AuditLogName = "ledger.log"

// StartLedgerConsumer connects to RabbitMQ, declares the ledger queue and
// appends one line per event to dir/ledger.log.  It reconnects with
// exponential backoff until ctx is cancelled, then returns ctx.Err().
// Undecodable messages are rejected without requeue.
func StartLedgerConsumer(ctx context.Context, url, dir string, logger *slog.Logger) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			logger.Warn("ledger consumer: dial failed", slog.Any("err", err), slog.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, dir, logger)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("ledger consumer: loop ended, reconnecting", slog.Any("err", err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, dir string, logger *slog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Warn("ledger consumer: set QoS failed", slog.Any("err", err))
	}
	if _, err := ch.QueueDeclare(LedgerQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(LedgerQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := HandleMessage(d.Body, dir); err != nil {
				logger.Error("ledger consumer: handle message failed", slog.Any("err", err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes a ledger event and appends its audit line to
// dir/ledger.log, creating the directory when needed.
func HandleMessage(body []byte, dir string) error {
	var ev LedgerEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" {
		return errors.New("event without type")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, AuditLogName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(AuditLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// AuditLine renders ev as a single newline-terminated line.
func AuditLine(ev LedgerEvent) string {
	at := ev.OccurredAt.UTC().Format(time.RFC3339)
	switch ev.Type {
	case TypeReservationCreated:
		return fmt.Sprintf("[%s] Reservation created | reservation_id=%d | user_id=%d | event_id=%d | paid=%t | total=%d | balance=%d\n",
			at, ev.ReservationID, ev.UserID, ev.EventID, ev.Paid, ev.Amount, ev.Balance)
	case TypeReservationCancelled:
		return fmt.Sprintf("[%s] Reservation cancelled | reservation_id=%d | user_id=%d | event_id=%d | refund=%d | balance=%d\n",
			at, ev.ReservationID, ev.UserID, ev.EventID, ev.Amount, ev.Balance)
	case TypeWalletTransferred:
		return fmt.Sprintf("[%s] Wallet transfer | user_id=%d | from_wallet=%d | to_wallet=%d | amount=%d | balance=%d\n",
			at, ev.UserID, ev.WalletID, ev.CounterpartyWalletID, ev.Amount, ev.Balance)
	default:
		return fmt.Sprintf("[%s] %s | user_id=%d | wallet_id=%d | amount=%d | balance=%d\n",
			at, ev.Type, ev.UserID, ev.WalletID, ev.Amount, ev.Balance)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
