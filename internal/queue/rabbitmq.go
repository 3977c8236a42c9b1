package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitPublisher sends ledger events to a durable RabbitMQ queue.  The
// connection is dialled lazily and re-dialled after the broker drops it;
// each publish uses its own short-lived channel.
type RabbitPublisher struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
}

// NewRabbitPublisher returns a publisher for url.  No connection is made
// until the first Publish.
func NewRabbitPublisher(url string) *RabbitPublisher {
	return &RabbitPublisher{url: url, queue: LedgerQueueName}
}

// Publish marshals ev and sends it as a persistent message.
func (p *RabbitPublisher) Publish(ctx context.Context, ev LedgerEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event: %w", err)
	}

	ch, err := p.channel(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: queue declare: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         ev.Type,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq: publish: %w", err)
	}
	return nil
}

func (p *RabbitPublisher) channel(ctx context.Context) (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() {
		conn, err := amqp.DialConfig(p.url, amqp.Config{
			Heartbeat: 10 * time.Second,
			Locale:    "en_US",
			Dial:      dialContext(ctx),
		})
		if err != nil {
			return nil, fmt.Errorf("rabbitmq: dial: %w", err)
		}
		p.conn = conn
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: channel open: %w", err)
	}
	return ch, nil
}

// dialContext connects within ctx and applies its deadline to the AMQP
// handshake; the client clears the deadline once the connection is open.
func dialContext(ctx context.Context) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if dl, ok := ctx.Deadline(); ok {
			if err := conn.SetDeadline(dl); err != nil {
				_ = conn.Close()
				return nil, err
			}
		}
		return conn, nil
	}
}

// Close closes the underlying connection, if any.
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}
