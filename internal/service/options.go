package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/iliyamo/tour-reservation/internal/queue"
)

// DefaultPublishTimeout bounds one ledger event publish.
const DefaultPublishTimeout = 2 * time.Second

type options struct {
	publisher      Publisher
	publishTimeout time.Duration
	capacity       CapacityChecker
	logger         *slog.Logger
}

// Option configures a ledger service.
type Option func(*options)

// WithPublisher sets where committed ledger events are sent.
func WithPublisher(p Publisher) Option {
	return func(o *options) {
		if p != nil {
			o.publisher = p
		}
	}
}

// WithPublishTimeout overrides DefaultPublishTimeout.
func WithPublishTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.publishTimeout = d
		}
	}
}

// WithCapacityChecker enables a capacity check on every reservation.
// Services other than ReservationLedger ignore it.
func WithCapacityChecker(c CapacityChecker) Option {
	return func(o *options) { o.capacity = c }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{publisher: queue.NopPublisher{}, publishTimeout: DefaultPublishTimeout, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// publish is best effort: the ledger change has already committed.  The
// request's cancellation is dropped but a broker that does not answer
// holds the caller for at most publishTimeout.
func (o options) publish(ctx context.Context, ev queue.LedgerEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.publishTimeout)
	defer cancel()
	if err := o.publisher.Publish(ctx, ev); err != nil {
		o.logger.Warn("publish ledger event failed", slog.String("type", ev.Type), slog.Any("err", err))
	}
}
