package broker

import (
	"context"
	"errors"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer reads events from the queue with auto-ack.
type Consumer struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	deliveries <-chan amqp.Delivery
	log        *slog.Logger
}

func NewConsumer(uri, queue, tag string, prefetch int, log *slog.Logger) (*Consumer, error) {
	if log == nil {
		log = slog.Default()
	}
	conn, ch, err := dialQueue(uri, queue)
	if err != nil {
		return nil, err
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	deliveries, err := ch.Consume(queue, tag, true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	log.Info("rabbit_consumer_started", "queue", queue)
	return &Consumer{conn: conn, ch: ch, deliveries: deliveries, log: log}, nil
}

// Run hands every event to fn until ctx is done or the channel closes.
// Bodies that are not events are logged and skipped.
func (c *Consumer) Run(ctx context.Context, fn func(Event, []byte)) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-c.deliveries:
			if !ok {
				c.log.Warn("deliveries_channel_closed")
				return
			}
			e, err := DecodeEvent(d.Body)
			if err != nil {
				c.log.Warn("event_decode_error", "err", err)
				continue
			}
			fn(e, d.Body)
		}
	}
}

func (c *Consumer) Close() error {
	return errors.Join(c.ch.Close(), c.conn.Close())
}
