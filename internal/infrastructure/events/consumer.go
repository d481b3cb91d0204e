package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
)

const (
	prefetch   = 50
	maxBackoff = 30 * time.Second
)

// Handler processes one event. A failed event is requeued once; when it
// fails again, or the error is a validation error, it goes to the
// dead-letter queue.
type Handler func(ctx context.Context, ev domain.FileEvent) error

// Consumer reads orphan events from their durable queue and reconnects with
// exponential backoff when the broker goes away.
type Consumer struct {
	url  string
	topo Topology
	log  zerolog.Logger
}

func NewConsumer(url string, topo Topology, log zerolog.Logger) *Consumer {
	return &Consumer{url: url, topo: topo.withDefaults(), log: log}
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = maxBackoff
	b.MaxElapsedTime = 0

	return backoff.RetryNotify(func() error {
		conn, err := dial(c.url)
		if err != nil {
			return err
		}
		b.Reset()

		err = c.consume(ctx, conn, handle)
		_ = conn.Close()
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		c.log.Warn().Err(err).Dur("retry_in", next).Msg("rabbitmq consumer disconnected")
	})
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection, handle Handler) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(prefetch, 0, false); err != nil {
		c.log.Warn().Err(err).Msg("set qos failed")
	}
	if err := c.topo.declare(ch); err != nil {
		return err
	}
	msgs, err := ch.Consume(c.topo.OrphanQueue, "", false, false, false, false, nil)
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
			c.deliver(ctx, d, handle)
		}
	}
}

func (c *Consumer) deliver(ctx context.Context, d amqp.Delivery, handle Handler) {
	ev, err := decode(d.Body)
	if err != nil {
		c.log.Error().Err(err).Uint64("tag", d.DeliveryTag).Msg("undecodable event dead-lettered")
		_ = d.Nack(false, false)
		return
	}

	if err := handle(ctx, ev); err != nil {
		requeue := !d.Redelivered && !errors.Is(err, domain.ErrValidation)
		c.log.Error().Err(err).Str("event", string(ev.Type)).Str("descriptor", ev.Descriptor).
			Bool("requeue", requeue).Msg("event handling failed")
		_ = d.Nack(false, requeue)
		return
	}
	_ = d.Ack(false)
}

func decode(body []byte) (domain.FileEvent, error) {
	var ev domain.FileEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("unmarshal event: %w", err)
	}
	return ev, nil
}
