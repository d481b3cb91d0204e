// Package events carries file lifecycle events over RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/Sirpyerre/file-manager/internal/api/metrics"
	"github.com/Sirpyerre/file-manager/internal/core/domain"
)

// redialCooldown bounds how often a request may wait on a broker that just
// failed to answer.
const redialCooldown = 5 * time.Second

var errBrokerUnavailable = errors.New("rabbitmq: broker unavailable, retrying later")

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends file events to the topic exchange, keyed by event type.
// The connection is dialled once and the channel reopened on demand. After a
// failed dial, publishes fail fast until redialCooldown has passed.
type Publisher struct {
	url  string
	topo Topology
	log  zerolog.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	ch      channel
	retryAt time.Time
	open    func() (channel, error)
	now     func() time.Time
}

func NewPublisher(url string, topo Topology, log zerolog.Logger) *Publisher {
	p := &Publisher{url: url, topo: topo.withDefaults(), log: log, now: time.Now}
	p.open = p.dial
	return p
}

func (p *Publisher) dial() (channel, error) {
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := dial(p.url)
		if err != nil {
			return nil, err
		}
		p.conn = conn
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := p.topo.declare(ch); err != nil {
		_ = ch.Close()
		return nil, err
	}
	return ch, nil
}

// Publish marshals ev and publishes it as a persistent message. A failed
// publish drops the channel so the next call reconnects.
func (p *Publisher) Publish(ctx context.Context, ev domain.FileEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		if p.now().Before(p.retryAt) {
			metrics.EventsPublishedTotal.WithLabelValues(string(ev.Type), "error").Inc()
			return errBrokerUnavailable
		}
		ch, err := p.open()
		if err != nil {
			p.retryAt = p.now().Add(redialCooldown)
			metrics.EventsPublishedTotal.WithLabelValues(string(ev.Type), "error").Inc()
			return err
		}
		p.ch = ch
	}

	err = p.ch.PublishWithContext(ctx, p.topo.Exchange, string(ev.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now().UTC(),
		Type:         string(ev.Type),
		Body:         body,
	})
	if err != nil {
		_ = p.ch.Close()
		p.ch = nil
		metrics.EventsPublishedTotal.WithLabelValues(string(ev.Type), "error").Inc()
		return fmt.Errorf("rabbitmq publish: %w", err)
	}

	metrics.EventsPublishedTotal.WithLabelValues(string(ev.Type), "ok").Inc()
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
		p.ch = nil
	}
	if p.conn != nil && !p.conn.IsClosed() {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

// NopPublisher discards events. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.FileEvent) error { return nil }
