package events

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
)

const (
	DefaultExchange    = "file.events"
	DefaultOrphanQueue = "file.orphans"

	deadLetterSuffix = ".dead"
	dialTimeout      = 3 * time.Second
	heartbeat        = 10 * time.Second
)

// declarer is the part of *amqp.Channel that sets up exchanges and queues.
type declarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// Topology names the broker objects. Every event is published to a topic
// exchange under its type. Only file.orphaned is bound to a queue; messages
// rejected from it land in a dead-letter queue next to it.
type Topology struct {
	Exchange    string
	OrphanQueue string
}

func (t Topology) withDefaults() Topology {
	if t.Exchange == "" {
		t.Exchange = DefaultExchange
	}
	if t.OrphanQueue == "" {
		t.OrphanQueue = DefaultOrphanQueue
	}
	return t
}

// DeadLetterQueue holds orphan events that could not be processed.
func (t Topology) DeadLetterQueue() string { return t.OrphanQueue + deadLetterSuffix }

// declare is idempotent; publisher and consumer both run it so orphan
// events are queued even before the reconciler first connects.
func (t Topology) declare(ch declarer) error {
	if err := ch.ExchangeDeclare(t.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("exchange declare %s: %w", t.Exchange, err)
	}
	if _, err := ch.QueueDeclare(t.DeadLetterQueue(), true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare %s: %w", t.DeadLetterQueue(), err)
	}
	if _, err := ch.QueueDeclare(t.OrphanQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": t.DeadLetterQueue(),
	}); err != nil {
		return fmt.Errorf("queue declare %s: %w", t.OrphanQueue, err)
	}
	if err := ch.QueueBind(t.OrphanQueue, string(domain.EventFileOrphaned), t.Exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind %s: %w", t.OrphanQueue, err)
	}
	return nil
}

func dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: heartbeat,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	return conn, nil
}
