// Package rabbitmq publishes notifications to a durable RabbitMQ queue for
// an external push or messaging worker to deliver.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/teolgogo/quote-engine/internal/domain"
)

// Channel is the subset of *amqp.Channel the publisher uses.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Dialer opens a channel and returns it with the connection that owns it.
type Dialer func(url string) (Channel, io.Closer, error)

// DialAMQP is the Dialer used outside tests.
func DialAMQP(url string) (Channel, io.Closer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq: dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq: channel open failed: %w", err)
	}
	return ch, conn, nil
}

// message is the wire format consumed by the delivery worker.
type message struct {
	RecipientID string    `json:"recipient_id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Link        string    `json:"link"`
	SentAt      time.Time `json:"sent_at"`
}

// Publisher implements notification.Sink by publishing persistent JSON
// messages to a queue. The connection is opened lazily and reopened after
// a failed publish.
type Publisher struct {
	url    string
	queue  string
	dial   Dialer
	logger *slog.Logger

	mu   sync.Mutex
	ch   Channel
	conn io.Closer
}

// NewPublisher creates a publisher for queue at url. A nil dial uses DialAMQP.
func NewPublisher(url, queue string, dial Dialer, logger *slog.Logger) *Publisher {
	if dial == nil {
		dial = DialAMQP
	}
	return &Publisher{
		url:    url,
		queue:  queue,
		dial:   dial,
		logger: logger.With("component", "rabbitmq_publisher", "queue", queue),
	}
}

func (p *Publisher) channel() (Channel, error) {
	if p.ch != nil {
		return p.ch, nil
	}

	ch, conn, err := p.dial(p.url)
	if err != nil {
		return nil, err
	}

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		if conn != nil {
			_ = conn.Close()
		}
		return nil, fmt.Errorf("rabbitmq: queue declare failed: %w", err)
	}

	p.ch, p.conn = ch, conn
	return ch, nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

// Deliver publishes n to the queue.
func (p *Publisher) Deliver(ctx context.Context, n domain.Notification) error {
	body, err := json.Marshal(message{
		RecipientID: n.RecipientID.String(),
		Title:       n.Title,
		Body:        n.Body,
		Link:        n.Link,
		SentAt:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal notification failed: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		p.logger.Warn("rabbitmq unavailable", "error", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.reset()
		p.logger.Warn("rabbitmq publish failed", "recipient_id", n.RecipientID, "error", err)
		return fmt.Errorf("rabbitmq: publish failed: %w", err)
	}
	return nil
}

// Close releases the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
