package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Publisher sends events to RabbitMQ over one lazily dialed connection.
// A failed publish drops the connection so the next call redials.
// Messages are persistent and queues are declared durable on first use.
type Publisher struct {
	url string
	log zerolog.Logger

	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	declared map[string]bool
}

// NewPublisher returns a publisher for the broker at url. No connection
// is made until the first publish.
func NewPublisher(url string, log zerolog.Logger) *Publisher {
	return &Publisher{url: url, log: log, declared: map[string]bool{}}
}

// PublishBooking sends a booking lifecycle event to BookingsQueue.
func (p *Publisher) PublishBooking(ctx context.Context, ev BookingEvent) error {
	return p.publish(ctx, BookingsQueue, ev.ID, ev.OccurredAt, ev)
}

// PublishReminder sends a reminder to RemindersQueue.
func (p *Publisher) PublishReminder(ctx context.Context, ev ReminderEvent) error {
	return p.publish(ctx, RemindersQueue, ev.ID, ev.SentAt, ev)
}

func (p *Publisher) publish(ctx context.Context, queue, id string, ts time.Time, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", queue, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	if !p.declared[queue] {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			p.reset()
			return fmt.Errorf("queue declare %s: %w", queue, err)
		}
		p.declared[queue] = true
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    id,
		Timestamp:    ts.UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		p.reset()
		p.log.Warn().Err(err).Str("queue", queue).Msg("rabbitmq: publish failed")
		return fmt.Errorf("publish %s: %w", queue, err)
	}
	return nil
}

// channel returns an open channel, dialing when needed. Callers hold p.mu.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	p.reset()
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	p.conn, p.ch = conn, ch
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
	p.declared = map[string]bool{}
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
