package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// AuditConsumer drains BookingsQueue and appends one JSON line per booking
// event to an audit writer. It reconnects with exponential backoff until
// its context is cancelled.
type AuditConsumer struct {
	url   string
	log   zerolog.Logger
	audit zerolog.Logger
}

// NewAuditConsumer builds a consumer writing audit lines to w.
func NewAuditConsumer(url string, w io.Writer, log zerolog.Logger) *AuditConsumer {
	return &AuditConsumer{
		url:   url,
		log:   log,
		audit: zerolog.New(w).With().Timestamp().Logger(),
	}
}

// Run blocks until ctx is cancelled.
func (c *AuditConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn().Err(err).Dur("retry_in", backoff).Msg("audit-consumer: dial failed")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn().Err(err).Msg("audit-consumer: consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *AuditConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn().Err(err).Msg("audit-consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(BookingsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(BookingsQueue, "", false, false, false, false, nil)
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
			if err := c.handle(d.Body); err != nil {
				c.log.Error().Err(err).Str("message_id", d.MessageId).Msg("audit-consumer: rejecting message")
				_ = d.Nack(false, false) // do not requeue poison messages
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *AuditConsumer) handle(body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.BookingID == 0 || (ev.Type != EventCreated && ev.Type != EventCancelled) {
		return fmt.Errorf("malformed booking event %q", ev.ID)
	}
	e := c.audit.Info().
		Str("event_id", ev.ID).
		Str("type", ev.Type).
		Str("resource", string(ev.Resource)).
		Uint64("booking_id", ev.BookingID).
		Uint64("user_id", ev.UserID).
		Str("date", ev.Date).
		Str("start", ev.Start).
		Str("end", ev.End).
		Int("duration_minutes", ev.Duration).
		Time("occurred_at", ev.OccurredAt)
	if ev.MachineID != 0 {
		e = e.Uint8("machine_id", ev.MachineID)
	}
	e.Msg("booking " + ev.Type)
	return nil
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
