// Package queue carries booking notifications over RabbitMQ: the payloads,
// a publisher used by the API and the notifier, and the audit consumer.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/dorm-booking/internal/model"
)

// Queue names. Both are durable and use the default exchange.
const (
	BookingsQueue  = "dorm.bookings"
	RemindersQueue = "dorm.reminders"
)

// Booking event types.
const (
	EventCreated   = "created"
	EventCancelled = "cancelled"
)

// BookingEvent is published after a booking is created or cancelled. It
// carries enough for downstream consumers to log or notify without
// reading the database.
type BookingEvent struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Resource   model.Resource `json:"resource"`
	BookingID  uint64         `json:"booking_id"`
	UserID     uint64         `json:"user_id"`
	MachineID  uint8          `json:"machine_id,omitempty"`
	Date       string         `json:"date"`
	Start      string         `json:"start"`
	End        string         `json:"end"`
	Duration   int            `json:"duration_minutes"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// ReminderEvent asks the chat front-end to remind a resident of an
// upcoming booking.
type ReminderEvent struct {
	ID        string         `json:"id"`
	Resource  model.Resource `json:"resource"`
	BookingID uint64         `json:"booking_id"`
	UserID    uint64         `json:"user_id"`
	MachineID uint8          `json:"machine_id,omitempty"`
	Date      string         `json:"date"`
	Start     string         `json:"start"`
	End       string         `json:"end"`
	StartsIn  int            `json:"starts_in_minutes"`
	SentAt    time.Time      `json:"sent_at"`
}

// NewEventID returns a random message identifier.
func NewEventID() string {
	return uuid.NewString()
}
