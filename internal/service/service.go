package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/dorm-booking/internal/metrics"
	"github.com/iliyamo/dorm-booking/internal/model"
	"github.com/iliyamo/dorm-booking/internal/queue"
	"github.com/iliyamo/dorm-booking/internal/schedule"
	"github.com/iliyamo/dorm-booking/internal/utils"
)

// EventPublisher receives booking lifecycle events after commit. Failures
// are logged and never undo the booking.
type EventPublisher interface {
	PublishBooking(ctx context.Context, ev queue.BookingEvent) error
}

type nopPublisher struct{}

func (nopPublisher) PublishBooking(context.Context, queue.BookingEvent) error { return nil }

// Option customises an engine.
type Option func(*engine)

// WithClock replaces time.Now. The returned time's location decides which
// calendar day is "today".
func WithClock(now func() time.Time) Option {
	return func(e *engine) { e.now = now }
}

// WithPublisher sets the destination of booking events.
func WithPublisher(p EventPublisher) Option {
	return func(e *engine) {
		if p != nil {
			e.events = p
		}
	}
}

// engine carries what every service needs.
type engine struct {
	gw     Gateway
	log    zerolog.Logger
	events EventPublisher
	now    func() time.Time
}

func newEngine(gw Gateway, log zerolog.Logger, opts []Option) engine {
	e := engine{gw: gw, log: log, events: nopPublisher{}, now: time.Now}
	for _, o := range opts {
		o(&e)
	}
	return e
}

func (e *engine) today() time.Time {
	return utils.DateOf(e.now())
}

// checkDate rejects dates before today.
func (e *engine) checkDate(date time.Time) error {
	if utils.DateOf(date).Before(e.today()) {
		return model.ErrPastDate
	}
	return nil
}

// run executes fn in one transaction and folds storage failures into the
// persistence category.
func (e *engine) run(ctx context.Context, fn func(tx Tx) error) error {
	return model.Persistence(e.gw.WithinTx(ctx, fn))
}

func (e *engine) publish(ctx context.Context, ev queue.BookingEvent) {
	ev.ID = queue.NewEventID()
	ev.OccurredAt = e.now().UTC()
	if err := e.events.PublishBooking(ctx, ev); err != nil {
		metrics.EventPublishFailuresTotal.Inc()
		e.log.Warn().Err(err).Uint64("booking_id", ev.BookingID).Str("type", ev.Type).Msg("booking event not published")
	}
}

func loadPolicy(ctx context.Context, tx Tx) (schedule.Policy, error) {
	values, err := tx.Settings(ctx)
	if err != nil {
		return schedule.Policy{}, err
	}
	return schedule.FromSettings(values)
}

// reason maps an error to the rejection label used in metrics.
func reason(err error) string {
	switch {
	case errors.Is(err, model.ErrValidation):
		return "validation"
	case errors.Is(err, model.ErrConflict):
		return "conflict"
	case errors.Is(err, model.ErrPolicyViolation):
		return "policy"
	case errors.Is(err, model.ErrNotFound):
		return "not_found"
	default:
		return "persistence"
	}
}

func reject(r model.Resource, err error) error {
	metrics.BookingRejectionsTotal.WithLabelValues(string(r), reason(err)).Inc()
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
