package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/dorm-booking/internal/metrics"
	"github.com/iliyamo/dorm-booking/internal/model"
	"github.com/iliyamo/dorm-booking/internal/queue"
	"github.com/iliyamo/dorm-booking/internal/utils"
)

// ReminderPublisher delivers reminders to the chat front-end.
type ReminderPublisher interface {
	PublishReminder(ctx context.Context, ev queue.ReminderEvent) error
}

// ReminderService finds bookings that are about to start and publishes one
// reminder per booking. It is driven by the notifier process, never by
// the booking engines.
type ReminderService struct {
	engine
	pub ReminderPublisher
}

// NewReminderService builds the reminder scanner.
func NewReminderService(gw Gateway, pub ReminderPublisher, log zerolog.Logger, opts ...Option) *ReminderService {
	return &ReminderService{engine: newEngine(gw, log.With().Str("component", "reminders").Logger(), opts), pub: pub}
}

// RunOnce handles every due reminder. A booking is due when it starts
// within its resource's lead time. Bookings that started more than the
// grace period ago are marked notified without a reminder. A booking is
// marked only after its reminder was published, so a broker outage
// delays reminders instead of losing them.
func (s *ReminderService) RunOnce(ctx context.Context) (int, error) {
	now := s.now()
	var due []model.Reminder
	var grace time.Duration
	err := s.run(ctx, func(tx Tx) error {
		policy, err := loadPolicy(ctx, tx)
		if err != nil {
			return err
		}
		grace = time.Duration(policy.GraceMinutes) * time.Minute
		leads := map[model.Resource]int{
			model.ResourceLaundry:  policy.LaundryNotifyMinutes,
			model.ResourceRestroom: policy.RestroomNotifyMinutes,
		}
		for _, r := range []model.Resource{model.ResourceLaundry, model.ResourceRestroom} {
			until := utils.WallClockUTC(now.Add(time.Duration(leads[r]) * time.Minute))
			batch, err := tx.DueReminders(ctx, r, until)
			if err != nil {
				return err
			}
			due = append(due, batch...)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, r := range due {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		startAt := utils.At(r.Date, r.Start, now.Location())
		if now.Sub(startAt) > grace {
			s.log.Debug().Str("resource", string(r.Resource)).Uint64("booking_id", r.BookingID).Msg("reminder skipped, booking already under way")
		} else {
			ev := queue.ReminderEvent{
				ID:        queue.NewEventID(),
				Resource:  r.Resource,
				BookingID: r.BookingID,
				UserID:    r.UserID,
				MachineID: r.MachineID,
				Date:      utils.FormatDate(r.Date),
				Start:     utils.FormatMinutes(r.Start),
				End:       utils.FormatMinutes(r.End),
				StartsIn:  int(startAt.Sub(now) / time.Minute),
				SentAt:    now.UTC(),
			}
			if err := s.pub.PublishReminder(ctx, ev); err != nil {
				s.log.Warn().Err(err).Uint64("booking_id", r.BookingID).Msg("reminder not published")
				continue
			}
			sent++
			metrics.RemindersSentTotal.WithLabelValues(string(r.Resource)).Inc()
		}
		err := s.run(ctx, func(tx Tx) error { return tx.MarkNotified(ctx, r.Resource, r.BookingID) })
		if err != nil {
			s.log.Error().Err(err).Uint64("booking_id", r.BookingID).Msg("mark notified failed")
		}
	}
	return sent, nil
}

// Run calls RunOnce every interval until ctx is cancelled.
func (s *ReminderService) Run(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		n, err := s.RunOnce(ctx)
		if err != nil && ctx.Err() == nil {
			s.log.Error().Err(err).Msg("reminder scan failed")
		} else if n > 0 {
			s.log.Info().Int("sent", n).Msg("reminders published")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}
