package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/dorm-booking/internal/metrics"
	"github.com/iliyamo/dorm-booking/internal/model"
	"github.com/iliyamo/dorm-booking/internal/queue"
	"github.com/iliyamo/dorm-booking/internal/schedule"
	"github.com/iliyamo/dorm-booking/internal/utils"
)

// RestroomService books the lounge in half-hour steps under a weekly
// minute quota per resident. The quota counter of a booking is the ISO
// week of the booking's own date, on creation and on cancellation alike.
type RestroomService struct {
	engine
}

// NewRestroomService wires the lounge engine to a gateway.
func NewRestroomService(gw Gateway, log zerolog.Logger, opts ...Option) *RestroomService {
	return &RestroomService{engine: newEngine(gw, log.With().Str("component", "restroom").Logger(), opts)}
}

// Grid returns the lounge marks 08:00, 08:30, ... 22:30.
func Grid() []int {
	marks, _ := utils.SlotMarks(schedule.RestroomOpen, schedule.RestroomClose, schedule.RestroomStep)
	return marks
}

// freeMarks drops every mark covered by a booked interval.
func freeMarks(booked []model.Interval) []int {
	grid := Grid()
	out := make([]int, 0, len(grid))
	for _, m := range grid {
		covered := false
		for _, iv := range booked {
			if iv.Contains(m) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, m)
		}
	}
	return out
}

// AvailableSlots returns the free half-hour marks on date as HH:MM.
func (s *RestroomService) AvailableSlots(ctx context.Context, date time.Time) ([]string, error) {
	if err := s.checkDate(date); err != nil {
		return nil, err
	}
	var booked []model.Interval
	err := s.run(ctx, func(tx Tx) error {
		var err error
		booked, err = tx.RestroomIntervals(ctx, utils.DateOf(date))
		return err
	})
	if err != nil {
		return nil, err
	}
	free := freeMarks(booked)
	out := make([]string, len(free))
	for i, m := range free {
		out[i] = utils.FormatMinutes(m)
	}
	return out, nil
}

// RemainingWeeklyMinutes is the quota left to userID in the current ISO
// week. It never goes below zero, even after the ceiling is lowered.
func (s *RestroomService) RemainingWeeklyMinutes(ctx context.Context, userID uint64) (int, error) {
	return s.RemainingMinutesForDate(ctx, userID, s.now())
}

// RemainingMinutesForDate is the quota left in the ISO week containing date.
func (s *RestroomService) RemainingMinutesForDate(ctx context.Context, userID uint64, date time.Time) (int, error) {
	var remaining int
	err := s.run(ctx, func(tx Tx) error {
		policy, err := loadPolicy(ctx, tx)
		if err != nil {
			return err
		}
		q, err := tx.WeeklyQuota(ctx, userID, model.WeekOf(date))
		if err != nil {
			return err
		}
		remaining = max(policy.WeeklyQuotaMinutes-q.UsedMinutes, 0)
		return nil
	})
	return remaining, err
}

// Book reserves [start, start+duration) on date. The booking and its quota
// increment commit together or not at all.
func (s *RestroomService) Book(ctx context.Context, userID uint64, date time.Time, start string, duration int) (model.RestroomBooking, error) {
	b, err := s.book(ctx, userID, utils.DateOf(date), start, duration)
	if err != nil {
		s.log.Debug().Err(err).Uint64("user_id", userID).Str("date", utils.FormatDate(date)).Str("start", start).Int("duration", duration).Msg("restroom booking rejected")
		return model.RestroomBooking{}, reject(model.ResourceRestroom, err)
	}
	metrics.BookingsCreatedTotal.WithLabelValues(string(model.ResourceRestroom)).Inc()
	s.log.Info().Uint64("booking_id", b.ID).Uint64("user_id", userID).Str("date", utils.FormatDate(b.Date)).Str("start", start).Int("duration", duration).Msg("restroom booked")
	s.publish(ctx, restroomEvent(queue.EventCreated, b))
	return b, nil
}

func (s *RestroomService) book(ctx context.Context, userID uint64, date time.Time, start string, duration int) (model.RestroomBooking, error) {
	if userID == 0 {
		return model.RestroomBooking{}, fmt.Errorf("missing user: %w", model.ErrValidation)
	}
	if !model.ValidRestroomDuration(duration) {
		return model.RestroomBooking{}, model.ErrInvalidDuration
	}
	startMin, err := utils.TimeToMinutes(start)
	if err != nil {
		return model.RestroomBooking{}, err
	}
	if startMin < schedule.RestroomOpen || (startMin-schedule.RestroomOpen)%schedule.RestroomStep != 0 ||
		startMin+duration > schedule.RestroomClose {
		return model.RestroomBooking{}, fmt.Errorf("lounge %s+%dm: %w", start, duration, model.ErrOutsideGrid)
	}
	if err := s.checkDate(date); err != nil {
		return model.RestroomBooking{}, err
	}

	b := model.RestroomBooking{
		UserID:   userID,
		Date:     date,
		Start:    startMin,
		End:      startMin + duration,
		Duration: duration,
		Status:   model.BookingActive,
	}
	want := model.Interval{Start: b.Start, End: b.End}
	week := model.WeekOf(date)
	err = s.run(ctx, func(tx Tx) error {
		policy, err := loadPolicy(ctx, tx)
		if err != nil {
			return err
		}
		if err := tx.LockUser(ctx, userID); err != nil {
			return err
		}
		booked, err := tx.RestroomIntervals(ctx, date)
		if err != nil {
			return err
		}
		for _, iv := range booked {
			if iv.Overlaps(want) {
				return model.ErrSlotTaken
			}
		}
		q, err := tx.WeeklyQuota(ctx, userID, week)
		if err != nil {
			return err
		}
		if q.UsedMinutes+duration > policy.WeeklyQuotaMinutes {
			return &model.QuotaExceededError{Remaining: max(policy.WeeklyQuotaMinutes-q.UsedMinutes, 0)}
		}
		if err := tx.InsertRestroom(ctx, &b); err != nil {
			return err
		}
		return tx.AddUsedMinutes(ctx, userID, week, duration)
	})
	if err != nil {
		return model.RestroomBooking{}, err
	}
	return b, nil
}

// Cancel cancels an active lounge booking and gives its minutes back to
// the quota of the booking's week, clamped at zero.
func (s *RestroomService) Cancel(ctx context.Context, bookingID uint64) error {
	return s.cancel(ctx, 0, bookingID)
}

// CancelForUser cancels a booking only when userID owns it.
func (s *RestroomService) CancelForUser(ctx context.Context, userID, bookingID uint64) error {
	return s.cancel(ctx, userID, bookingID)
}

func (s *RestroomService) cancel(ctx context.Context, owner, bookingID uint64) error {
	var b model.RestroomBooking
	err := s.run(ctx, func(tx Tx) error {
		var err error
		b, err = tx.GetRestroom(ctx, bookingID, true)
		if err != nil {
			return err
		}
		if b.Status != model.BookingActive || (owner != 0 && b.UserID != owner) {
			return model.ErrBookingNotFound
		}
		if err := tx.SetRestroomStatus(ctx, bookingID, model.BookingCancelled); err != nil {
			return err
		}
		return tx.AddUsedMinutes(ctx, b.UserID, model.WeekOf(b.Date), -b.Duration)
	})
	if err != nil {
		return err
	}
	b.Status = model.BookingCancelled
	metrics.BookingsCancelledTotal.WithLabelValues(string(model.ResourceRestroom)).Inc()
	s.log.Info().Uint64("booking_id", bookingID).Uint64("user_id", b.UserID).Int("duration", b.Duration).Msg("restroom booking cancelled")
	s.publish(ctx, restroomEvent(queue.EventCancelled, b))
	return nil
}

// ListForUser returns the resident's active bookings from today on.
func (s *RestroomService) ListForUser(ctx context.Context, userID uint64) ([]model.RestroomBooking, error) {
	return s.list(ctx, BookingFilter{UserID: userID, From: s.today()})
}

// ListActive returns every active lounge booking ordered by date and start.
func (s *RestroomService) ListActive(ctx context.Context) ([]model.RestroomBooking, error) {
	return s.list(ctx, BookingFilter{})
}

func (s *RestroomService) list(ctx context.Context, f BookingFilter) ([]model.RestroomBooking, error) {
	var out []model.RestroomBooking
	err := s.run(ctx, func(tx Tx) error {
		var err error
		out, err = tx.ListRestroom(ctx, f)
		return err
	})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Start < out[j].Start
	})
	return out, err
}

func restroomEvent(typ string, b model.RestroomBooking) queue.BookingEvent {
	return queue.BookingEvent{
		Type:      typ,
		Resource:  model.ResourceRestroom,
		BookingID: b.ID,
		UserID:    b.UserID,
		Date:      utils.FormatDate(b.Date),
		Start:     utils.FormatMinutes(b.Start),
		End:       utils.FormatMinutes(b.End),
		Duration:  b.Duration,
	}
}
