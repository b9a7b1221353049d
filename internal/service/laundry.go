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

// LaundryService books two-hour machine cycles.
type LaundryService struct {
	engine
}

// NewLaundryService wires the laundry engine to a gateway.
func NewLaundryService(gw Gateway, log zerolog.Logger, opts ...Option) *LaundryService {
	return &LaundryService{engine: newEngine(gw, log.With().Str("component", "laundry").Logger(), opts)}
}

// candidateStarts lists the cycle starts the schedule allows on day:
// every 120 minutes from opening while the cycle ends by closing time,
// minus cycles that touch the break.
func candidateStarts(day schedule.Day) []int {
	var out []int
	for cur := day.Open; cur+model.LaundryCycleMinutes <= day.Close; cur += model.LaundryCycleMinutes {
		if day.Break != nil && day.Break.Intersects(cur, cur+model.LaundryCycleMinutes) {
			continue
		}
		out = append(out, cur)
	}
	return out
}

// freeStarts removes booked starts from the candidates, keeping order.
func freeStarts(candidates, booked []int) []int {
	taken := make(map[int]bool, len(booked))
	for _, b := range booked {
		taken[b] = true
	}
	out := make([]int, 0, len(candidates))
	for _, c := range candidates {
		if !taken[c] {
			out = append(out, c)
		}
	}
	return out
}

// AvailableSlots returns the free cycle starts of a machine on date, in
// ascending order, formatted as HH:MM.
func (s *LaundryService) AvailableSlots(ctx context.Context, date time.Time, machineID uint8) ([]string, error) {
	if err := s.checkDate(date); err != nil {
		return nil, err
	}
	var free []int
	err := s.run(ctx, func(tx Tx) error {
		if _, err := tx.GetMachine(ctx, machineID, false); err != nil {
			return err
		}
		policy, err := loadPolicy(ctx, tx)
		if err != nil {
			return err
		}
		booked, err := tx.LaundryStarts(ctx, machineID, date)
		if err != nil {
			return err
		}
		free = freeStarts(candidateStarts(policy.Effective(date)), booked)
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]string, len(free))
	for i, m := range free {
		out[i] = utils.FormatMinutes(m)
	}
	return out, nil
}

// AvailableMachines lists the ids of machines that accept bookings.
func (s *LaundryService) AvailableMachines(ctx context.Context) ([]uint8, error) {
	var ids []uint8
	err := s.run(ctx, func(tx Tx) error {
		machines, err := tx.ListMachines(ctx)
		if err != nil {
			return err
		}
		for _, m := range machines {
			if m.Status == model.MachineActive {
				ids = append(ids, m.ID)
			}
		}
		return nil
	})
	return ids, err
}

// Book reserves the cycle starting at start ("HH:MM") on machineID for
// userID. The machine status, slot availability and daily cap are all
// checked inside the insert transaction; the storage unique key on
// active (machine, date, start) settles any race that slips past them.
func (s *LaundryService) Book(ctx context.Context, userID uint64, machineID uint8, date time.Time, start string) (model.LaundryBooking, error) {
	b, err := s.book(ctx, userID, machineID, utils.DateOf(date), start)
	if err != nil {
		s.log.Debug().Err(err).Uint64("user_id", userID).Uint8("machine_id", machineID).Str("date", utils.FormatDate(date)).Str("start", start).Msg("laundry booking rejected")
		return model.LaundryBooking{}, reject(model.ResourceLaundry, err)
	}
	metrics.BookingsCreatedTotal.WithLabelValues(string(model.ResourceLaundry)).Inc()
	s.log.Info().Uint64("booking_id", b.ID).Uint64("user_id", userID).Uint8("machine_id", machineID).Str("date", utils.FormatDate(b.Date)).Str("start", start).Msg("laundry booked")
	s.publish(ctx, laundryEvent(queue.EventCreated, b))
	return b, nil
}

func (s *LaundryService) book(ctx context.Context, userID uint64, machineID uint8, date time.Time, start string) (model.LaundryBooking, error) {
	if userID == 0 {
		return model.LaundryBooking{}, fmt.Errorf("missing user: %w", model.ErrValidation)
	}
	startMin, err := utils.TimeToMinutes(start)
	if err != nil {
		return model.LaundryBooking{}, err
	}
	if err := s.checkDate(date); err != nil {
		return model.LaundryBooking{}, err
	}

	b := model.LaundryBooking{
		UserID:    userID,
		MachineID: machineID,
		Date:      date,
		Start:     startMin,
		End:       startMin + model.LaundryCycleMinutes,
		Status:    model.BookingActive,
	}
	err = s.run(ctx, func(tx Tx) error {
		m, err := tx.GetMachine(ctx, machineID, false)
		if err != nil || m.Status != model.MachineActive {
			if err != nil && !isNotFound(err) {
				return err
			}
			return model.ErrMachineUnavailable
		}
		policy, err := loadPolicy(ctx, tx)
		if err != nil {
			return err
		}
		candidates := candidateStarts(policy.Effective(date))
		if !containsInt(candidates, startMin) {
			return fmt.Errorf("laundry start %s: %w", start, model.ErrOutsideGrid)
		}
		if err := tx.LockUser(ctx, userID); err != nil {
			return err
		}
		booked, err := tx.LaundryStarts(ctx, machineID, date)
		if err != nil {
			return err
		}
		if containsInt(booked, startMin) {
			return model.ErrSlotTaken
		}
		n, err := tx.CountUserLaundry(ctx, userID, date)
		if err != nil {
			return err
		}
		if n >= model.LaundryDailyCap {
			return model.ErrDailyCapExceeded
		}
		return tx.InsertLaundry(ctx, &b)
	})
	if err != nil {
		return model.LaundryBooking{}, err
	}
	return b, nil
}

// Cancel cancels any active laundry booking. Cancelling a missing or
// already cancelled booking reports model.ErrBookingNotFound.
func (s *LaundryService) Cancel(ctx context.Context, bookingID uint64) error {
	return s.cancel(ctx, 0, bookingID)
}

// CancelForUser cancels a booking only when userID owns it. Bookings of
// other residents are reported as not found.
func (s *LaundryService) CancelForUser(ctx context.Context, userID, bookingID uint64) error {
	return s.cancel(ctx, userID, bookingID)
}

func (s *LaundryService) cancel(ctx context.Context, owner, bookingID uint64) error {
	var b model.LaundryBooking
	err := s.run(ctx, func(tx Tx) error {
		var err error
		b, err = tx.GetLaundry(ctx, bookingID, true)
		if err != nil {
			return err
		}
		if b.Status != model.BookingActive || (owner != 0 && b.UserID != owner) {
			return model.ErrBookingNotFound
		}
		return tx.SetLaundryStatus(ctx, bookingID, model.BookingCancelled)
	})
	if err != nil {
		return err
	}
	b.Status = model.BookingCancelled
	metrics.BookingsCancelledTotal.WithLabelValues(string(model.ResourceLaundry)).Inc()
	s.log.Info().Uint64("booking_id", bookingID).Uint64("user_id", b.UserID).Msg("laundry booking cancelled")
	s.publish(ctx, laundryEvent(queue.EventCancelled, b))
	return nil
}

// ListForUser returns the resident's active bookings from today on,
// ordered by date and start.
func (s *LaundryService) ListForUser(ctx context.Context, userID uint64) ([]model.LaundryBooking, error) {
	return s.list(ctx, BookingFilter{UserID: userID, From: s.today()})
}

// ListActive returns every active booking ordered by date and start.
func (s *LaundryService) ListActive(ctx context.Context) ([]model.LaundryBooking, error) {
	return s.list(ctx, BookingFilter{})
}

func (s *LaundryService) list(ctx context.Context, f BookingFilter) ([]model.LaundryBooking, error) {
	var out []model.LaundryBooking
	err := s.run(ctx, func(tx Tx) error {
		var err error
		out, err = tx.ListLaundry(ctx, f)
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

func laundryEvent(typ string, b model.LaundryBooking) queue.BookingEvent {
	return queue.BookingEvent{
		Type:      typ,
		Resource:  model.ResourceLaundry,
		BookingID: b.ID,
		UserID:    b.UserID,
		MachineID: b.MachineID,
		Date:      utils.FormatDate(b.Date),
		Start:     utils.FormatMinutes(b.Start),
		End:       utils.FormatMinutes(b.End),
		Duration:  b.End - b.Start,
	}
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
