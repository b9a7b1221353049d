package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iliyamo/dorm-booking/internal/model"
	"github.com/iliyamo/dorm-booking/internal/schedule"
	"github.com/iliyamo/dorm-booking/internal/utils"
)

// TopUsersLimit is the length of the per-resident ranking in reports.
const TopUsersLimit = 5

// AdminService is the admin surface: machine status, settings, booking
// overviews and usage reports. Booking cancellation goes through the
// engines so quota bookkeeping stays in one place.
type AdminService struct {
	engine
	laundry  *LaundryService
	restroom *RestroomService
}

// NewAdminService builds the admin surface on top of the two engines.
func NewAdminService(gw Gateway, laundry *LaundryService, restroom *RestroomService, log zerolog.Logger, opts ...Option) *AdminService {
	return &AdminService{
		engine:   newEngine(gw, log.With().Str("component", "admin").Logger(), opts),
		laundry:  laundry,
		restroom: restroom,
	}
}

// ListMachines returns every machine with its status, ordered by id.
func (s *AdminService) ListMachines(ctx context.Context) ([]model.Machine, error) {
	var out []model.Machine
	err := s.run(ctx, func(tx Tx) error {
		var err error
		out, err = tx.ListMachines(ctx)
		return err
	})
	return out, err
}

// SetMachineStatus sets a machine to active or inactive. Existing
// bookings are left untouched.
func (s *AdminService) SetMachineStatus(ctx context.Context, id uint8, status model.MachineStatus) (model.Machine, error) {
	if !status.Valid() {
		return model.Machine{}, fmt.Errorf("%q: %w", status, model.ErrInvalidStatus)
	}
	return s.updateMachine(ctx, id, func(model.MachineStatus) model.MachineStatus { return status })
}

// ToggleMachine flips a machine between active and inactive.
func (s *AdminService) ToggleMachine(ctx context.Context, id uint8) (model.Machine, error) {
	return s.updateMachine(ctx, id, model.MachineStatus.Toggled)
}

func (s *AdminService) updateMachine(ctx context.Context, id uint8, next func(model.MachineStatus) model.MachineStatus) (model.Machine, error) {
	var m model.Machine
	err := s.run(ctx, func(tx Tx) error {
		var err error
		m, err = tx.GetMachine(ctx, id, true)
		if err != nil {
			return err
		}
		m.Status = next(m.Status)
		return tx.SetMachineStatus(ctx, id, m.Status)
	})
	if err != nil {
		return model.Machine{}, err
	}
	s.log.Info().Uint8("machine_id", id).Str("status", string(m.Status)).Msg("machine status changed")
	return m, nil
}

// ActiveLaundry lists all active laundry bookings.
func (s *AdminService) ActiveLaundry(ctx context.Context) ([]model.LaundryBooking, error) {
	return s.laundry.ListActive(ctx)
}

// ActiveRestroom lists all active lounge bookings.
func (s *AdminService) ActiveRestroom(ctx context.Context) ([]model.RestroomBooking, error) {
	return s.restroom.ListActive(ctx)
}

// CancelBooking cancels any resident's booking.
func (s *AdminService) CancelBooking(ctx context.Context, r model.Resource, id uint64) error {
	switch r {
	case model.ResourceLaundry:
		return s.laundry.Cancel(ctx, id)
	case model.ResourceRestroom:
		return s.restroom.Cancel(ctx, id)
	}
	return fmt.Errorf("resource %q: %w", r, model.ErrValidation)
}

// Stats reports active bookings of r in the current ISO week and calendar
// month, plus the residents with the most active bookings overall.
func (s *AdminService) Stats(ctx context.Context, r model.Resource) (model.UsageStats, error) {
	if !r.Valid() {
		return model.UsageStats{}, fmt.Errorf("resource %q: %w", r, model.ErrValidation)
	}
	today := s.today()
	weekFrom := utils.ISOWeekStart(today)
	weekTo := weekFrom.AddDate(0, 0, 6)
	monthFrom := utils.MonthStart(today)
	monthTo := monthFrom.AddDate(0, 1, -1)

	st := model.UsageStats{Resource: r}
	err := s.run(ctx, func(tx Tx) error {
		var err error
		if st.Week, err = tx.Usage(ctx, r, weekFrom, weekTo); err != nil {
			return err
		}
		if st.Month, err = tx.Usage(ctx, r, monthFrom, monthTo); err != nil {
			return err
		}
		st.TopUsers, err = tx.TopUsers(ctx, r, TopUsersLimit)
		return err
	})
	if err != nil {
		return model.UsageStats{}, err
	}
	if st.TopUsers == nil {
		st.TopUsers = []model.UserUsage{}
	}
	return st, nil
}

// Settings returns every stored setting ordered by name.
func (s *AdminService) Settings(ctx context.Context) ([]model.Setting, error) {
	var out []model.Setting
	err := s.run(ctx, func(tx Tx) error {
		var err error
		out, err = tx.ListSettings(ctx)
		return err
	})
	return out, err
}

// GetSetting returns one setting or model.ErrSettingNotFound.
func (s *AdminService) GetSetting(ctx context.Context, name string) (model.Setting, error) {
	var out model.Setting
	err := s.run(ctx, func(tx Tx) error {
		var err error
		out, err = tx.GetSetting(ctx, name)
		return err
	})
	return out, err
}

// SetSetting stores value under name, creating the setting when absent.
// Known settings are type-checked first, and a break end may not fall on
// or before its start.
func (s *AdminService) SetSetting(ctx context.Context, name, value string) (model.Setting, error) {
	if err := schedule.Validate(name, value); err != nil {
		return model.Setting{}, err
	}
	st := model.Setting{Name: name, Value: value, Description: schedule.Describe(name)}
	err := s.run(ctx, func(tx Tx) error {
		values, err := tx.Settings(ctx)
		if err != nil {
			return err
		}
		if values == nil {
			values = map[string]string{}
		}
		values[name] = value
		if err := schedule.ValidateBreak(name, values); err != nil {
			return err
		}
		if err := tx.UpsertSetting(ctx, st); err != nil {
			return err
		}
		st, err = tx.GetSetting(ctx, name)
		return err
	})
	if err != nil {
		return model.Setting{}, err
	}
	s.log.Info().Str("setting", name).Str("value", value).Msg("setting updated")
	return st, nil
}

// ResetSettings restores every known setting to its default. Settings
// without a default are kept.
func (s *AdminService) ResetSettings(ctx context.Context) error {
	return s.reset(ctx, schedule.Defaults(), "all")
}

// ResetSchedule restores only opening hours and breaks.
func (s *AdminService) ResetSchedule(ctx context.Context) error {
	return s.reset(ctx, schedule.ScheduleDefaults(), "schedule")
}

func (s *AdminService) reset(ctx context.Context, defaults []model.Setting, scope string) error {
	err := s.run(ctx, func(tx Tx) error {
		for _, d := range defaults {
			if err := tx.UpsertSetting(ctx, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("scope", scope).Int("settings", len(defaults)).Msg("settings reset to defaults")
	return nil
}
