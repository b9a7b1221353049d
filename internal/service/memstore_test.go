package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/dorm-booking/internal/model"
	"github.com/iliyamo/dorm-booking/internal/queue"
	"github.com/iliyamo/dorm-booking/internal/schedule"
)

// ---------------------------------------------------------------------------
// In-memory gateway. Transactions are serialised and run on a copy of the
// state that replaces the original only on success, so a failing operation
// leaves nothing behind. Unique keys mirror the MySQL schema.
// ---------------------------------------------------------------------------

type claimKey struct {
	date string
	mark int
}

type quotaKey struct {
	user uint64
	week model.WeekKey
}

type memState struct {
	users    map[uint64]model.User
	machines map[uint8]model.Machine
	laundry  map[uint64]model.LaundryBooking
	restroom map[uint64]model.RestroomBooking
	claims   map[claimKey]uint64
	quotas   map[quotaKey]int
	settings map[string]model.Setting
	nextID   uint64
}

func newMemState() *memState {
	st := &memState{
		users:    map[uint64]model.User{},
		machines: map[uint8]model.Machine{},
		laundry:  map[uint64]model.LaundryBooking{},
		restroom: map[uint64]model.RestroomBooking{},
		claims:   map[claimKey]uint64{},
		quotas:   map[quotaKey]int{},
		settings: map[string]model.Setting{},
	}
	for id := uint8(1); id <= 3; id++ {
		st.machines[id] = model.Machine{ID: id, Status: model.MachineActive}
	}
	for _, s := range schedule.Defaults() {
		st.settings[s.Name] = s
	}
	return st
}

func (s *memState) clone() *memState {
	c := &memState{
		users:    make(map[uint64]model.User, len(s.users)),
		machines: make(map[uint8]model.Machine, len(s.machines)),
		laundry:  make(map[uint64]model.LaundryBooking, len(s.laundry)),
		restroom: make(map[uint64]model.RestroomBooking, len(s.restroom)),
		claims:   make(map[claimKey]uint64, len(s.claims)),
		quotas:   make(map[quotaKey]int, len(s.quotas)),
		settings: make(map[string]model.Setting, len(s.settings)),
		nextID:   s.nextID,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.machines {
		c.machines[k] = v
	}
	for k, v := range s.laundry {
		c.laundry[k] = v
	}
	for k, v := range s.restroom {
		c.restroom[k] = v
	}
	for k, v := range s.claims {
		c.claims[k] = v
	}
	for k, v := range s.quotas {
		c.quotas[k] = v
	}
	for k, v := range s.settings {
		c.settings[k] = v
	}
	return c
}

type memGateway struct {
	mu sync.Mutex
	st *memState

	// failQuota makes AddUsedMinutes fail inside the next transactions.
	failQuota error
	// failTx makes WithinTx fail before running fn.
	failTx error
	// stale, when set, is what LaundryStarts and RestroomIntervals read
	// instead of the transaction's own state. It stands in for a rival
	// that commits between the availability check and the insert.
	stale *memState
}

func newMemGateway() *memGateway {
	return &memGateway{st: newMemState()}
}

func (g *memGateway) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failTx != nil {
		return g.failTx
	}
	work := g.st.clone()
	if err := fn(&memTx{st: work, g: g}); err != nil {
		return err
	}
	g.st = work
	return nil
}

// freezeReads makes availability reads return the current committed state
// from now on, so later transactions pass their pre-check and reach the
// unique keys.
func (g *memGateway) freezeReads() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stale = g.st.clone()
}

// snapshot returns the committed state for assertions.
func (g *memGateway) snapshot() *memState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.st.clone()
}

type memTx struct {
	st *memState
	g  *memGateway
}

// reads is the state seen by availability queries.
func (t *memTx) reads() *memState {
	if t.g.stale != nil {
		return t.g.stale
	}
	return t.st
}

var _ Tx = (*memTx)(nil)

func dayKey(t time.Time) string { return t.Format("2006-01-02") }

// --- settings ---

func (t *memTx) Settings(context.Context) (map[string]string, error) {
	out := make(map[string]string, len(t.st.settings))
	for k, v := range t.st.settings {
		out[k] = v.Value
	}
	return out, nil
}

func (t *memTx) ListSettings(context.Context) ([]model.Setting, error) {
	out := make([]model.Setting, 0, len(t.st.settings))
	for _, v := range t.st.settings {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (t *memTx) GetSetting(_ context.Context, name string) (model.Setting, error) {
	s, ok := t.st.settings[name]
	if !ok {
		return model.Setting{}, model.ErrSettingNotFound
	}
	return s, nil
}

func (t *memTx) UpsertSetting(_ context.Context, s model.Setting) error {
	if old, ok := t.st.settings[s.Name]; ok && s.Description == "" {
		s.Description = old.Description
	}
	t.st.settings[s.Name] = s
	return nil
}

// --- users ---

func (t *memTx) ensureUser(id uint64) model.User {
	u, ok := t.st.users[id]
	if !ok {
		u = model.User{ID: id, CreatedAt: time.Now()}
		t.st.users[id] = u
	}
	return u
}

func (t *memTx) LockUser(_ context.Context, id uint64) error {
	t.ensureUser(id)
	return nil
}

func (t *memTx) GetUser(_ context.Context, id uint64) (model.User, error) {
	u, ok := t.st.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (t *memTx) UpsertUserName(_ context.Context, id uint64, hash string) error {
	u := t.ensureUser(id)
	u.NameHash = hash
	t.st.users[id] = u
	return nil
}

func (t *memTx) SetAdmin(_ context.Context, id uint64, admin bool) error {
	u := t.ensureUser(id)
	u.IsAdmin = admin
	t.st.users[id] = u
	return nil
}

// --- machines ---

func (t *memTx) ListMachines(context.Context) ([]model.Machine, error) {
	out := make([]model.Machine, 0, len(t.st.machines))
	for _, m := range t.st.machines {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) GetMachine(_ context.Context, id uint8, _ bool) (model.Machine, error) {
	m, ok := t.st.machines[id]
	if !ok {
		return model.Machine{}, model.ErrMachineNotFound
	}
	return m, nil
}

func (t *memTx) SetMachineStatus(_ context.Context, id uint8, status model.MachineStatus) error {
	m, ok := t.st.machines[id]
	if !ok {
		return model.ErrMachineNotFound
	}
	m.Status = status
	t.st.machines[id] = m
	return nil
}

// --- laundry ---

func (t *memTx) LaundryStarts(_ context.Context, machineID uint8, date time.Time) ([]int, error) {
	var out []int
	for _, b := range t.reads().laundry {
		if b.MachineID == machineID && b.Date.Equal(date) && b.Status == model.BookingActive {
			out = append(out, b.Start)
		}
	}
	sort.Ints(out)
	return out, nil
}

func (t *memTx) CountUserLaundry(_ context.Context, userID uint64, date time.Time) (int, error) {
	n := 0
	for _, b := range t.st.laundry {
		if b.UserID == userID && b.Date.Equal(date) && b.Status == model.BookingActive {
			n++
		}
	}
	return n, nil
}

func (t *memTx) InsertLaundry(_ context.Context, b *model.LaundryBooking) error {
	for _, o := range t.st.laundry {
		if o.Status == model.BookingActive && o.MachineID == b.MachineID && o.Date.Equal(b.Date) && o.Start == b.Start {
			return model.ErrSlotTaken
		}
	}
	t.ensureUser(b.UserID)
	t.st.nextID++
	b.ID = t.st.nextID
	b.CreatedAt = time.Now()
	t.st.laundry[b.ID] = *b
	return nil
}

func (t *memTx) GetLaundry(_ context.Context, id uint64, _ bool) (model.LaundryBooking, error) {
	b, ok := t.st.laundry[id]
	if !ok {
		return model.LaundryBooking{}, model.ErrBookingNotFound
	}
	return b, nil
}

func (t *memTx) SetLaundryStatus(_ context.Context, id uint64, status model.BookingStatus) error {
	b, ok := t.st.laundry[id]
	if !ok {
		return model.ErrBookingNotFound
	}
	b.Status = status
	t.st.laundry[id] = b
	return nil
}

func (t *memTx) ListLaundry(_ context.Context, f BookingFilter) ([]model.LaundryBooking, error) {
	var out []model.LaundryBooking
	for _, b := range t.st.laundry {
		if b.Status != model.BookingActive || (f.UserID != 0 && b.UserID != f.UserID) || (!f.From.IsZero() && b.Date.Before(f.From)) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// --- restroom ---

func (t *memTx) RestroomIntervals(_ context.Context, date time.Time) ([]model.Interval, error) {
	var out []model.Interval
	for _, b := range t.reads().restroom {
		if b.Date.Equal(date) && b.Status == model.BookingActive {
			out = append(out, model.Interval{Start: b.Start, End: b.End})
		}
	}
	return out, nil
}

func (t *memTx) InsertRestroom(_ context.Context, b *model.RestroomBooking) error {
	for m := b.Start; m < b.End; m += schedule.RestroomStep {
		if _, ok := t.st.claims[claimKey{dayKey(b.Date), m}]; ok {
			return model.ErrSlotTaken
		}
	}
	t.ensureUser(b.UserID)
	t.st.nextID++
	b.ID = t.st.nextID
	b.CreatedAt = time.Now()
	t.st.restroom[b.ID] = *b
	for m := b.Start; m < b.End; m += schedule.RestroomStep {
		t.st.claims[claimKey{dayKey(b.Date), m}] = b.ID
	}
	return nil
}

func (t *memTx) GetRestroom(_ context.Context, id uint64, _ bool) (model.RestroomBooking, error) {
	b, ok := t.st.restroom[id]
	if !ok {
		return model.RestroomBooking{}, model.ErrBookingNotFound
	}
	return b, nil
}

func (t *memTx) SetRestroomStatus(_ context.Context, id uint64, status model.BookingStatus) error {
	b, ok := t.st.restroom[id]
	if !ok {
		return model.ErrBookingNotFound
	}
	b.Status = status
	t.st.restroom[id] = b
	if status != model.BookingActive {
		for k, owner := range t.st.claims {
			if owner == id {
				delete(t.st.claims, k)
			}
		}
	}
	return nil
}

func (t *memTx) ListRestroom(_ context.Context, f BookingFilter) ([]model.RestroomBooking, error) {
	var out []model.RestroomBooking
	for _, b := range t.st.restroom {
		if b.Status != model.BookingActive || (f.UserID != 0 && b.UserID != f.UserID) || (!f.From.IsZero() && b.Date.Before(f.From)) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// --- quota ---

func (t *memTx) WeeklyQuota(_ context.Context, userID uint64, week model.WeekKey) (model.WeeklyQuota, error) {
	return model.WeeklyQuota{UserID: userID, Year: week.Year, Week: week.Week, UsedMinutes: t.st.quotas[quotaKey{userID, week}]}, nil
}

func (t *memTx) AddUsedMinutes(_ context.Context, userID uint64, week model.WeekKey, delta int) error {
	if t.g.failQuota != nil {
		return t.g.failQuota
	}
	k := quotaKey{userID, week}
	t.st.quotas[k] = max(t.st.quotas[k]+delta, 0)
	return nil
}

// --- reports ---

func (t *memTx) Usage(_ context.Context, r model.Resource, from, to time.Time) (model.UsageTotals, error) {
	var u model.UsageTotals
	add := func(date time.Time, minutes int) {
		if !date.Before(from) && !date.After(to) {
			u.Bookings++
			u.Minutes += minutes
		}
	}
	switch r {
	case model.ResourceLaundry:
		for _, b := range t.st.laundry {
			if b.Status == model.BookingActive {
				add(b.Date, b.End-b.Start)
			}
		}
	case model.ResourceRestroom:
		for _, b := range t.st.restroom {
			if b.Status == model.BookingActive {
				add(b.Date, b.Duration)
			}
		}
	}
	return u, nil
}

func (t *memTx) TopUsers(_ context.Context, r model.Resource, limit int) ([]model.UserUsage, error) {
	agg := map[uint64]*model.UserUsage{}
	add := func(user uint64, minutes int) {
		u, ok := agg[user]
		if !ok {
			u = &model.UserUsage{UserID: user}
			agg[user] = u
		}
		u.Bookings++
		u.Minutes += minutes
	}
	switch r {
	case model.ResourceLaundry:
		for _, b := range t.st.laundry {
			if b.Status == model.BookingActive {
				add(b.UserID, b.End-b.Start)
			}
		}
	case model.ResourceRestroom:
		for _, b := range t.st.restroom {
			if b.Status == model.BookingActive {
				add(b.UserID, b.Duration)
			}
		}
	}
	out := make([]model.UserUsage, 0, len(agg))
	for _, u := range agg {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bookings != out[j].Bookings {
			return out[i].Bookings > out[j].Bookings
		}
		if out[i].Minutes != out[j].Minutes {
			return out[i].Minutes > out[j].Minutes
		}
		return out[i].UserID < out[j].UserID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- reminders ---

func startsBy(date time.Time, start int, until time.Time) bool {
	at := date.Add(time.Duration(start) * time.Minute)
	return !at.After(until)
}

func (t *memTx) DueReminders(_ context.Context, r model.Resource, until time.Time) ([]model.Reminder, error) {
	var out []model.Reminder
	switch r {
	case model.ResourceLaundry:
		for _, b := range t.st.laundry {
			if b.Status == model.BookingActive && !b.Notified && startsBy(b.Date, b.Start, until) {
				out = append(out, model.Reminder{Resource: r, BookingID: b.ID, UserID: b.UserID, MachineID: b.MachineID, Date: b.Date, Start: b.Start, End: b.End})
			}
		}
	case model.ResourceRestroom:
		for _, b := range t.st.restroom {
			if b.Status == model.BookingActive && !b.Notified && startsBy(b.Date, b.Start, until) {
				out = append(out, model.Reminder{Resource: r, BookingID: b.ID, UserID: b.UserID, Date: b.Date, Start: b.Start, End: b.End})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingID < out[j].BookingID })
	return out, nil
}

func (t *memTx) MarkNotified(_ context.Context, r model.Resource, id uint64) error {
	switch r {
	case model.ResourceLaundry:
		b, ok := t.st.laundry[id]
		if !ok {
			return model.ErrBookingNotFound
		}
		b.Notified = true
		t.st.laundry[id] = b
	case model.ResourceRestroom:
		b, ok := t.st.restroom[id]
		if !ok {
			return model.ErrBookingNotFound
		}
		b.Notified = true
		t.st.restroom[id] = b
	default:
		return errors.New("unknown resource")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Shared fixtures
// ---------------------------------------------------------------------------

// monday is the fixed "now" of the tests: Monday 2025-03-03 09:00 UTC.
var monday = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *recordingPublisher) PublishBooking(_ context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev.Type+":"+string(ev.Resource))
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}
