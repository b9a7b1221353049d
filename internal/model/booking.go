package model

import "time"

// BookingStatus is the lifecycle state of a booking. Cancellation is
// terminal; rows are never hard-deleted so quota history survives.
type BookingStatus string

const (
	BookingActive    BookingStatus = "active"
	BookingCancelled BookingStatus = "cancelled"
)

// Resource identifies which shared resource a booking reserves.
type Resource string

const (
	ResourceLaundry  Resource = "laundry"
	ResourceRestroom Resource = "restroom"
)

// Valid reports whether r names a known resource.
func (r Resource) Valid() bool {
	return r == ResourceLaundry || r == ResourceRestroom
}

// LaundryCycleMinutes is the fixed length of a laundry booking.
const LaundryCycleMinutes = 120

// LaundryDailyCap is the number of active laundry bookings a resident may
// hold on a single date.
const LaundryDailyCap = 2

// LaundryBooking is a row of `laundry_bookings`. Start and End are minute
// offsets from midnight; End is always Start+LaundryCycleMinutes.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – resident who owns the booking.
//  MachineID – machine being reserved.
//  Date      – booking date (midnight UTC).
//  Start     – start minute of the cycle.
//  End       – end minute of the cycle.
//  Status    – active or cancelled.
//  Notified  – whether the reminder was already handled.
//  CreatedAt – creation timestamp.
type LaundryBooking struct {
	ID        uint64        // laundry_bookings.id
	UserID    uint64        // laundry_bookings.user_id
	MachineID uint8         // laundry_bookings.machine_id
	Date      time.Time     // laundry_bookings.booking_date
	Start     int           // laundry_bookings.start_min
	End       int           // laundry_bookings.end_min
	Status    BookingStatus // laundry_bookings.status
	Notified  bool          // laundry_bookings.notified
	CreatedAt time.Time     // laundry_bookings.created_at
}

// RestroomDurations lists the lengths a lounge booking may have.
var RestroomDurations = []int{30, 60, 90, 120}

// ValidRestroomDuration reports whether d is an allowed booking length.
func ValidRestroomDuration(d int) bool {
	for _, v := range RestroomDurations {
		if v == d {
			return true
		}
	}
	return false
}

// RestroomBooking is a row of `restroom_bookings`. Start and End are
// minute offsets; Duration is End-Start and is kept so cancellation can
// give the minutes back to the right quota without recomputing.
type RestroomBooking struct {
	ID        uint64        // restroom_bookings.id
	UserID    uint64        // restroom_bookings.user_id
	Date      time.Time     // restroom_bookings.booking_date
	Start     int           // restroom_bookings.start_min
	End       int           // restroom_bookings.end_min
	Duration  int           // restroom_bookings.duration
	Status    BookingStatus // restroom_bookings.status
	Notified  bool          // restroom_bookings.notified
	CreatedAt time.Time     // restroom_bookings.created_at
}

// Interval is a half-open [Start, End) span of minutes.
type Interval struct {
	Start int
	End   int
}

// Overlaps reports whether the two half-open intervals share a minute.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

// Contains reports whether minute m lies inside the interval.
func (i Interval) Contains(m int) bool {
	return i.Start <= m && m < i.End
}

// Reminder is an active booking whose reminder has not been handled yet,
// as returned to the notifier.
type Reminder struct {
	Resource  Resource
	BookingID uint64
	UserID    uint64
	MachineID uint8 // zero for restroom bookings
	Date      time.Time
	Start     int
	End       int
}
