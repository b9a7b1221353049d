package model

import "time"

// WeeklyQuota is a row of `restroom_quotas`: the minutes a resident has
// booked in the lounge during one ISO week. The booking engine is its
// only writer.
type WeeklyQuota struct {
	UserID      uint64 // restroom_quotas.user_id
	Year        int    // restroom_quotas.iso_year
	Week        int    // restroom_quotas.iso_week
	UsedMinutes int    // restroom_quotas.used_minutes
}

// WeekKey identifies an ISO-8601 week.
type WeekKey struct {
	Year int
	Week int
}

// WeekOf returns the ISO week containing t.
func WeekOf(t time.Time) WeekKey {
	y, w := t.ISOWeek()
	return WeekKey{Year: y, Week: w}
}
