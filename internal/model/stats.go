package model

// UsageTotals aggregates active bookings over a period.
type UsageTotals struct {
	Bookings int `json:"bookings"`
	Minutes  int `json:"minutes"`
}

// UserUsage is one line of the per-resident ranking.
type UserUsage struct {
	UserID   uint64 `json:"user_id"`
	Bookings int    `json:"bookings"`
	Minutes  int    `json:"minutes"`
}

// UsageStats is the report returned by the admin surface for one resource.
type UsageStats struct {
	Resource Resource    `json:"resource"`
	Week     UsageTotals `json:"week"`
	Month    UsageTotals `json:"month"`
	TopUsers []UserUsage `json:"top_users"`
}
