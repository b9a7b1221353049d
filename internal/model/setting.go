package model

// Setting is a row of `schedule_settings`. Values are strings; the
// schedule package parses them into a typed policy.
type Setting struct {
	Name        string // schedule_settings.name
	Value       string // schedule_settings.value
	Description string // schedule_settings.description
}
