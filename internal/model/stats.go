package model

// ReminderStats are counts over a user's reminders, computed on demand
// against a snapshot. Upcoming covers a 30-day window, completed counts by
// completion time within the current calendar month.
type ReminderStats struct {
	Total               int `json:"total"`
	Upcoming            int `json:"upcoming"`
	Overdue             int `json:"overdue"`
	CompletedThisPeriod int `json:"completed_this_period"`
}
