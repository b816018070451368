// Package models defines the habitcal data model: habit events, their
// tracking records, the calendar projection, and chat history turns.
package models

import "time"

// DefaultCategory is assigned to events created without an explicit category.
const DefaultCategory = "default"

// Event is the canonical record of a scheduled habit occurrence.
type Event struct {
	ID           int64
	Date         string // calendar day, YYYY-MM-DD
	Habit        string
	StartTime    string // HH:MM, empty when unset
	EndTime      string // HH:MM, empty when unset
	Completed    bool
	Description  string
	Category     string
	Priority     int
	Color        string
	Recurrence   string
	Reminder     string
	LastModified time.Time
	CreatedAt    time.Time
}

// AllDay reports whether the event has no usable time range. An event missing
// either its start or end time is treated as all-day.
func (e Event) AllDay() bool {
	return e.StartTime == "" || e.EndTime == ""
}

// TrackingRecord marks per-day progress for one habit event.
type TrackingRecord struct {
	ID          int64
	HabitID     int64
	TrackedDate string
	Status      string // defaults to "pending"
	Notes       string
}
