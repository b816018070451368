package models

import "time"

// CalendarEntry is the datetime-centric scheduling projection of an Event,
// used by the assistant. It stores a combined start datetime where the Event
// keeps separate date and time-of-day fields; every mutation path that touches
// scheduling keeps the two in sync.
type CalendarEntry struct {
	ID          int64
	HabitID     int64
	Title       string
	Description string
	Start       time.Time
	End         *time.Time
	AllDay      bool
	Recurrence  string
	CreatedAt   time.Time
}
