// Package service orchestrates habit CRUD on top of the store and shapes
// events into the calendar payloads the web UI renders.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/raphaelgruber/habitcal/internal/assistant"
	"github.com/raphaelgruber/habitcal/internal/clock"
	"github.com/raphaelgruber/habitcal/internal/db"
	"github.com/raphaelgruber/habitcal/internal/metrics"
	"github.com/raphaelgruber/habitcal/internal/models"
)

// ErrInvalid marks a request rejected by validation. Transports map it to a
// 400-class response.
var ErrInvalid = errors.New("invalid request")

// Completed and pending calendar colors.
const (
	colorCompletedBg     = "#1e40af"
	colorPendingBg       = "#3b82f6"
	colorCompletedBorder = "#1e3a8a"
	colorPendingBorder   = "#2563eb"
)

// CalendarEvent is the JSON shape consumed by the calendar renderer.
type CalendarEvent struct {
	ID              int64          `json:"id"`
	Title           string         `json:"title"`
	Start           string         `json:"start"`
	End             string         `json:"end,omitempty"`
	AllDay          bool           `json:"allDay"`
	BackgroundColor string         `json:"backgroundColor"`
	BorderColor     string         `json:"borderColor"`
	TextColor       string         `json:"textColor"`
	ExtendedProps   map[string]any `json:"extendedProps"`
}

// AddHabitRequest is the payload for creating a habit event.
type AddHabitRequest struct {
	Date        string `json:"date"`
	Habit       string `json:"habit"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    int    `json:"priority"`
	Color       string `json:"color"`
	Recurrence  string `json:"recurrence_pattern"`
	Reminder    string `json:"reminder_time"`
}

// UpdateHabitRequest is the payload for editing a habit's display attributes.
type UpdateHabitRequest struct {
	ID          int64  `json:"id"`
	Habit       string `json:"habit"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    int    `json:"priority"`
	Color       string `json:"color"`
}

// RescheduleHabitRequest is the payload for moving a habit event.
type RescheduleHabitRequest struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Habits exposes habit CRUD with validation and calendar shaping.
type Habits struct {
	store   *db.Client
	clock   clock.Clock
	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewHabits creates the habit service.
func NewHabits(store *db.Client, clk clock.Clock, logger *slog.Logger, collector *metrics.Collector) *Habits {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Habits{store: store, clock: clk, logger: logger, metrics: collector}
}

// Add validates and creates a habit event with its tracking record and
// calendar projection.
func (h *Habits) Add(ctx context.Context, req AddHabitRequest) (CalendarEvent, error) {
	start := time.Now()
	defer h.record(metrics.OpHabitWrite, start)

	if req.Date == "" || req.Habit == "" {
		return CalendarEvent{}, fmt.Errorf("%w: date and habit are required", ErrInvalid)
	}
	if err := validateSchedule(req.Date, req.StartTime, req.EndTime); err != nil {
		return CalendarEvent{}, err
	}

	ev, err := h.store.CreateEvent(ctx, models.Event{
		Date:        req.Date,
		Habit:       req.Habit,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Color:       req.Color,
		Recurrence:  req.Recurrence,
		Reminder:    req.Reminder,
	})
	if err != nil {
		return CalendarEvent{}, fmt.Errorf("add habit: %w", err)
	}

	h.logger.Info("habit added", "id", ev.ID, "habit", ev.Habit, "date", ev.Date)
	return toCalendarEvent(ev), nil
}

// Update edits a habit's display attributes. db.ErrNotFound passes through for
// the transport to map.
func (h *Habits) Update(ctx context.Context, req UpdateHabitRequest) (CalendarEvent, error) {
	start := time.Now()
	defer h.record(metrics.OpHabitWrite, start)

	if req.ID == 0 || req.Habit == "" {
		return CalendarEvent{}, fmt.Errorf("%w: id and habit are required", ErrInvalid)
	}
	if req.Category == "" {
		req.Category = models.DefaultCategory
	}
	if req.Priority == 0 {
		req.Priority = 1
	}

	ev, err := h.store.UpdateEventDetails(ctx, req.ID, req.Habit, req.Description,
		req.Category, req.Priority, req.Color)
	if err != nil {
		return CalendarEvent{}, err
	}

	h.logger.Info("habit updated", "id", ev.ID, "habit", ev.Habit)
	return toCalendarEvent(ev), nil
}

// Reschedule moves a habit event to a new date and time range.
func (h *Habits) Reschedule(ctx context.Context, req RescheduleHabitRequest) (CalendarEvent, error) {
	start := time.Now()
	defer h.record(metrics.OpHabitWrite, start)

	if req.ID == 0 || req.Date == "" {
		return CalendarEvent{}, fmt.Errorf("%w: id and date are required", ErrInvalid)
	}
	if err := validateSchedule(req.Date, req.StartTime, req.EndTime); err != nil {
		return CalendarEvent{}, err
	}

	ev, err := h.store.RescheduleEvent(ctx, req.ID, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return CalendarEvent{}, err
	}

	h.logger.Info("habit rescheduled", "id", ev.ID, "date", ev.Date)
	return toCalendarEvent(ev), nil
}

// Remove deletes a habit event with its tracking records and projection.
func (h *Habits) Remove(ctx context.Context, id int64) error {
	start := time.Now()
	defer h.record(metrics.OpHabitWrite, start)

	if id == 0 {
		return fmt.Errorf("%w: id is required", ErrInvalid)
	}
	if _, err := h.store.GetEvent(ctx, id); err != nil {
		return err
	}
	if err := h.store.DeleteEvent(ctx, id); err != nil {
		return err
	}
	h.logger.Info("habit removed", "id", id)
	return nil
}

// List returns events matching the filter as calendar payloads. The slice is
// never nil so an empty result serializes as [].
func (h *Habits) List(ctx context.Context, filter db.EventFilter) ([]CalendarEvent, error) {
	start := time.Now()
	defer h.record(metrics.OpHabitRead, start)

	events, err := h.store.ListEvents(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]CalendarEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, toCalendarEvent(ev))
	}
	return out, nil
}

// Progress returns the trailing-week completion summary line.
func (h *Habits) Progress(ctx context.Context) (string, error) {
	total, completed, err := h.store.WeeklyProgress(ctx)
	if err != nil {
		return "", err
	}
	return assistant.ProgressSummary(total, completed), nil
}

// validateSchedule checks the date format and, when both times are present,
// that they parse and are ordered.
func validateSchedule(date, startTime, endTime string) error {
	if _, err := time.Parse(db.DateLayout, date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalid)
	}
	if startTime == "" || endTime == "" {
		return nil
	}
	s, err := time.Parse(db.TimeLayout, startTime)
	if err != nil {
		return fmt.Errorf("%w: start_time must be HH:MM", ErrInvalid)
	}
	e, err := time.Parse(db.TimeLayout, endTime)
	if err != nil {
		return fmt.Errorf("%w: end_time must be HH:MM", ErrInvalid)
	}
	if !e.After(s) {
		return fmt.Errorf("%w: end_time must be after start_time", ErrInvalid)
	}
	return nil
}

// toCalendarEvent shapes a stored event into the calendar payload. An event is
// all-day unless it carries both a start and an end time; colors derive from
// completion state when the event has none of its own.
func toCalendarEvent(ev models.Event) CalendarEvent {
	out := CalendarEvent{
		ID:        ev.ID,
		Title:     ev.Habit,
		Start:     ev.Date,
		AllDay:    ev.AllDay(),
		TextColor: "white",
		ExtendedProps: map[string]any{
			"description": ev.Description,
			"category":    ev.Category,
			"priority":    ev.Priority,
			"completed":   ev.Completed,
		},
	}
	if !out.AllDay {
		out.Start = ev.Date + "T" + ev.StartTime
		out.End = ev.Date + "T" + ev.EndTime
	}

	switch {
	case ev.Color != "":
		out.BackgroundColor = ev.Color
		out.BorderColor = ev.Color
	case ev.Completed:
		out.BackgroundColor = colorCompletedBg
		out.BorderColor = colorCompletedBorder
	default:
		out.BackgroundColor = colorPendingBg
		out.BorderColor = colorPendingBorder
	}
	return out
}

func (h *Habits) record(op string, start time.Time) {
	if h.metrics != nil {
		h.metrics.RecordTiming(op, time.Since(start))
	}
}
