package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/raphaelgruber/habitcal/internal/clock"
	"github.com/raphaelgruber/habitcal/internal/db"
	"github.com/raphaelgruber/habitcal/internal/models"
)

// User-facing response strings. The executor only ever returns display text;
// internal faults never escape it.
const (
	msgScheduleSuccess = "I've scheduled that for you! 📅"
	msgScheduleError   = "I couldn't schedule that. Please try again with a specific time and date. ⚠️"
	msgConflict        = "There's already something scheduled for that time. Would you like to choose another time? 🤔"

	msgMoveBadDatetime = "Please specify a valid date and time for rescheduling."
	msgMoveNotFound    = "I couldn't find that habit. Please check the name and try again."
	msgMoveError       = "Sorry, I couldn't reschedule that habit. Please try again."

	msgCancelError = "Sorry, I couldn't cancel that habit. Please try again."

	msgListBadDate = "Please provide a valid date."
	msgListError   = "Sorry, I couldn't retrieve the schedule. Please try again."

	msgCommandError = "Sorry, I couldn't process that calendar operation. Please try again."
)

const clock12Layout = "03:04 PM"

// Executor carries out classified calendar commands against the store.
type Executor struct {
	store  *db.Client
	clock  clock.Clock
	logger *slog.Logger
}

// NewExecutor creates a command executor.
func NewExecutor(store *db.Client, clk clock.Clock, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &Executor{store: store, clock: clk, logger: logger}
}

// Execute dispatches a classified command and always returns display text.
func (e *Executor) Execute(ctx context.Context, cmd Command) string {
	switch cmd.Intent {
	case IntentSchedule:
		return e.Schedule(ctx, cmd.Habit, cmd.Datetime)
	case IntentMove:
		return e.Move(ctx, cmd.Habit, cmd.Datetime)
	case IntentCancel:
		return e.Cancel(ctx, cmd.Habit, cmd.Date)
	case IntentList:
		return e.List(ctx, cmd.Date)
	default:
		return msgCommandError
	}
}

// Schedule creates a new habit event at the resolved datetime unless the slot
// is already taken. The event, its tracking record, and the calendar
// projection are written atomically; a conflict leaves no partial record.
func (e *Executor) Schedule(ctx context.Context, habit, datetimeText string) string {
	res, ok := ResolveDatetime(datetimeText, e.clock.Now())
	if !ok {
		return msgScheduleError
	}

	count, err := e.store.CountConflicts(ctx, res.Time, 0)
	if err != nil {
		e.logger.Error("conflict check failed", "habit", habit, "error", err)
		return msgScheduleError
	}
	if count > 0 {
		return msgConflict
	}

	ev := models.Event{
		Date:  res.Time.Format(db.DateLayout),
		Habit: habit,
	}
	if res.HasTime {
		ev.StartTime = res.Time.Format(db.TimeLayout)
	}
	if _, err := e.store.CreateEvent(ctx, ev); err != nil {
		e.logger.Error("schedule failed", "habit", habit, "error", err)
		return msgScheduleError
	}
	return msgScheduleSuccess
}

// Move reschedules the most recently created calendar entry whose habit title
// contains the given name.
func (e *Executor) Move(ctx context.Context, habit, datetimeText string) string {
	entry, err := e.store.FindEntryByHabitTitle(ctx, habit)
	if errors.Is(err, db.ErrNotFound) {
		return msgMoveNotFound
	}
	if err != nil {
		e.logger.Error("move lookup failed", "habit", habit, "error", err)
		return msgMoveError
	}

	res, ok := ResolveDatetime(datetimeText, e.clock.Now())
	if !ok {
		return msgMoveBadDatetime
	}

	count, err := e.store.CountConflicts(ctx, res.Time, entry.ID)
	if err != nil {
		e.logger.Error("conflict check failed", "habit", habit, "error", err)
		return msgMoveError
	}
	if count > 0 {
		return msgConflict
	}

	if _, err := e.store.MoveEventDate(ctx, entry.HabitID, res.Time, res.HasTime); err != nil {
		e.logger.Error("move failed", "habit", habit, "error", err)
		return msgMoveError
	}
	return fmt.Sprintf("Successfully rescheduled '%s' to %s 📅",
		habit, res.Time.Format("2006-01-02 "+clock12Layout))
}

// Cancel removes at most one calendar entry matching the habit name,
// optionally constrained to a date. Only the scheduling projection is removed;
// the underlying event and tracking records stay.
func (e *Executor) Cancel(ctx context.Context, habit, dateText string) string {
	var onDate *time.Time
	if dateText != "" {
		// An unresolvable date constraint is treated as unconstrained.
		if res, ok := ResolveDatetime(dateText, e.clock.Now()); ok {
			onDate = &res.Time
		}
	}

	affected, err := e.store.CancelEntry(ctx, habit, onDate)
	if err != nil {
		e.logger.Error("cancel failed", "habit", habit, "error", err)
		return msgCancelError
	}
	if affected == 0 {
		return fmt.Sprintf("I couldn't find '%s' in your calendar.", habit)
	}
	return fmt.Sprintf("Successfully cancelled '%s' ✅", habit)
}

// List formats the schedule for the given date text, defaulting to today.
func (e *Executor) List(ctx context.Context, dateText string) string {
	now := e.clock.Now()
	target := now
	if dateText != "" {
		res, ok := ResolveDatetime(dateText, now)
		if !ok {
			return msgListBadDate
		}
		target = res.Time
	}

	entries, err := e.store.EntriesOn(ctx, target)
	if err != nil {
		e.logger.Error("list failed", "date", target.Format(db.DateLayout), "error", err)
		return msgListError
	}

	day := target.Format(db.DateLayout)
	if len(entries) == 0 {
		return fmt.Sprintf("No habits scheduled for %s 📅", day)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Schedule for %s 📅\n", day)
	for _, entry := range entries {
		switch {
		case entry.AllDay:
			fmt.Fprintf(&b, "\n• %s (all day)", entry.Title)
		case entry.End != nil:
			fmt.Fprintf(&b, "\n• %s (%s - %s)", entry.Title,
				entry.Start.Format(clock12Layout), entry.End.Format(clock12Layout))
		default:
			fmt.Fprintf(&b, "\n• %s (at %s)", entry.Title, entry.Start.Format(clock12Layout))
		}
	}
	return b.String()
}
