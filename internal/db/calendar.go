package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/raphaelgruber/habitcal/internal/models"
)

// syncCalendarEntry is the single place the calendar projection is derived
// from an event's date and time fields. Every mutation path that touches
// scheduling goes through here so the two representations cannot drift.
// An event missing either time-of-day value projects as all-day.
func (c *Client) syncCalendarEntry(ctx context.Context, tx *sql.Tx, ev models.Event) error {
	start := ev.Date + " 00:00:00"
	if ev.StartTime != "" {
		start = ev.Date + " " + ev.StartTime + ":00"
	}
	var end any
	if ev.EndTime != "" {
		end = ev.Date + " " + ev.EndTime + ":00"
	}
	// The projection is all-day only when it carries no start time at all; an
	// event with a start but no end still lists as a timed entry.
	allDay := ev.StartTime == ""

	var entryID int64
	err := tx.QueryRowContext(ctx,
		"SELECT id FROM calendar_events WHERE habit_id = ? ORDER BY id DESC LIMIT 1",
		ev.ID).Scan(&entryID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, `
			INSERT INTO calendar_events (habit_id, title, description, start_datetime,
				end_datetime, all_day, recurrence, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			ev.ID, ev.Habit, ev.Description, start, end, allDay, ev.Recurrence,
			c.clock.Now().Format(DatetimeLayout),
		)
		if err != nil {
			return fmt.Errorf("insert calendar entry: %w", err)
		}
	case err != nil:
		return fmt.Errorf("find calendar entry: %w", err)
	default:
		_, err = tx.ExecContext(ctx, `
			UPDATE calendar_events
			SET title = ?, description = ?, start_datetime = ?, end_datetime = ?,
			    all_day = ?, recurrence = ?
			WHERE id = ?`,
			ev.Habit, ev.Description, start, end, allDay, ev.Recurrence, entryID,
		)
		if err != nil {
			return fmt.Errorf("update calendar entry: %w", err)
		}
	}
	return nil
}

// CountConflicts counts calendar entries occupying the exact date and
// time-of-day of the candidate start. excludeID skips the entry being moved
// (pass 0 for none; ids start at 1). Equality is exact-match, not interval
// overlap.
func (c *Client) CountConflicts(ctx context.Context, start time.Time, excludeID int64) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM calendar_events
		WHERE date(start_datetime) = date(?)
		AND time(start_datetime) = time(?)
		AND id != ?`,
		start.Format(DatetimeLayout), start.Format(DatetimeLayout), excludeID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count conflicts: %w", err)
	}
	return count, nil
}

// FindEntryByHabitTitle returns the most recently created calendar entry whose
// linked habit title contains fragment (case-insensitive). ErrNotFound when
// nothing matches.
func (c *Client) FindEntryByHabitTitle(ctx context.Context, fragment string) (models.CalendarEntry, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT ce.id, ce.habit_id, ce.title, ce.description, ce.start_datetime,
		       ce.end_datetime, ce.all_day, ce.recurrence, ce.created_at
		FROM calendar_events ce
		JOIN habits h ON h.id = ce.habit_id
		WHERE h.habit LIKE ?
		ORDER BY ce.id DESC
		LIMIT 1`, "%"+fragment+"%")

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CalendarEntry{}, ErrNotFound
	}
	if err != nil {
		return models.CalendarEntry{}, fmt.Errorf("find calendar entry: %w", err)
	}
	return entry, nil
}

// CancelEntry deletes at most one calendar entry — the most recently created
// one whose linked habit title contains fragment, optionally constrained to a
// given day. The underlying event and its tracking records are left in place;
// only the scheduling projection is removed. Returns the number of rows
// deleted (0 or 1).
func (c *Client) CancelEntry(ctx context.Context, fragment string, onDate *time.Time) (int64, error) {
	query := `
		SELECT ce.id
		FROM calendar_events ce
		JOIN habits h ON h.id = ce.habit_id
		WHERE h.habit LIKE ?`
	params := []any{"%" + fragment + "%"}
	if onDate != nil {
		query += " AND date(ce.start_datetime) = date(?)"
		params = append(params, onDate.Format(DatetimeLayout))
	}
	query += " ORDER BY ce.id DESC LIMIT 1"

	var id int64
	err := c.db.QueryRowContext(ctx, query, params...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find entry to cancel: %w", err)
	}

	res, err := c.db.ExecContext(ctx, "DELETE FROM calendar_events WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("cancel entry: %w", err)
	}
	return res.RowsAffected()
}

// DayEntry is one line of a day's schedule listing.
type DayEntry struct {
	Title  string
	Start  time.Time
	End    *time.Time
	AllDay bool
}

// EntriesOn returns the calendar entries whose date component equals the
// target day, ordered by start datetime ascending.
func (c *Client) EntriesOn(ctx context.Context, day time.Time) ([]DayEntry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT h.habit, ce.start_datetime, ce.end_datetime, ce.all_day
		FROM calendar_events ce
		JOIN habits h ON h.id = ce.habit_id
		WHERE date(ce.start_datetime) = date(?)
		ORDER BY ce.start_datetime ASC`,
		day.Format(DatetimeLayout))
	if err != nil {
		return nil, fmt.Errorf("list day entries: %w", err)
	}
	defer rows.Close()

	var entries []DayEntry
	for rows.Next() {
		var e DayEntry
		var start string
		var end sql.NullString
		if err := rows.Scan(&e.Title, &start, &end, &e.AllDay); err != nil {
			return nil, fmt.Errorf("scan day entry: %w", err)
		}
		if e.Start, err = time.Parse(DatetimeLayout, start); err != nil {
			return nil, fmt.Errorf("parse start datetime: %w", err)
		}
		if end.Valid {
			t, err := time.Parse(DatetimeLayout, end.String)
			if err != nil {
				return nil, fmt.Errorf("parse end datetime: %w", err)
			}
			e.End = &t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// NextEntryAfter returns the earliest calendar entry starting strictly after
// the given instant, or ErrNotFound when nothing is scheduled ahead.
func (c *Client) NextEntryAfter(ctx context.Context, after time.Time) (models.CalendarEntry, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT id, habit_id, title, description, start_datetime,
		       end_datetime, all_day, recurrence, created_at
		FROM calendar_events
		WHERE start_datetime > ?
		ORDER BY start_datetime ASC
		LIMIT 1`, after.Format(DatetimeLayout))

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CalendarEntry{}, ErrNotFound
	}
	if err != nil {
		return models.CalendarEntry{}, fmt.Errorf("next calendar entry: %w", err)
	}
	return entry, nil
}

func scanEntry(row rowScanner) (models.CalendarEntry, error) {
	var entry models.CalendarEntry
	var start, createdAt string
	var end sql.NullString
	err := row.Scan(
		&entry.ID, &entry.HabitID, &entry.Title, &entry.Description,
		&start, &end, &entry.AllDay, &entry.Recurrence, &createdAt,
	)
	if err != nil {
		return models.CalendarEntry{}, err
	}
	if entry.Start, err = time.Parse(DatetimeLayout, start); err != nil {
		return models.CalendarEntry{}, fmt.Errorf("parse start datetime: %w", err)
	}
	if end.Valid {
		t, err := time.Parse(DatetimeLayout, end.String)
		if err != nil {
			return models.CalendarEntry{}, fmt.Errorf("parse end datetime: %w", err)
		}
		entry.End = &t
	}
	entry.CreatedAt, _ = time.Parse(DatetimeLayout, createdAt)
	return entry, nil
}
