package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/raphaelgruber/habitcal/internal/models"
)

const eventColumns = `id, date, habit, start_time, end_time, completed, description,
	category, priority, color, recurrence_pattern, reminder_time, last_modified, created_at`

// CreateEvent inserts a new habit event together with its initial tracking
// record and calendar projection, atomically. Category and priority defaults
// are applied when unset. Returns the stored event with its assigned id.
func (c *Client) CreateEvent(ctx context.Context, ev models.Event) (models.Event, error) {
	now := c.clock.Now()
	if ev.Category == "" {
		ev.Category = models.DefaultCategory
	}
	if ev.Priority == 0 {
		ev.Priority = 1
	}
	ev.CreatedAt = now
	ev.LastModified = now

	tx, err := c.begin(ctx)
	if err != nil {
		return models.Event{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO habits (
			date, habit, start_time, end_time, completed, description,
			category, priority, color, recurrence_pattern, reminder_time,
			last_modified, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.Date, ev.Habit, ev.StartTime, ev.EndTime, ev.Completed, ev.Description,
		ev.Category, ev.Priority, ev.Color, ev.Recurrence, ev.Reminder,
		now.Format(DatetimeLayout), now.Format(DatetimeLayout),
	)
	if err != nil {
		return models.Event{}, fmt.Errorf("insert habit: %w", err)
	}
	ev.ID, err = res.LastInsertId()
	if err != nil {
		return models.Event{}, fmt.Errorf("habit id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO habit_tracking (habit_id, tracked_date)
		VALUES (?, ?)`,
		ev.ID, now.Format(DateLayout),
	); err != nil {
		return models.Event{}, fmt.Errorf("insert tracking record: %w", err)
	}

	if err := c.syncCalendarEntry(ctx, tx, ev); err != nil {
		return models.Event{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Event{}, fmt.Errorf("commit: %w", err)
	}
	return ev, nil
}

// GetEvent returns the event with the given id, or ErrNotFound.
func (c *Client) GetEvent(ctx context.Context, id int64) (models.Event, error) {
	row := c.db.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM habits WHERE id = ?", id)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, ErrNotFound
	}
	if err != nil {
		return models.Event{}, fmt.Errorf("get event: %w", err)
	}
	return ev, nil
}

// UpdateEventDetails updates the display attributes of an event and refreshes
// its last-modified timestamp and calendar projection title.
func (c *Client) UpdateEventDetails(ctx context.Context, id int64, habit, description, category string, priority int, color string) (models.Event, error) {
	tx, err := c.begin(ctx)
	if err != nil {
		return models.Event{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE habits
		SET habit = ?, description = ?, category = ?, priority = ?, color = ?,
		    last_modified = ?
		WHERE id = ?`,
		habit, description, category, priority, color,
		c.clock.Now().Format(DatetimeLayout), id,
	)
	if err != nil {
		return models.Event{}, fmt.Errorf("update habit: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Event{}, ErrNotFound
	}

	ev, err := getEventTx(ctx, tx, id)
	if err != nil {
		return models.Event{}, err
	}
	if err := c.syncCalendarEntry(ctx, tx, ev); err != nil {
		return models.Event{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Event{}, fmt.Errorf("commit: %w", err)
	}
	return ev, nil
}

// RescheduleEvent moves an event to a new date and time range, refreshing the
// last-modified timestamp and the calendar projection in the same transaction.
func (c *Client) RescheduleEvent(ctx context.Context, id int64, date, startTime, endTime string) (models.Event, error) {
	tx, err := c.begin(ctx)
	if err != nil {
		return models.Event{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE habits
		SET date = ?, start_time = ?, end_time = ?, last_modified = ?
		WHERE id = ?`,
		date, startTime, endTime, c.clock.Now().Format(DatetimeLayout), id,
	)
	if err != nil {
		return models.Event{}, fmt.Errorf("reschedule habit: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Event{}, ErrNotFound
	}

	ev, err := getEventTx(ctx, tx, id)
	if err != nil {
		return models.Event{}, err
	}
	if err := c.syncCalendarEntry(ctx, tx, ev); err != nil {
		return models.Event{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Event{}, fmt.Errorf("commit: %w", err)
	}
	return ev, nil
}

// MoveEventDate moves an event to a new start instant resolved by the
// assistant. When hasTime is false only the date changes and any existing
// time-of-day range is kept.
func (c *Client) MoveEventDate(ctx context.Context, id int64, start time.Time, hasTime bool) (models.Event, error) {
	ev, err := c.GetEvent(ctx, id)
	if err != nil {
		return models.Event{}, err
	}
	startTime := ev.StartTime
	if hasTime {
		startTime = start.Format(TimeLayout)
	}
	return c.RescheduleEvent(ctx, id, start.Format(DateLayout), startTime, ev.EndTime)
}

// DeleteEvent removes an event and everything it owns: tracking records and
// the calendar projection.
func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	tx, err := c.begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Children first.
	if _, err := tx.ExecContext(ctx, "DELETE FROM habit_tracking WHERE habit_id = ?", id); err != nil {
		return fmt.Errorf("delete tracking records: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM calendar_events WHERE habit_id = ?", id); err != nil {
		return fmt.Errorf("delete calendar entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM habits WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// EventFilter narrows ListEvents results. Zero values mean "no constraint".
type EventFilter struct {
	Category string
	Priority int
	Start    string // inclusive lower bound on date, YYYY-MM-DD
	End      string // inclusive upper bound on date, YYYY-MM-DD
	Search   string // substring of habit text or description
}

// ListEvents returns events matching the filter, ordered by date then start time.
func (c *Client) ListEvents(ctx context.Context, f EventFilter) ([]models.Event, error) {
	query := "SELECT " + eventColumns + " FROM habits WHERE 1=1"
	var params []any

	if f.Category != "" {
		query += " AND category = ?"
		params = append(params, f.Category)
	}
	if f.Priority != 0 {
		query += " AND priority = ?"
		params = append(params, f.Priority)
	}
	if f.Start != "" {
		query += " AND date >= ?"
		params = append(params, f.Start)
	}
	if f.End != "" {
		query += " AND date <= ?"
		params = append(params, f.End)
	}
	if f.Search != "" {
		query += " AND (habit LIKE ? OR description LIKE ?)"
		term := "%" + f.Search + "%"
		params = append(params, term, term)
	}
	query += " ORDER BY date ASC, start_time ASC"

	rows, err := c.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// RecentHabitNames returns the distinct habit names tracked in the trailing
// week, used as assistant context.
func (c *Client) RecentHabitNames(ctx context.Context) ([]string, error) {
	since := c.clock.Now().AddDate(0, 0, -7).Format(DateLayout)
	rows, err := c.db.QueryContext(ctx, `
		SELECT habit FROM habits
		WHERE date >= ?
		GROUP BY habit`, since)
	if err != nil {
		return nil, fmt.Errorf("recent habits: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan habit name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// WeeklyProgress counts total and completed events in the trailing week.
func (c *Client) WeeklyProgress(ctx context.Context) (total, completed int, err error) {
	since := c.clock.Now().AddDate(0, 0, -7).Format(DateLayout)
	err = c.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN completed = 1 THEN 1 ELSE 0 END), 0)
		FROM habits
		WHERE date >= ?`, since).Scan(&total, &completed)
	if err != nil {
		return 0, 0, fmt.Errorf("weekly progress: %w", err)
	}
	return total, completed, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (models.Event, error) {
	var ev models.Event
	var lastModified, createdAt string
	err := row.Scan(
		&ev.ID, &ev.Date, &ev.Habit, &ev.StartTime, &ev.EndTime, &ev.Completed,
		&ev.Description, &ev.Category, &ev.Priority, &ev.Color, &ev.Recurrence,
		&ev.Reminder, &lastModified, &createdAt,
	)
	if err != nil {
		return models.Event{}, err
	}
	ev.LastModified, _ = time.Parse(DatetimeLayout, lastModified)
	ev.CreatedAt, _ = time.Parse(DatetimeLayout, createdAt)
	return ev, nil
}

func getEventTx(ctx context.Context, tx *sql.Tx, id int64) (models.Event, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM habits WHERE id = ?", id)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, ErrNotFound
	}
	if err != nil {
		return models.Event{}, fmt.Errorf("get event: %w", err)
	}
	return ev, nil
}
