package db

import (
	"database/sql"
	"errors"
	"fmt"
)

// migration is one versioned schema step. Migrations are applied in order at
// startup, never inline in request handling.
type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "core tables",
		sql: `
			CREATE TABLE IF NOT EXISTS habits (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				date TEXT NOT NULL,
				habit TEXT NOT NULL,
				start_time TEXT NOT NULL DEFAULT '',
				end_time TEXT NOT NULL DEFAULT '',
				completed INTEGER NOT NULL DEFAULT 0,
				description TEXT NOT NULL DEFAULT '',
				category TEXT NOT NULL DEFAULT 'default',
				priority INTEGER NOT NULL DEFAULT 1,
				color TEXT NOT NULL DEFAULT '',
				recurrence_pattern TEXT NOT NULL DEFAULT '',
				reminder_time TEXT NOT NULL DEFAULT '',
				last_modified TEXT NOT NULL,
				created_at TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS habit_tracking (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				habit_id INTEGER NOT NULL REFERENCES habits(id),
				tracked_date TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				notes TEXT NOT NULL DEFAULT ''
			);

			CREATE TABLE IF NOT EXISTS chat_history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_message TEXT NOT NULL,
				bot_response TEXT NOT NULL,
				context TEXT NOT NULL DEFAULT '',
				timestamp TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS calendar_events (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				habit_id INTEGER NOT NULL REFERENCES habits(id),
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				start_datetime TEXT NOT NULL,
				end_datetime TEXT,
				all_day INTEGER NOT NULL DEFAULT 0,
				recurrence TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL
			);
		`,
	},
	{
		version: 2,
		name:    "query indexes",
		sql: `
			CREATE INDEX IF NOT EXISTS idx_habits_date ON habits(date);
			CREATE INDEX IF NOT EXISTS idx_tracking_habit ON habit_tracking(habit_id);
			CREATE INDEX IF NOT EXISTS idx_events_habit ON calendar_events(habit_id);
			CREATE INDEX IF NOT EXISTS idx_events_start ON calendar_events(start_datetime);
		`,
	},
}

// migrate applies all pending migrations, tracking progress in schema_version.
func (c *Client) migrate() error {
	if _, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("ensure schema_version table: %w", err)
	}

	current, err := c.currentVersion()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		c.logger.Info("applying migration", "version", m.version, "name", m.name)

		tx, err := c.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("clear schema version: %w", err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record schema version %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}

	return nil
}

func (c *Client) currentVersion() (int, error) {
	var version int
	err := c.db.QueryRow("SELECT version FROM schema_version").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}
