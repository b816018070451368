// Package db provides SQLite persistence for habit events, tracking records,
// the calendar projection, and chat history. All access goes through
// parameterized queries; multi-statement mutations run in a transaction.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/raphaelgruber/habitcal/internal/clock"
	_ "modernc.org/sqlite"
)

// Layouts for values stored as TEXT. start_datetime keeps a combined layout so
// sqlite's date() and time() functions can split it.
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	DatetimeLayout = "2006-01-02 15:04:05"
)

// Client wraps the SQLite database handle.
type Client struct {
	db     *sql.DB
	clock  clock.Clock
	logger *slog.Logger
}

// NewClient opens (creating if necessary) the SQLite database at path and
// applies pending schema migrations. Use ":memory:" for an ephemeral store.
func NewClient(path string, clk clock.Clock, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if clk == nil {
		clk = clock.System{}
	}

	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	c := &Client{db: sqlDB, clock: clk, logger: logger}
	if err := c.migrate(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return c, nil
}

// Close closes the database handle.
func (c *Client) Close() error {
	return c.db.Close()
}

// DB returns the underlying handle, used by tests.
func (c *Client) DB() *sql.DB {
	return c.db
}

// WipeData deletes all rows while preserving the schema. Testing only.
func (c *Client) WipeData(ctx context.Context) error {
	c.logger.Warn("wiping all data from database")

	// Children before parents.
	tables := []string{"habit_tracking", "calendar_events", "chat_history", "habits"}
	for _, table := range tables {
		if _, err := c.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return nil
}

// begin starts a transaction whose rollback is safe to defer unconditionally.
func (c *Client) begin(ctx context.Context) (*sql.Tx, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return tx, nil
}

func parseDatetime(s string) (time.Time, error) {
	return time.Parse(DatetimeLayout, s)
}
