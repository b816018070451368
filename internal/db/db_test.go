package db_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/raphaelgruber/habitcal/internal/clock"
	"github.com/raphaelgruber/habitcal/internal/db"
	"github.com/stretchr/testify/require"
)

// testNow is the fixed instant all db tests run at: a Friday morning.
var testNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.Local)

func newTestClient(t *testing.T) *db.Client {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	path := filepath.Join(t.TempDir(), "habits.db")

	client, err := db.NewClient(path, clock.Fixed{T: testNow}, logger)
	require.NoError(t, err, "should open and migrate test database")
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestMigrateIsIdempotent(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	path := filepath.Join(t.TempDir(), "habits.db")

	client, err := db.NewClient(path, clock.Fixed{T: testNow}, logger)
	require.NoError(t, err)
	require.NoError(t, client.Close())

	// Reopening applies no further migrations and must not error.
	client, err = db.NewClient(path, clock.Fixed{T: testNow}, logger)
	require.NoError(t, err)
	require.NoError(t, client.Close())
}
