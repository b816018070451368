package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/raphaelgruber/habitcal/internal/db"
	"github.com/raphaelgruber/habitcal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCreate(t *testing.T, client *db.Client, ev models.Event) models.Event {
	t.Helper()
	created, err := client.CreateEvent(context.Background(), ev)
	require.NoError(t, err)
	return created
}

func TestCountConflictsExactSlotOnly(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	mustCreate(t, client, models.Event{Date: "2024-03-16", Habit: "meditation", StartTime: "09:00", EndTime: "10:00"})

	slot := time.Date(2024, 3, 16, 9, 0, 0, 0, time.Local)
	count, err := client.CountConflicts(ctx, slot, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "same date and time conflicts")

	// 09:30 falls inside the 09:00-10:00 span but is not an exact match.
	inside := time.Date(2024, 3, 16, 9, 30, 0, 0, time.Local)
	count, err = client.CountConflicts(ctx, inside, 0)
	require.NoError(t, err)
	assert.Zero(t, count, "equality is exact-match, not interval overlap")

	otherDay := time.Date(2024, 3, 17, 9, 0, 0, 0, time.Local)
	count, err = client.CountConflicts(ctx, otherDay, 0)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCountConflictsExcludesSelf(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	mustCreate(t, client, models.Event{Date: "2024-03-16", Habit: "yoga", StartTime: "08:00", EndTime: "09:00"})
	entry, err := client.FindEntryByHabitTitle(ctx, "yoga")
	require.NoError(t, err)

	slot := time.Date(2024, 3, 16, 8, 0, 0, 0, time.Local)
	count, err := client.CountConflicts(ctx, slot, entry.ID)
	require.NoError(t, err)
	assert.Zero(t, count, "an entry does not conflict with itself")
}

func TestFindEntryByHabitTitleMostRecentFirst(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	first := mustCreate(t, client, models.Event{Date: "2024-03-16", Habit: "meditation"})
	second := mustCreate(t, client, models.Event{Date: "2024-03-17", Habit: "evening meditation"})

	entry, err := client.FindEntryByHabitTitle(ctx, "meditation")
	require.NoError(t, err)
	assert.Equal(t, second.ID, entry.HabitID, "most recently created match wins")
	assert.NotEqual(t, first.ID, entry.HabitID)
}

func TestFindEntryByHabitTitleNotFound(t *testing.T) {
	client := newTestClient(t)

	_, err := client.FindEntryByHabitTitle(context.Background(), "nothing")
	assert.True(t, errors.Is(err, db.ErrNotFound))
}

func TestCancelEntryLeavesEventIntact(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	ev := mustCreate(t, client, models.Event{Date: "2024-03-16", Habit: "meditation"})

	affected, err := client.CancelEntry(ctx, "meditation", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// Only the projection goes away; the event and tracking survive.
	_, err = client.GetEvent(ctx, ev.ID)
	assert.NoError(t, err)
	var trackingCount int
	require.NoError(t, client.DB().QueryRow(
		"SELECT COUNT(*) FROM habit_tracking WHERE habit_id = ?", ev.ID).Scan(&trackingCount))
	assert.Equal(t, 1, trackingCount)

	// Second cancel finds nothing.
	affected, err = client.CancelEntry(ctx, "meditation", nil)
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestCancelEntryConstrainedToDate(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	mustCreate(t, client, models.Event{Date: "2024-03-16", Habit: "meditation"})

	wrongDay := time.Date(2024, 3, 20, 0, 0, 0, 0, time.Local)
	affected, err := client.CancelEntry(ctx, "meditation", &wrongDay)
	require.NoError(t, err)
	assert.Zero(t, affected)

	rightDay := time.Date(2024, 3, 16, 0, 0, 0, 0, time.Local)
	affected, err = client.CancelEntry(ctx, "meditation", &rightDay)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}

func TestEntriesOnOrderedByStart(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	// Insert out of order to exercise the sort.
	mustCreate(t, client, models.Event{Date: "2024-03-16", Habit: "lunch walk", StartTime: "14:00", EndTime: "14:30"})
	mustCreate(t, client, models.Event{Date: "2024-03-16", Habit: "meditation", StartTime: "09:00", EndTime: "09:30"})
	mustCreate(t, client, models.Event{Date: "2024-03-17", Habit: "other day"})

	day := time.Date(2024, 3, 16, 0, 0, 0, 0, time.Local)
	entries, err := client.EntriesOn(ctx, day)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "meditation", entries[0].Title)
	assert.Equal(t, "lunch walk", entries[1].Title)
	assert.False(t, entries[0].AllDay)
}

func TestNextEntryAfter(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	mustCreate(t, client, models.Event{Date: "2024-03-16", Habit: "meditation", StartTime: "09:00", EndTime: "09:30"})
	mustCreate(t, client, models.Event{Date: "2024-03-15", Habit: "lunch walk", StartTime: "14:00", EndTime: "14:30"})

	entry, err := client.NextEntryAfter(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, "lunch walk", entry.Title, "earliest future entry wins")

	_, err = client.NextEntryAfter(ctx, time.Date(2024, 4, 1, 0, 0, 0, 0, time.Local))
	assert.True(t, errors.Is(err, db.ErrNotFound))
}

func TestChatTurnsRoundTrip(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.AppendChatTurn(ctx, "hello", "hi there", "ctx-1"))
	require.NoError(t, client.AppendChatTurn(ctx, "how am I doing?", "great", "ctx-2"))
	require.NoError(t, client.AppendChatTurn(ctx, "thanks", "anytime", "ctx-3"))

	turns, err := client.RecentChatTurns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "how am I doing?", turns[0].UserMsg, "chronological order, bounded window")
	assert.Equal(t, "thanks", turns[1].UserMsg)
}
