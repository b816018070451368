package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/raphaelgruber/habitcal/internal/db"
	"github.com/raphaelgruber/habitcal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEventAppliesDefaults(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	ev, err := client.CreateEvent(ctx, models.Event{Date: "2024-03-16", Habit: "meditation"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), ev.ID)
	assert.Equal(t, models.DefaultCategory, ev.Category)
	assert.Equal(t, 1, ev.Priority)
	assert.True(t, ev.AllDay())
	assert.Equal(t, testNow, ev.CreatedAt)
	assert.Equal(t, testNow, ev.LastModified)
}

func TestCreateEventAddsTrackingAndProjection(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	ev, err := client.CreateEvent(ctx, models.Event{
		Date: "2024-03-16", Habit: "meditation", StartTime: "09:00", EndTime: "09:30",
	})
	require.NoError(t, err)

	var trackingCount int
	var status string
	err = client.DB().QueryRow(
		"SELECT COUNT(*), COALESCE(MAX(status), '') FROM habit_tracking WHERE habit_id = ?",
		ev.ID).Scan(&trackingCount, &status)
	require.NoError(t, err)
	assert.Equal(t, 1, trackingCount)
	assert.Equal(t, "pending", status)

	entry, err := client.FindEntryByHabitTitle(ctx, "medit")
	require.NoError(t, err)
	assert.Equal(t, ev.ID, entry.HabitID)
	assert.Equal(t, "meditation", entry.Title)
	assert.Equal(t, "2024-03-16 09:00:00", entry.Start.Format(db.DatetimeLayout))
	require.NotNil(t, entry.End)
	assert.Equal(t, "2024-03-16 09:30:00", entry.End.Format(db.DatetimeLayout))
	assert.False(t, entry.AllDay)
}

func TestUpdateEventDetailsRefreshesProjectionTitle(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	ev, err := client.CreateEvent(ctx, models.Event{Date: "2024-03-16", Habit: "run"})
	require.NoError(t, err)

	updated, err := client.UpdateEventDetails(ctx, ev.ID, "morning run", "5k", "fitness", 2, "#ff0000")
	require.NoError(t, err)
	assert.Equal(t, "morning run", updated.Habit)
	assert.Equal(t, "fitness", updated.Category)

	entry, err := client.FindEntryByHabitTitle(ctx, "morning run")
	require.NoError(t, err)
	assert.Equal(t, "morning run", entry.Title)
}

func TestUpdateEventDetailsNotFound(t *testing.T) {
	client := newTestClient(t)

	_, err := client.UpdateEventDetails(context.Background(), 99, "x", "", "default", 1, "")
	assert.True(t, errors.Is(err, db.ErrNotFound))
}

func TestRescheduleEventMovesProjection(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	ev, err := client.CreateEvent(ctx, models.Event{
		Date: "2024-03-16", Habit: "yoga", StartTime: "08:00", EndTime: "09:00",
	})
	require.NoError(t, err)

	_, err = client.RescheduleEvent(ctx, ev.ID, "2024-03-20", "18:00", "19:00")
	require.NoError(t, err)

	entry, err := client.FindEntryByHabitTitle(ctx, "yoga")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-20 18:00:00", entry.Start.Format(db.DatetimeLayout))
}

func TestMoveEventDateKeepsTimesWithoutNewTime(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	ev, err := client.CreateEvent(ctx, models.Event{
		Date: "2024-03-16", Habit: "yoga", StartTime: "08:00", EndTime: "09:00",
	})
	require.NoError(t, err)

	moved, err := client.MoveEventDate(ctx, ev.ID, testNow.AddDate(0, 0, 2), false)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-17", moved.Date)
	assert.Equal(t, "08:00", moved.StartTime)
	assert.Equal(t, "09:00", moved.EndTime)
}

func TestDeleteEventCascades(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	ev, err := client.CreateEvent(ctx, models.Event{Date: "2024-03-16", Habit: "reading"})
	require.NoError(t, err)

	require.NoError(t, client.DeleteEvent(ctx, ev.ID))

	_, err = client.GetEvent(ctx, ev.ID)
	assert.True(t, errors.Is(err, db.ErrNotFound))

	for _, table := range []string{"habit_tracking", "calendar_events"} {
		var count int
		require.NoError(t, client.DB().QueryRow(
			"SELECT COUNT(*) FROM "+table+" WHERE habit_id = ?", ev.ID).Scan(&count))
		assert.Zero(t, count, table+" rows should be gone")
	}
}

func TestListEventsFilters(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	seed := []models.Event{
		{Date: "2024-03-16", Habit: "meditation", Category: "wellness", Priority: 2},
		{Date: "2024-03-17", Habit: "running", Category: "fitness"},
		{Date: "2024-03-18", Habit: "journaling", Description: "evening reflection"},
	}
	for _, ev := range seed {
		_, err := client.CreateEvent(ctx, ev)
		require.NoError(t, err)
	}

	all, err := client.ListEvents(ctx, db.EventFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "meditation", all[0].Habit, "ordered by date ascending")

	byCategory, err := client.ListEvents(ctx, db.EventFilter{Category: "fitness"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "running", byCategory[0].Habit)

	byRange, err := client.ListEvents(ctx, db.EventFilter{Start: "2024-03-17", End: "2024-03-18"})
	require.NoError(t, err)
	assert.Len(t, byRange, 2)

	bySearch, err := client.ListEvents(ctx, db.EventFilter{Search: "reflection"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "journaling", bySearch[0].Habit)
}

func TestWeeklyProgressCountsCompletions(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	for _, habit := range []string{"a", "b", "c"} {
		_, err := client.CreateEvent(ctx, models.Event{Date: "2024-03-14", Habit: habit})
		require.NoError(t, err)
	}
	_, err := client.DB().Exec("UPDATE habits SET completed = 1 WHERE habit = 'a'")
	require.NoError(t, err)

	total, completed, err := client.WeeklyProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, completed)
}

func TestRecentHabitNamesDeduplicates(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	for _, date := range []string{"2024-03-13", "2024-03-14"} {
		_, err := client.CreateEvent(ctx, models.Event{Date: date, Habit: "meditation"})
		require.NoError(t, err)
	}
	// Too old to count.
	_, err := client.CreateEvent(ctx, models.Event{Date: "2024-01-01", Habit: "forgotten"})
	require.NoError(t, err)

	names, err := client.RecentHabitNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"meditation"}, names)
}
