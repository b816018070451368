package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySchedule(t *testing.T) {
	tests := []struct {
		message      string
		wantHabit    string
		wantDatetime string
	}{
		{"schedule meditation for tomorrow", "meditation", "tomorrow"},
		{"plan a workout at 6:00 pm", "workout", "6:00 pm"},
		{"add an evening walk on 2024-06-01", "evening walk", "2024-06-01"},
		{"set up yoga for next week", "yoga", "next week"},
	}
	for _, tc := range tests {
		cmd, ok := Classify(tc.message)
		require.True(t, ok, "should classify %q", tc.message)
		assert.Equal(t, IntentSchedule, cmd.Intent)
		assert.Equal(t, tc.wantHabit, cmd.Habit)
		assert.Equal(t, tc.wantDatetime, cmd.Datetime)
	}
}

func TestClassifyMove(t *testing.T) {
	cmd, ok := Classify("move meditation to 3:00 pm")
	require.True(t, ok)
	assert.Equal(t, IntentMove, cmd.Intent)
	assert.Equal(t, "meditation", cmd.Habit)
	assert.Equal(t, "3:00 pm", cmd.Datetime)

	cmd, ok = Classify("reschedule morning run to tomorrow")
	require.True(t, ok)
	assert.Equal(t, IntentMove, cmd.Intent)
	assert.Equal(t, "morning run", cmd.Habit)
}

func TestClassifyCancel(t *testing.T) {
	cmd, ok := Classify("cancel meditation")
	require.True(t, ok)
	assert.Equal(t, IntentCancel, cmd.Intent)
	assert.Equal(t, "meditation", cmd.Habit)
	assert.Empty(t, cmd.Date)

	cmd, ok = Classify("delete yoga on tomorrow")
	require.True(t, ok)
	assert.Equal(t, IntentCancel, cmd.Intent)
	assert.Equal(t, "yoga", cmd.Habit)
	assert.Equal(t, "tomorrow", cmd.Date)
}

func TestClassifyList(t *testing.T) {
	cmd, ok := Classify("show my schedule")
	require.True(t, ok)
	assert.Equal(t, IntentList, cmd.Intent)
	assert.Empty(t, cmd.Date)

	cmd, ok = Classify("list my tasks for tomorrow")
	require.True(t, ok)
	assert.Equal(t, IntentList, cmd.Intent)
	assert.Equal(t, "tomorrow", cmd.Date)

	cmd, ok = Classify("what are my habits for 2024-06-01")
	require.True(t, ok)
	assert.Equal(t, IntentList, cmd.Intent)
	assert.Equal(t, "2024-06-01", cmd.Date)
}

func TestClassifyFirstMatchWins(t *testing.T) {
	// "schedule" appears before "move" in the priority order, so a message
	// matching both trigger groups resolves to schedule.
	cmd, ok := Classify("schedule a move practice for tomorrow")
	require.True(t, ok)
	assert.Equal(t, IntentSchedule, cmd.Intent)
	assert.Equal(t, "move practice", cmd.Habit)
}

func TestClassifyRejectsPlainChat(t *testing.T) {
	for _, message := range []string{
		"hello there",
		"how is my progress going",
		"i feel tired today",
		"",
	} {
		_, ok := Classify(message)
		assert.False(t, ok, "%q carries no calendar intent", message)
	}
}
