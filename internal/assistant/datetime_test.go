package assistant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDatetimeRelativeWords(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.Local)

	tests := []struct {
		text string
		want time.Time
	}{
		{"today", time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)},
		{"tomorrow", time.Date(2024, 3, 16, 0, 0, 0, 0, time.Local)},
		{"next week", time.Date(2024, 3, 22, 0, 0, 0, 0, time.Local)},
		{"  Tomorrow  ", time.Date(2024, 3, 16, 0, 0, 0, 0, time.Local)},
	}
	for _, tc := range tests {
		res, ok := ResolveDatetime(tc.text, now)
		require.True(t, ok, "should resolve %q", tc.text)
		assert.Equal(t, tc.want, res.Time)
		assert.False(t, res.HasTime, "relative words resolve to bare days")
	}
}

func TestResolveDatetimeExplicitDate(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.Local)

	res, ok := ResolveDatetime("2024-06-01", now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local), res.Time)
	assert.False(t, res.HasTime)
}

func TestResolveDatetimeClockTime(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.Local)

	res, ok := ResolveDatetime("3:00 pm", now)
	require.True(t, ok)
	assert.True(t, res.HasTime)
	assert.Equal(t, time.Date(2024, 3, 15, 15, 0, 0, 0, time.Local), res.Time,
		"a bare clock time resolves onto the current date")

	res, ok = ResolveDatetime("9:15 AM", now)
	require.True(t, ok)
	assert.Equal(t, 9, res.Time.Hour())
	assert.Equal(t, 15, res.Time.Minute())
}

func TestResolveDatetimeRejectsGarbage(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.Local)

	for _, text := range []string{"someday", "15:00", "2024-13-40", "noonish", ""} {
		_, ok := ResolveDatetime(text, now)
		assert.False(t, ok, "%q should not resolve", text)
	}
}
