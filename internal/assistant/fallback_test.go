package assistant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour int) time.Time {
	return time.Date(2024, 3, 15, hour, 0, 0, 0, time.Local)
}

func TestTimeOfDayBoundaries(t *testing.T) {
	assert.Equal(t, "evening", TimeOfDay(at(4)))
	assert.Equal(t, "morning", TimeOfDay(at(5)))
	assert.Equal(t, "morning", TimeOfDay(at(11)))
	assert.Equal(t, "afternoon", TimeOfDay(at(12)))
	assert.Equal(t, "afternoon", TimeOfDay(at(16)))
	assert.Equal(t, "evening", TimeOfDay(at(17)))
	assert.Equal(t, "evening", TimeOfDay(at(23)))
}

func TestFallbackGreeting(t *testing.T) {
	assert.Equal(t, "Good morning! Ready to make today amazing? ☀️",
		Fallback("hello", nil, "", at(9)))
	assert.Equal(t, "Good afternoon! How's your day going? 🌤️",
		Fallback("hi there", nil, "", at(14)))
	assert.Equal(t, "Good evening! Let's review your day together. 🌙",
		Fallback("hey", nil, "", at(20)))
}

func TestFallbackScheduleWords(t *testing.T) {
	want := "I can help you schedule habits and events, but I need some maintenance first. Please try again later. 🔧"
	for _, msg := range []string{"can you plan something", "whats on the calendar", "any event coming up"} {
		assert.Equal(t, want, Fallback(msg, nil, "", at(10)))
	}
}

func TestFallbackProgressWords(t *testing.T) {
	progress := "Completed 5/7 habits (71.4% success rate) in the past week"
	assert.Equal(t, "Amazing work! You're crushing it! 🎉",
		Fallback("how is my progress", nil, progress, at(10)))
	assert.Equal(t, "You've got this! One step at a time! 🌟",
		Fallback("whats my goal", nil, "", at(10)))
}

func TestFallbackDefault(t *testing.T) {
	want := "I'm having trouble connecting to my main system, but I'm still here to help with basic tasks! What would you like to do? 🤖"
	assert.Equal(t, want, Fallback("tell me a joke", nil, "", at(10)))
}

func TestFallbackIsDeterministic(t *testing.T) {
	first := Fallback("whats up", []string{"yoga"}, "", at(10))
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Fallback("whats up", []string{"yoga"}, "", at(10)))
	}
}

func TestAnalyzeSentiment(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"today was great", "positive"},
		{"I love this habit", "positive"},
		{"I'm so tired", "negative"},
		{"this is hard", "negative"},
		{"maybe I will try", "uncertain"},
		{"not sure about this", "uncertain"},
		{"the sky is blue", "neutral"},
		{"visiting the country next week", "neutral"},
		{"that was really helpful", "neutral"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, AnalyzeSentiment(tc.message), "message %q", tc.message)
	}
}

func TestEncouragementSelection(t *testing.T) {
	assert.Equal(t, "You're on fire! Keep that streak going! 🔥", Encouragement("positive", "streak"))
	assert.Equal(t, "Tomorrow is a new day - you've got this! 🌅", Encouragement("negative", ""))
	assert.Equal(t, "Amazing work! You're crushing it! 🎉", Encouragement("neutral", "achievement"))
	assert.Equal(t, "You've got this! One step at a time! 🌟", Encouragement("neutral", ""))
}
