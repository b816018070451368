package assistant

import (
	"strings"
	"time"
)

// Canned responses used when the generative call is unavailable. Selection is
// deterministic so degraded conversations stay predictable.
const (
	greetingMorning   = "Good morning! Ready to make today amazing? ☀️"
	greetingAfternoon = "Good afternoon! How's your day going? 🌤️"
	greetingEvening   = "Good evening! Let's review your day together. 🌙"

	fallbackSchedule = "I can help you schedule habits and events, but I need some maintenance first. Please try again later. 🔧"
	fallbackDefault  = "I'm having trouble connecting to my main system, but I'm still here to help with basic tasks! What would you like to do? 🤖"

	encourageStreak      = "You're on fire! Keep that streak going! 🔥"
	encourageRecovery    = "Tomorrow is a new day - you've got this! 🌅"
	encourageAchievement = "Amazing work! You're crushing it! 🎉"
	encourageGeneral     = "You've got this! One step at a time! 🌟"
)

var (
	greetingWords = []string{"hello", "hi", "hey", "good"}
	scheduleWords = []string{"schedule", "plan", "calendar", "event"}
	progressWords = []string{"progress", "track", "goal", "achievement"}
)

// TimeOfDay buckets an hour into the greeting period.
func TimeOfDay(now time.Time) string {
	switch hour := now.Hour(); {
	case hour >= 5 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 17:
		return "afternoon"
	default:
		return "evening"
	}
}

// Greeting returns the canned greeting for the current time of day.
func Greeting(now time.Time) string {
	switch TimeOfDay(now) {
	case "morning":
		return greetingMorning
	case "afternoon":
		return greetingAfternoon
	default:
		return greetingEvening
	}
}

// Fallback produces a deterministic canned response when the generative call
// fails or is disabled. Pure function of its inputs: keyword buckets are
// checked in priority order, and the progress summary decides between the
// achievement and generic motivational messages. The habit list is accepted
// for interface symmetry with the generative path but does not influence the
// canned selection.
func Fallback(message string, habits []string, progress string, now time.Time) string {
	_ = habits
	message = strings.ToLower(message)

	if containsAny(message, greetingWords) {
		return Greeting(now)
	}
	if containsAny(message, scheduleWords) {
		return fallbackSchedule
	}
	if containsAny(message, progressWords) {
		if strings.Contains(strings.ToLower(progress), "completed") {
			return encourageAchievement
		}
		return encourageGeneral
	}
	return fallbackDefault
}

// Encouragement selects a canned motivational message from sentiment and
// context, mirroring the fallback tier of the generative encouragement path.
func Encouragement(sentiment, context string) string {
	switch {
	case context == "streak":
		return encourageStreak
	case sentiment == "negative":
		return encourageRecovery
	case context == "achievement":
		return encourageAchievement
	default:
		return encourageGeneral
	}
}

func containsAny(message string, words []string) bool {
	for _, word := range words {
		if strings.Contains(message, word) {
			return true
		}
	}
	return false
}
