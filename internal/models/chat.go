package models

import "time"

// ChatTurn is one append-only conversation record: the user message, the
// assistant response, and the context string used to produce it. Turns are
// never mutated or deleted; they only seed bounded conversational history.
type ChatTurn struct {
	ID        int64
	UserMsg   string
	BotMsg    string
	Context   string
	Timestamp time.Time
}
