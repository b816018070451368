package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raphaelgruber/habitcal/internal/clock"
	"github.com/raphaelgruber/habitcal/internal/db"
	"github.com/raphaelgruber/habitcal/internal/llm"
	"github.com/raphaelgruber/habitcal/internal/metrics"
)

// Tiered error replies for the generative path. Matched against the lowercased
// error text because provider SDKs do not expose typed errors for these cases.
const (
	msgQuotaExceeded = "I'm currently busy with too many requests. Please try again in a moment. ⏳"
	msgBadCredential = "There seems to be an issue with my configuration. Please contact support. ⚠️"
)

const systemPromptTemplate = `You are a friendly habit coach inside a calendar app. Keep replies short, warm and practical.

Current time of day: %s
Habits tracked this week: %s
Weekly progress: %s
Today's schedule:
%s

Encourage the user, answer questions about their habits, and suggest concrete next steps. Do not invent calendar data beyond what is listed above.`

// Generator is the generative capability the assistant consumes. *llm.Model
// satisfies it; tests substitute fakes.
type Generator interface {
	Generate(ctx context.Context, system string, history []llm.Turn, user string) (string, error)
}

// Session is one conversation's bounded in-memory history. Safe for
// concurrent use; the websocket transport shares a session across reads.
type Session struct {
	ID string

	mu    sync.Mutex
	turns []llm.Turn
	limit int
}

// NewSession creates a session keeping at most limit prior turns.
func NewSession(limit int) *Session {
	if limit <= 0 {
		limit = 10
	}
	return &Session{ID: uuid.NewString(), limit: limit}
}

// Remember appends an exchange, evicting the oldest beyond the limit.
func (s *Session) Remember(user, assistant string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, llm.Turn{User: user, Assistant: assistant})
	if len(s.turns) > s.limit {
		s.turns = s.turns[len(s.turns)-s.limit:]
	}
}

// History returns a copy of the retained turns in chronological order.
func (s *Session) History() []llm.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Assistant routes chat messages: deterministic calendar commands are executed
// directly, everything else goes to the generative model with canned fallbacks.
type Assistant struct {
	store   *db.Client
	gen     Generator
	exec    *Executor
	clock   clock.Clock
	logger  *slog.Logger
	metrics *metrics.Collector
}

// New creates an assistant. gen may be nil, which disables the generative path
// entirely; every non-command message then gets a canned reply.
func New(store *db.Client, gen Generator, clk clock.Clock, logger *slog.Logger, collector *metrics.Collector) *Assistant {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		store:   store,
		gen:     gen,
		exec:    NewExecutor(store, clk, logger),
		clock:   clk,
		logger:  logger,
		metrics: collector,
	}
}

// Executor exposes the command executor for transports that bypass chat.
func (a *Assistant) Executor() *Executor {
	return a.exec
}

// SeedSession creates a session pre-populated with the most recent persisted
// chat turns, so a fresh connection picks the conversation back up. A failed
// lookup degrades to an empty session.
func (a *Assistant) SeedSession(ctx context.Context, limit int) *Session {
	session := NewSession(limit)
	turns, err := a.store.RecentChatTurns(ctx, limit)
	if err != nil {
		a.logger.Warn("seed session failed", "error", err)
		return session
	}
	for _, t := range turns {
		session.Remember(t.UserMsg, t.BotMsg)
	}
	return session
}

// HandleTurn processes one user message and returns display text. Command
// messages short-circuit to the executor and leave no chat history; the
// generative path receives habit context and bounded history, and its turns
// are persisted only on success, never for canned fallbacks.
func (a *Assistant) HandleTurn(ctx context.Context, session *Session, message string) string {
	normalized := strings.ToLower(strings.TrimSpace(message))
	now := a.clock.Now()

	if cmd, ok := Classify(normalized); ok {
		start := time.Now()
		reply := a.exec.Execute(ctx, cmd)
		a.record(metrics.OpCommand, start)
		return reply
	}

	habits, progress, today := a.gatherContext(ctx, now)

	if a.gen == nil {
		start := time.Now()
		reply := Fallback(normalized, habits, progress, now)
		a.record(metrics.OpFallback, start)
		return reply
	}

	system := fmt.Sprintf(systemPromptTemplate,
		TimeOfDay(now), formatHabits(habits), progress, today)

	start := time.Now()
	reply, err := a.gen.Generate(ctx, system, session.History(), message)
	if err != nil {
		a.logger.Warn("generation failed", "session", session.ID, "error", err)
		start = time.Now()
		reply = a.degrade(err, normalized, habits, progress, now)
		a.record(metrics.OpFallback, start)
		return reply
	}
	a.record(metrics.OpLLMGenerate, start)

	if err := a.store.AppendChatTurn(ctx, message, reply, "chat"); err != nil {
		a.logger.Warn("persist chat turn failed", "error", err)
	}
	session.Remember(message, reply)
	return reply
}

// degrade maps a generative failure to a reply. Quota and credential problems
// get their own messages so users can tell a transient stall from a broken
// deployment; anything else falls back to the canned responder.
func (a *Assistant) degrade(genErr error, normalized string, habits []string, progress string, now time.Time) string {
	text := strings.ToLower(genErr.Error())
	switch {
	case strings.Contains(text, "quota exceeded"):
		return msgQuotaExceeded
	case strings.Contains(text, "invalid api key"):
		return msgBadCredential
	default:
		return Fallback(normalized, habits, progress, now)
	}
}

// Encourage produces a short motivational message. With a generative model it
// is prompted with the user's sentiment and next scheduled entry; otherwise a
// canned message is chosen from sentiment and context.
func (a *Assistant) Encourage(ctx context.Context, message, situation string) string {
	sentiment := AnalyzeSentiment(message)

	if a.gen == nil {
		return Encouragement(sentiment, situation)
	}

	upcoming := "nothing scheduled"
	if entry, err := a.store.NextEntryAfter(ctx, a.clock.Now()); err == nil {
		upcoming = fmt.Sprintf("%s at %s", entry.Title, entry.Start.Format("2006-01-02 03:04 PM"))
	} else if !errors.Is(err, db.ErrNotFound) {
		a.logger.Warn("next entry lookup failed", "error", err)
	}

	prompt := fmt.Sprintf(
		"The user sounds %s. Their situation: %s. Next on their calendar: %s. Reply with one or two encouraging sentences.",
		sentiment, situation, upcoming)

	start := time.Now()
	reply, err := a.gen.Generate(ctx, "You are an upbeat habit coach. Be brief and specific.", nil, prompt)
	if err != nil {
		a.logger.Warn("encouragement generation failed", "error", err)
		return Encouragement(sentiment, situation)
	}
	a.record(metrics.OpLLMGenerate, start)
	return reply
}

// gatherContext collects the habit context injected into the system prompt.
// Lookup failures degrade to empty context rather than failing the turn.
func (a *Assistant) gatherContext(ctx context.Context, now time.Time) (habits []string, progress, today string) {
	habits, err := a.store.RecentHabitNames(ctx)
	if err != nil {
		a.logger.Warn("recent habits lookup failed", "error", err)
	}

	total, completed, err := a.store.WeeklyProgress(ctx)
	if err != nil {
		a.logger.Warn("weekly progress lookup failed", "error", err)
	}
	progress = ProgressSummary(total, completed)

	entries, err := a.store.EntriesOn(ctx, now)
	if err != nil {
		a.logger.Warn("today's entries lookup failed", "error", err)
	}
	if len(entries) == 0 {
		today = "(empty)"
	} else {
		var lines []string
		for _, e := range entries {
			if e.AllDay {
				lines = append(lines, fmt.Sprintf("- %s (all day)", e.Title))
			} else {
				lines = append(lines, fmt.Sprintf("- %s at %s", e.Title, e.Start.Format(clock12Layout)))
			}
		}
		today = strings.Join(lines, "\n")
	}
	return habits, progress, today
}

// ProgressSummary renders the trailing-week completion line shown in prompts
// and the progress endpoint.
func ProgressSummary(total, completed int) string {
	rate := 0.0
	if total > 0 {
		rate = float64(completed) / float64(total) * 100
	}
	return fmt.Sprintf("Completed %d/%d habits (%.1f%% success rate) in the past week", completed, total, rate)
}

func formatHabits(habits []string) string {
	if len(habits) == 0 {
		return "none yet"
	}
	return strings.Join(habits, ", ")
}

func (a *Assistant) record(op string, start time.Time) {
	if a.metrics != nil {
		a.metrics.RecordTiming(op, time.Since(start))
	}
}
