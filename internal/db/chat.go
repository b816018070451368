package db

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/habitcal/internal/models"
)

// AppendChatTurn records one completed conversation turn. Turns are
// append-only; nothing ever mutates or deletes them.
func (c *Client) AppendChatTurn(ctx context.Context, userMsg, botMsg, contextStr string) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO chat_history (user_message, bot_response, context, timestamp)
		VALUES (?, ?, ?, ?)`,
		userMsg, botMsg, contextStr, c.clock.Now().Format(DatetimeLayout),
	)
	if err != nil {
		return fmt.Errorf("append chat turn: %w", err)
	}
	return nil
}

// RecentChatTurns returns up to limit turns in chronological order, oldest
// first, to seed the generative call's history window.
func (c *Client) RecentChatTurns(ctx context.Context, limit int) ([]models.ChatTurn, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, user_message, bot_response, context, timestamp
		FROM chat_history
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent chat turns: %w", err)
	}
	defer rows.Close()

	var turns []models.ChatTurn
	for rows.Next() {
		var t models.ChatTurn
		var ts string
		if err := rows.Scan(&t.ID, &t.UserMsg, &t.BotMsg, &t.Context, &ts); err != nil {
			return nil, fmt.Errorf("scan chat turn: %w", err)
		}
		t.Timestamp, _ = parseDatetime(ts)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}
