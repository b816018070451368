package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Theme holds the color scheme for the chat display.
type Theme struct {
	Prompt    lipgloss.Color
	Assistant lipgloss.Color
	Error     lipgloss.Color
	Hint      lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Prompt:    lipgloss.Color("#5FAFD7"), // light blue
	Assistant: lipgloss.Color("#00D787"), // green
	Error:     lipgloss.Color("#FF005F"), // red
	Hint:      lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) promptStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Prompt).Bold(true)
}

func (t Theme) assistantStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Assistant)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Chat with the habit assistant",
	Long: `Chat with the habit assistant. With a message argument, sends it and
prints the reply. Without arguments, opens an interactive conversation.

The assistant understands calendar commands directly:
  schedule meditation for tomorrow
  move meditation to 3:00 pm
  cancel meditation
  show my schedule for tomorrow

Everything else is answered by the configured language model.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// One-shot mode.
	if len(args) == 1 {
		reply, _, err := api.Chat(ctx, args[0], "")
		if err != nil {
			return fmt.Errorf("chat: %w", err)
		}
		fmt.Println(reply)
		return nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("interactive chat needs a terminal; pass a message argument instead")
	}

	theme := defaultTheme
	fmt.Println(theme.hintStyle().Render("Connected. Type a message, or 'exit' to quit."))

	// A websocket keeps one conversation session server-side; fall back to
	// per-request HTTP with an explicit session id if the upgrade fails.
	conn, err := api.OpenChat(ctx)
	if err != nil {
		fmt.Println(theme.hintStyle().Render("(websocket unavailable, using plain HTTP)"))
	} else {
		defer conn.Close()
	}

	scanner := bufio.NewScanner(os.Stdin)
	sessionID := ""
	for {
		fmt.Print(theme.promptStyle().Render("you> "))
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if message == "exit" || message == "quit" {
			return nil
		}

		var reply string
		if conn != nil {
			reply, err = conn.Send(message)
		} else {
			reply, sessionID, err = api.Chat(ctx, message, sessionID)
		}
		if err != nil {
			fmt.Println(theme.errorStyle().Render(fmt.Sprintf("✗ %v", err)))
			continue
		}
		fmt.Println(theme.assistantStyle().Render(reply))
	}
}
