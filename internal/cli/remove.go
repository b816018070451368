package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a habit event",
	Long: `Remove a habit event by id, including its tracking records and
calendar entry. Use 'habitcal list' to find ids.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("id must be a number: %q", args[0])
	}

	if err := api.RemoveHabit(context.Background(), id); err != nil {
		return fmt.Errorf("remove habit: %w", err)
	}

	fmt.Printf("Removed habit %d\n", id)
	return nil
}
