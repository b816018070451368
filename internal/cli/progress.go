package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show the trailing week's habit completion",
	RunE:  runProgress,
}

func runProgress(cmd *cobra.Command, args []string) error {
	line, err := api.Progress(context.Background())
	if err != nil {
		return fmt.Errorf("progress: %w", err)
	}
	fmt.Println(line)
	return nil
}
