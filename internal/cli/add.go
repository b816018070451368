package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/habitcal/internal/service"
)

var (
	addDate        string
	addStartTime   string
	addEndTime     string
	addDescription string
	addCategory    string
	addPriority    int
	addColor       string
	addRecurrence  string
)

var addCmd = &cobra.Command{
	Use:   "add <habit>",
	Short: "Add a habit event to the calendar",
	Long: `Add a habit event on a given date, optionally with a time range.

Examples:
  habitcal add "morning run" --date 2026-09-01 --start 07:00 --end 07:30
  habitcal add "read" --date 2026-09-01 --category learning --priority 2`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addDate, "date", "d", "", "date YYYY-MM-DD (required)")
	addCmd.Flags().StringVar(&addStartTime, "start", "", "start time HH:MM")
	addCmd.Flags().StringVar(&addEndTime, "end", "", "end time HH:MM")
	addCmd.Flags().StringVar(&addDescription, "description", "", "description")
	addCmd.Flags().StringVarP(&addCategory, "category", "c", "", "category")
	addCmd.Flags().IntVarP(&addPriority, "priority", "p", 0, "priority (1-3)")
	addCmd.Flags().StringVar(&addColor, "color", "", "custom calendar color, e.g. #ff0000")
	addCmd.Flags().StringVar(&addRecurrence, "recurrence", "", "recurrence pattern")
	_ = addCmd.MarkFlagRequired("date")
}

func runAdd(cmd *cobra.Command, args []string) error {
	ev, err := api.AddHabit(context.Background(), service.AddHabitRequest{
		Date:        addDate,
		Habit:       args[0],
		StartTime:   addStartTime,
		EndTime:     addEndTime,
		Description: addDescription,
		Category:    addCategory,
		Priority:    addPriority,
		Color:       addColor,
		Recurrence:  addRecurrence,
	})
	if err != nil {
		return fmt.Errorf("add habit: %w", err)
	}

	fmt.Printf("Added '%s' (id %d) on %s\n", ev.Title, ev.ID, ev.Start)
	return nil
}
