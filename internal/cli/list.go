package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/habitcal/internal/db"
)

var (
	listCategory string
	listPriority int
	listStart    string
	listEnd      string
	listSearch   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List habit events",
	Long: `List habit events with optional filtering.

Examples:
  habitcal list
  habitcal list --category fitness
  habitcal list --start 2026-09-01 --end 2026-09-30
  habitcal list --search run`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "filter by category")
	listCmd.Flags().IntVarP(&listPriority, "priority", "p", 0, "filter by priority")
	listCmd.Flags().StringVar(&listStart, "start", "", "earliest date YYYY-MM-DD")
	listCmd.Flags().StringVar(&listEnd, "end", "", "latest date YYYY-MM-DD")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "substring of habit or description")
}

func runList(cmd *cobra.Command, args []string) error {
	events, err := api.ListHabits(context.Background(), db.EventFilter{
		Category: listCategory,
		Priority: listPriority,
		Start:    listStart,
		End:      listEnd,
		Search:   listSearch,
	})
	if err != nil {
		return fmt.Errorf("list habits: %w", err)
	}

	if len(events) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	for _, ev := range events {
		slot := ev.Start
		if ev.AllDay {
			slot += " (all day)"
		}
		category := ev.ExtendedProps["category"]
		fmt.Printf("%4d  %-30s %s [%v]\n", ev.ID, ev.Title, slot, category)
	}
	return nil
}
