package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/habitcal/internal/clock"
	"github.com/raphaelgruber/habitcal/internal/db"
)

var migrateDBPath string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	Long: `Open the database file directly and apply any pending schema
migrations. The server does this on startup too; this command exists for
preparing a database without starting the server.`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDBPath, "db", "habits.db", "path to the SQLite database file")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	store, err := db.NewClient(migrateDBPath, clock.System{}, logger)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	defer store.Close()

	fmt.Printf("Database at %s is up to date.\n", migrateDBPath)
	return nil
}
