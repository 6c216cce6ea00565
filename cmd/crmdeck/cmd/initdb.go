package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/crmdeck/crmdeck/internal/store"
)

var seedDemo bool

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Initialize the database schema",
	Long: `Initialize the crmdeck database with the required schema.

This command creates the persons, activities, and saved-filter tables.
It is safe to run multiple times - tables are only created if they
don't already exist.

With --demo, a small set of sample wedding records is inserted so the
TUI has something to show. Seeding is refused on a non-empty database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := cfg.DatabasePath()
		logger.Info("initializing database", "path", dbPath)

		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		if err := s.InitSchema(); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}

		if seedDemo {
			if err := s.SeedDemo(time.Now()); err != nil {
				return fmt.Errorf("seed demo data: %w", err)
			}
			logger.Info("demo data seeded")
		}

		stats, err := s.GetStats()
		if err != nil {
			return fmt.Errorf("get stats: %w", err)
		}

		fmt.Printf("Database: %s\n", dbPath)
		fmt.Printf("  Persons:    %d\n", stats.PersonCount)
		fmt.Printf("  Activities: %d\n", stats.ActivityCount)
		fmt.Printf("  Filters:    %d\n", stats.FilterCount)
		fmt.Printf("  Size:       %.2f MB\n", float64(stats.DatabaseSize)/(1024*1024))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(initDBCmd)
	initDBCmd.Flags().BoolVar(&seedDemo, "demo", false, "Seed sample wedding records into an empty database")
}
