package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/crmdeck/crmdeck/internal/api"
	"github.com/crmdeck/crmdeck/internal/scheduler"
	"github.com/crmdeck/crmdeck/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the crmdeck API server",
	Long: `Run crmdeck as a long-running server over the local database.

The server exposes the paginated persons and activities collections,
saved filters, and bulk mutations over HTTP, so several planners can
point their TUIs at one shared database.

When [reminders] enabled = true, a cron-scheduled digest logs every
undone activity due on or before today.

Cron format: minute hour day-of-month month day-of-week
  Examples:
    0 8 * * *     = 8:00 AM daily
    */30 * * * *  = Every 30 minutes
    0 7 * * 1-5   = 7:00 AM on weekdays

Use Ctrl+C to stop the server gracefully.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Validate security posture before doing any work
	if err := cfg.Server.ValidateSecure(); err != nil {
		return err
	}

	s, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()

	if err := s.InitSchema(); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	var sched *scheduler.Scheduler
	if cfg.Reminders.Enabled {
		digest := scheduler.NewDigest(s, logger, cfg.Reminders.Limit, nil)
		sched = scheduler.New(digest).WithLogger(logger)
		if err := sched.Schedule(cfg.Reminders.Schedule); err != nil {
			return err
		}
		sched.Start()
	}

	// The API takes a nil scheduler when reminders are disabled; passing a
	// typed nil pointer through the interface would defeat its nil checks.
	var apiSched api.ReminderScheduler
	if sched != nil {
		apiSched = sched
	}
	apiServer := api.NewServer(cfg, s, apiSched, logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	bindAddr := cfg.Server.BindAddr
	if bindAddr == "" {
		bindAddr = "127.0.0.1"
	}
	fmt.Printf("crmdeck server started\n")
	fmt.Printf("  API server: http://%s\n", net.JoinHostPort(bindAddr, strconv.Itoa(cfg.Server.APIPort)))
	fmt.Printf("  Database:   %s\n", cfg.DatabasePath())
	if sched != nil {
		fmt.Printf("  Reminders:  %s (next %s)\n", cfg.Reminders.Schedule,
			sched.NextRun().Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop.")

	select {
	case <-cmd.Context().Done():
		logger.Info("shutdown requested")
		fmt.Println("\nShutting down...")
	case err := <-serverErr:
		logger.Error("API server error", "error", err)
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("API server shutdown error", "error", err)
	}

	if sched != nil {
		fmt.Println("Waiting for running digest to complete...")
		select {
		case <-sched.Stop().Done():
		case <-time.After(30 * time.Second):
			fmt.Println("Shutdown timed out after 30 seconds.")
		}
	}

	fmt.Println("Shutdown complete.")
	return nil
}
