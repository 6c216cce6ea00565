package cmd

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/crmdeck/crmdeck/internal/local"
	"github.com/crmdeck/crmdeck/internal/query"
	"github.com/crmdeck/crmdeck/internal/remote"
	"github.com/crmdeck/crmdeck/internal/store"
	"github.com/crmdeck/crmdeck/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive terminal UI",
	Long: `Open the interactive terminal UI for browsing persons and activities.

When [remote] url is configured the TUI talks to that crmdeck server;
otherwise it opens the local database directly.

Navigation:
  ↑/k, ↓/j       Move up/down
  ←/h, →/l       Previous/next page
  tab/shift+tab  Cycle the date window
  f              Edit field filters
  F              Saved filters
  c              Columns and sort
  space          Select row
  d              Delete selected
  ?              Full keybinding help`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			return fmt.Errorf("tui requires an interactive terminal")
		}

		engine, err := buildEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		model := tui.New(engine, tui.Options{Version: Version})
		p := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("run TUI: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// buildEngine returns the data engine the config names: the remote client
// when a URL is set, the local database otherwise.
func buildEngine() (query.Engine, error) {
	if cfg.Remote.URL != "" {
		eng, err := remote.New(remote.Config{
			URL:           cfg.Remote.URL,
			APIKey:        cfg.Remote.APIKey,
			AllowInsecure: cfg.Remote.AllowInsecure,
			Timeout:       time.Duration(cfg.Remote.TimeoutSeconds) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to remote: %w", err)
		}
		return eng, nil
	}

	s, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := s.InitSchema(); err != nil {
		s.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return local.New(s), nil
}
