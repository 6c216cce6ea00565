package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/crmdeck/crmdeck/internal/filters"
	"github.com/crmdeck/crmdeck/internal/query"
)

var filtersScreen string

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "List saved filters",
	Long: `List the saved filters of a screen, system filters included.

System filters are generated in-process (for example "overdue" on the
activities screen) and cannot be deleted; custom filters are the ones
saved from the TUI with w.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		screen, ok := query.ParseScreen(filtersScreen)
		if !ok {
			return fmt.Errorf("unknown screen %q (use persons or activities)", filtersScreen)
		}

		engine, err := buildEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		list, err := filters.New(engine, screen, nil).List(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tKIND\tCONDITIONS")
		for _, f := range list {
			kind := "custom"
			if f.IsSystem {
				kind = "system"
			}
			conds := ""
			for i, c := range f.Conditions {
				if i > 0 {
					conds += ", "
				}
				conds += fmt.Sprintf("%s %s %s", c.Field, c.Operator, c.Value)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", f.Name, kind, conds)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(filtersCmd)
	filtersCmd.Flags().StringVar(&filtersScreen, "screen", "activities", "Screen to list filters for (persons or activities)")
}
