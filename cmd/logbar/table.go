package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jongio/logbar/columns"
)

type release struct {
	name    string
	started time.Duration
	took    time.Duration
	status  string
	note    string
}

var demoReleases = []release{
	{"api-gateway", 0, 42 * time.Second, "ok", ""},
	{"billing", 3 * time.Second, 1*time.Minute + 5*time.Second, "ok", "migrations applied"},
	{"search-indexer", 5 * time.Second, 3 * time.Minute, "slow", "reindex of 1.2M documents"},
	{"notifications", 9 * time.Second, 0, "failed", "health check timed out"},
	{"web", 12 * time.Second, 38 * time.Second, "ok", ""},
}

func newTableCmd(a *app) *cobra.Command {
	var width string
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print a column table with spans and width hints",
		Long: `table prints a release summary through the column printer. The "timing" header
spans two slots and the "service" column takes a percentage of the table width.
Columns grow as wider values arrive and never shrink.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			var opts []columns.Option
			if width != "" {
				opts = append(opts, columns.WithWidth(width))
			}
			return printReleases(a, opts)
		},
	}
	cmd.Flags().StringVar(&width, "width", "", `table width in characters or percent of the terminal (e.g. "80" or "75%")`)
	return cmd
}

func printReleases(a *app, opts []columns.Option) error {
	table, err := a.log.ColumnsWith(opts,
		map[string]any{"label": "service", "width": "30%"},
		map[string]any{"label": "timing", "span": 2},
		"status",
		"note",
	)
	if err != nil {
		return fmt.Errorf("building table: %w", err)
	}

	table.Render()
	for _, r := range demoReleases {
		took := r.took.String()
		if r.took == 0 {
			took = "-"
		}
		row := []any{r.name, "+" + r.started.String(), took, r.status, r.note}
		switch r.status {
		case "failed":
			table.Error(row...)
		case "slow":
			table.Warn(row...)
		default:
			table.Info(row...)
		}
	}
	a.log.Info("%d services released", len(demoReleases))
	return nil
}
