package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jongio/logbar/procutil"
	"github.com/jongio/logbar/progress"
)

func newProcsCmd(a *app) *cobra.Command {
	var (
		limit  int
		sortBy string
	)
	cmd := &cobra.Command{
		Use:   "procs",
		Short: "Sample running processes and print the busiest ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			order, err := procutil.ParseOrder(sortBy)
			if err != nil {
				return err
			}
			samples, err := sampleProcesses(cmd.Context(), a)
			if err != nil {
				return err
			}
			return printProcesses(a, samples, order, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 15, "number of processes to show (0 shows all)")
	cmd.Flags().StringVarP(&sortBy, "sort", "s", string(procutil.ByCPU), "sort by cpu, mem, pid or name")
	return cmd
}

// sampleProcesses inspects every running process behind a headless progress bar.
func sampleProcesses(ctx context.Context, a *app) ([]procutil.Sample, error) {
	pids, err := procutil.PIDs(ctx)
	if err != nil {
		return nil, err
	}

	bar := a.log.PB(len(pids)).Title("sampling processes")
	defer bar.Close()

	samples := make([]procutil.Sample, 0, len(pids))
	for _, pid := range progress.Over(bar, pids) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s, ok := procutil.Inspect(ctx, pid); ok {
			samples = append(samples, s)
		}
	}
	a.log.Debug("sampled %d of %d processes", len(samples), len(pids))
	return samples, nil
}

func printProcesses(a *app, samples []procutil.Sample, order procutil.Order, limit int) error {
	procutil.SortBy(samples, order)
	if limit > 0 && len(samples) > limit {
		samples = samples[:limit]
	}

	table, err := a.log.Columns("pid", map[string]any{"label": "name", "width": "40%"}, "cpu %", "rss", "mem %")
	if err != nil {
		return err
	}
	table.Render()
	for _, s := range samples {
		table.Info(s.PID, s.Name,
			fmt.Sprintf("%.1f", s.CPU),
			procutil.FormatBytes(s.RSS),
			fmt.Sprintf("%.1f", s.MemPercent))
	}
	return nil
}
