package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jongio/logbar/logutil"
	"github.com/jongio/logbar/notify"
)

type barsOptions struct {
	workers int
	steps   int
	delay   time.Duration
	every   int
	notify  bool
}

func newBarsCmd(a *app) *cobra.Command {
	opts := barsOptions{}
	cmd := &cobra.Command{
		Use:   "bars",
		Short: "Run concurrent workers, each with its own progress bar",
		Long: `bars starts several workers that each advance an attached progress bar while
logging their milestones. Log lines scroll above the bars; the bars stay pinned
at the bottom of the terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBars(cmd.Context(), a, opts)
		},
	}
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 3, "number of concurrent workers")
	cmd.Flags().IntVarP(&opts.steps, "steps", "n", 50, "steps per worker")
	cmd.Flags().DurationVar(&opts.delay, "delay", 40*time.Millisecond, "time per step")
	cmd.Flags().IntVar(&opts.every, "log-every", 10, "log a milestone every N steps (0 disables)")
	cmd.Flags().BoolVar(&opts.notify, "notify", false, "send a desktop notification when done")
	return cmd
}

func runBars(ctx context.Context, a *app, opts barsOptions) error {
	if opts.workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", opts.workers)
	}
	if opts.steps < 0 {
		return fmt.Errorf("steps must not be negative, got %d", opts.steps)
	}

	start := time.Now()
	a.log.Info("starting %d workers with %d steps each", opts.workers, opts.steps)

	g, ctx := errgroup.WithContext(ctx)
	for i := range opts.workers {
		id := i + 1
		// Delays are staggered so the bars finish at different times.
		delay := opts.delay + time.Duration(i)*opts.delay/4
		g.Go(func() error {
			return runWorker(ctx, a, id, opts.steps, delay, opts.every)
		})
	}
	err := g.Wait()

	elapsed := time.Since(start).Round(time.Millisecond)
	level, msg := logutil.LevelInfo, fmt.Sprintf("%d workers finished in %s", opts.workers, elapsed)
	if err != nil {
		level, msg = logutil.LevelError, fmt.Sprintf("workers stopped after %s: %v", elapsed, err)
	}
	a.log.Log(level, "%s", msg)

	if opts.notify {
		sendNotification(context.WithoutCancel(ctx), a, notify.Notification{Title: "bars", Message: msg, Level: level})
	}
	return err
}

func runWorker(ctx context.Context, a *app, id, steps int, delay time.Duration, every int) error {
	bar := a.log.PB(steps).
		Title(fmt.Sprintf("worker %d", id)).
		Subtitle(fmt.Sprintf("%s/step", delay)).
		Attach()
	defer bar.Close()

	timer := time.NewTimer(delay)
	defer timer.Stop()
	for step := range bar.Iter() {
		select {
		case <-ctx.Done():
			a.log.Warn("worker %d canceled at step %d", id, step)
			return ctx.Err()
		case <-timer.C:
			timer.Reset(delay)
		}
		if every > 0 && (step+1)%every == 0 {
			a.log.Debug("worker %d reached step %d/%d", id, step+1, steps)
		}
	}
	a.log.Info("worker %d done", id)
	return nil
}

func sendNotification(ctx context.Context, a *app, n notify.Notification) {
	if a.notifier == nil {
		return
	}
	if err := a.notifier.Send(ctx, n); err != nil {
		a.log.Warn("desktop notification not sent: %v", err)
	}
}
