package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/jongio/logbar/cmdutil"
	"github.com/jongio/logbar/logutil"
	"github.com/jongio/logbar/notify"
	"github.com/jongio/logbar/progress"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		timeout  time.Duration
		dir      string
		notifyMe bool
	)
	cmd := &cobra.Command{
		Use:   "run -- command [args...]",
		Short: "Run a command, logging its output above a live status bar",
		Long: `run executes a command and logs each line it prints: stdout at INFO and stderr
at WARN. A status bar with the elapsed time stays below the output until the
command exits.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runCommand(cmd.Context(), a, args, dir, timeout)
			if notifyMe {
				n := notify.Notification{Title: args[0], Message: "finished", Level: logutil.LevelInfo}
				if err != nil {
					n.Message, n.Level = err.Error(), logutil.LevelError
				}
				sendNotification(context.WithoutCancel(cmd.Context()), a, n)
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", cmdutil.DefaultTimeout, "stop the command after this long")
	cmd.Flags().StringVar(&dir, "dir", "", "working directory for the command")
	cmd.Flags().BoolVar(&notifyMe, "notify", false, "send a desktop notification when the command exits")
	return cmd
}

func runCommand(ctx context.Context, a *app, args []string, dir string, timeout time.Duration) error {
	stdout := a.log.Writer(logutil.LevelInfo)
	stderr := a.log.Writer(logutil.LevelWarn)

	bar := a.log.PB(0).Title(args[0]).ShowLeftSteps(false).Attach()
	defer bar.Close()

	period := a.cfg.AnimationPeriod
	if period <= 0 {
		period = progress.DefaultAnimationPeriod
	}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				bar.Draw()
			}
		}
	}()

	err := cmdutil.StreamWithTimeout(ctx, args[0], args[1:], dir, stdout, stderr, timeout)
	close(done)
	stdout.Flush()
	stderr.Flush()

	if err != nil {
		a.log.Error("%s exited with code %d: %v", args[0], cmdutil.ExitCode(err), err)
		return err
	}
	a.log.Info("%s finished", args[0])
	return nil
}
