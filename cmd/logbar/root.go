package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jongio/logbar/cliout"
	"github.com/jongio/logbar/config"
	"github.com/jongio/logbar/logbar"
	"github.com/jongio/logbar/logutil"
	"github.com/jongio/logbar/metrics"
	"github.com/jongio/logbar/notify"
	"github.com/jongio/logbar/render"
	"github.com/jongio/logbar/version"
)

// app holds flag values and the objects built from them before a subcommand runs.
type app struct {
	configPath string
	level      string
	style      string
	noColor    bool
	debug      bool
	stats      bool
	output     string

	cfg      config.Config
	registry *prometheus.Registry
	renderer *render.Renderer
	log      *logbar.Logger
	notifier notify.Notifier

	// renderOpts are appended when the renderer is built. Tests pin the terminal size here.
	renderOpts []render.Option
}

func newApp() *app {
	return &app{notifier: notify.New(notify.DefaultConfig())}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "logbar",
		Short: "Log lines, tables and progress bars on one terminal",
		Long: `logbar shows how log lines, column tables and several concurrent progress bars
share a terminal without overwriting one another. Bars stay pinned below the log
while lines scroll above them.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file")
	flags.StringVar(&a.level, "level", "", "minimum log level (debug, info, warn, error, crit)")
	flags.StringVar(&a.style, "style", "", "progress bar style")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")
	flags.BoolVar(&a.debug, "debug", false, "write diagnostics to stderr")
	flags.BoolVar(&a.stats, "stats", false, "print render statistics on exit")
	flags.StringVarP(&a.output, "output", "o", "", "output format for version (json)")

	rootCmd.AddCommand(
		newBarsCmd(a),
		newTableCmd(a),
		newProcsCmd(a),
		newRunCmd(a),
		version.NewCommand(version.New("logbar"), &a.output),
	)
	return rootCmd
}

// setup resolves configuration in increasing priority: defaults, config file,
// environment, then flags given on the command line.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()

	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "level":
			cfg.Level = a.level
		case "style":
			cfg.Style = a.style
		case "no-color":
			cfg.NoColor = a.noColor
		case "debug":
			cfg.Debug = a.debug
		}
	})
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logutil.SetupLoggerWithWriter(cmd.ErrOrStderr(), cfg.Debug, false)
	if cfg.NoColor {
		cliout.NoColor()
	}

	a.cfg = cfg
	a.registry = prometheus.NewRegistry()
	opts := append([]render.Option{render.WithMetrics(metrics.NewRecorder(a.registry))}, a.renderOpts...)
	a.renderer = render.New(cmd.OutOrStdout(), opts...)
	a.log = logbar.FromConfig(a.renderer, cfg)

	logutil.Debug("configuration loaded", "path", a.configPath, "level", cfg.Level, "style", cfg.Style)
	return nil
}

func (a *app) teardown(_ *cobra.Command, _ []string) error {
	if !a.stats || a.registry == nil {
		return nil
	}
	return printStats(a.log, a.registry)
}

// printStats writes every collected series as a table row.
func printStats(log *logbar.Logger, reg prometheus.Gatherer) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gathering render statistics: %w", err)
	}

	table, err := log.Columns("metric", "labels", "value")
	if err != nil {
		return err
	}
	table.Render()
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := ""
			for i, lp := range m.GetLabel() {
				if i > 0 {
					labels += ","
				}
				labels += lp.GetName() + "=" + lp.GetValue()
			}
			value := m.GetCounter().GetValue()
			if g := m.GetGauge(); g != nil {
				value = g.GetValue()
			}
			table.Info(mf.GetName(), labels, fmt.Sprintf("%g", value))
		}
	}
	return nil
}
