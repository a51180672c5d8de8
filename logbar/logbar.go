package logbar

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jongio/logbar/cliout"
	"github.com/jongio/logbar/columns"
	"github.com/jongio/logbar/config"
	"github.com/jongio/logbar/logutil"
	"github.com/jongio/logbar/progress"
	"github.com/jongio/logbar/render"
)

// Logger writes leveled lines through a Renderer and hands out column printers and
// progress bars bound to the same Renderer.
type Logger struct {
	r       *render.Renderer
	history *History

	mu      sync.RWMutex
	level   logutil.Level
	noColor bool

	padding       int
	style         string
	fill          rune
	maxRate       float64
	animPeriod    time.Duration
	showLeftSteps bool
}

// Option configures a Logger.
type Option func(*Logger)

// WithLevel sets the threshold below which lines are dropped.
func WithLevel(level logutil.Level) Option {
	return func(l *Logger) { l.level = level }
}

// WithHistoryLimit sets how many distinct messages Once remembers.
func WithHistoryLimit(n int) Option {
	return func(l *Logger) { l.history = NewHistory(n) }
}

// WithNoColor disables the colored level labels.
func WithNoColor(noColor bool) Option {
	return func(l *Logger) { l.noColor = noColor }
}

// WithPadding sets the cell padding of column printers.
func WithPadding(n int) Option {
	return func(l *Logger) { l.padding = max(0, n) }
}

// WithBarStyle sets the style of progress bars.
func WithBarStyle(name string) Option {
	return func(l *Logger) { l.style = name }
}

// WithBarFill overrides the fill rune of progress bars.
func WithBarFill(fill rune) Option {
	return func(l *Logger) { l.fill = fill }
}

// WithBarMaxRate caps AUTO-mode bar redraws per second.
func WithBarMaxRate(perSecond float64) Option {
	return func(l *Logger) { l.maxRate = perSecond }
}

// WithAnimationPeriod sets the title animation step of progress bars.
func WithAnimationPeriod(d time.Duration) Option {
	return func(l *Logger) { l.animPeriod = d }
}

// WithLeftSteps toggles the "[step of total]" counter of progress bars.
func WithLeftSteps(show bool) Option {
	return func(l *Logger) { l.showLeftSteps = show }
}

// New creates a Logger on r. A nil r uses render.Default.
func New(r *render.Renderer, opts ...Option) *Logger {
	if r == nil {
		r = render.Default()
	}
	l := &Logger{
		r:             r,
		history:       NewHistory(DefaultHistoryLimit),
		level:         logutil.LevelDebug,
		padding:       columns.DefaultPadding,
		style:         progress.DefaultStyle,
		animPeriod:    progress.DefaultAnimationPeriod,
		showLeftSteps: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FromConfig creates a Logger on r configured by cfg.
func FromConfig(r *render.Renderer, cfg config.Config, opts ...Option) *Logger {
	base := []Option{
		WithLevel(cfg.LogLevel()),
		WithHistoryLimit(cfg.HistoryLimit),
		WithNoColor(cfg.NoColor),
		WithPadding(cfg.Padding),
		WithBarStyle(cfg.Style),
		WithBarFill(cfg.FillRune()),
		WithBarMaxRate(cfg.MaxRate),
		WithAnimationPeriod(cfg.AnimationPeriod),
		WithLeftSteps(cfg.ShowLeftSteps),
	}
	return New(r, append(base, opts...)...)
}

var (
	sharedOnce   sync.Once
	sharedLogger *Logger
)

// Shared returns the process-wide Logger on render.Default, configured from the
// environment on first use.
func Shared() *Logger {
	sharedOnce.Do(func() {
		cfg := config.Default()
		cfg.ApplyEnv()
		if err := cfg.Validate(); err != nil {
			logutil.Warn("ignoring invalid environment configuration", "error", err)
			cfg = config.Default()
		}
		sharedLogger = FromConfig(render.Default(), cfg)
	})
	return sharedLogger
}

// Renderer returns the Renderer the logger writes through.
func (l *Logger) Renderer() *render.Renderer {
	return l.r
}

// History returns the set backing Once.
func (l *Logger) History() *History {
	return l.history
}

// SetLevel changes the threshold.
func (l *Logger) SetLevel(level logutil.Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Level returns the threshold.
func (l *Logger) Level() logutil.Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// Enabled reports whether lines at level are written.
func (l *Logger) Enabled(level logutil.Level) bool {
	return level >= l.Level()
}

// Log writes a message at level. format is used verbatim when there are no args.
// Multi-line messages are written as one block with the label on the first line.
func (l *Logger) Log(level logutil.Level, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	parts := strings.Split(strings.TrimSuffix(msg, "\n"), "\n")
	lines := make([]string, len(parts))
	indent := strings.Repeat(" ", logutil.LabelWidth)
	for i, part := range parts {
		if i == 0 {
			lines[i] = l.label(level) + " " + part
		} else {
			lines[i] = indent + " " + part
		}
	}
	l.write(level, lines)
}

// Emit writes each line with its own level label, atomically.
func (l *Logger) Emit(level logutil.Level, lines ...string) {
	if len(lines) == 0 || !l.Enabled(level) {
		return
	}
	label := l.label(level)
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = label + " " + line
	}
	l.write(level, out)
}

func (l *Logger) write(level logutil.Level, lines []string) {
	l.r.WriteLines(lines...)
	if rec := l.r.Metrics(); rec != nil {
		for range lines {
			rec.LogLine(level.String())
		}
	}
}

func (l *Logger) label(level logutil.Level) string {
	l.mu.RLock()
	noColor := l.noColor
	l.mu.RUnlock()
	return level.Label(!noColor && cliout.ColorEnabled())
}

// Debug, Info, Warn, Error and Critical call Log at their level.
func (l *Logger) Debug(format string, args ...any)    { l.Log(logutil.LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...any)     { l.Log(logutil.LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...any)     { l.Log(logutil.LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...any)    { l.Log(logutil.LevelError, format, args...) }
func (l *Logger) Critical(format string, args ...any) { l.Log(logutil.LevelCritical, format, args...) }

// Once logs the message unless the same formatted message was logged by Once before.
// It reports whether the message was written.
func (l *Logger) Once(level logutil.Level, format string, args ...any) bool {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	if !l.history.Add(msg) {
		return false
	}
	l.Log(level, "%s", msg)
	return true
}

// Columns creates a column printer writing through the logger.
func (l *Logger) Columns(headers ...any) (*columns.Printer, error) {
	return l.ColumnsWith(nil, headers...)
}

// ColumnsWith is Columns with extra printer options.
func (l *Logger) ColumnsWith(opts []columns.Option, headers ...any) (*columns.Printer, error) {
	base := []columns.Option{
		columns.WithPadding(l.padding),
		columns.WithSize(func() (int, int) { return l.r.Columns(), 0 }),
	}
	return columns.New(l, headers, append(base, opts...)...)
}

// PB creates a progress bar of total steps on the logger's renderer. Misuse warnings are
// logged through the logger.
func (l *Logger) PB(total int, opts ...progress.Option) *progress.Bar {
	base := []progress.Option{
		progress.WithWarner(l),
		progress.WithStyle(l.style),
		progress.WithMaxRate(l.maxRate),
		progress.WithAnimationPeriod(l.animPeriod),
	}
	return progress.New(l.r, total, append(base, opts...)...).
		Fill(l.fill).
		ShowLeftSteps(l.showLeftSteps)
}

// PBSized creates a progress bar whose total is s.Len().
func (l *Logger) PBSized(s progress.Sized, opts ...progress.Option) *progress.Bar {
	total := 0
	if s != nil {
		total = s.Len()
	}
	return l.PB(total, opts...)
}
