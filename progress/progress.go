package progress

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jongio/logbar/cliout"
	"github.com/jongio/logbar/logutil"
	"github.com/jongio/logbar/render"
)

// Layout constants.
const (
	// fallbackWidth is the bar width used when the terminal width is unknown.
	fallbackWidth = 20
	// separatorWidth is the width of the "| " between the bar and the status.
	separatorWidth = 2
	// DefaultAnimationPeriod is how long each title character stays highlighted.
	DefaultAnimationPeriod = 100 * time.Millisecond
)

// Mode controls whether iteration draws the bar.
type Mode int

const (
	// ModeAuto draws the bar at the start of every iteration step.
	ModeAuto Mode = iota
	// ModeManual never draws during iteration; the caller calls Draw.
	ModeManual
)

func (m Mode) String() string {
	if m == ModeManual {
		return "MANUAL"
	}
	return "AUTO"
}

// Warner receives non-fatal misuse warnings. The logbar logger satisfies it.
type Warner interface {
	Warn(format string, args ...any)
}

// Sized is anything that knows its length.
type Sized interface {
	Len() int
}

// Bar is a single-row progress bar. It implements render.Frame.
type Bar struct {
	mu sync.Mutex
	r  *render.Renderer

	total           int
	step            int
	title           string
	subtitle        string
	maxTitle        int
	maxSubtitle     int
	style           Style
	fill            rune
	showLeftSteps   bool
	leftStepsOffset int
	mode            Mode
	iterating       bool
	closed          bool

	now        func() time.Time
	start      time.Time
	animStart  time.Time
	animPeriod time.Duration
	limiter    *rate.Limiter

	warner         Warner
	warnedTitle    bool
	warnedSubtitle bool
}

// Option configures a Bar.
type Option func(*Bar)

// WithWarner routes misuse warnings to w.
func WithWarner(w Warner) Option {
	return func(b *Bar) {
		b.warner = w
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Bar) {
		if now != nil {
			b.now = now
		}
	}
}

// WithMaxRate caps AUTO-mode redraws to perSecond. The final step always draws.
// Zero or less removes the cap.
func WithMaxRate(perSecond float64) Option {
	return func(b *Bar) {
		if perSecond <= 0 {
			b.limiter = nil
			return
		}
		b.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithStyle selects a named style. Unknown names keep the default style.
func WithStyle(name string) Option {
	return func(b *Bar) {
		s, err := LookupStyle(name)
		if err != nil {
			logutil.NewLogger("progress").Warn("ignoring style", "error", err)
			return
		}
		b.style = s
	}
}

// WithAnimationPeriod sets how long each title character stays highlighted.
func WithAnimationPeriod(d time.Duration) Option {
	return func(b *Bar) {
		if d > 0 {
			b.animPeriod = d
		}
	}
}

// New creates a bar of total steps drawn through r. A nil r uses render.Default.
// A total of zero or less is undefined: the percentage stays at 0.0.
func New(r *render.Renderer, total int, opts ...Option) *Bar {
	if r == nil {
		r = render.Default()
	}
	b := &Bar{
		r:             r,
		total:         total,
		style:         styles[DefaultStyle],
		showLeftSteps: true,
		now:           time.Now,
		animPeriod:    DefaultAnimationPeriod,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.start = b.now()
	b.animStart = b.start
	return b
}

// NewSized creates a bar whose total is s.Len(), read once.
func NewSized(r *render.Renderer, s Sized, opts ...Option) *Bar {
	total := 0
	if s != nil {
		total = s.Len()
	}
	return New(r, total, opts...)
}

// Title sets the title shown before the bar.
func (b *Bar) Title(title string) *Bar {
	b.mu.Lock()
	warn := b.shouldWarnLocked(&b.warnedTitle)
	if b.title == "" && title != "" {
		b.animStart = b.now()
	}
	b.title = title
	b.maxTitle = max(b.maxTitle, cliout.Width(title))
	b.mu.Unlock()

	if warn {
		b.warn("progress: title should not change after iteration has started unless in MANUAL render mode")
	}
	return b
}

// Subtitle sets the text shown between the title and the bar.
func (b *Bar) Subtitle(subtitle string) *Bar {
	b.mu.Lock()
	warn := b.shouldWarnLocked(&b.warnedSubtitle)
	b.subtitle = subtitle
	b.maxSubtitle = max(b.maxSubtitle, cliout.Width(subtitle))
	b.mu.Unlock()

	if warn {
		b.warn("progress: subtitle should not change after iteration has started unless in MANUAL render mode")
	}
	return b
}

// shouldWarnLocked reports whether a mid-iteration mutation should warn, at most once per flag.
func (b *Bar) shouldWarnLocked(warned *bool) bool {
	if !b.iterating || b.mode == ModeManual || *warned {
		return false
	}
	*warned = true
	return true
}

// warn must be called without b.mu held: the warner writes through the renderer, which
// snapshots every visible bar.
func (b *Bar) warn(msg string) {
	if b.warner != nil {
		b.warner.Warn("%s", msg)
		return
	}
	logutil.NewLogger("progress").Warn(msg)
}

// Set configures the left step counter.
func (b *Bar) Set(showLeftSteps bool, leftStepsOffset int) *Bar {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.showLeftSteps = showLeftSteps
	b.leftStepsOffset = leftStepsOffset
	return b
}

// ShowLeftSteps toggles the "[step of total]" counter before the bar.
func (b *Bar) ShowLeftSteps(show bool) *Bar {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.showLeftSteps = show
	return b
}

// LeftStepsOffset is subtracted from both numbers of the left step counter.
func (b *Bar) LeftStepsOffset(offset int) *Bar {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.leftStepsOffset = offset
	return b
}

// Fill overrides the style's fill rune. Zero restores it.
func (b *Bar) Fill(fill rune) *Bar {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fill = fill
	return b
}

// Style switches to a named style.
func (b *Bar) Style(name string) error {
	s, err := LookupStyle(name)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.style = s
	b.mu.Unlock()
	return nil
}

// Mode sets the render mode.
func (b *Bar) Mode(m Mode) *Bar {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mode = m
	return b
}

// Auto switches to ModeAuto.
func (b *Bar) Auto() *Bar { return b.Mode(ModeAuto) }

// Manual switches to ModeManual.
func (b *Bar) Manual() *Bar { return b.Mode(ModeManual) }

// RenderMode returns the current render mode.
func (b *Bar) RenderMode() Mode {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mode
}

// Next advances the bar one step.
func (b *Bar) Next() *Bar {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.step++
	return b
}

// SetStep moves the bar to step n.
func (b *Bar) SetStep(n int) *Bar {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.step = n
	return b
}

// Step returns the current step.
func (b *Bar) Step() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.step
}

// Total returns the total step count.
func (b *Bar) Total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

// Percent returns the completion percentage with one decimal, "0.0" when the total is undefined.
func (b *Bar) Percent() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.percentLocked()
}

func (b *Bar) percentLocked() string {
	if b.total <= 0 {
		return "0.0"
	}
	return strconv.FormatFloat(100*float64(b.step)/float64(b.total), 'f', 1, 64)
}

// Closed reports whether the bar has been closed.
func (b *Bar) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Draw renders the bar at the renderer's width.
func (b *Bar) Draw() {
	columns := b.r.Columns()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	line := b.snapshotLocked(columns)
	b.mu.Unlock()

	b.r.Draw(b, line)
}

// Attach adds the bar to the renderer's stack. It is a no-op once closed.
func (b *Bar) Attach() *Bar {
	b.r.Attach(b)
	return b
}

// Detach removes the bar from the renderer's stack.
func (b *Bar) Detach() *Bar {
	b.r.Detach(b)
	return b
}

// Close marks the bar closed and removes it from the screen. It is safe to call more than once.
func (b *Bar) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.r.Detach(b)
	return nil
}

// Snapshot renders the bar for a terminal columns wide. Zero columns means unknown: the
// bar gets a fixed width and the line is not padded.
func (b *Bar) Snapshot(columns int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked(columns)
}

func (b *Bar) snapshotLocked(columns int) string {
	now := b.now()
	elapsed := now.Sub(b.start)

	var estimate time.Duration
	if b.step > 0 {
		estimate = time.Duration(float64(elapsed) * float64(b.total) / float64(b.step))
	}
	status := fmt.Sprintf("%s / %s [%d/%d] %s%%",
		formatDuration(elapsed), formatDuration(estimate), b.step, b.total, b.percentLocked())

	pre := 0
	if b.title != "" {
		pre += b.maxTitle + 1
	}
	if b.subtitle != "" {
		pre += b.maxSubtitle + 1
	}
	leftSteps := ""
	if b.showLeftSteps {
		leftSteps = fmt.Sprintf("[%d of %d] ", b.step-b.leftStepsOffset, b.total-b.leftStepsOffset)
		pre += cliout.Width(leftSteps)
	}

	width := fallbackWidth
	if columns > 0 {
		width = max(0, columns-pre-cliout.Width(status)-separatorWidth)
	}
	filled := width * max(b.step, 0) / max(b.total, 1)

	animate := b.r.Interactive()
	var sb strings.Builder
	if b.title != "" {
		if animate {
			sb.WriteString(b.animatedLocked(b.title, now))
		} else {
			sb.WriteString(b.title)
		}
		sb.WriteByte(' ')
	}
	if b.subtitle != "" {
		sb.WriteString(b.subtitle)
		sb.WriteByte(' ')
	}
	if b.title != "" {
		sb.WriteString(strings.Repeat(" ", b.maxTitle-cliout.Width(b.title)))
	}
	if b.subtitle != "" {
		sb.WriteString(strings.Repeat(" ", b.maxSubtitle-cliout.Width(b.subtitle)))
	}
	if leftSteps != "" {
		if b.title == "" && animate {
			sb.WriteString(b.animatedLocked(leftSteps, now))
		} else {
			sb.WriteString(leftSteps)
		}
	}
	sb.WriteString(b.style.render(width, filled, b.fill))
	sb.WriteString("| ")
	sb.WriteString(status)

	line := sb.String()
	if columns > 0 {
		line = cliout.Fit(line, columns)
	}
	return line
}

func (b *Bar) animatedLocked(text string, now time.Time) string {
	idx := cliout.HighlightIndex(now.Sub(b.animStart), b.animPeriod, len([]rune(text)))
	return cliout.Highlight(text, idx)
}

// advance is one iteration step. It reports whether the bar should be drawn.
func (b *Bar) advance() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.iterating = true
	b.step++
	if b.mode != ModeAuto || b.closed {
		return false
	}
	if b.limiter == nil || b.step >= b.total {
		return true
	}
	return b.limiter.AllowN(b.now(), 1)
}

// formatDuration renders d as H:MM:SS.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}
