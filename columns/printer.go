// Package columns lays out log rows in aligned, bordered columns.
//
// A Printer negotiates one width per slot: it starts from a target table width (an explicit
// hint, else the terminal width minus the log gutter, else the smallest width that fits the
// labels), honors per-column width hints, and spreads the rest evenly over unhinted columns.
// Slots only ever grow, so rows printed earlier stay aligned with rows printed later.
package columns

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/jongio/logbar/cliout"
	"github.com/jongio/logbar/logutil"
	"github.com/jongio/logbar/terminal"
)

const (
	// DefaultPadding is the number of spaces on each side of a cell.
	DefaultPadding = 2
	// Gutter is the width taken by the level label and its separators on every log line.
	Gutter = logutil.LabelWidth + 2
)

// Sink receives the lines of one row group. Implementations must write them atomically.
type Sink interface {
	Emit(level logutil.Level, lines ...string)
}

// Printer formats rows into aligned columns. It is safe for concurrent use.
type Printer struct {
	mu   sync.Mutex
	sink Sink
	size terminal.SizeFunc

	padding       int
	target        *WidthHint
	specs         []Spec
	slotWidths    []int
	slotPadding   []int
	specStarts    []int
	lastWasBorder bool
	currentTotal  int
}

// Option configures a Printer.
type Option func(*Printer) error

// WithPadding sets the spaces on each side of a cell. Negative values mean zero.
func WithPadding(n int) Option {
	return func(p *Printer) error {
		p.padding = max(0, n)
		return nil
	}
}

// WithWidth sets the target table width; see ParseWidth for accepted values.
func WithWidth(hint any) Option {
	return func(p *Printer) error {
		h, err := ParseWidth(hint)
		if err != nil {
			return err
		}
		p.target = h
		return nil
	}
}

// WithSize overrides the terminal size query.
func WithSize(fn terminal.SizeFunc) Option {
	return func(p *Printer) error {
		if fn != nil {
			p.size = fn
		}
		return nil
	}
}

// New creates a Printer writing to sink. Each header is parsed with ParseSpec.
func New(sink Sink, headers []any, opts ...Option) (*Printer, error) {
	p := &Printer{
		sink:    sink,
		size:    terminal.Size,
		padding: DefaultPadding,
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	specs := make([]Spec, 0, len(headers))
	for i, h := range headers {
		spec, err := ParseSpec(h)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		specs = append(specs, spec)
	}
	if len(specs) > 0 {
		p.specs = specs
		p.recomputeLayoutLocked()
		p.applyInitialWidthsLocked()
		p.applyHeaderWidthsLocked()
	}
	return p, nil
}

// Widths returns the slot widths.
func (p *Printer) Widths() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.slotWidths)
}

// Padding returns the configured cell padding.
func (p *Printer) Padding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.padding
}

// Specs returns a copy of the column definitions.
func (p *Printer) Specs() []Spec {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Spec, len(p.specs))
	for i, s := range p.specs {
		out[i] = s.clone()
	}
	return out
}

// Width returns the rendered line width, or the target width before any layout.
func (p *Printer) Width() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.currentTotal > 0 {
		return p.currentTotal
	}
	return p.targetWidthLocked()
}

// SetWidth changes the target table width and lays the columns out again. Slots never
// shrink, so a smaller target only affects columns that have not grown yet.
func (p *Printer) SetWidth(hint any) error {
	h, err := ParseWidth(hint)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.target = h
	p.applyInitialWidthsLocked()
	p.applyHeaderWidthsLocked()
	return nil
}

// Render emits the header row at LevelInfo.
func (p *Printer) Render() string { return p.RenderLevel(logutil.LevelInfo) }

// RenderLevel emits the header row at level and returns it. Without columns it emits
// nothing and returns "".
func (p *Printer) RenderLevel(level logutil.Level) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.specs) == 0 {
		return ""
	}
	p.applyHeaderWidthsLocked()
	row := p.renderHeaderLocked()
	p.emitLocked(level, row)
	return row
}

// Debug, Info, Warn, Error and Critical emit a data row at their level.
func (p *Printer) Debug(values ...any) string    { return p.Log(logutil.LevelDebug, values...) }
func (p *Printer) Info(values ...any) string     { return p.Log(logutil.LevelInfo, values...) }
func (p *Printer) Warn(values ...any) string     { return p.Log(logutil.LevelWarn, values...) }
func (p *Printer) Error(values ...any) string    { return p.Log(logutil.LevelError, values...) }
func (p *Printer) Critical(values ...any) string { return p.Log(logutil.LevelCritical, values...) }

// Log emits one data row at level and returns it. Missing values render as empty cells;
// extra values widen the last column's span.
func (p *Printer) Log(level logutil.Level, values ...any) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	cells := p.prepareValuesLocked(values)
	if len(cells) == 0 {
		return ""
	}
	p.updateSlotWidthsLocked(cells)
	row := p.renderRowLocked(cells)
	p.emitLocked(level, row)
	return row
}

// Reserve grows the slots to fit values without emitting anything. Reserving every row
// before rendering the header keeps the whole table aligned.
func (p *Printer) Reserve(values ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cells := p.prepareValuesLocked(values); len(cells) > 0 {
		p.updateSlotWidthsLocked(cells)
		p.applyHeaderWidthsLocked()
	}
}

// emitLocked sends [border] row border as one group. The leading border is dropped when
// the previous group already ended with one.
func (p *Printer) emitLocked(level logutil.Level, row string) {
	border := p.borderLocked()
	lines := make([]string, 0, 3)
	if !p.lastWasBorder {
		lines = append(lines, border)
	}
	lines = append(lines, row, border)
	p.lastWasBorder = true
	p.sink.Emit(level, lines...)
}

func (p *Printer) prepareValuesLocked(values []any) []string {
	p.ensureSlotsLocked(len(values))
	cells := make([]string, len(p.slotWidths))
	for i := range min(len(values), len(cells)) {
		cells[i] = fmt.Sprint(values[i])
	}
	return cells
}

func (p *Printer) updateSlotWidthsLocked(cells []string) {
	for i, cell := range cells {
		if w := cliout.Width(cell); w > p.slotWidths[i] {
			p.slotWidths[i] = w
		}
	}
	p.currentTotal = p.lineWidthLocked()
}

func (p *Printer) renderHeaderLocked() string {
	cells := make([]string, len(p.specs))
	for i, spec := range p.specs {
		start := p.specStarts[i]
		left := p.slotPadding[start]
		right := p.slotPadding[start+spec.Span-1]
		inner := max(0, p.columnWidthLocked(i)-left-right)
		cells[i] = strings.Repeat(" ", left) + cliout.Pad(spec.Label, inner) + strings.Repeat(" ", right)
	}
	return "|" + strings.Join(cells, "|") + "|"
}

func (p *Printer) renderRowLocked(values []string) string {
	cells := make([]string, len(p.slotWidths))
	for i, width := range p.slotWidths {
		pad := strings.Repeat(" ", p.slotPadding[i])
		cells[i] = pad + cliout.Pad(values[i], width) + pad
	}
	return "|" + strings.Join(cells, "|") + "|"
}

func (p *Printer) borderLocked() string {
	segments := make([]string, len(p.slotWidths))
	for i, width := range p.slotWidths {
		segments[i] = strings.Repeat("-", max(1, width)+2*p.slotPadding[i])
	}
	return "+" + strings.Join(segments, "+") + "+"
}
