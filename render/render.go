// Package render arbitrates every write to the terminal. A Renderer owns one mutex that
// serializes log lines, column rows and progress-bar frames, and it tracks the block of
// progress bars currently on screen so each write can reposition the cursor around it.
package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/jongio/logbar/cliout"
	"github.com/jongio/logbar/logutil"
	"github.com/jongio/logbar/metrics"
	"github.com/jongio/logbar/terminal"
)

// Cursor control sequences.
const (
	eraseLine = "\033[2K"
	eraseEOL  = "\033[K"
)

// Frame is a unit that renders to exactly one terminal row.
type Frame interface {
	// Snapshot renders the frame for a terminal of the given width (0 = unknown).
	Snapshot(columns int) string
	// Closed reports whether the frame is finished. Closed frames are never drawn.
	Closed() bool
}

// Renderer serializes terminal writes and composites the progress-bar block.
//
// The block is the attached frames in attach order, followed by the most recently drawn
// headless frame if there is one. While a block is on screen the cursor rests on its last
// row; every row is written from a carriage return so the column does not matter.
type Renderer struct {
	mu      sync.Mutex
	out     io.Writer
	size    terminal.SizeFunc
	tty     bool
	metrics *metrics.Recorder

	stack       []Frame
	headless    Frame
	lastActive  Frame
	rows        int // rows of the block currently on screen
	lastColumns int // terminal width the block was last laid out for
	widest      int // widest line written while the width was unknown
	buf         bytes.Buffer
	writeErr    bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSize overrides the terminal size query.
func WithSize(fn terminal.SizeFunc) Option {
	return func(r *Renderer) {
		if fn != nil {
			r.size = fn
		}
	}
}

// WithInteractive overrides TTY detection for the output stream.
func WithInteractive(tty bool) Option {
	return func(r *Renderer) {
		r.tty = tty
	}
}

// WithMetrics records frame metrics on rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(r *Renderer) {
		r.metrics = rec
	}
}

// New creates a Renderer writing to out.
func New(out io.Writer, opts ...Option) *Renderer {
	r := &Renderer{
		out:  out,
		size: terminal.SizeOf(out),
		tty:  terminal.IsTerminal(out),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var (
	defaultOnce     sync.Once
	defaultRenderer *Renderer
)

// Default returns the process-wide Renderer on stdout. It is created on first use and
// lives until the process exits.
func Default() *Renderer {
	defaultOnce.Do(func() {
		defaultRenderer = New(os.Stdout)
	})
	return defaultRenderer
}

// Columns queries the current terminal width. Zero means unknown.
func (r *Renderer) Columns() int {
	cols, _ := r.size()
	if cols < 0 {
		return 0
	}
	return cols
}

// Interactive reports whether output goes to a terminal with color enabled.
func (r *Renderer) Interactive() bool {
	return r.tty && cliout.ColorEnabled()
}

// Metrics returns the recorder, which may be nil.
func (r *Renderer) Metrics() *metrics.Recorder {
	return r.metrics
}

// Attach appends f to the stack and repaints the block. Attaching a closed or already
// attached frame is a no-op.
func (r *Renderer) Attach(f Frame) {
	if f == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked()
	if f.Closed() || r.indexLocked(f) >= 0 {
		return
	}
	if r.headless == f {
		r.headless = nil
	}
	r.stack = append(r.stack, f)
	r.metrics.Attached(len(r.stack))
	logutil.NewLogger("render").Debug("frame attached", "frames", len(r.stack))

	r.paintLocked(nil, r.Columns())
}

// Detach removes f from the block and repaints what remains, blanking vacated rows.
// Detaching a frame that is not on screen is a no-op.
func (r *Renderer) Detach(f Frame) {
	if f == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if idx := r.indexLocked(f); idx >= 0 {
		r.stack = slices.Delete(r.stack, idx, idx+1)
		r.metrics.Attached(len(r.stack))
		logutil.NewLogger("render").Debug("frame detached", "frames", len(r.stack))
	} else if r.headless == f {
		r.headless = nil
	} else {
		return
	}
	if r.lastActive == f {
		r.lastActive = nil
	}

	r.pruneLocked()
	r.paintLocked(nil, r.Columns())
}

// Attached reports whether f is on the stack.
func (r *Renderer) Attached(f Frame) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexLocked(f) >= 0
}

// Len returns the number of attached frames.
func (r *Renderer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stack)
}

// Rows returns the number of rows the block occupies on screen.
func (r *Renderer) Rows() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows
}

// LastActive returns the most recently drawn open frame, or nil.
func (r *Renderer) LastActive() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	return r.lastActive
}

// RenderStack repaints the whole block. Lines in precomputed are used as-is for their
// frames; other frames are asked for a fresh snapshot. columns <= 0 queries the terminal.
func (r *Renderer) RenderStack(precomputed map[Frame]string, columns int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderStackLocked(precomputed, columns)
}

// renderStackLocked is RenderStack for callers already holding r.mu.
func (r *Renderer) renderStackLocked(precomputed map[Frame]string, columns int) {
	if columns <= 0 {
		columns = r.Columns()
	}
	r.pruneLocked()
	r.paintLocked(precomputed, columns)
}

// Draw shows line as f's current frame. An attached frame has only its own row rewritten
// when the block on screen is up to date. A frame that is not attached is drawn headless
// as the last row of the block. Drawing a closed frame is a no-op.
func (r *Renderer) Draw(f Frame, line string) {
	if f == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked()
	if f.Closed() {
		return
	}
	r.lastActive = f

	columns := r.Columns()
	if r.indexLocked(f) < 0 && r.headless != f {
		r.headless = f
		r.paintLocked(map[Frame]string{f: line}, columns)
		return
	}

	// After a resize every row of the block is laid out for the old width.
	visible := r.visibleLocked()
	pos := slices.Index(visible, f)
	if r.rows != len(visible) || pos < 0 || columns != r.lastColumns {
		r.paintLocked(map[Frame]string{f: line}, columns)
		return
	}

	up := r.rows - 1 - pos
	b := &r.buf
	b.Reset()
	if up > 0 {
		fmt.Fprintf(b, "\033[%dA", up)
	}
	b.WriteString(rowStart(columns))
	b.WriteString(r.fitLocked(line, columns))
	if up > 0 {
		fmt.Fprintf(b, "\033[%dB", up)
	}
	r.flushLocked(metrics.FrameRow)
}

// WriteLines writes lines atomically above the block and repaints the block below them.
// Without a block the lines are written as-is.
func (r *Renderer) WriteLines(lines ...string) {
	if len(lines) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked()
	columns := r.Columns()

	b := &r.buf
	b.Reset()
	if r.rows > 0 {
		r.rewindLocked(b)
	}

	written := 0
	for _, line := range lines {
		b.WriteString(r.fitLogLocked(line, columns))
		b.WriteByte('\n')
		written += physicalRows(line, columns)
	}

	// The cursor now sits below the log lines, on whatever rows of the old block
	// were not overwritten.
	r.rows = max(0, r.rows-written)
	r.writeBlockLocked(b, nil, columns)
	r.flushLocked(metrics.FrameLog)
}

// paintLocked rewinds to the top of the block and redraws it.
func (r *Renderer) paintLocked(precomputed map[Frame]string, columns int) {
	if r.rows == 0 && len(r.visibleLocked()) == 0 {
		return
	}

	b := &r.buf
	b.Reset()
	r.rewindLocked(b)
	r.writeBlockLocked(b, precomputed, columns)
	r.flushLocked(metrics.FrameStack)
}

// rewindLocked moves the cursor up to the block's first row. Whatever is written next
// starts with a carriage return.
func (r *Renderer) rewindLocked(b *bytes.Buffer) {
	if r.rows > 1 {
		fmt.Fprintf(b, "\033[%dA", r.rows-1)
	}
}

// writeBlockLocked writes every visible frame starting at the cursor row, then blanks the
// rows of the previous block that are no longer used. r.rows must hold the number of old
// block rows from the cursor row down; on return it holds the new block height.
func (r *Renderer) writeBlockLocked(b *bytes.Buffer, precomputed map[Frame]string, columns int) {
	visible := r.visibleLocked()
	for i, f := range visible {
		if i > 0 {
			b.WriteByte('\n')
		}
		line, ok := precomputed[f]
		if !ok {
			line = f.Snapshot(columns)
		}
		b.WriteString(rowStart(columns))
		b.WriteString(r.fitLocked(line, columns))
	}

	n := len(visible)
	if vacated := r.rows - n; vacated > 0 {
		for i := 0; i < vacated; i++ {
			if n > 0 || i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString("\r" + eraseLine)
		}
		up := vacated
		if n == 0 {
			up = vacated - 1
		}
		if up > 0 {
			fmt.Fprintf(b, "\033[%dA", up)
		}
	}
	r.rows = n
	r.lastColumns = columns
}

// rowStart returns to column 0 of the cursor row. With a known width it also erases the
// row, since cells beyond a narrower terminal's margin keep their old text.
func rowStart(columns int) string {
	if columns > 0 {
		return "\r" + eraseLine
	}
	return "\r"
}

// fitLocked sizes a frame line: exactly the terminal width when known, otherwise padded
// to the widest line written so far so a shorter frame covers a longer one.
func (r *Renderer) fitLocked(line string, columns int) string {
	if columns > 0 {
		return cliout.Fit(line, columns)
	}
	w := cliout.Width(line)
	if w > r.widest {
		r.widest = w
		return line
	}
	return cliout.Pad(line, r.widest)
}

// fitLogLocked sizes a log line. Log lines are never truncated. With a known width the
// line stops one cell short of the margin and the rest of its last row is erased, so no
// cell of a wider frame survives underneath.
func (r *Renderer) fitLogLocked(line string, columns int) string {
	if columns <= 0 {
		return "\r" + cliout.Pad(line, r.widest)
	}
	return "\r" + cliout.Pad(line, columns-1) + eraseEOL
}

// physicalRows returns how many terminal rows line occupies once wrapped.
func physicalRows(line string, columns int) int {
	if columns <= 0 {
		return 1
	}
	w := cliout.Width(line)
	if w <= columns {
		return 1
	}
	return (w + columns - 1) / columns
}

// flushLocked writes the assembled buffer in a single call.
func (r *Renderer) flushLocked(kind string) {
	if r.buf.Len() == 0 {
		return
	}
	n, err := r.out.Write(r.buf.Bytes())
	r.buf.Reset()
	if err != nil {
		if !r.writeErr {
			r.writeErr = true
			logutil.NewLogger("render").Error("terminal write failed", "error", err)
		}
		return
	}
	r.metrics.Frame(kind, n)
}

// visibleLocked returns the frames of the block in row order.
func (r *Renderer) visibleLocked() []Frame {
	visible := slices.Clone(r.stack)
	if r.headless != nil && r.indexLocked(r.headless) < 0 {
		visible = append(visible, r.headless)
	}
	return visible
}

// pruneLocked drops closed frames so they are never drawn again.
func (r *Renderer) pruneLocked() {
	before := len(r.stack)
	r.stack = slices.DeleteFunc(r.stack, Frame.Closed)
	if len(r.stack) != before {
		r.metrics.Attached(len(r.stack))
	}
	if r.headless != nil && r.headless.Closed() {
		r.headless = nil
	}
	if r.lastActive != nil && r.lastActive.Closed() {
		r.lastActive = nil
	}
}

func (r *Renderer) indexLocked(f Frame) int {
	return slices.Index(r.stack, f)
}
