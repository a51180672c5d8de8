package render

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jongio/logbar/cliout"
	"github.com/jongio/logbar/metrics"
	"github.com/jongio/logbar/terminal"
	"github.com/jongio/logbar/testutil"
)

type fakeFrame struct {
	mu     sync.Mutex
	text   string
	closed bool
}

func newFrame(text string) *fakeFrame {
	return &fakeFrame{text: text}
}

func (f *fakeFrame) Snapshot(int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text
}

func (f *fakeFrame) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeFrame) close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

// recorder keeps every Write call and mirrors it onto a virtual screen.
type recorder struct {
	mu     sync.Mutex
	writes []string
	screen *testutil.Screen
}

func (r *recorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	r.writes = append(r.writes, string(p))
	r.mu.Unlock()
	return r.screen.Write(p)
}

func (r *recorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.writes) == 0 {
		return ""
	}
	return r.writes[len(r.writes)-1]
}

func newTestRenderer(columns int, opts ...Option) (*Renderer, *recorder) {
	rec := &recorder{screen: testutil.NewScreen()}
	opts = append([]Option{WithSize(terminal.Fixed(columns, 24))}, opts...)
	return New(rec, opts...), rec
}

func TestAttach_PaintsStackInOrder(t *testing.T) {
	r, rec := newTestRenderer(40)
	a, b := newFrame("bar A"), newFrame("bar B")

	r.Attach(a)
	r.Attach(b)

	assert.Equal(t, []string{"bar A", "bar B"}, rec.screen.Lines())
	row, _ := rec.screen.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 2, r.Rows())
	assert.True(t, r.Attached(a))
}

func TestAttach_Idempotent(t *testing.T) {
	r, _ := newTestRenderer(40)
	a := newFrame("bar A")

	r.Attach(a)
	r.Attach(a)
	r.Attach(nil)

	assert.Equal(t, 1, r.Len())
}

// resizable is a terminal whose width can change between writes.
type resizable struct {
	mu      sync.Mutex
	columns int
}

func (s *resizable) size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.columns, 24
}

func (s *resizable) resize(columns int) {
	s.mu.Lock()
	s.columns = columns
	s.mu.Unlock()
}

func TestDraw_RepaintsWholeBlockAfterResize(t *testing.T) {
	term := &resizable{columns: 40}
	r, rec := newTestRenderer(0, WithSize(term.size))
	a, b := newFrame(strings.Repeat("A", 40)), newFrame(strings.Repeat("B", 40))
	r.Attach(a)
	r.Attach(b)
	require.Equal(t, []string{strings.Repeat("A", 40), strings.Repeat("B", 40)}, rec.screen.Lines())

	term.resize(20)
	r.Draw(b, strings.Repeat("B", 40))

	assert.Contains(t, rec.last(), "AAAA", "a width change repaints every row")
	assert.Equal(t, []string{strings.Repeat("A", 20), strings.Repeat("B", 20)}, rec.screen.Lines())

	r.Draw(b, "B")
	assert.NotContains(t, rec.last(), "AAAA", "same width rewrites one row again")
	assert.Equal(t, []string{strings.Repeat("A", 20), "B"}, rec.screen.Lines())
}

func TestRenderStack_ErasesRowsAfterShrink(t *testing.T) {
	term := &resizable{columns: 40}
	r, rec := newTestRenderer(0, WithSize(term.size))
	a := newFrame(strings.Repeat("A", 40))
	r.Attach(a)

	term.resize(20)
	r.RenderStack(nil, 0)

	assert.Equal(t, strings.Repeat("A", 20), rec.screen.Line(0))
	assert.Contains(t, rec.last(), eraseLine)
}

func TestPaint_SingleCarriageReturn(t *testing.T) {
	r, rec := newTestRenderer(40)
	r.Attach(newFrame("bar A"))
	r.Attach(newFrame("bar B"))
	r.WriteLines("log")

	for _, w := range rec.writes {
		assert.NotContains(t, w, "\r\r")
	}
}

func TestAttach_ClosedFrameIgnored(t *testing.T) {
	r, rec := newTestRenderer(40)
	a := newFrame("bar A")
	a.close()

	r.Attach(a)

	assert.Equal(t, 0, r.Len())
	assert.Empty(t, rec.writes)
}

func TestDraw_RewritesOnlyOwnRow(t *testing.T) {
	r, rec := newTestRenderer(40)
	a, b := newFrame("bar A"), newFrame("bar B")
	r.Attach(a)
	r.Attach(b)

	r.Draw(b, "bar B 50%")
	assert.NotContains(t, rec.last(), "bar A")
	assert.Equal(t, []string{"bar A", "bar B 50%"}, rec.screen.Lines())

	r.Draw(a, "bar A 10%")
	assert.NotContains(t, rec.last(), "bar B")
	assert.Equal(t, []string{"bar A 10%", "bar B 50%"}, rec.screen.Lines())

	row, _ := rec.screen.Cursor()
	assert.Equal(t, 1, row, "cursor rests on the last row of the block")
	assert.Equal(t, a, r.LastActive())
}

func TestDetach_ShiftsRowsAndBlanksVacated(t *testing.T) {
	r, rec := newTestRenderer(40)
	a, b := newFrame("bar A"), newFrame("bar B")
	r.Attach(a)
	r.Attach(b)

	r.Detach(a)

	assert.Equal(t, "bar B", rec.screen.Line(0))
	assert.Equal(t, "", rec.screen.Line(1))
	assert.Equal(t, 1, r.Rows())
	assert.False(t, r.Attached(a))

	r.Detach(b)
	assert.Equal(t, "", rec.screen.Text())
	assert.Equal(t, 0, r.Rows())

	n := len(rec.writes)
	r.Detach(b)
	assert.Len(t, rec.writes, n, "detaching an unknown frame writes nothing")
}

func TestWriteLines_AboveBlock(t *testing.T) {
	r, rec := newTestRenderer(40)
	a, b := newFrame("bar A"), newFrame("bar B")
	r.Attach(a)
	r.Attach(b)

	r.WriteLines("hello", "world")

	assert.Equal(t, []string{"hello", "world", "bar A", "bar B"}, rec.screen.Lines())
	row, _ := rec.screen.Cursor()
	assert.Equal(t, 3, row)
	assert.Equal(t, 2, r.Rows())
}

func TestWriteLines_NoBlock(t *testing.T) {
	r, rec := newTestRenderer(40)

	r.WriteLines("a", "b")
	r.WriteLines()

	assert.Equal(t, "a\nb", rec.screen.Text())
	assert.Len(t, rec.writes, 1)
}

func TestWriteLines_WrappedLineCoversBlock(t *testing.T) {
	r, rec := newTestRenderer(10)
	a, b := newFrame("bar A"), newFrame("bar B")
	r.Attach(a)
	r.Attach(b)

	r.WriteLines(strings.Repeat("x", 15))

	require.Equal(t, 2, r.Rows())
	assert.Contains(t, rec.last(), eraseEOL)
}

func TestHeadless_DrawnBelowAttached(t *testing.T) {
	r, rec := newTestRenderer(40)
	a, h := newFrame("bar A"), newFrame("headless")
	r.Attach(a)

	r.Draw(h, "headless 1")
	assert.Equal(t, []string{"bar A", "headless 1"}, rec.screen.Lines())

	r.Draw(h, "headless 2")
	assert.Equal(t, []string{"bar A", "headless 2"}, rec.screen.Lines())

	// Repainting after a log line takes a fresh snapshot.
	r.WriteLines("log")
	assert.Equal(t, []string{"log", "bar A", "headless"}, rec.screen.Lines())
}

func TestHeadless_ClosedFrameDisappears(t *testing.T) {
	r, rec := newTestRenderer(40)
	h := newFrame("loading")

	r.Draw(h, "loading")
	r.WriteLines("msg")
	assert.Equal(t, []string{"msg", "loading"}, rec.screen.Lines())

	h.close()
	r.WriteLines("next")
	assert.Equal(t, "msg\nnext", rec.screen.Text())
	assert.Nil(t, r.LastActive())
}

func TestHeadless_PromotedByAttach(t *testing.T) {
	r, rec := newTestRenderer(40)
	h := newFrame("bar")

	r.Draw(h, "bar")
	r.Attach(h)

	assert.Equal(t, []string{"bar"}, rec.screen.Lines())
	assert.Equal(t, 1, r.Rows())
}

func TestDraw_ClosedFrameIsNoop(t *testing.T) {
	r, rec := newTestRenderer(40)
	a := newFrame("bar A")
	r.Attach(a)
	a.close()

	n := len(rec.writes)
	r.Draw(a, "late")
	assert.Len(t, rec.writes, n)

	r.RenderStack(nil, 0)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, "", rec.screen.Text())
}

func TestRenderStack_UsesPrecomputed(t *testing.T) {
	r, rec := newTestRenderer(40)
	a, b := newFrame("bar A"), newFrame("bar B")
	r.Attach(a)
	r.Attach(b)

	r.RenderStack(map[Frame]string{b: "precomputed"}, 0)

	assert.Equal(t, []string{"bar A", "precomputed"}, rec.screen.Lines())
}

func TestFit_TruncatesToWidth(t *testing.T) {
	r, rec := newTestRenderer(10)
	h := newFrame("")

	r.Draw(h, "0123456789ABC")

	assert.Equal(t, "0123456789", rec.screen.Line(0))
}

func TestFit_UnknownWidthPadsToWidest(t *testing.T) {
	r, rec := newTestRenderer(0)
	h := newFrame("")

	r.Draw(h, "a much longer line")
	r.Draw(h, "short")

	assert.Equal(t, "short", rec.screen.Line(0))
	assert.Equal(t, len("a much longer line"), len(rec.screen.RawLine(0)))
	assert.NotContains(t, strings.Join(rec.writes, ""), "\033[")
}

func TestConcurrentWritesDoNotInterleave(t *testing.T) {
	r, rec := newTestRenderer(80)
	bar := newFrame("bar")
	r.Attach(bar)

	const goroutines, perGoroutine = 8, 50
	var wg sync.WaitGroup
	for g := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perGoroutine {
				r.WriteLines(fmt.Sprintf("g%d-%d", g, i))
				r.Draw(bar, "bar")
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(rec.screen.Text(), "\n")
	require.Len(t, lines, goroutines*perGoroutine+1)
	assert.Equal(t, "bar", lines[len(lines)-1])

	pattern := regexp.MustCompile(`^g\d+-\d+$`)
	for _, line := range lines[:len(lines)-1] {
		assert.Regexp(t, pattern, line)
	}
}

func TestMetricsRecorded(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, _ := newTestRenderer(40, WithMetrics(metrics.NewRecorder(reg)))
	r.Attach(newFrame("bar"))
	r.WriteLines("log")

	n, err := promtestutil.GatherAndCount(reg, "logbar_frames_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NotNil(t, r.Metrics())
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write([]byte) (int, error) {
	w.calls++
	return 0, errors.New("broken pipe")
}

func TestWriteErrorDoesNotPanic(t *testing.T) {
	w := &failingWriter{}
	r := New(w, WithSize(terminal.Fixed(40, 24)))

	r.WriteLines("one")
	r.WriteLines("two")

	assert.Equal(t, 2, w.calls)
}

func TestInteractive(t *testing.T) {
	t.Cleanup(cliout.ResetColor)

	r := New(&bytes.Buffer{})
	assert.False(t, r.Interactive())

	cliout.ForceColor()
	r = New(&bytes.Buffer{}, WithInteractive(true))
	assert.True(t, r.Interactive())

	cliout.NoColor()
	assert.False(t, r.Interactive())
}

func TestDefaultIsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}
