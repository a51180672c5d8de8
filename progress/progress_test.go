package progress

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jongio/logbar/cliout"
	"github.com/jongio/logbar/render"
	"github.com/jongio/logbar/terminal"
	"github.com/jongio/logbar/testutil"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordingWarner struct {
	mu       sync.Mutex
	messages []string
}

func (w *recordingWarner) Warn(format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, fmt.Sprintf(format, args...))
}

type countingScreen struct {
	*testutil.Screen
	mu     sync.Mutex
	writes int
}

func (c *countingScreen) Write(p []byte) (int, error) {
	c.mu.Lock()
	c.writes++
	c.mu.Unlock()
	return c.Screen.Write(p)
}

func newTestRenderer(columns int) (*render.Renderer, *countingScreen) {
	screen := &countingScreen{Screen: testutil.NewScreen()}
	r := render.New(screen, render.WithSize(terminal.Fixed(columns, 24)), render.WithInteractive(false))
	return r, screen
}

func TestSnapshot_FillsTerminalWidth(t *testing.T) {
	r, screen := newTestRenderer(120)
	clock := newClock()
	b := New(r, 100, WithClock(clock.Now))

	for range 50 {
		b.Next()
	}
	b.Draw()

	line := screen.Line(0)
	assert.Equal(t, 120, cliout.Width(line))
	assert.Contains(t, line, "[50/100]")
	assert.Contains(t, line, "50.0%")
	assert.Equal(t, 120, cliout.Width(b.Snapshot(120)))
}

func TestSnapshot_Layout(t *testing.T) {
	r, _ := newTestRenderer(60)
	clock := newClock()
	b := New(r, 10, WithClock(clock.Now)).Title("load").SetStep(5)
	clock.Advance(10 * time.Second)

	got := b.Snapshot(60)

	want := "load [5 of 10] " +
		strings.Repeat("█", 6) + strings.Repeat("-", 7) +
		"| 0:00:10 / 0:00:20 [5/10] 50.0%"
	assert.Equal(t, want, got)
	assert.Equal(t, 60, cliout.Width(got))
}

func TestSnapshot_TruncatesNarrowTerminal(t *testing.T) {
	r, _ := newTestRenderer(20)
	b := New(r, 10).Title("a rather long title")

	got := b.Snapshot(20)

	assert.Equal(t, 20, cliout.Width(got))
	assert.True(t, strings.HasPrefix(cliout.Strip(got), "a rather long title"))
}

func TestSnapshot_UnknownWidthUsesFallback(t *testing.T) {
	r, _ := newTestRenderer(0)
	b := New(r, 10)

	got := b.Snapshot(0)

	assert.Contains(t, got, strings.Repeat("-", fallbackWidth)+"| ")
	assert.False(t, strings.HasSuffix(got, " "))
}

func TestSnapshot_TitleHighWaterMark(t *testing.T) {
	r, _ := newTestRenderer(80)
	b := New(r, 10).Title("longtitle").Title("ab")

	got := b.Snapshot(80)

	assert.True(t, strings.HasPrefix(got, "ab"+strings.Repeat(" ", 8)+"[0 of 10] "), got)
}

func TestSnapshot_SubtitleAndOffset(t *testing.T) {
	r, _ := newTestRenderer(80)
	b := New(r, 12).Subtitle("part").Set(true, 2).SetStep(4)

	got := b.Snapshot(80)

	assert.True(t, strings.HasPrefix(got, "part [2 of 10] "), got)
}

func TestSnapshot_HiddenLeftSteps(t *testing.T) {
	r, _ := newTestRenderer(80)
	b := New(r, 10).ShowLeftSteps(false)

	got := b.Snapshot(80)

	assert.NotContains(t, got, " of ")
	assert.True(t, strings.HasPrefix(got, "-"), got)
}

func TestSnapshot_AnimatedTitleWhenInteractive(t *testing.T) {
	t.Cleanup(cliout.ResetColor)
	cliout.ForceColor()

	r := render.New(testutil.NewScreen(), render.WithSize(terminal.Fixed(80, 24)), render.WithInteractive(true))
	clock := newClock()
	b := New(r, 10, WithClock(clock.Now)).Title("title")
	clock.Advance(2 * DefaultAnimationPeriod)

	got := b.Snapshot(80)

	assert.Contains(t, got, cliout.TitleBase+"ti"+cliout.TitleHighlight+"t")
	assert.Equal(t, 80, cliout.Width(got))
}

func TestSnapshot_AnimatedLeftStepsWithoutTitle(t *testing.T) {
	t.Cleanup(cliout.ResetColor)
	cliout.ForceColor()

	r := render.New(testutil.NewScreen(), render.WithSize(terminal.Fixed(80, 24)), render.WithInteractive(true))
	b := New(r, 10)

	got := b.Snapshot(80)

	assert.True(t, strings.HasPrefix(got, cliout.TitleBase), got)
}

func TestAnimationResetsOnlyWhenTitleAppears(t *testing.T) {
	r, _ := newTestRenderer(80)
	clock := newClock()
	b := New(r, 10, WithClock(clock.Now))

	clock.Advance(time.Second)
	b.Title("a")
	first := b.animStart
	assert.Equal(t, clock.Now(), first)

	clock.Advance(time.Second)
	b.Title("b")
	assert.Equal(t, first, b.animStart)

	b.Title("")
	clock.Advance(time.Second)
	b.Title("c")
	assert.Equal(t, clock.Now(), b.animStart)
}

func TestPercent(t *testing.T) {
	tests := []struct {
		total, step int
		want        string
	}{
		{100, 0, "0.0"},
		{100, 50, "50.0"},
		{3, 1, "33.3"},
		{7, 7, "100.0"},
		{0, 5, "0.0"},
		{-1, 5, "0.0"},
	}

	for _, tt := range tests {
		r, _ := newTestRenderer(80)
		b := New(r, tt.total).SetStep(tt.step)
		if got := b.Percent(); got != tt.want {
			t.Errorf("Percent() total=%d step=%d = %q, want %q", tt.total, tt.step, got, tt.want)
		}
	}
}

func TestUndefinedTotalDoesNotPanic(t *testing.T) {
	r, _ := newTestRenderer(80)
	b := New(r, 0).Next().Next()

	got := b.Snapshot(80)

	assert.Equal(t, 80, cliout.Width(got))
	assert.Contains(t, got, "[2/0] 0.0%")
}

func TestIter_AdvancesAndCloses(t *testing.T) {
	r, screen := newTestRenderer(80)
	b := New(r, 7)

	var seen []int
	for i := range b.Iter() {
		seen = append(seen, i)
		assert.Contains(t, screen.Line(0), fmt.Sprintf("[%d/7]", i+1))
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, seen)
	assert.Equal(t, 7, b.Step())
	assert.Equal(t, "100.0", b.Percent())
	assert.True(t, b.Closed())
	assert.Equal(t, "", screen.Text(), "closing erases the bar")
}

func TestIter_BreakLeavesBarOpen(t *testing.T) {
	r, _ := newTestRenderer(80)
	b := New(r, 10)

	for i := range b.Iter() {
		if i == 1 {
			break
		}
	}

	assert.False(t, b.Closed())
	assert.Equal(t, 2, b.Step())
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	assert.True(t, b.Closed())
}

func TestIter_ManualModeDoesNotDraw(t *testing.T) {
	r, screen := newTestRenderer(80)
	b := New(r, 3).Manual()

	for range b.Iter() {
		assert.Equal(t, "", screen.Text())
	}
	assert.Equal(t, 0, screen.writes)
	assert.Equal(t, ModeManual, b.RenderMode())
}

func TestOver_UsesSliceLength(t *testing.T) {
	r, _ := newTestRenderer(80)
	b := New(r, 0)
	items := []string{"a", "b", "c"}

	var got []string
	for i, item := range Over(b, items) {
		assert.Equal(t, items[i], item)
		got = append(got, item)
	}

	assert.Equal(t, items, got)
	assert.Equal(t, 3, b.Total())
	assert.True(t, b.Closed())
}

type sized []int

func (s sized) Len() int { return len(s) }

func TestNewSized(t *testing.T) {
	r, _ := newTestRenderer(80)

	assert.Equal(t, 4, NewSized(r, sized{1, 2, 3, 4}).Total())
	assert.Equal(t, 0, NewSized(r, nil).Total())
}

func TestMaxRateThrottlesAutoDraws(t *testing.T) {
	r, screen := newTestRenderer(80)
	clock := newClock()
	b := New(r, 5, WithClock(clock.Now), WithMaxRate(1))

	for range b.Iter() {
	}

	// first step, final step, erase on close
	assert.Equal(t, 3, screen.writes)
}

func TestWithoutMaxRateDrawsEveryStep(t *testing.T) {
	r, screen := newTestRenderer(80)
	b := New(r, 5)

	for range b.Iter() {
	}

	assert.Equal(t, 6, screen.writes)
}

func TestTitleWarnsOncePerFieldDuringAutoIteration(t *testing.T) {
	r, _ := newTestRenderer(80)
	w := &recordingWarner{}
	b := New(r, 3, WithWarner(w)).Title("before")

	for i := range b.Iter() {
		if i == 0 {
			b.Title("x")
			b.Title("y")
			b.Subtitle("s")
		}
	}

	require.Len(t, w.messages, 2)
	assert.Contains(t, w.messages[0], "title")
	assert.Contains(t, w.messages[1], "subtitle")
}

func TestTitleSilentInManualMode(t *testing.T) {
	r, _ := newTestRenderer(80)
	w := &recordingWarner{}
	b := New(r, 3, WithWarner(w)).Manual()

	for range b.Iter() {
		b.Title("step")
		b.Draw()
	}

	assert.Empty(t, w.messages)
}

func TestAttachedBarsShareScreen(t *testing.T) {
	r, screen := newTestRenderer(80)
	a := New(r, 10).Title("A").Attach()
	b := New(r, 10).Title("B").Attach()

	a.Next().Draw()
	b.Next().Next().Draw()
	assert.True(t, strings.HasPrefix(screen.Line(0), "A [1 of 10]"))
	assert.True(t, strings.HasPrefix(screen.Line(1), "B [2 of 10]"))

	require.NoError(t, a.Close())
	b.Draw()
	assert.True(t, strings.HasPrefix(screen.Line(0), "B [2 of 10]"))
	assert.Equal(t, "", screen.Line(1))
	assert.Equal(t, 1, r.Len())

	b.Detach()
	assert.Equal(t, 0, r.Len())
	a.Attach()
	assert.Equal(t, 0, r.Len(), "closed bars cannot attach")
}

func TestDrawAfterCloseIsNoop(t *testing.T) {
	r, screen := newTestRenderer(80)
	b := New(r, 3)
	require.NoError(t, b.Close())

	b.Draw()

	assert.Equal(t, 0, screen.writes)
}

func TestStyle(t *testing.T) {
	r, _ := newTestRenderer(80)
	b := New(r, 10).SetStep(5)

	require.NoError(t, b.Style("arrow"))
	assert.Contains(t, b.Snapshot(80), "=>")

	err := b.Style("zigzag")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"zigzag"`)

	b = New(r, 10, WithStyle("classic")).SetStep(5).Fill('*')
	assert.Contains(t, b.Snapshot(80), "*-")

	b = New(r, 10, WithStyle("zigzag"))
	assert.Equal(t, DefaultStyle, b.style.Name)
}

func TestAvailableStyles(t *testing.T) {
	assert.Equal(t, []string{"arrow", "block", "classic", "dots", "sleek"}, AvailableStyles())
}

func TestStyleRender(t *testing.T) {
	tests := []struct {
		style         string
		width, filled int
		fill          rune
		want          string
	}{
		{"block", 5, 2, 0, "██---"},
		{"classic", 5, 2, '*', "**---"},
		{"arrow", 5, 2, 0, "=>   "},
		{"arrow", 5, 5, 0, "====="},
		{"arrow", 5, 0, 0, "     "},
		{"dots", 4, 1, 0, "•···"},
		{"sleek", 3, 9, 0, "━━━"},
		{"block", 0, 0, 0, ""},
		{"classic", 6, 4, '中', "中中--"},
		{"classic", 6, 3, '中', "中 ---"},
		{"classic", 5, 5, '中', "中中 "},
		{"arrow", 6, 3, '中', "中>   "},
		{"classic", 4, 2, '\u0301', "  --"},
	}

	for _, tt := range tests {
		s, err := LookupStyle(tt.style)
		require.NoError(t, err)
		if got := s.render(tt.width, tt.filled, tt.fill); got != tt.want {
			t.Errorf("%s.render(%d, %d) = %q, want %q", tt.style, tt.width, tt.filled, got, tt.want)
		}
	}
}

func TestSnapshot_WideFillKeepsStatus(t *testing.T) {
	r, _ := newTestRenderer(60)
	clock := newClock()
	b := New(r, 10, WithClock(clock.Now)).Fill('中').SetStep(5)

	line := b.Snapshot(60)
	assert.Equal(t, 60, cliout.Width(line))
	assert.True(t, strings.HasSuffix(line, "[5/10] 50.0%"), "status cut off: %q", line)
	assert.Contains(t, line, "中")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00:00"},
		{59 * time.Second, "0:00:59"},
		{3661 * time.Second, "1:01:01"},
		{1500 * time.Millisecond, "0:00:01"},
		{-time.Second, "0:00:00"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "AUTO", ModeAuto.String())
	assert.Equal(t, "MANUAL", ModeManual.String())
}
