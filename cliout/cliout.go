// Package cliout composes terminal text that stays width-exact in the presence of ANSI
// escape sequences. Widths are counted in printable terminal cells: escape bytes count
// as zero and East Asian wide runes count as two.
package cliout

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
)

// ANSI SGR codes for consistent styling
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	BoldOff = "\033[22m"

	// Foreground colors
	Black   = "\033[30m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
	Gray    = "\033[90m"

	// Title animation
	TitleBase      = "\033[38;5;250m"
	TitleHighlight = "\033[1m\033[38;5;15m"
)

const esc = '\033'

var (
	mu         sync.RWMutex
	noColor    bool
	forceColor bool
)

// NoColor disables color output regardless of the environment.
func NoColor() {
	mu.Lock()
	noColor = true
	forceColor = false
	mu.Unlock()
}

// ForceColor enables color output regardless of the environment.
func ForceColor() {
	mu.Lock()
	noColor = false
	forceColor = true
	mu.Unlock()
}

// ResetColor drops any NoColor/ForceColor override.
func ResetColor() {
	mu.Lock()
	noColor = false
	forceColor = false
	mu.Unlock()
}

// ColorEnabled reports whether styled output should be produced. Overrides win;
// otherwise NO_COLOR and CLICOLOR=0 disable color.
func ColorEnabled() bool {
	mu.RLock()
	nc, fc := noColor, forceColor
	mu.RUnlock()
	if fc {
		return true
	}
	if nc {
		return false
	}
	return !termenv.EnvNoColor()
}

// Colorize wraps s in color and a trailing Reset.
func Colorize(color, s string) string {
	if color == "" || s == "" {
		return s
	}
	return color + s + Reset
}

// Strip removes all escape sequences from s.
func Strip(s string) string {
	return ansi.Strip(s)
}

// Width returns the number of terminal cells s occupies once escapes are removed.
func Width(s string) int {
	width := 0
	for _, r := range Strip(s) {
		width += runewidth.RuneWidth(r)
	}
	return width
}

// Truncate keeps at most limit printable cells of s. Escape sequences are copied whole,
// never split. When printable content is dropped the result ends in Reset so a style
// opened before the cut cannot leak onto the rest of the terminal line.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return Reset
	}

	var b strings.Builder
	b.Grow(len(s) + len(Reset))

	width := 0
	cut := false
	for i := 0; i < len(s); {
		if s[i] == esc {
			end := escapeEnd(s, i)
			b.WriteString(s[i:end])
			i = end
			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		w := runewidth.RuneWidth(r)
		if width+w > limit {
			cut = true
			break
		}
		b.WriteString(s[i : i+size])
		width += w
		i += size
	}

	if cut {
		b.WriteString(Reset)
	}
	return b.String()
}

// Pad right-pads s with spaces up to width printable cells.
func Pad(s string, width int) string {
	w := Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// Fit truncates or pads s to exactly width printable cells. A wide rune that would
// straddle the limit is dropped and replaced with padding. width <= 0 means unbounded
// and returns s unchanged.
func Fit(s string, width int) string {
	if width <= 0 {
		return s
	}
	if Width(s) > width {
		s = Truncate(s, width)
	}
	return Pad(s, width)
}

// Highlight renders text in TitleBase with the rune at idx in TitleHighlight.
func Highlight(text string, idx int) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleBase)
	i := 0
	for _, r := range text {
		if i == idx {
			b.WriteString(TitleHighlight)
			b.WriteRune(r)
			b.WriteString(BoldOff)
			b.WriteString(TitleBase)
		} else {
			b.WriteRune(r)
		}
		i++
	}
	b.WriteString(Reset)
	return b.String()
}

// HighlightIndex returns the highlighted rune position for an animation that advances
// one position every period: floor(elapsed/period) mod length.
func HighlightIndex(elapsed, period time.Duration, length int) int {
	if length <= 0 || elapsed <= 0 {
		return 0
	}
	if period <= 0 {
		period = time.Nanosecond
	}
	return int((elapsed / period) % time.Duration(length))
}

// escapeEnd returns the index just past the escape sequence starting at s[start].
// An unterminated sequence runs to the end of s.
func escapeEnd(s string, start int) int {
	i := start + 1
	if i >= len(s) {
		return len(s)
	}

	switch s[i] {
	case '[': // CSI: parameters and intermediates, then a final byte in @..~
		for i++; i < len(s); i++ {
			if s[i] >= 0x40 && s[i] <= 0x7e {
				return i + 1
			}
		}
		return len(s)
	case ']': // OSC: terminated by BEL or ST (ESC \)
		for i++; i < len(s); i++ {
			if s[i] == '\a' {
				return i + 1
			}
			if s[i] == esc && i+1 < len(s) && s[i+1] == '\\' {
				return i + 2
			}
		}
		return len(s)
	default:
		return i + 1
	}
}
