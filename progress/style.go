package progress

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Style is the set of runes a bar is drawn with.
type Style struct {
	Name  string
	Fill  rune
	Empty rune
	// Head replaces the last filled cell while the bar is partially filled. Zero means none.
	Head rune
}

var styles = map[string]Style{
	"block":   {Name: "block", Fill: '█', Empty: '-'},
	"classic": {Name: "classic", Fill: '#', Empty: '-'},
	"arrow":   {Name: "arrow", Fill: '=', Empty: ' ', Head: '>'},
	"dots":    {Name: "dots", Fill: '•', Empty: '·'},
	"sleek":   {Name: "sleek", Fill: '━', Empty: '─'},
}

// DefaultStyle is the style new bars start with.
const DefaultStyle = "block"

// AvailableStyles returns the style names in sorted order.
func AvailableStyles() []string {
	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LookupStyle returns the named style.
func LookupStyle(name string) (Style, error) {
	s, ok := styles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Style{}, fmt.Errorf("unknown progress style %q (available: %s)", name, strings.Join(AvailableStyles(), ", "))
	}
	return s, nil
}

// render draws a bar width cells wide with filled cells done. fill overrides the style's
// fill rune when non-zero. Widths are terminal cells: a double-width rune takes two cells,
// and cells a rune cannot fill exactly are padded with spaces.
func (s Style) render(width, filled int, fill rune) string {
	if width <= 0 {
		return ""
	}
	filled = min(max(filled, 0), width)
	if fill == 0 {
		fill = s.Fill
	}
	fill, fillW := cellRune(fill)
	empty, emptyW := cellRune(s.Empty)

	var b strings.Builder
	b.Grow(width * 3)
	used := 0
	if s.Head != 0 && filled > 0 && filled < width {
		head, headW := cellRune(s.Head)
		n := max(0, filled-headW) / fillW
		b.WriteString(strings.Repeat(string(fill), n))
		used = n * fillW
		if used+headW <= width {
			b.WriteRune(head)
			used += headW
		}
	} else {
		n := filled / fillW
		b.WriteString(strings.Repeat(string(fill), n))
		used = n * fillW
	}
	if used < filled {
		b.WriteString(strings.Repeat(" ", filled-used))
		used = filled
	}

	n := (width - used) / emptyW
	b.WriteString(strings.Repeat(string(empty), n))
	used += n * emptyW
	b.WriteString(strings.Repeat(" ", width-used))
	return b.String()
}

// cellRune returns r and the cells it occupies. Runes that take no cells are drawn as spaces.
func cellRune(r rune) (rune, int) {
	w := runewidth.RuneWidth(r)
	if w < 1 {
		return ' ', 1
	}
	return r, w
}
