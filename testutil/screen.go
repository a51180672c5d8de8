package testutil

import (
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"
)

// Screen is a minimal virtual terminal. It understands exactly the control sequences the
// renderer emits: carriage return, newline (as CR+LF, like a tty with ONLCR), cursor up
// (ESC[nA), cursor down (ESC[nB), erase to end of line (ESC[K / ESC[0K) and erase line
// (ESC[2K). SGR and any other CSI sequence is consumed and ignored. Every rune occupies
// one cell and lines grow without wrapping.
type Screen struct {
	mu      sync.Mutex
	lines   [][]rune
	row     int
	col     int
	pending []byte
}

// NewScreen returns an empty screen with the cursor at the top-left cell.
func NewScreen() *Screen {
	return &Screen{lines: [][]rune{{}}}
}

// Write implements io.Writer. Sequences split across writes are buffered.
func (s *Screen) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := append(s.pending, p...)
	s.pending = nil

	for i := 0; i < len(data); {
		switch c := data[i]; c {
		case '\r':
			s.col = 0
			i++
		case '\n':
			s.row++
			s.col = 0
			s.ensureRow()
			i++
		case '\033':
			end, ok := s.csi(data[i:])
			if !ok {
				s.pending = append([]byte(nil), data[i:]...)
				return len(p), nil
			}
			i += end
		default:
			r, size := utf8.DecodeRune(data[i:])
			if r == utf8.RuneError && !utf8.FullRune(data[i:]) {
				s.pending = append([]byte(nil), data[i:]...)
				return len(p), nil
			}
			s.put(r)
			i += size
		}
	}
	return len(p), nil
}

// csi applies the escape sequence at the start of seq and returns its length.
// ok is false when the sequence is incomplete.
func (s *Screen) csi(seq []byte) (n int, ok bool) {
	if len(seq) < 2 {
		return 0, false
	}
	if seq[1] != '[' {
		return 2, true
	}
	for j := 2; j < len(seq); j++ {
		b := seq[j]
		if b < 0x40 || b > 0x7e {
			continue
		}
		param := string(seq[2:j])
		switch b {
		case 'A':
			s.row -= count(param)
			if s.row < 0 {
				s.row = 0
			}
		case 'B':
			s.row += count(param)
			s.ensureRow()
		case 'K':
			s.ensureRow()
			line := s.lines[s.row]
			switch param {
			case "", "0":
				if s.col < len(line) {
					s.lines[s.row] = line[:s.col]
				}
			case "2":
				s.lines[s.row] = line[:0]
			}
		}
		return j + 1, true
	}
	return 0, false
}

func count(param string) int {
	if param == "" {
		return 1
	}
	n, err := strconv.Atoi(param)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (s *Screen) ensureRow() {
	for len(s.lines) <= s.row {
		s.lines = append(s.lines, []rune{})
	}
}

func (s *Screen) put(r rune) {
	s.ensureRow()
	line := s.lines[s.row]
	for len(line) < s.col {
		line = append(line, ' ')
	}
	if s.col < len(line) {
		line[s.col] = r
	} else {
		line = append(line, r)
	}
	s.lines[s.row] = line
	s.col++
}

// Lines returns every screen row with trailing spaces removed.
func (s *Screen) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.lines))
	for i, line := range s.lines {
		out[i] = strings.TrimRight(string(line), " ")
	}
	return out
}

// Line returns row i with trailing spaces removed, or "" when the row does not exist.
func (s *Screen) Line(i int) string {
	lines := s.Lines()
	if i < 0 || i >= len(lines) {
		return ""
	}
	return lines[i]
}

// RawLine returns row i including trailing spaces.
func (s *Screen) RawLine(i int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.lines) {
		return ""
	}
	return string(s.lines[i])
}

// Cursor returns the cursor position.
func (s *Screen) Cursor() (row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.row, s.col
}

// Text returns all non-empty rows joined by newlines.
func (s *Screen) Text() string {
	var kept []string
	for _, line := range s.Lines() {
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
