// Package terminal answers two questions about the output stream: how wide it is and
// whether it is an interactive terminal. A size of (0, 0) means no usable terminal was
// found (pipe, redirect, CI log, or a failed platform query); callers treat zero as
// "unknown" and fall back to content-driven sizing.
package terminal

import (
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Environment variables consulted when the platform query fails.
const (
	EnvColumns = "COLUMNS"
	EnvLines   = "LINES"
)

// SizeFunc reports the current terminal size as (columns, rows).
type SizeFunc func() (columns, rows int)

// fdWriter is implemented by *os.File.
type fdWriter interface {
	Fd() uintptr
}

// Size returns the size of the terminal attached to stdout.
// The platform query wins; COLUMNS/LINES are used when it fails. Returns (0, 0) when
// neither yields a positive width.
func Size() (columns, rows int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w, h
	}
	return envSize()
}

// SizeOf returns a SizeFunc bound to w. Writers that are not terminals fall back to the
// environment, then to (0, 0).
func SizeOf(w io.Writer) SizeFunc {
	return func() (int, int) {
		if f, ok := w.(fdWriter); ok {
			if cols, rows, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
				return cols, rows
			}
		}
		return envSize()
	}
}

// Fixed returns a SizeFunc that always reports the given size.
func Fixed(columns, rows int) SizeFunc {
	return func() (int, int) { return columns, rows }
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(fdWriter)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func envSize() (int, int) {
	cols := envInt(EnvColumns)
	if cols <= 0 {
		return 0, 0
	}
	rows := envInt(EnvLines)
	if rows < 0 {
		rows = 0
	}
	return cols, rows
}

func envInt(key string) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
