// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logutil

import (
	"log/slog"
	"strings"

	"github.com/jongio/logbar/cliout"
)

// Level represents the logging level.
type Level int

const (
	// LevelDebug is for debug messages.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warnings.
	LevelWarn
	// LevelError is for errors.
	LevelError
	// LevelCritical is for failures the program cannot continue past.
	LevelCritical
)

// LabelWidth is the width of the longest level label ("DEBUG", "ERROR").
// Console lines pad every label to this width so messages line up.
const LabelWidth = 5

// String returns the console label for the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRIT"
	default:
		return "INFO"
	}
}

// Color returns the SGR color used for the level label.
func (l Level) Color() string {
	switch l {
	case LevelDebug:
		return cliout.Cyan
	case LevelInfo:
		return cliout.Green
	case LevelWarn:
		return cliout.Yellow
	case LevelError, LevelCritical:
		return cliout.Red
	default:
		return cliout.Reset
	}
}

// Label returns the level label padded to LabelWidth, colored when color is true.
func (l Level) Label(color bool) string {
	name := l.String()
	pad := strings.Repeat(" ", LabelWidth-len(name))
	if !color {
		return name + pad
	}
	return l.Color() + name + cliout.Reset + pad
}

// slogLevel maps a Level onto the slog scale.
func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError, LevelCritical:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel parses a string into a Level.
// Valid values are: "debug", "info", "warn", "warning", "error", "crit", "critical".
// Returns LevelInfo for unrecognized values.
func ParseLevel(s string) Level {
	if level, ok := LookupLevel(s); ok {
		return level
	}
	return LevelInfo
}

// LookupLevel is ParseLevel that reports whether s named a level.
func LookupLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "crit", "critical":
		return LevelCritical, true
	default:
		return LevelInfo, false
	}
}
