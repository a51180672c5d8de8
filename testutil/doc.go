// Package testutil provides testing helpers for terminal rendering code.
//
// This package includes helpers for:
//   - Capturing stdout during test execution (CaptureOutput)
//   - Creating temporary directories with automatic cleanup (TempDir)
//   - Replaying cursor-movement output onto a virtual terminal (Screen)
//   - Collecting output from concurrent writers (SyncBuffer)
//   - Removing escape sequences before assertions (StripANSI)
//
// Example usage:
//
//	func TestDetachBlanksRow(t *testing.T) {
//	    screen := testutil.NewScreen()
//	    r := render.New(screen, render.WithSize(terminal.Fixed(40, 10)))
//	    // ... attach and detach frames ...
//	    if screen.Line(1) != "" {
//	        t.Errorf("stale row: %q", screen.Line(1))
//	    }
//	}
package testutil
