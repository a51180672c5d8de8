// Package cliout is the text compositor every rendered line funnels through.
//
// # Widths
//
// All width math is done in printable terminal cells:
//
//	cliout.Width("\033[32mINFO\033[0m")   // 4
//	cliout.Width("日本")                   // 4
//
// # Truncation and padding
//
// Truncate never splits an escape sequence and appends Reset when it drops content, so a
// color opened before the cut is closed:
//
//	cliout.Truncate("\033[31mhello world", 5) // "\033[31mhello\033[0m"
//
// Fit combines both directions and is what progress bars and log lines use to produce a
// line of exactly the terminal width:
//
//	line := cliout.Fit(rendered, columns)
//
// # Title animation
//
// Highlight renders a gray span with a single bold-white rune. HighlightIndex converts
// time elapsed since the animation started into the highlighted position:
//
//	idx := cliout.HighlightIndex(time.Since(start), 100*time.Millisecond, len([]rune(title)))
//	fmt.Print(cliout.Highlight(title, idx))
//
// # Color
//
// ColorEnabled honors NO_COLOR and CLICOLOR=0; NoColor and ForceColor override the
// environment for the whole process.
package cliout
