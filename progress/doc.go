// Package progress provides terminal progress bars that share the screen with log output.
//
// A Bar renders to a single row through a render.Renderer. Bars are headless by default:
// the most recently drawn one occupies the last row below the log. Attached bars join the
// renderer's stack and stay on screen together, one row each, in attach order.
//
// Iterating a bar with Iter or Over advances it one step per element and, in AUTO mode,
// redraws it before each element is handed to the loop body:
//
//	pb := progress.New(r, len(files)).Title("copy")
//	for _, f := range progress.Over(pb, files) {
//		copyFile(f)
//	}
//
// The bar closes itself when the sequence is exhausted. Breaking out of the loop leaves it
// open; call Close to remove it from the screen.
package progress
