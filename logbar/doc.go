// Package logbar is the entry point for rendering logs, column tables and progress bars on
// one terminal.
//
// A Logger writes leveled lines through a render.Renderer, so log output never tears a
// progress bar that is being drawn at the same time:
//
//	log := logbar.Shared()
//	log.Info("loading %d files", len(files))
//
//	pb := log.PB(len(files)).Title("load")
//	for _, f := range progress.Over(pb, files) {
//		log.Debug("read %s", f)
//	}
//
//	cols, _ := log.Columns("name", "size")
//	cols.Info("a.txt", 120)
//
// Once suppresses repeats of a message until the history limit is reached.
package logbar
