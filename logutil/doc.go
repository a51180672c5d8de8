// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package logutil defines the console log levels and a slog-based diagnostics logger.
//
// Two kinds of logging exist in logbar. Console lines (the colored "INFO  message"
// output interleaved with progress bars) are rendered by package logbar and use the
// Level type defined here. Diagnostics about the renderer itself (attach/detach events,
// write failures) go through the slog logger configured here and are written to stderr,
// never to the rendered stdout stream.
//
// # Basic Usage
//
//	logutil.SetupLogger(debug, structured)
//	logutil.Debug("frame attached", "rows", 2)
//
//	log := logutil.NewLogger("render")
//	log.Debug("stack repainted", "frames", n)
//
// # Debug Mode
//
// Debug diagnostics can be enabled in two ways:
//   - Pass debug=true to SetupLogger
//   - Set LOGBAR_DEBUG=true environment variable
package logutil
