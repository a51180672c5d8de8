package logbar

import (
	"bytes"
	"strings"
	"sync"

	"github.com/jongio/logbar/logutil"
)

// LineWriter is an io.Writer that logs each complete line it receives.
// It buffers partial lines until a newline arrives or Flush is called.
type LineWriter struct {
	logger *Logger
	level  logutil.Level
	buf    []byte
	mu     sync.Mutex
}

// Writer returns a LineWriter logging at level. Use it to route a subprocess's output or
// another library's logger through the renderer.
func (l *Logger) Writer(level logutil.Level) *LineWriter {
	return &LineWriter{logger: l, level: level}
}

func (lw *LineWriter) Write(p []byte) (n int, err error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	lw.buf = append(lw.buf, p...)
	for {
		idx := bytes.IndexByte(lw.buf, '\n')
		if idx < 0 {
			break
		}
		line := strings.TrimSuffix(string(lw.buf[:idx]), "\r")
		lw.buf = lw.buf[idx+1:]
		lw.logger.Log(lw.level, "%s", line)
	}
	return len(p), nil
}

// Flush logs any buffered partial line.
func (lw *LineWriter) Flush() {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	if len(lw.buf) > 0 {
		lw.logger.Log(lw.level, "%s", strings.TrimSuffix(string(lw.buf), "\r"))
		lw.buf = nil
	}
}
