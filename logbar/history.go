package logbar

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DefaultHistoryLimit is the number of distinct messages History remembers.
const DefaultHistoryLimit = 1000

// History is a bounded set of message hashes. When full it is cleared and starts over.
type History struct {
	mu    sync.Mutex
	limit int
	seen  map[uint64]struct{}
}

// NewHistory creates a History holding up to limit messages. limit <= 0 uses the default.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{
		limit: limit,
		seen:  make(map[uint64]struct{}),
	}
}

// Add records msg and reports whether it was new.
func (h *History) Add(msg string) bool {
	key := xxhash.Sum64String(msg)

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.seen[key]; ok {
		return false
	}
	if len(h.seen) >= h.limit {
		clear(h.seen)
	}
	h.seen[key] = struct{}{}
	return true
}

// Len returns the number of remembered messages.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen)
}

// Limit returns the capacity.
func (h *History) Limit() int {
	return h.limit
}

// Reset forgets every message.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.seen)
}
