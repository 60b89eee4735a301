package state

import (
	"sync"
	"time"
)

// Log is an append-only, ordered sequence of log lines. Entries are never
// reordered or deduplicated.
type Log struct {
	mu      sync.RWMutex
	entries []LogEntry
	now     func() time.Time
}

// NewLog returns an empty log stamping entries with the wall clock.
func NewLog() *Log {
	return &Log{now: time.Now}
}

// Append adds a line stamped with the capture time.
func (l *Log) Append(severity Severity, message string) LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := LogEntry{Timestamp: l.now(), Message: message, Severity: severity}
	l.entries = append(l.entries, entry)
	return entry
}

// Entries returns a copy of every line in append order.
func (l *Log) Entries() []LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.entries) == 0 {
		return nil
	}
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len reports the number of lines.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.entries)
}
