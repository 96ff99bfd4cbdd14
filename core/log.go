package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/voxaline/live-core/core/events"
)

// LogEntry is one immutable record in the append-only session log.
type LogEntry = events.LogEntry

// sessionLog is the controller-owned, append-only conversation record.
// Entries accumulate across reconnects and are discarded only on full
// controller close.
type sessionLog struct {
	mu      sync.Mutex
	entries []events.LogEntry
	emit    eventEmitter
}

func newSessionLog(emit eventEmitter) *sessionLog {
	if emit == nil {
		emit = noopEventEmitter
	}
	return &sessionLog{emit: emit}
}

func (l *sessionLog) Append(source events.LogSource, kind events.LogKind, message string) events.LogEntry {
	entry := events.LogEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Source:    source,
		Message:   message,
		Kind:      kind,
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	l.emit(events.NewLogAppended(entry))
	return entry
}

// Entries returns a point-in-time copy of the log.
func (l *sessionLog) Entries() []events.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := []events.LogEntry{}
	if err := copier.Copy(&entries, l.entries); err != nil {
		logger.Warn("failed to copy log entries", "error", err)
	}
	return entries
}

func (l *sessionLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *sessionLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
