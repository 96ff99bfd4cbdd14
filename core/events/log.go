package events

import "time"

const (
	// KindLogAppended identifies session log growth.
	KindLogAppended Kind = "log.appended"
)

// LogSource describes who produced a log entry.
type LogSource string

const (
	LogSourceUser   LogSource = "user"
	LogSourceAI     LogSource = "ai"
	LogSourceSystem LogSource = "system"
	LogSourceError  LogSource = "error"
)

// LogKind distinguishes plain conversation entries from tool invocations.
type LogKind string

const (
	LogKindPlain LogKind = "plain"
	LogKindTool  LogKind = "tool"
)

// LogEntry is one immutable record in the append-only session log.
type LogEntry struct {
	ID        string
	Timestamp time.Time
	Source    LogSource
	Message   string
	Kind      LogKind
}

// LogAppended marks an entry appended to the session log.
type LogAppended struct {
	Base
	Entry LogEntry
}

// NewLogAppended creates a log appended event.
func NewLogAppended(entry LogEntry) LogAppended {
	return LogAppended{Base: NewBase(KindLogAppended), Entry: entry}
}
