package session

import (
	"testing"

	"github.com/voxaline/live-core/core/events"
)

func TestLogAppendsInOrder(t *testing.T) {
	log := newSessionLog(nil)

	log.Append(events.LogSourceUser, events.LogKindPlain, "first")
	log.Append(events.LogSourceAI, events.LogKindPlain, "second")
	log.Append(events.LogSourceSystem, events.LogKindPlain, "third")

	entries := log.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"first", "second", "third"} {
		if entries[i].Message != want {
			t.Errorf("expected entry %d to be %q, got %q", i, want, entries[i].Message)
		}
	}
	if entries[1].Timestamp.Before(entries[0].Timestamp) {
		t.Errorf("expected non-decreasing timestamps")
	}
}

func TestLogAssignsUniqueIDs(t *testing.T) {
	log := newSessionLog(nil)

	seen := map[string]bool{}
	for range 10 {
		entry := log.Append(events.LogSourceUser, events.LogKindPlain, "message")
		if entry.ID == "" {
			t.Fatalf("expected a non-empty id")
		}
		if seen[entry.ID] {
			t.Fatalf("expected unique ids, %q repeated", entry.ID)
		}
		seen[entry.ID] = true
	}
}

func TestLogEntriesAreACopy(t *testing.T) {
	log := newSessionLog(nil)
	log.Append(events.LogSourceUser, events.LogKindPlain, "original")

	entries := log.Entries()
	entries[0].Message = "mutated"

	if got := log.Entries()[0].Message; got != "original" {
		t.Errorf("expected the log unaffected by mutation, got %q", got)
	}
}

func TestLogEmitsOnAppend(t *testing.T) {
	recorder := &eventRecorder{}
	log := newSessionLog(recorder.emit)

	entry := log.Append(events.LogSourceError, events.LogKindPlain, "something failed")

	if got := recorder.count(events.KindLogAppended); got != 1 {
		t.Fatalf("expected one append event, got %d", got)
	}
	recorder.mu.Lock()
	appended := recorder.events[0].(events.LogAppended)
	recorder.mu.Unlock()
	if appended.Entry.ID != entry.ID {
		t.Errorf("expected the appended entry in the event")
	}
}

func TestLogClear(t *testing.T) {
	log := newSessionLog(nil)
	log.Append(events.LogSourceUser, events.LogKindPlain, "message")

	log.Clear()

	if got := log.Len(); got != 0 {
		t.Errorf("expected an empty log, got %d entries", got)
	}
}
