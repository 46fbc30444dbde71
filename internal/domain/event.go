package domain

import "time"

// EventType represents the kind of a session event
type EventType string

const (
	EventThinking    EventType = "thinking"
	EventToolStart   EventType = "tool_start"
	EventToolEnd     EventType = "tool_end"
	EventFileChange  EventType = "file_change"
	EventProgress    EventType = "progress"
	EventStateChange EventType = "state_change"
	EventError       EventType = "error"
)

// IsValidEventType checks if a string is a known event type
func IsValidEventType(t string) bool {
	switch EventType(t) {
	case EventThinking, EventToolStart, EventToolEnd, EventFileChange,
		EventProgress, EventStateChange, EventError:
		return true
	}
	return false
}

// SessionEvent is one append-only event in a session's event stream.
// Events are ordered by insertion and never mutated.
type SessionEvent struct {
	CreatedAt time.Time
	ID        string
	Payload   map[string]string
	SessionID string
	Type      EventType
}
