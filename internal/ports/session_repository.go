package ports

import (
	"context"

	"obra/internal/domain"
)

// SessionReader reads session data
type SessionReader interface {
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	// GetActiveSession returns the ticket's session with no completion
	// timestamp, or (nil, nil) when none is active.
	GetActiveSession(ctx context.Context, ticketID string) (*domain.Session, error)
	// GetLatestSession returns the most recently started session for the
	// ticket regardless of completion.
	GetLatestSession(ctx context.Context, ticketID string) (*domain.Session, error)
	ListSessions(ctx context.Context, ticketID string, limit int) ([]domain.SessionSummary, error)
}

// SessionWriter creates and updates sessions
type SessionWriter interface {
	AddSession(ctx context.Context, session domain.Session) error
	UpdateSession(ctx context.Context, session domain.Session) error
}

// EventAppender appends to the session event log
type EventAppender interface {
	AppendEvent(ctx context.Context, event domain.SessionEvent) error
}

// EventReader reads the session event log for polling observers
type EventReader interface {
	// ListEvents returns events for the session strictly after sinceID
	// (all events when sinceID is empty), oldest first, bounded by limit.
	ListEvents(ctx context.Context, sessionID, sinceID string, limit int) ([]domain.SessionEvent, error)
}

// SessionRepository is the composite interface
type SessionRepository interface {
	SessionReader
	SessionWriter
	EventAppender
	EventReader
}
