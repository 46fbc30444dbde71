package domain

import "time"

// Comment types used by the workflow controller for audit comments
const (
	CommentTypeProgress    = "progress"
	CommentTypeWorkSummary = "work_summary"
)

// CommentAuthorSystem is the author recorded on comments emitted by obra itself
const CommentAuthorSystem = "obra"

// Comment represents an append-only audit comment on a ticket
type Comment struct {
	Author    string
	Body      string
	CreatedAt time.Time
	ID        string
	TicketID  string
	Type      string
}
