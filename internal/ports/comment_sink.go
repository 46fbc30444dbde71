package ports

import (
	"context"

	"obra/internal/domain"
)

// CommentSink is the append-only audit comment store keyed by ticket id
type CommentSink interface {
	AddComment(ctx context.Context, comment domain.Comment) error
	ListComments(ctx context.Context, ticketID string) ([]domain.Comment, error)
}
