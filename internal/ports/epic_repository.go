package ports

import (
	"context"

	"obra/internal/domain"
)

// EpicReader reads epic data
type EpicReader interface {
	GetEpic(ctx context.Context, id string) (*domain.Epic, error)
	ListEpics(ctx context.Context, projectID string) ([]domain.Epic, error)
}

// EpicWriter creates and deletes epics
type EpicWriter interface {
	AddEpic(ctx context.Context, epic domain.Epic) error
	// DeleteEpic unlinks all member tickets and removes the epic plus its
	// workflow state in a single transaction.
	DeleteEpic(ctx context.Context, id string) error
}

// EpicWorkflowStateStore manages the 1:1 epic workflow side table
type EpicWorkflowStateStore interface {
	GetEpicWorkflowState(ctx context.Context, epicID string) (*domain.EpicWorkflowState, error)
	SaveEpicWorkflowState(ctx context.Context, state domain.EpicWorkflowState) error
}

// EpicRepository is the composite interface
type EpicRepository interface {
	EpicReader
	EpicWriter
	EpicWorkflowStateStore
}
