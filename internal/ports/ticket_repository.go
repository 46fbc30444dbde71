package ports

import (
	"context"

	"obra/internal/domain"
)

// ProjectRepository stores projects
type ProjectRepository interface {
	AddProject(ctx context.Context, project domain.Project) error
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	ListProjects(ctx context.Context) ([]domain.Project, error)
}

// TicketReader reads ticket data
type TicketReader interface {
	GetTicket(ctx context.Context, id string) (*domain.Ticket, error)
	ListTickets(ctx context.Context, projectID string) ([]domain.Ticket, error)
	ListTicketsByEpic(ctx context.Context, epicID string) ([]domain.Ticket, error)
	// NextActionableTicket returns the first ticket in the project that is
	// ready (or, failing that, backlog), ordered by position. Returns
	// (nil, nil) when no candidate exists.
	NextActionableTicket(ctx context.Context, projectID string) (*domain.Ticket, error)
}

// TicketWriter creates and updates tickets
type TicketWriter interface {
	AddTicket(ctx context.Context, ticket domain.Ticket) error
	UpdateTicketStatus(ctx context.Context, id string, status domain.TicketStatus) error
	UpdateTicketBranch(ctx context.Context, id, branchName string) error
	UpdateTicketEpic(ctx context.Context, id string, epicID *string) error
	UpdateTicketPosition(ctx context.Context, id string, position int) error
}

// TicketWorkflowStateStore manages the 1:1 ticket workflow side table
type TicketWorkflowStateStore interface {
	GetTicketWorkflowState(ctx context.Context, ticketID string) (*domain.TicketWorkflowState, error)
	SaveTicketWorkflowState(ctx context.Context, state domain.TicketWorkflowState) error
}

// TicketRepository is the composite interface
type TicketRepository interface {
	TicketReader
	TicketWriter
	TicketWorkflowStateStore
}
