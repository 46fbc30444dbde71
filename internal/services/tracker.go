package services

import (
	"context"
	"strings"

	"obra/internal/domain"
	"obra/internal/ports"
)

// TrackerService covers the plain CRUD surface around the workflow
// core: projects, tickets, epics, comments.
type TrackerService struct {
	clock ports.Clock
	ids   ports.IDGenerator
	store ports.Store
}

// NewTrackerService creates a new TrackerService
func NewTrackerService(store ports.Store, clock ports.Clock, ids ports.IDGenerator) *TrackerService {
	return &TrackerService{
		clock: clock,
		ids:   ids,
		store: store,
	}
}

// AddProject registers a project backed by a local checkout path
func (s *TrackerService) AddProject(ctx context.Context, name, path string) (*domain.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("project name is required")
	}
	if strings.TrimSpace(path) == "" {
		return nil, domain.NewValidationError("project path is required")
	}

	now := s.clock.Now()
	project := domain.Project{
		ID:        s.ids.NewID(),
		Name:      name,
		Path:      path,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.AddProject(ctx, project); err != nil {
		return nil, err
	}
	return &project, nil
}

// GetProject returns a project by id
func (s *TrackerService) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	return s.store.GetProject(ctx, id)
}

// ListProjects returns all projects
func (s *TrackerService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return s.store.ListProjects(ctx)
}

// AddTicket creates a ticket in the backlog
func (s *TrackerService) AddTicket(ctx context.Context, projectID, title, description string) (*domain.Ticket, error) {
	if strings.TrimSpace(title) == "" {
		return nil, domain.NewValidationError("ticket title is required")
	}
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	existing, err := s.store.ListTickets(ctx, projectID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	ticket := domain.Ticket{
		ID:          s.ids.NewID(),
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		Status:      domain.StatusBacklog,
		Position:    len(existing) + 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.AddTicket(ctx, ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// GetTicket returns a ticket by id
func (s *TrackerService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	return s.store.GetTicket(ctx, id)
}

// ListTickets returns a project's tickets ordered by position
func (s *TrackerService) ListTickets(ctx context.Context, projectID string) ([]domain.Ticket, error) {
	return s.store.ListTickets(ctx, projectID)
}

// SetTicketStatus transitions a ticket to a status by name
func (s *TrackerService) SetTicketStatus(ctx context.Context, id, status string) (*domain.Ticket, error) {
	if !domain.IsValidTicketStatus(status) {
		return nil, domain.NewValidationError("unknown ticket status %q", status)
	}
	if err := s.store.UpdateTicketStatus(ctx, id, domain.TicketStatus(status)); err != nil {
		return nil, err
	}
	return s.store.GetTicket(ctx, id)
}

// SetTicketPosition reorders a ticket within its project
func (s *TrackerService) SetTicketPosition(ctx context.Context, id string, position int) (*domain.Ticket, error) {
	if position < 1 {
		return nil, domain.NewValidationError("position must be positive, got %d", position)
	}
	if err := s.store.UpdateTicketPosition(ctx, id, position); err != nil {
		return nil, err
	}
	return s.store.GetTicket(ctx, id)
}

// AssignTicketEpic links a ticket to an epic, or unlinks it when epicID
// is empty
func (s *TrackerService) AssignTicketEpic(ctx context.Context, id, epicID string) (*domain.Ticket, error) {
	var ref *string
	if epicID != "" {
		if _, err := s.store.GetEpic(ctx, epicID); err != nil {
			return nil, err
		}
		ref = &epicID
	}
	if err := s.store.UpdateTicketEpic(ctx, id, ref); err != nil {
		return nil, err
	}
	return s.store.GetTicket(ctx, id)
}

// AddEpic creates an epic in a project
func (s *TrackerService) AddEpic(ctx context.Context, projectID, title, description string) (*domain.Epic, error) {
	if strings.TrimSpace(title) == "" {
		return nil, domain.NewValidationError("epic title is required")
	}
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	epic := domain.Epic{
		ID:          s.ids.NewID(),
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.AddEpic(ctx, epic); err != nil {
		return nil, err
	}
	return &epic, nil
}

// GetEpic returns an epic by id
func (s *TrackerService) GetEpic(ctx context.Context, id string) (*domain.Epic, error) {
	return s.store.GetEpic(ctx, id)
}

// ListEpics returns a project's epics
func (s *TrackerService) ListEpics(ctx context.Context, projectID string) ([]domain.Epic, error) {
	return s.store.ListEpics(ctx, projectID)
}

// ListTicketsByEpic returns an epic's member tickets
func (s *TrackerService) ListTicketsByEpic(ctx context.Context, epicID string) ([]domain.Ticket, error) {
	return s.store.ListTicketsByEpic(ctx, epicID)
}

// ListComments returns a ticket's audit comments, oldest first
func (s *TrackerService) ListComments(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	return s.store.ListComments(ctx, ticketID)
}
