package services

import (
	"context"
	"fmt"

	"obra/internal/domain"
	"obra/internal/logging"
	"obra/internal/ports"
)

// EpicService launches work on epics and manages their lifecycle
type EpicService struct {
	clock    ports.Clock
	git      ports.GitRepository
	resolver *BranchResolver
	store    ports.Store
}

// NewEpicService creates a new EpicService
func NewEpicService(store ports.Store, git ports.GitRepository, resolver *BranchResolver, clock ports.Clock) *EpicService {
	return &EpicService{
		clock:    clock,
		git:      git,
		resolver: resolver,
		store:    store,
	}
}

// StartEpicWork checks out or creates the epic's shared branch. When the
// remembered branch still exists the call mutates nothing and only
// returns the membership; otherwise the branch is created and the
// workflow state refreshed with recomputed ticket counts. Branch
// failures on this path are fatal.
func (s *EpicService) StartEpicWork(ctx context.Context, epicID string) (*StartEpicWorkResult, error) {
	epic, err := s.store.GetEpic(ctx, epicID)
	if err != nil {
		return nil, err
	}

	project, err := s.store.GetProject(ctx, epic.ProjectID)
	if err != nil {
		return nil, err
	}

	if isRepo, _ := s.git.IsGitRepo(project.Path); !isRepo {
		return nil, domain.NewGitError("start epic work", "git rev-parse --show-toplevel",
			fmt.Sprintf("%s is not a git repository, initialize git first", project.Path))
	}

	tickets, err := s.store.ListTicketsByEpic(ctx, epic.ID)
	if err != nil {
		return nil, err
	}
	done := 0
	for _, t := range tickets {
		if t.Status == domain.StatusDone {
			done++
		}
	}

	resolution, err := s.resolver.ResolveForEpic(ctx, epic, project.Path)
	if err != nil {
		return nil, err
	}

	if resolution.Created {
		// Refresh aggregate counts on the newly persisted state
		ws, err := s.store.GetEpicWorkflowState(ctx, epic.ID)
		if err != nil {
			return nil, err
		}
		ws.TicketsTotal = len(tickets)
		ws.TicketsDone = done
		ws.UpdatedAt = s.clock.Now()
		if err := s.store.SaveEpicWorkflowState(ctx, *ws); err != nil {
			return nil, fmt.Errorf("failed to update epic counts: %w", err)
		}
	}

	logging.Logger.Info("epic work started",
		"epic_id", epic.ID, "branch", resolution.BranchName, "created", resolution.Created)

	return &StartEpicWorkResult{
		BranchCreated: resolution.Created,
		BranchName:    resolution.BranchName,
		Tickets:       tickets,
		TicketsDone:   done,
		TicketsTotal:  len(tickets),
	}, nil
}

// DeleteEpic removes an epic. Without confirm it is a dry run: the
// member tickets that would be unlinked are returned and nothing is
// mutated. With confirm the unlink and delete happen in one transaction.
func (s *EpicService) DeleteEpic(ctx context.Context, epicID string, confirm bool) (*DeleteEpicResult, error) {
	epic, err := s.store.GetEpic(ctx, epicID)
	if err != nil {
		return nil, err
	}

	tickets, err := s.store.ListTicketsByEpic(ctx, epic.ID)
	if err != nil {
		return nil, err
	}

	if !confirm {
		return &DeleteEpicResult{Epic: epic, UnlinkedTickets: tickets}, nil
	}

	if err := s.store.DeleteEpic(ctx, epic.ID); err != nil {
		return nil, err
	}

	logging.Logger.Info("epic deleted", "epic_id", epic.ID, "unlinked_tickets", len(tickets))
	return &DeleteEpicResult{Deleted: true, Epic: epic, UnlinkedTickets: tickets}, nil
}
