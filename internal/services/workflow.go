package services

import (
	"context"
	"fmt"
	"strings"

	"obra/internal/domain"
	"obra/internal/logging"
	"obra/internal/ports"
)

// completeWorkNextSteps is the fixed checklist returned to the caller
// after work on a ticket is handed off to review.
var completeWorkNextSteps = []string{
	"review the changes on the work branch",
	"run the test suite against the branch",
	"move the ticket to human_review once AI review passes",
	"merge the branch and mark the ticket done",
}

// WorkflowService drives tickets through the work lifecycle: resolving
// branches, transitioning status, bookkeeping workflow state, and
// emitting audit comments.
type WorkflowService struct {
	clock    ports.Clock
	git      ports.GitRepository
	ids      ports.IDGenerator
	resolver *BranchResolver
	store    ports.Store
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(store ports.Store, git ports.GitRepository, resolver *BranchResolver, clock ports.Clock, ids ports.IDGenerator) *WorkflowService {
	return &WorkflowService{
		clock:    clock,
		git:      git,
		ids:      ids,
		resolver: resolver,
		store:    store,
	}
}

// StartWork moves a ticket into in_progress on a resolved git branch.
// Calling it again on a ticket already in progress with a branch is a
// no-op that only reports a warning.
func (s *WorkflowService) StartWork(ctx context.Context, ticketID string) (*StartWorkResult, error) {
	ticket, err := s.store.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if ticket.Status == domain.StatusInProgress && ticket.BranchName != "" {
		logging.Logger.Debug("start work is a no-op", "ticket_id", ticket.ID, "branch", ticket.BranchName)
		return &StartWorkResult{
			AlreadyStarted: true,
			BranchName:     ticket.BranchName,
			EpicBranch:     ticket.EpicID != nil,
			Ticket:         ticket,
			Warnings:       []string{fmt.Sprintf("ticket %s is already in progress on %s", ticket.ID, ticket.BranchName)},
		}, nil
	}

	project, err := s.store.GetProject(ctx, ticket.ProjectID)
	if err != nil {
		return nil, err
	}

	if isRepo, _ := s.git.IsGitRepo(project.Path); !isRepo {
		return nil, domain.NewGitError("start work", "git rev-parse --show-toplevel",
			fmt.Sprintf("%s is not a git repository, initialize git first", project.Path))
	}

	resolution, err := s.resolver.ResolveForTicket(ctx, ticket, project.Path)
	if err != nil {
		return nil, err
	}
	warnings := resolution.Warnings

	if err := s.store.UpdateTicketStatus(ctx, ticket.ID, domain.StatusInProgress); err != nil {
		return nil, fmt.Errorf("failed to update ticket status: %w", err)
	}
	if err := s.store.UpdateTicketBranch(ctx, ticket.ID, resolution.BranchName); err != nil {
		return nil, fmt.Errorf("failed to record ticket branch: %w", err)
	}

	// A fresh attempt resets review bookkeeping entirely
	now := s.clock.Now()
	if err := s.store.SaveTicketWorkflowState(ctx, domain.TicketWorkflowState{
		TicketID:  ticket.ID,
		Phase:     domain.PhaseImplementation,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to reset workflow state: %v", err))
	}

	body := fmt.Sprintf("work started on dedicated branch %s", resolution.BranchName)
	if resolution.EpicBranch {
		body = fmt.Sprintf("work started on shared epic branch %s", resolution.BranchName)
	}
	if err := s.store.AddComment(ctx, domain.Comment{
		ID:        s.ids.NewID(),
		TicketID:  ticket.ID,
		Author:    domain.CommentAuthorSystem,
		Type:      domain.CommentTypeProgress,
		Body:      body,
		CreatedAt: now,
	}); err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to post progress comment: %v", err))
	}

	refreshed, err := s.store.GetTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}

	logging.Logger.Info("work started",
		"ticket_id", ticket.ID, "branch", resolution.BranchName,
		"created", resolution.Created, "epic_branch", resolution.EpicBranch)

	return &StartWorkResult{
		BranchCreated: resolution.Created,
		BranchName:    resolution.BranchName,
		EpicBranch:    resolution.EpicBranch,
		Ticket:        refreshed,
		Warnings:      warnings,
	}, nil
}

// CompleteWork hands a ticket off to AI review: gathers commit and diff
// information since the base branch, advances status and workflow state,
// posts a work summary, and suggests the next actionable ticket.
func (s *WorkflowService) CompleteWork(ctx context.Context, ticketID, summary string) (*CompleteWorkResult, error) {
	ticket, err := s.store.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	switch ticket.Status {
	case domain.StatusDone, domain.StatusAIReview, domain.StatusHumanReview:
		return nil, domain.NewInvalidStateError("ticket", string(ticket.Status), string(domain.StatusInProgress), "complete work")
	}

	project, err := s.store.GetProject(ctx, ticket.ProjectID)
	if err != nil {
		return nil, err
	}

	var warnings []string

	base := s.resolver.BaseBranch(project.Path)
	stats, err := s.git.FetchWorkStats(ctx, project.Path, base)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to gather work stats: %v", err))
		stats = nil
	}

	if err := s.store.UpdateTicketStatus(ctx, ticket.ID, domain.StatusAIReview); err != nil {
		return nil, fmt.Errorf("failed to update ticket status: %w", err)
	}

	now := s.clock.Now()
	ws, err := s.store.GetTicketWorkflowState(ctx, ticket.ID)
	if err != nil {
		if !domain.IsNotFound(err) {
			warnings = append(warnings, fmt.Sprintf("failed to load workflow state: %v", err))
		}
		ws = &domain.TicketWorkflowState{TicketID: ticket.ID, CreatedAt: now}
	}
	ws.Phase = domain.PhaseAIReview
	ws.ReviewIteration++
	ws.UpdatedAt = now
	if err := s.store.SaveTicketWorkflowState(ctx, *ws); err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to advance workflow state: %v", err))
	}

	if err := s.store.AddComment(ctx, domain.Comment{
		ID:        s.ids.NewID(),
		TicketID:  ticket.ID,
		Author:    domain.CommentAuthorSystem,
		Type:      domain.CommentTypeWorkSummary,
		Body:      workSummaryBody(summary, stats),
		CreatedAt: now,
	}); err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to post work summary: %v", err))
	}

	// Best-effort suggestion; a failure here never surfaces
	next, err := s.store.NextActionableTicket(ctx, ticket.ProjectID)
	if err != nil {
		logging.Logger.Debug("next ticket suggestion failed", "error", err)
		next = nil
	}
	if next != nil && next.ID == ticket.ID {
		next = nil
	}

	refreshed, err := s.store.GetTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}

	logging.Logger.Info("work completed", "ticket_id", ticket.ID, "review_iteration", ws.ReviewIteration)

	return &CompleteWorkResult{
		NextSteps:  completeWorkNextSteps,
		NextTicket: next,
		Stats:      stats,
		Ticket:     refreshed,
		Warnings:   warnings,
	}, nil
}

// workSummaryBody renders the audit comment body for a completed work cycle
func workSummaryBody(summary string, stats *domain.WorkStats) string {
	var b strings.Builder
	b.WriteString("work completed")
	if summary != "" {
		b.WriteString(": ")
		b.WriteString(summary)
	}
	if stats != nil {
		fmt.Fprintf(&b, "\n%d commits, %d files changed", len(stats.Commits), stats.FilesChanged)
		if stats.DiffStat != "" {
			b.WriteString("\n")
			b.WriteString(stats.DiffStat)
		}
	}
	return b.String()
}
