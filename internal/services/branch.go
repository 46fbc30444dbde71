package services

import (
	"context"
	"fmt"

	"obra/internal/domain"
	"obra/internal/logging"
	"obra/internal/ports"
)

// BranchResolver decides which git branch a unit of work should use and
// creates or reuses branches accordingly. Naming is deterministic; the
// resolution policy consults the repository for branch existence.
type BranchResolver struct {
	clock ports.Clock
	epics ports.EpicRepository
	git   ports.GitClient
}

// NewBranchResolver creates a new BranchResolver
func NewBranchResolver(git ports.GitClient, epics ports.EpicRepository, clock ports.Clock) *BranchResolver {
	return &BranchResolver{
		clock: clock,
		epics: epics,
		git:   git,
	}
}

// BaseBranch detects the integration branch: main if it exists, else
// master, else main as the default even when absent. The caller fails
// later with a clear error instead of this function guessing further.
func (r *BranchResolver) BaseBranch(workingDir string) string {
	if r.git.BranchExists("main", workingDir) {
		return "main"
	}
	if r.git.BranchExists("master", workingDir) {
		return "master"
	}
	return "main"
}

// ResolveForTicket resolves the branch a ticket should work on. Tickets
// belonging to an epic try the shared epic branch first; everything else
// falls back to a dedicated ticket branch.
func (r *BranchResolver) ResolveForTicket(ctx context.Context, ticket *domain.Ticket, workingDir string) (*BranchResolution, error) {
	var warnings []string

	if ticket.EpicID != nil {
		res, stale, err := r.tryEpicBranch(ctx, ticket, workingDir)
		if err != nil {
			return nil, err
		}
		if !stale {
			return res, nil
		}
		warnings = append(warnings, res.Warnings...)
	}

	res, err := r.ticketBranch(ticket, workingDir)
	if err != nil {
		return nil, err
	}
	res.Warnings = append(warnings, res.Warnings...)
	return res, nil
}

// tryEpicBranch handles the epic-owned cases of the resolution policy.
// The stale return is true when the remembered branch disappeared and
// resolution should fall through to ticket-specific branching.
func (r *BranchResolver) tryEpicBranch(ctx context.Context, ticket *domain.Ticket, workingDir string) (*BranchResolution, bool, error) {
	epic, err := r.epics.GetEpic(ctx, *ticket.EpicID)
	if err != nil {
		return nil, false, err
	}

	ws, err := r.epics.GetEpicWorkflowState(ctx, epic.ID)
	if err != nil && !domain.IsNotFound(err) {
		return nil, false, err
	}

	if ws != nil && ws.BranchName != "" {
		if r.git.BranchExists(ws.BranchName, workingDir) {
			// Reuse the remembered shared branch
			res := &BranchResolution{BranchName: ws.BranchName, EpicBranch: true}
			if checkout := r.git.Checkout(ws.BranchName, workingDir); !checkout.Success {
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("failed to checkout epic branch %s: %s", ws.BranchName, checkout.Output))
			}
			ws.CurrentTicketID = ticket.ID
			ws.UpdatedAt = r.clock.Now()
			if err := r.epics.SaveEpicWorkflowState(ctx, *ws); err != nil {
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("failed to record current ticket on epic %s: %v", epic.ID, err))
			}
			return res, false, nil
		}

		// Remembered branch is stale; do not recreate it implicitly
		logging.Logger.Warn("epic branch missing from repository",
			"epic_id", epic.ID, "branch", ws.BranchName)
		return &BranchResolution{Warnings: []string{
			fmt.Sprintf("epic branch %s no longer exists, using a ticket-specific branch", ws.BranchName),
		}}, true, nil
	}

	// No remembered branch: create one so later tickets in the epic reuse it
	res, err := r.createEpicBranch(ctx, epic, ws, ticket.ID, workingDir)
	if err != nil {
		return nil, false, err
	}
	return res, false, nil
}

// createEpicBranch synthesizes the epic branch from the base branch and
// persists it against the epic. Failures here are fatal.
func (r *BranchResolver) createEpicBranch(ctx context.Context, epic *domain.Epic, ws *domain.EpicWorkflowState, currentTicketID, workingDir string) (*BranchResolution, error) {
	name := domain.EpicBranchName(epic.ID, epic.Title)

	base := r.BaseBranch(workingDir)
	if checkout := r.git.Checkout(base, workingDir); !checkout.Success {
		return nil, domain.NewGitError("checkout base branch", "git checkout "+base, checkout.Output)
	}
	if created := r.git.CreateBranch(name, workingDir); !created.Success {
		return nil, domain.NewGitError("create epic branch", "git checkout -b "+name, created.Output)
	}

	now := r.clock.Now()
	if ws == nil {
		ws = &domain.EpicWorkflowState{EpicID: epic.ID, CreatedAt: now}
	}
	ws.BranchName = name
	ws.BranchCreatedAt = &now
	ws.CurrentTicketID = currentTicketID
	ws.UpdatedAt = now
	if err := r.epics.SaveEpicWorkflowState(ctx, *ws); err != nil {
		return nil, fmt.Errorf("failed to persist epic branch: %w", err)
	}

	logging.Logger.Info("created epic branch", "epic_id", epic.ID, "branch", name)
	return &BranchResolution{BranchName: name, Created: true, EpicBranch: true}, nil
}

// ResolveForEpic resolves the shared branch for an epic launch. Unlike
// the ticket path there is no warn-and-continue fallback; an epic without
// a working branch is unusable.
func (r *BranchResolver) ResolveForEpic(ctx context.Context, epic *domain.Epic, workingDir string) (*BranchResolution, error) {
	ws, err := r.epics.GetEpicWorkflowState(ctx, epic.ID)
	if err != nil && !domain.IsNotFound(err) {
		return nil, err
	}

	if ws != nil && ws.BranchName != "" && r.git.BranchExists(ws.BranchName, workingDir) {
		if checkout := r.git.Checkout(ws.BranchName, workingDir); !checkout.Success {
			return nil, domain.NewGitError("checkout epic branch", "git checkout "+ws.BranchName, checkout.Output)
		}
		return &BranchResolution{BranchName: ws.BranchName, EpicBranch: true}, nil
	}

	return r.createEpicBranch(ctx, epic, ws, "", workingDir)
}

// ticketBranch resolves a dedicated ticket branch. Checkout of an
// existing branch may fail softly; creating a new branch may not.
func (r *BranchResolver) ticketBranch(ticket *domain.Ticket, workingDir string) (*BranchResolution, error) {
	name := domain.TicketBranchName(ticket.ID, ticket.Title)

	if r.git.BranchExists(name, workingDir) {
		res := &BranchResolution{BranchName: name}
		if checkout := r.git.Checkout(name, workingDir); !checkout.Success {
			// Work proceeds on whatever branch is currently checked out
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("failed to checkout branch %s: %s", name, checkout.Output))
		}
		return res, nil
	}

	base := r.BaseBranch(workingDir)
	if checkout := r.git.Checkout(base, workingDir); !checkout.Success {
		return nil, domain.NewGitError("checkout base branch", "git checkout "+base, checkout.Output)
	}
	if created := r.git.CreateBranch(name, workingDir); !created.Success {
		return nil, domain.NewGitError("create branch", "git checkout -b "+name, created.Output)
	}

	logging.Logger.Info("created ticket branch", "ticket_id", ticket.ID, "branch", name)
	return &BranchResolution{BranchName: name, Created: true}, nil
}
