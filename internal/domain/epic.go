package domain

import "time"

// Epic represents a group of tickets sharing one git branch
type Epic struct {
	CreatedAt   time.Time
	Description string
	ID          string
	ProjectID   string
	Title       string
	UpdatedAt   time.Time
}

// EpicWorkflowState tracks the shared branch of an epic. Created lazily
// on the first start-epic-work or the first member ticket start-work.
// At most one live branch name is remembered at a time; a remembered
// branch that disappeared from the repository is superseded, not deleted.
type EpicWorkflowState struct {
	BranchCreatedAt *time.Time
	BranchName      string
	CreatedAt       time.Time
	CurrentTicketID string
	EpicID          string
	TicketsDone     int
	TicketsTotal    int
	UpdatedAt       time.Time
}
