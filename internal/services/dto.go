package services

import "obra/internal/domain"

// BranchResolution is the outcome of resolving a working branch for a
// ticket or epic
type BranchResolution struct {
	BranchName string
	Created    bool
	EpicBranch bool
	Warnings   []string
}

// StartWorkResult contains the result of starting work on a ticket
type StartWorkResult struct {
	AlreadyStarted bool
	BranchCreated  bool
	BranchName     string
	EpicBranch     bool
	Ticket         *domain.Ticket
	Warnings       []string
}

// CompleteWorkResult contains the result of completing work on a ticket
type CompleteWorkResult struct {
	NextSteps  []string
	NextTicket *domain.Ticket
	Stats      *domain.WorkStats
	Ticket     *domain.Ticket
	Warnings   []string
}

// StartEpicWorkResult contains the result of starting work on an epic
type StartEpicWorkResult struct {
	BranchCreated bool
	BranchName    string
	Tickets       []domain.Ticket
	TicketsDone   int
	TicketsTotal  int
}

// DeleteEpicResult describes an epic deletion or its dry-run preview.
// When Deleted is false nothing was mutated and UnlinkedTickets lists
// the tickets that a confirmed deletion would unlink.
type DeleteEpicResult struct {
	Deleted         bool
	Epic            *domain.Epic
	UnlinkedTickets []domain.Ticket
}

// CreateSessionResult contains the result of session creation
type CreateSessionResult struct {
	Session          *domain.Session
	StateFileWritten bool
	Warnings         []string
}

// UpdateStateResult contains the result of a session state transition
type UpdateStateResult struct {
	PreviousState    domain.SessionState
	Session          *domain.Session
	StateFileWritten bool
	Warnings         []string
}

// CompleteSessionResult contains the result of completing a session
type CompleteSessionResult struct {
	Session  *domain.Session
	Warnings []string
}
