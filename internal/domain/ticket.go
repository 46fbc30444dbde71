package domain

import "time"

// TicketStatus represents the lifecycle status of a ticket
type TicketStatus string

const (
	StatusBacklog     TicketStatus = "backlog"
	StatusReady       TicketStatus = "ready"
	StatusInProgress  TicketStatus = "in_progress"
	StatusAIReview    TicketStatus = "ai_review"
	StatusHumanReview TicketStatus = "human_review"
	StatusDone        TicketStatus = "done"
)

// ValidTicketStatuses returns all ticket statuses in lifecycle order
func ValidTicketStatuses() []TicketStatus {
	return []TicketStatus{
		StatusBacklog,
		StatusReady,
		StatusInProgress,
		StatusAIReview,
		StatusHumanReview,
		StatusDone,
	}
}

// IsValidTicketStatus checks if a status string is a known ticket status
func IsValidTicketStatus(status string) bool {
	for _, s := range ValidTicketStatuses() {
		if TicketStatus(status) == s {
			return true
		}
	}
	return false
}

// Ticket represents a unit of work (domain entity)
type Ticket struct {
	BranchName  string
	CreatedAt   time.Time
	Description string
	EpicID      *string
	ID          string
	Position    int
	ProjectID   string
	Status      TicketStatus
	Title       string
	UpdatedAt   time.Time
}

// WorkflowPhase represents the review phase of a ticket work cycle
type WorkflowPhase string

const (
	PhaseImplementation WorkflowPhase = "implementation"
	PhaseAIReview       WorkflowPhase = "ai_review"
)

// TicketWorkflowState tracks review and demo progress for a ticket,
// distinct from the ticket's primary status. Created lazily on first
// start-work and reset on every new work cycle.
type TicketWorkflowState struct {
	CreatedAt       time.Time
	DemoGenerated   bool
	FindingsFixed   int
	FindingsOpened  int
	Phase           WorkflowPhase
	ReviewIteration int
	TicketID        string
	UpdatedAt       time.Time
}
