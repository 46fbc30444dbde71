package storage

import "time"

// ProjectModel is the GORM model for the projects table
type ProjectModel struct {
	CreatedAt time.Time
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Path      string `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (ProjectModel) TableName() string { return "projects" }

// TicketModel is the GORM model for the tickets table
type TicketModel struct {
	BranchName  string `gorm:"default:''"`
	CreatedAt   time.Time
	Description string  `gorm:"default:''"`
	EpicID      *string `gorm:"index:idx_ticket_epic;default:null"`
	ID          string  `gorm:"primaryKey"`
	Position    int     `gorm:"not null;default:0;index:idx_ticket_position"`
	ProjectID   string  `gorm:"not null;index:idx_ticket_project"`
	Status      string  `gorm:"not null;default:'backlog';check:status IN ('backlog','ready','in_progress','ai_review','human_review','done')"`
	Title       string  `gorm:"not null"`
	UpdatedAt   time.Time
}

// TableName specifies the table name for GORM
func (TicketModel) TableName() string { return "tickets" }

// TicketWorkflowStateModel is the GORM model for the 1:1 ticket workflow side table
type TicketWorkflowStateModel struct {
	CreatedAt       time.Time
	DemoGenerated   bool   `gorm:"not null;default:false"`
	FindingsFixed   int    `gorm:"not null;default:0"`
	FindingsOpened  int    `gorm:"not null;default:0"`
	Phase           string `gorm:"not null;default:'implementation'"`
	ReviewIteration int    `gorm:"not null;default:0"`
	TicketID        string `gorm:"primaryKey"`
	UpdatedAt       time.Time
}

// TableName specifies the table name for GORM
func (TicketWorkflowStateModel) TableName() string { return "ticket_workflow_states" }

// EpicModel is the GORM model for the epics table
type EpicModel struct {
	CreatedAt   time.Time
	Description string `gorm:"default:''"`
	ID          string `gorm:"primaryKey"`
	ProjectID   string `gorm:"not null;index:idx_epic_project"`
	Title       string `gorm:"not null"`
	UpdatedAt   time.Time
}

// TableName specifies the table name for GORM
func (EpicModel) TableName() string { return "epics" }

// EpicWorkflowStateModel is the GORM model for the 1:1 epic workflow side table
type EpicWorkflowStateModel struct {
	BranchCreatedAt *time.Time `gorm:"default:null"`
	BranchName      string     `gorm:"default:''"`
	CreatedAt       time.Time
	CurrentTicketID string `gorm:"default:''"`
	EpicID          string `gorm:"primaryKey"`
	TicketsDone     int    `gorm:"not null;default:0"`
	TicketsTotal    int    `gorm:"not null;default:0"`
	UpdatedAt       time.Time
}

// TableName specifies the table name for GORM
func (EpicWorkflowStateModel) TableName() string { return "epic_workflow_states" }

// SessionModel is the GORM model for the sessions table.
// History is a serialized JSON array of history entries.
type SessionModel struct {
	CompletedAt  *time.Time `gorm:"index:idx_session_completed;default:null"`
	CreatedAt    time.Time
	ErrorMessage string  `gorm:"default:''"`
	History      string  `gorm:"not null;default:'[]'"`
	ID           string  `gorm:"primaryKey"`
	Outcome      *string `gorm:"default:null"`
	StartedAt    time.Time
	State        string `gorm:"not null;default:'idle';check:state IN ('idle','analyzing','implementing','testing','committing','reviewing','done')"`
	TicketID     string `gorm:"not null;index:idx_session_ticket"`
	UpdatedAt    time.Time
}

// TableName specifies the table name for GORM
func (SessionModel) TableName() string { return "sessions" }

// SessionEventModel is the GORM model for the append-only session event log.
// Seq is a per-session sequence number assigned on append; polling readers
// page through it with the since-id cursor.
type SessionEventModel struct {
	CreatedAt time.Time `gorm:"index:idx_event_created"`
	ID        string    `gorm:"primaryKey"`
	Payload   string    `gorm:"default:''"`
	Seq       int64     `gorm:"not null;index:idx_event_session_seq"`
	SessionID string    `gorm:"not null;index:idx_event_session_seq"`
	Type      string    `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (SessionEventModel) TableName() string { return "session_events" }

// CommentModel is the GORM model for the audit comments table
type CommentModel struct {
	Author    string `gorm:"not null"`
	Body      string `gorm:"not null"`
	CreatedAt time.Time
	ID        string `gorm:"primaryKey"`
	TicketID  string `gorm:"not null;index:idx_comment_ticket"`
	Type      string `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (CommentModel) TableName() string { return "comments" }
