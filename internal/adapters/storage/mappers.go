package storage

import (
	"encoding/json"
	"fmt"

	"obra/internal/domain"
)

// projectModelToDomain converts a ProjectModel (GORM) to domain.Project
func projectModelToDomain(m ProjectModel) domain.Project {
	return domain.Project{
		CreatedAt: m.CreatedAt,
		ID:        m.ID,
		Name:      m.Name,
		Path:      m.Path,
		UpdatedAt: m.UpdatedAt,
	}
}

// domainToProjectModel converts a domain.Project to ProjectModel (GORM)
func domainToProjectModel(p domain.Project) ProjectModel {
	return ProjectModel{
		CreatedAt: p.CreatedAt,
		ID:        p.ID,
		Name:      p.Name,
		Path:      p.Path,
		UpdatedAt: p.UpdatedAt,
	}
}

// ticketModelToDomain converts a TicketModel (GORM) to domain.Ticket
func ticketModelToDomain(m TicketModel) domain.Ticket {
	return domain.Ticket{
		BranchName:  m.BranchName,
		CreatedAt:   m.CreatedAt,
		Description: m.Description,
		EpicID:      m.EpicID,
		ID:          m.ID,
		Position:    m.Position,
		ProjectID:   m.ProjectID,
		Status:      domain.TicketStatus(m.Status),
		Title:       m.Title,
		UpdatedAt:   m.UpdatedAt,
	}
}

// domainToTicketModel converts a domain.Ticket to TicketModel (GORM)
func domainToTicketModel(t domain.Ticket) TicketModel {
	return TicketModel{
		BranchName:  t.BranchName,
		CreatedAt:   t.CreatedAt,
		Description: t.Description,
		EpicID:      t.EpicID,
		ID:          t.ID,
		Position:    t.Position,
		ProjectID:   t.ProjectID,
		Status:      string(t.Status),
		Title:       t.Title,
		UpdatedAt:   t.UpdatedAt,
	}
}

// ticketWorkflowModelToDomain converts a TicketWorkflowStateModel to domain
func ticketWorkflowModelToDomain(m TicketWorkflowStateModel) domain.TicketWorkflowState {
	return domain.TicketWorkflowState{
		CreatedAt:       m.CreatedAt,
		DemoGenerated:   m.DemoGenerated,
		FindingsFixed:   m.FindingsFixed,
		FindingsOpened:  m.FindingsOpened,
		Phase:           domain.WorkflowPhase(m.Phase),
		ReviewIteration: m.ReviewIteration,
		TicketID:        m.TicketID,
		UpdatedAt:       m.UpdatedAt,
	}
}

// domainToTicketWorkflowModel converts a domain.TicketWorkflowState to GORM model
func domainToTicketWorkflowModel(s domain.TicketWorkflowState) TicketWorkflowStateModel {
	return TicketWorkflowStateModel{
		CreatedAt:       s.CreatedAt,
		DemoGenerated:   s.DemoGenerated,
		FindingsFixed:   s.FindingsFixed,
		FindingsOpened:  s.FindingsOpened,
		Phase:           string(s.Phase),
		ReviewIteration: s.ReviewIteration,
		TicketID:        s.TicketID,
		UpdatedAt:       s.UpdatedAt,
	}
}

// epicModelToDomain converts an EpicModel (GORM) to domain.Epic
func epicModelToDomain(m EpicModel) domain.Epic {
	return domain.Epic{
		CreatedAt:   m.CreatedAt,
		Description: m.Description,
		ID:          m.ID,
		ProjectID:   m.ProjectID,
		Title:       m.Title,
		UpdatedAt:   m.UpdatedAt,
	}
}

// domainToEpicModel converts a domain.Epic to EpicModel (GORM)
func domainToEpicModel(e domain.Epic) EpicModel {
	return EpicModel{
		CreatedAt:   e.CreatedAt,
		Description: e.Description,
		ID:          e.ID,
		ProjectID:   e.ProjectID,
		Title:       e.Title,
		UpdatedAt:   e.UpdatedAt,
	}
}

// epicWorkflowModelToDomain converts an EpicWorkflowStateModel to domain
func epicWorkflowModelToDomain(m EpicWorkflowStateModel) domain.EpicWorkflowState {
	return domain.EpicWorkflowState{
		BranchCreatedAt: m.BranchCreatedAt,
		BranchName:      m.BranchName,
		CreatedAt:       m.CreatedAt,
		CurrentTicketID: m.CurrentTicketID,
		EpicID:          m.EpicID,
		TicketsDone:     m.TicketsDone,
		TicketsTotal:    m.TicketsTotal,
		UpdatedAt:       m.UpdatedAt,
	}
}

// domainToEpicWorkflowModel converts a domain.EpicWorkflowState to GORM model
func domainToEpicWorkflowModel(s domain.EpicWorkflowState) EpicWorkflowStateModel {
	return EpicWorkflowStateModel{
		BranchCreatedAt: s.BranchCreatedAt,
		BranchName:      s.BranchName,
		CreatedAt:       s.CreatedAt,
		CurrentTicketID: s.CurrentTicketID,
		EpicID:          s.EpicID,
		TicketsDone:     s.TicketsDone,
		TicketsTotal:    s.TicketsTotal,
		UpdatedAt:       s.UpdatedAt,
	}
}

// sessionModelToDomain converts a SessionModel (GORM) to domain.Session,
// deserializing the history log
func sessionModelToDomain(m SessionModel) (domain.Session, error) {
	var history []domain.HistoryEntry
	if m.History != "" {
		if err := json.Unmarshal([]byte(m.History), &history); err != nil {
			return domain.Session{}, fmt.Errorf("failed to unmarshal session history: %w", err)
		}
	}

	var outcome *domain.SessionOutcome
	if m.Outcome != nil {
		o := domain.SessionOutcome(*m.Outcome)
		outcome = &o
	}

	return domain.Session{
		CompletedAt:  m.CompletedAt,
		ErrorMessage: m.ErrorMessage,
		History:      history,
		ID:           m.ID,
		Outcome:      outcome,
		StartedAt:    m.StartedAt,
		State:        domain.SessionState(m.State),
		TicketID:     m.TicketID,
	}, nil
}

// domainToSessionModel converts a domain.Session to SessionModel (GORM),
// serializing the history log
func domainToSessionModel(s domain.Session) (SessionModel, error) {
	history, err := json.Marshal(s.History)
	if err != nil {
		return SessionModel{}, fmt.Errorf("failed to marshal session history: %w", err)
	}

	var outcome *string
	if s.Outcome != nil {
		o := string(*s.Outcome)
		outcome = &o
	}

	return SessionModel{
		CompletedAt:  s.CompletedAt,
		ErrorMessage: s.ErrorMessage,
		History:      string(history),
		ID:           s.ID,
		Outcome:      outcome,
		StartedAt:    s.StartedAt,
		State:        string(s.State),
		TicketID:     s.TicketID,
	}, nil
}

// sessionModelToSummary converts a SessionModel to a domain.SessionSummary
func sessionModelToSummary(m SessionModel) (domain.SessionSummary, error) {
	s, err := sessionModelToDomain(m)
	if err != nil {
		return domain.SessionSummary{}, err
	}
	return domain.SessionSummary{
		CompletedAt:   s.CompletedAt,
		HistoryLength: len(s.History),
		ID:            s.ID,
		Outcome:       s.Outcome,
		StartedAt:     s.StartedAt,
		State:         s.State,
		TicketID:      s.TicketID,
	}, nil
}

// eventModelToDomain converts a SessionEventModel to domain.SessionEvent
func eventModelToDomain(m SessionEventModel) (domain.SessionEvent, error) {
	var payload map[string]string
	if m.Payload != "" {
		if err := json.Unmarshal([]byte(m.Payload), &payload); err != nil {
			return domain.SessionEvent{}, fmt.Errorf("failed to unmarshal event payload: %w", err)
		}
	}

	return domain.SessionEvent{
		CreatedAt: m.CreatedAt,
		ID:        m.ID,
		Payload:   payload,
		SessionID: m.SessionID,
		Type:      domain.EventType(m.Type),
	}, nil
}

// domainToEventModel converts a domain.SessionEvent to SessionEventModel.
// Seq is assigned by the repository on append.
func domainToEventModel(e domain.SessionEvent) (SessionEventModel, error) {
	var payload string
	if e.Payload != nil {
		data, err := json.Marshal(e.Payload)
		if err != nil {
			return SessionEventModel{}, fmt.Errorf("failed to marshal event payload: %w", err)
		}
		payload = string(data)
	}

	return SessionEventModel{
		CreatedAt: e.CreatedAt,
		ID:        e.ID,
		Payload:   payload,
		SessionID: e.SessionID,
		Type:      string(e.Type),
	}, nil
}

// commentModelToDomain converts a CommentModel to domain.Comment
func commentModelToDomain(m CommentModel) domain.Comment {
	return domain.Comment{
		Author:    m.Author,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
		ID:        m.ID,
		TicketID:  m.TicketID,
		Type:      m.Type,
	}
}

// domainToCommentModel converts a domain.Comment to CommentModel
func domainToCommentModel(c domain.Comment) CommentModel {
	return CommentModel{
		Author:    c.Author,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
		ID:        c.ID,
		TicketID:  c.TicketID,
		Type:      c.Type,
	}
}
