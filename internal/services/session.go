package services

import (
	"context"
	"fmt"
	"strings"

	"obra/internal/domain"
	"obra/internal/logging"
	"obra/internal/ports"
	"obra/internal/state"
)

// SessionService runs the unattended-agent session state machine. The
// store is authoritative; the projected file under the project checkout
// is a best-effort mirror for out-of-process hooks.
type SessionService struct {
	clock ports.Clock
	ids   ports.IDGenerator
	store ports.Store
}

// NewSessionService creates a new SessionService
func NewSessionService(store ports.Store, clock ports.Clock, ids ports.IDGenerator) *SessionService {
	return &SessionService{
		clock: clock,
		ids:   ids,
		store: store,
	}
}

// Create starts a new session for a ticket in state idle. At most one
// active session per ticket is allowed.
func (s *SessionService) Create(ctx context.Context, ticketID string) (*CreateSessionResult, error) {
	ticket, err := s.store.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	active, err := s.store.GetActiveSession(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, domain.NewInvalidStateError("session", string(active.State), "no active session", "create session")
	}

	now := s.clock.Now()
	session := domain.Session{
		ID:        s.ids.NewID(),
		TicketID:  ticket.ID,
		State:     domain.SessionIdle,
		StartedAt: now,
		History: []domain.HistoryEntry{
			{State: domain.SessionIdle, Timestamp: domain.FormatTimestamp(now)},
		},
	}
	if err := s.store.AddSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	result := &CreateSessionResult{Session: &session}

	if warn := s.projectFile(ctx, &session); warn != "" {
		result.Warnings = append(result.Warnings, warn)
	} else {
		result.StateFileWritten = true
	}

	if err := s.appendStateChange(ctx, session.ID, "", domain.SessionIdle, nil); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("failed to append event: %v", err))
	}

	logging.Logger.Info("session created", "session_id", session.ID, "ticket_id", ticket.ID)
	return result, nil
}

// UpdateState transitions a session to a new state, appending to its
// history, refreshing the projected file, and mirroring the transition
// into the event log.
func (s *SessionService) UpdateState(ctx context.Context, sessionID, newState string, metadata map[string]string) (*UpdateStateResult, error) {
	if !domain.IsValidSessionState(newState) {
		return nil, domain.NewValidationError("unknown session state %q", newState)
	}
	to := domain.SessionState(newState)

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Active() {
		return nil, domain.NewInvalidStateError("session", string(session.State), "active", "update state")
	}
	if !domain.CanTransition(session.State, to) {
		return nil, domain.NewInvalidStateError("session", string(session.State),
			allowedTransitions(session.State), fmt.Sprintf("transition to %s", to))
	}

	prev := session.State
	session.State = to
	session.History = append(session.History, domain.HistoryEntry{
		Metadata:  metadata,
		State:     to,
		Timestamp: domain.FormatTimestamp(s.clock.Now()),
	})
	if err := s.store.UpdateSession(ctx, *session); err != nil {
		return nil, fmt.Errorf("failed to persist transition: %w", err)
	}

	result := &UpdateStateResult{PreviousState: prev, Session: session}

	if warn := s.projectFile(ctx, session); warn != "" {
		result.Warnings = append(result.Warnings, warn)
	} else {
		result.StateFileWritten = true
	}

	if err := s.appendStateChange(ctx, session.ID, prev, to, metadata); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("failed to append event: %v", err))
	}

	logging.Logger.Debug("session transition", "session_id", session.ID, "from", prev, "to", to)
	return result, nil
}

// Complete finishes a session with a terminal outcome, removes the
// projected file, and appends the final transition event. A completed
// session accepts no further operations.
func (s *SessionService) Complete(ctx context.Context, sessionID, outcome, errorMessage string) (*CompleteSessionResult, error) {
	if !domain.IsValidSessionOutcome(outcome) {
		return nil, domain.NewValidationError("unknown session outcome %q", outcome)
	}
	o := domain.SessionOutcome(outcome)

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Active() {
		return nil, domain.NewInvalidStateError("session", string(session.State), "active", "complete session")
	}

	now := s.clock.Now()
	prev := session.State

	// The terminal history entry is skipped if the caller already
	// transitioned to done explicitly
	if session.State != domain.SessionDone {
		meta := map[string]string{"outcome": outcome}
		if errorMessage != "" {
			meta["error"] = errorMessage
		}
		session.History = append(session.History, domain.HistoryEntry{
			Metadata:  meta,
			State:     domain.SessionDone,
			Timestamp: domain.FormatTimestamp(now),
		})
		session.State = domain.SessionDone
	}

	session.CompletedAt = &now
	session.Outcome = &o
	session.ErrorMessage = errorMessage
	if err := s.store.UpdateSession(ctx, *session); err != nil {
		return nil, fmt.Errorf("failed to complete session: %w", err)
	}

	result := &CompleteSessionResult{Session: session}

	if root, err := s.repoRootFor(ctx, session.TicketID); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("failed to locate project checkout: %v", err))
	} else if err := state.Remove(root); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("failed to remove session file: %v", err))
	}

	meta := map[string]string{"outcome": outcome}
	if errorMessage != "" {
		meta["error"] = errorMessage
	}
	if err := s.appendStateChange(ctx, session.ID, prev, domain.SessionDone, meta); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("failed to append event: %v", err))
	}

	logging.Logger.Info("session completed", "session_id", session.ID, "outcome", outcome)
	return result, nil
}

// Get looks a session up by exactly one of its id or its ticket's id.
// Ticket lookups return the most recently started session.
func (s *SessionService) Get(ctx context.Context, sessionID, ticketID string) (*domain.Session, error) {
	switch {
	case sessionID == "" && ticketID == "":
		return nil, domain.NewValidationError("either a session id or a ticket id is required")
	case sessionID != "" && ticketID != "":
		return nil, domain.NewValidationError("provide a session id or a ticket id, not both")
	case sessionID != "":
		return s.store.GetSession(ctx, sessionID)
	default:
		return s.store.GetLatestSession(ctx, ticketID)
	}
}

// List returns session summaries for a ticket, newest first
func (s *SessionService) List(ctx context.Context, ticketID string, limit int) ([]domain.SessionSummary, error) {
	return s.store.ListSessions(ctx, ticketID, limit)
}

// RecordEvent appends an arbitrary event reported by the external agent
// to an active session's stream.
func (s *SessionService) RecordEvent(ctx context.Context, sessionID, eventType string, payload map[string]string) (*domain.SessionEvent, error) {
	if !domain.IsValidEventType(eventType) {
		return nil, domain.NewValidationError("unknown event type %q", eventType)
	}

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Active() {
		return nil, domain.NewInvalidStateError("session", string(session.State), "active", "record event")
	}

	event := domain.SessionEvent{
		ID:        s.ids.NewID(),
		SessionID: session.ID,
		Type:      domain.EventType(eventType),
		Payload:   payload,
		CreatedAt: s.clock.Now(),
	}
	if err := s.store.AppendEvent(ctx, event); err != nil {
		return nil, err
	}
	return &event, nil
}

// ListEvents returns a session's events after the given cursor, oldest first
func (s *SessionService) ListEvents(ctx context.Context, sessionID, sinceID string, limit int) ([]domain.SessionEvent, error) {
	return s.store.ListEvents(ctx, sessionID, sinceID, limit)
}

// appendStateChange mirrors a transition into the event log. Only the
// message, file, and testResult metadata keys are copied through.
func (s *SessionService) appendStateChange(ctx context.Context, sessionID string, from, to domain.SessionState, metadata map[string]string) error {
	payload := map[string]string{"to": string(to)}
	if from != "" {
		payload["from"] = string(from)
	}
	for _, key := range []string{"message", "file", "testResult", "outcome", "error"} {
		if v, ok := metadata[key]; ok {
			payload[key] = v
		}
	}

	return s.store.AppendEvent(ctx, domain.SessionEvent{
		ID:        s.ids.NewID(),
		SessionID: sessionID,
		Type:      domain.EventStateChange,
		Payload:   payload,
		CreatedAt: s.clock.Now(),
	})
}

// projectFile refreshes the projected session file under the project
// checkout. Returns a warning string instead of an error; the file is
// advisory and never blocks the state machine.
func (s *SessionService) projectFile(ctx context.Context, session *domain.Session) string {
	root, err := s.repoRootFor(ctx, session.TicketID)
	if err != nil {
		return fmt.Sprintf("failed to locate project checkout: %v", err)
	}

	names := make([]string, 0, len(session.History))
	for _, entry := range session.History {
		names = append(names, string(entry.State))
	}

	if err := state.Write(root, &state.SessionFile{
		History:   names,
		SessionID: session.ID,
		StartedAt: domain.FormatTimestamp(session.StartedAt),
		State:     string(session.State),
		TicketID:  session.TicketID,
	}); err != nil {
		return fmt.Sprintf("failed to write session file: %v", err)
	}
	return ""
}

// repoRootFor resolves the checkout path of the project owning a ticket
func (s *SessionService) repoRootFor(ctx context.Context, ticketID string) (string, error) {
	ticket, err := s.store.GetTicket(ctx, ticketID)
	if err != nil {
		return "", err
	}
	project, err := s.store.GetProject(ctx, ticket.ProjectID)
	if err != nil {
		return "", err
	}
	return project.Path, nil
}

// allowedTransitions renders the legal target states from a state
func allowedTransitions(from domain.SessionState) string {
	var targets []string
	for _, to := range domain.ValidSessionStates() {
		if domain.CanTransition(from, to) {
			targets = append(targets, string(to))
		}
	}
	if len(targets) == 0 {
		return "no further transitions"
	}
	return strings.Join(targets, " or ")
}
