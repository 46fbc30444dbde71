package domain

import "time"

// SessionState represents the state of an unattended agent session
type SessionState string

const (
	SessionIdle         SessionState = "idle"
	SessionAnalyzing    SessionState = "analyzing"
	SessionImplementing SessionState = "implementing"
	SessionTesting      SessionState = "testing"
	SessionCommitting   SessionState = "committing"
	SessionReviewing    SessionState = "reviewing"
	SessionDone         SessionState = "done"
)

// ValidSessionStates returns all session states in intended order
func ValidSessionStates() []SessionState {
	return []SessionState{
		SessionIdle,
		SessionAnalyzing,
		SessionImplementing,
		SessionTesting,
		SessionCommitting,
		SessionReviewing,
		SessionDone,
	}
}

// IsValidSessionState checks if a state string is a known session state
func IsValidSessionState(state string) bool {
	for _, s := range ValidSessionStates() {
		if SessionState(state) == s {
			return true
		}
	}
	return false
}

// sessionEdges is the allowed transition table. The single back-edge
// testing->implementing models a failed test run sending work back.
var sessionEdges = map[SessionState][]SessionState{
	SessionIdle:         {SessionAnalyzing},
	SessionAnalyzing:    {SessionImplementing},
	SessionImplementing: {SessionTesting},
	SessionTesting:      {SessionCommitting, SessionImplementing},
	SessionCommitting:   {SessionReviewing},
	SessionReviewing:    {SessionDone},
	SessionDone:         {},
}

// CanTransition reports whether the session state machine allows
// moving from one state to another
func CanTransition(from, to SessionState) bool {
	for _, next := range sessionEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SessionOutcome represents the terminal outcome of a session
type SessionOutcome string

const (
	OutcomeSuccess   SessionOutcome = "success"
	OutcomeFailure   SessionOutcome = "failure"
	OutcomeTimeout   SessionOutcome = "timeout"
	OutcomeCancelled SessionOutcome = "cancelled"
)

// IsValidSessionOutcome checks if an outcome string is a known outcome
func IsValidSessionOutcome(outcome string) bool {
	switch SessionOutcome(outcome) {
	case OutcomeSuccess, OutcomeFailure, OutcomeTimeout, OutcomeCancelled:
		return true
	}
	return false
}

// TimestampLayout is the layout for history timestamps. Fixed-width UTC
// so that string comparison matches chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders a time in the sortable history layout
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// HistoryEntry is one entry of a session's ordered state history
type HistoryEntry struct {
	Metadata  map[string]string `json:"metadata,omitempty"`
	State     SessionState      `json:"state"`
	Timestamp string            `json:"timestamp"`
}

// Session represents one run of an unattended agent against a ticket
// (domain entity). Immutable once CompletedAt is set.
type Session struct {
	CompletedAt  *time.Time
	ErrorMessage string
	History      []HistoryEntry
	ID           string
	Outcome      *SessionOutcome
	StartedAt    time.Time
	State        SessionState
	TicketID     string
}

// Active reports whether the session is still running (not completed)
func (s *Session) Active() bool {
	return s.CompletedAt == nil
}

// SessionSummary is a compact session view for listings
type SessionSummary struct {
	CompletedAt   *time.Time
	HistoryLength int
	ID            string
	Outcome       *SessionOutcome
	StartedAt     time.Time
	State         SessionState
	TicketID      string
}
