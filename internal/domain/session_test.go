package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_AllowedEdges(t *testing.T) {
	tests := []struct {
		from SessionState
		to   SessionState
	}{
		{SessionIdle, SessionAnalyzing},
		{SessionAnalyzing, SessionImplementing},
		{SessionImplementing, SessionTesting},
		{SessionTesting, SessionCommitting},
		{SessionTesting, SessionImplementing}, // test failure back-edge
		{SessionCommitting, SessionReviewing},
		{SessionReviewing, SessionDone},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.True(t, CanTransition(tt.from, tt.to))
		})
	}
}

func TestCanTransition_RejectedEdges(t *testing.T) {
	tests := []struct {
		from SessionState
		to   SessionState
	}{
		{SessionIdle, SessionImplementing},
		{SessionIdle, SessionDone},
		{SessionAnalyzing, SessionIdle},
		{SessionImplementing, SessionImplementing},
		{SessionCommitting, SessionTesting},
		{SessionDone, SessionIdle},
		{SessionDone, SessionAnalyzing},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.False(t, CanTransition(tt.from, tt.to))
		})
	}
}

func TestIsValidSessionState(t *testing.T) {
	for _, s := range ValidSessionStates() {
		assert.True(t, IsValidSessionState(string(s)))
	}
	assert.False(t, IsValidSessionState("sleeping"))
	assert.False(t, IsValidSessionState(""))
}

func TestIsValidSessionOutcome(t *testing.T) {
	for _, o := range []string{"success", "failure", "timeout", "cancelled"} {
		assert.True(t, IsValidSessionOutcome(o))
	}
	assert.False(t, IsValidSessionOutcome("crashed"))
}

func TestFormatTimestamp_SortableOrdering(t *testing.T) {
	earlier := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	later := earlier.Add(1500 * time.Millisecond)

	a := FormatTimestamp(earlier)
	b := FormatTimestamp(later)
	assert.Less(t, a, b, "string comparison must match chronological order")
	assert.Len(t, a, len(b), "timestamps must be fixed width")
}

func TestSessionActive(t *testing.T) {
	s := &Session{}
	assert.True(t, s.Active())

	now := time.Now().UTC()
	s.CompletedAt = &now
	assert.False(t, s.Active())
}
