package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obra/internal/domain"
	"obra/internal/logging"
)

func TestMain(m *testing.M) {
	logging.Initialize(false, "", 0)
	m.Run()
}

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "obra.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return repo
}

func seedProject(t *testing.T, repo *SQLiteRepository, id string) domain.Project {
	t.Helper()

	project := domain.Project{
		ID:        id,
		Name:      "acme",
		Path:      "/tmp/acme",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.AddProject(context.Background(), project))
	return project
}

func seedTicket(t *testing.T, repo *SQLiteRepository, id, projectID string, status domain.TicketStatus, position int) domain.Ticket {
	t.Helper()

	ticket := domain.Ticket{
		ID:          id,
		ProjectID:   projectID,
		Title:       "ticket " + id,
		Description: "a ticket",
		Status:      status,
		Position:    position,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.AddTicket(context.Background(), ticket))
	return ticket
}

func TestProjectRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedProject(t, repo, "p1")

	got, err := repo.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "acme", got.Name)
	assert.Equal(t, "/tmp/acme", got.Path)

	projects, err := repo.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestGetProject_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetProject(context.Background(), "missing")
	assert.True(t, domain.IsNotFound(err))
}

func TestTicketRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedProject(t, repo, "p1")
	seedTicket(t, repo, "t1", "p1", domain.StatusBacklog, 1)

	got, err := repo.GetTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBacklog, got.Status)
	assert.Nil(t, got.EpicID)

	require.NoError(t, repo.UpdateTicketStatus(ctx, "t1", domain.StatusInProgress))
	require.NoError(t, repo.UpdateTicketBranch(ctx, "t1", "feature/t1-ticket"))

	got, err = repo.GetTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, got.Status)
	assert.Equal(t, "feature/t1-ticket", got.BranchName)
}

func TestUpdateTicket_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.UpdateTicketStatus(context.Background(), "missing", domain.StatusReady)
	assert.True(t, domain.IsNotFound(err))
}

func TestListTicketsByEpic(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedProject(t, repo, "p1")
	epicID := "e1"
	require.NoError(t, repo.AddEpic(ctx, domain.Epic{
		ID:        epicID,
		ProjectID: "p1",
		Title:     "auth overhaul",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}))

	seedTicket(t, repo, "t1", "p1", domain.StatusBacklog, 2)
	seedTicket(t, repo, "t2", "p1", domain.StatusBacklog, 1)
	seedTicket(t, repo, "t3", "p1", domain.StatusBacklog, 3)

	require.NoError(t, repo.UpdateTicketEpic(ctx, "t1", &epicID))
	require.NoError(t, repo.UpdateTicketEpic(ctx, "t2", &epicID))

	tickets, err := repo.ListTicketsByEpic(ctx, epicID)
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	// Ordered by position
	assert.Equal(t, "t2", tickets[0].ID)
	assert.Equal(t, "t1", tickets[1].ID)
}

func TestNextActionableTicket(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedProject(t, repo, "p1")

	// No tickets at all
	got, err := repo.NextActionableTicket(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, got)

	seedTicket(t, repo, "t1", "p1", domain.StatusBacklog, 1)
	seedTicket(t, repo, "t2", "p1", domain.StatusDone, 2)

	// Backlog is chosen when nothing is ready
	got, err = repo.NextActionableTicket(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "t1", got.ID)

	// A ready ticket wins over backlog regardless of position
	seedTicket(t, repo, "t3", "p1", domain.StatusReady, 9)
	got, err = repo.NextActionableTicket(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "t3", got.ID)
}

func TestTicketWorkflowState_SaveAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedProject(t, repo, "p1")
	seedTicket(t, repo, "t1", "p1", domain.StatusInProgress, 1)

	_, err := repo.GetTicketWorkflowState(ctx, "t1")
	assert.True(t, domain.IsNotFound(err))

	now := time.Now().UTC()
	state := domain.TicketWorkflowState{
		TicketID:  "t1",
		Phase:     domain.PhaseImplementation,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.SaveTicketWorkflowState(ctx, state))

	got, err := repo.GetTicketWorkflowState(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseImplementation, got.Phase)

	// Save is an upsert
	state.Phase = domain.PhaseAIReview
	state.ReviewIteration = 1
	state.FindingsOpened = 3
	require.NoError(t, repo.SaveTicketWorkflowState(ctx, state))

	got, err = repo.GetTicketWorkflowState(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAIReview, got.Phase)
	assert.Equal(t, 1, got.ReviewIteration)
	assert.Equal(t, 3, got.FindingsOpened)
}

func TestDeleteEpic_UnlinksTickets(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedProject(t, repo, "p1")
	epicID := "e1"
	require.NoError(t, repo.AddEpic(ctx, domain.Epic{
		ID:        epicID,
		ProjectID: "p1",
		Title:     "auth overhaul",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}))
	require.NoError(t, repo.SaveEpicWorkflowState(ctx, domain.EpicWorkflowState{
		EpicID:     epicID,
		BranchName: "feature/epic-e1-auth-overhaul",
		UpdatedAt:  time.Now().UTC(),
	}))

	seedTicket(t, repo, "t1", "p1", domain.StatusBacklog, 1)
	require.NoError(t, repo.UpdateTicketEpic(ctx, "t1", &epicID))

	require.NoError(t, repo.DeleteEpic(ctx, epicID))

	_, err := repo.GetEpic(ctx, epicID)
	assert.True(t, domain.IsNotFound(err))

	_, err = repo.GetEpicWorkflowState(ctx, epicID)
	assert.True(t, domain.IsNotFound(err))

	ticket, err := repo.GetTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, ticket.EpicID)
}

func TestDeleteEpic_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.DeleteEpic(context.Background(), "missing")
	assert.True(t, domain.IsNotFound(err))
}

func TestSessionLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedProject(t, repo, "p1")
	seedTicket(t, repo, "t1", "p1", domain.StatusInProgress, 1)

	started := time.Now().UTC()
	session := domain.Session{
		ID:        "s1",
		TicketID:  "t1",
		State:     domain.SessionIdle,
		StartedAt: started,
		History: []domain.HistoryEntry{
			{State: domain.SessionIdle, Timestamp: domain.FormatTimestamp(started)},
		},
	}
	require.NoError(t, repo.AddSession(ctx, session))

	active, err := repo.GetActiveSession(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "s1", active.ID)
	require.Len(t, active.History, 1)
	assert.Equal(t, domain.SessionIdle, active.History[0].State)

	// Complete the session
	completed := started.Add(5 * time.Minute)
	outcome := domain.OutcomeSuccess
	session.State = domain.SessionDone
	session.CompletedAt = &completed
	session.Outcome = &outcome
	session.History = append(session.History, domain.HistoryEntry{
		State:     domain.SessionDone,
		Timestamp: domain.FormatTimestamp(completed),
	})
	require.NoError(t, repo.UpdateSession(ctx, session))

	active, err = repo.GetActiveSession(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, active)

	latest, err := repo.GetLatestSession(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionDone, latest.State)
	require.NotNil(t, latest.Outcome)
	assert.Equal(t, domain.OutcomeSuccess, *latest.Outcome)
	assert.Len(t, latest.History, 2)
}

func TestGetActiveSession_PicksNewest(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedProject(t, repo, "p1")
	seedTicket(t, repo, "t1", "p1", domain.StatusInProgress, 1)

	old := time.Now().UTC().Add(-time.Hour)
	outcome := domain.OutcomeFailure
	require.NoError(t, repo.AddSession(ctx, domain.Session{
		ID: "s1", TicketID: "t1", State: domain.SessionDone,
		StartedAt: old, CompletedAt: &old, Outcome: &outcome,
	}))
	require.NoError(t, repo.AddSession(ctx, domain.Session{
		ID: "s2", TicketID: "t1", State: domain.SessionAnalyzing,
		StartedAt: time.Now().UTC(),
	}))

	active, err := repo.GetActiveSession(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "s2", active.ID)
}

func TestListSessions_LimitAndOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedProject(t, repo, "p1")
	seedTicket(t, repo, "t1", "p1", domain.StatusInProgress, 1)

	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"s1", "s2", "s3"} {
		done := base.Add(time.Duration(i)*time.Minute + 30*time.Second)
		outcome := domain.OutcomeSuccess
		require.NoError(t, repo.AddSession(ctx, domain.Session{
			ID: id, TicketID: "t1", State: domain.SessionDone,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			CompletedAt: &done, Outcome: &outcome,
		}))
	}

	summaries, err := repo.ListSessions(ctx, "t1", 2)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	// Newest first
	assert.Equal(t, "s3", summaries[0].ID)
	assert.Equal(t, "s2", summaries[1].ID)
}

func TestAppendEvent_AssignsSequence(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedProject(t, repo, "p1")
	seedTicket(t, repo, "t1", "p1", domain.StatusInProgress, 1)
	require.NoError(t, repo.AddSession(ctx, domain.Session{
		ID: "s1", TicketID: "t1", State: domain.SessionIdle,
		StartedAt: time.Now().UTC(),
	}))

	for i, id := range []string{"ev1", "ev2", "ev3"} {
		require.NoError(t, repo.AppendEvent(ctx, domain.SessionEvent{
			ID:        id,
			SessionID: "s1",
			Type:      domain.EventProgress,
			Payload:   map[string]string{"step": id},
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Millisecond),
		}))
	}

	events, err := repo.ListEvents(ctx, "s1", "", 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "ev1", events[0].ID)
	assert.Equal(t, "ev3", events[2].ID)
	assert.Equal(t, map[string]string{"step": "ev2"}, events[1].Payload)
}

func TestListEvents_Cursor(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedProject(t, repo, "p1")
	seedTicket(t, repo, "t1", "p1", domain.StatusInProgress, 1)
	require.NoError(t, repo.AddSession(ctx, domain.Session{
		ID: "s1", TicketID: "t1", State: domain.SessionIdle,
		StartedAt: time.Now().UTC(),
	}))

	for _, id := range []string{"ev1", "ev2", "ev3", "ev4"} {
		require.NoError(t, repo.AppendEvent(ctx, domain.SessionEvent{
			ID:        id,
			SessionID: "s1",
			Type:      domain.EventToolStart,
			CreatedAt: time.Now().UTC(),
		}))
	}

	events, err := repo.ListEvents(ctx, "s1", "ev2", 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "ev3", events[0].ID)
	assert.Equal(t, "ev4", events[1].ID)

	events, err = repo.ListEvents(ctx, "s1", "ev2", 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ev3", events[0].ID)

	_, err = repo.ListEvents(ctx, "s1", "missing", 0)
	assert.True(t, domain.IsNotFound(err))
}

func TestComments(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedProject(t, repo, "p1")
	seedTicket(t, repo, "t1", "p1", domain.StatusInProgress, 1)

	require.NoError(t, repo.AddComment(ctx, domain.Comment{
		ID:        "c1",
		TicketID:  "t1",
		Author:    domain.CommentAuthorSystem,
		Type:      domain.CommentTypeWorkSummary,
		Body:      "work completed on feature/t1-ticket",
		CreatedAt: time.Now().UTC(),
	}))

	comments, err := repo.ListComments(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, domain.CommentAuthorSystem, comments[0].Author)
}
