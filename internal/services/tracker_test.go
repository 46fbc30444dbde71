package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obra/internal/domain"
)

func newTracker(t *testing.T) (*TrackerService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	return NewTrackerService(store, newFixedClock(), &seqIDs{prefix: "id"}), store
}

func TestAddProject(t *testing.T) {
	svc, _ := newTracker(t)
	ctx := context.Background()

	project, err := svc.AddProject(ctx, "acme", "/work/acme")
	require.NoError(t, err)
	assert.NotEmpty(t, project.ID)

	got, err := svc.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme", got.Name)

	_, err = svc.AddProject(ctx, "", "/work/acme")
	assert.True(t, domain.IsValidation(err))
	_, err = svc.AddProject(ctx, "acme", "  ")
	assert.True(t, domain.IsValidation(err))
}

func TestAddTicket_AppendsToBacklog(t *testing.T) {
	svc, _ := newTracker(t)
	ctx := context.Background()

	project, err := svc.AddProject(ctx, "acme", "/work/acme")
	require.NoError(t, err)

	first, err := svc.AddTicket(ctx, project.ID, "Fix login bug", "")
	require.NoError(t, err)
	second, err := svc.AddTicket(ctx, project.ID, "Add logout", "")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusBacklog, first.Status)
	assert.Equal(t, 1, first.Position)
	assert.Equal(t, 2, second.Position)

	_, err = svc.AddTicket(ctx, "missing", "Orphan", "")
	assert.True(t, domain.IsNotFound(err))
}

func TestSetTicketStatus(t *testing.T) {
	svc, _ := newTracker(t)
	ctx := context.Background()

	project, err := svc.AddProject(ctx, "acme", "/work/acme")
	require.NoError(t, err)
	ticket, err := svc.AddTicket(ctx, project.ID, "Fix login bug", "")
	require.NoError(t, err)

	updated, err := svc.SetTicketStatus(ctx, ticket.ID, "ready")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, updated.Status)

	_, err = svc.SetTicketStatus(ctx, ticket.ID, "stuck")
	assert.True(t, domain.IsValidation(err))
}

func TestAssignTicketEpic(t *testing.T) {
	svc, _ := newTracker(t)
	ctx := context.Background()

	project, err := svc.AddProject(ctx, "acme", "/work/acme")
	require.NoError(t, err)
	ticket, err := svc.AddTicket(ctx, project.ID, "Fix login bug", "")
	require.NoError(t, err)
	epic, err := svc.AddEpic(ctx, project.ID, "Auth Overhaul", "")
	require.NoError(t, err)

	linked, err := svc.AssignTicketEpic(ctx, ticket.ID, epic.ID)
	require.NoError(t, err)
	require.NotNil(t, linked.EpicID)
	assert.Equal(t, epic.ID, *linked.EpicID)

	unlinked, err := svc.AssignTicketEpic(ctx, ticket.ID, "")
	require.NoError(t, err)
	assert.Nil(t, unlinked.EpicID)

	_, err = svc.AssignTicketEpic(ctx, ticket.ID, "missing")
	assert.True(t, domain.IsNotFound(err))
}
