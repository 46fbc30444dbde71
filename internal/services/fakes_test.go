package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"obra/internal/domain"
	"obra/internal/ports"
)

// fakeStore is an in-memory ports.Store for service tests. Individual
// error hooks let tests fail specific calls.
type fakeStore struct {
	comments   []domain.Comment
	epics      map[string]*domain.Epic
	epicStates map[string]*domain.EpicWorkflowState
	events     []domain.SessionEvent
	projects   map[string]*domain.Project
	sessions   map[string]*domain.Session
	tickets    map[string]*domain.Ticket
	tktStates  map[string]*domain.TicketWorkflowState

	addCommentErr   error
	appendEventErr  error
	nextTicketErr   error
	saveTktStateErr error
}

var _ ports.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		epics:      make(map[string]*domain.Epic),
		epicStates: make(map[string]*domain.EpicWorkflowState),
		projects:   make(map[string]*domain.Project),
		sessions:   make(map[string]*domain.Session),
		tickets:    make(map[string]*domain.Ticket),
		tktStates:  make(map[string]*domain.TicketWorkflowState),
	}
}

func (f *fakeStore) AddProject(ctx context.Context, p domain.Project) error {
	f.projects[p.ID] = &p
	return nil
}

func (f *fakeStore) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, domain.NewNotFoundError("project", id)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var out []domain.Project
	for _, p := range f.projects {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeStore) AddTicket(ctx context.Context, t domain.Ticket) error {
	f.tickets[t.ID] = &t
	return nil
}

func (f *fakeStore) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	t, ok := f.tickets[id]
	if !ok {
		return nil, domain.NewNotFoundError("ticket", id)
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStore) ListTickets(ctx context.Context, projectID string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range f.tickets {
		if t.ProjectID == projectID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeStore) ListTicketsByEpic(ctx context.Context, epicID string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range f.tickets {
		if t.EpicID != nil && *t.EpicID == epicID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeStore) NextActionableTicket(ctx context.Context, projectID string) (*domain.Ticket, error) {
	if f.nextTicketErr != nil {
		return nil, f.nextTicketErr
	}
	for _, status := range []domain.TicketStatus{domain.StatusReady, domain.StatusBacklog} {
		var best *domain.Ticket
		for _, t := range f.tickets {
			if t.ProjectID != projectID || t.Status != status {
				continue
			}
			if best == nil || t.Position < best.Position {
				cp := *t
				best = &cp
			}
		}
		if best != nil {
			return best, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdateTicketStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	t, ok := f.tickets[id]
	if !ok {
		return domain.NewNotFoundError("ticket", id)
	}
	t.Status = status
	return nil
}

func (f *fakeStore) UpdateTicketBranch(ctx context.Context, id, branchName string) error {
	t, ok := f.tickets[id]
	if !ok {
		return domain.NewNotFoundError("ticket", id)
	}
	t.BranchName = branchName
	return nil
}

func (f *fakeStore) UpdateTicketEpic(ctx context.Context, id string, epicID *string) error {
	t, ok := f.tickets[id]
	if !ok {
		return domain.NewNotFoundError("ticket", id)
	}
	t.EpicID = epicID
	return nil
}

func (f *fakeStore) UpdateTicketPosition(ctx context.Context, id string, position int) error {
	t, ok := f.tickets[id]
	if !ok {
		return domain.NewNotFoundError("ticket", id)
	}
	t.Position = position
	return nil
}

func (f *fakeStore) GetTicketWorkflowState(ctx context.Context, ticketID string) (*domain.TicketWorkflowState, error) {
	ws, ok := f.tktStates[ticketID]
	if !ok {
		return nil, domain.NewNotFoundError("ticket workflow state", ticketID)
	}
	cp := *ws
	return &cp, nil
}

func (f *fakeStore) SaveTicketWorkflowState(ctx context.Context, state domain.TicketWorkflowState) error {
	if f.saveTktStateErr != nil {
		return f.saveTktStateErr
	}
	f.tktStates[state.TicketID] = &state
	return nil
}

func (f *fakeStore) AddEpic(ctx context.Context, e domain.Epic) error {
	f.epics[e.ID] = &e
	return nil
}

func (f *fakeStore) GetEpic(ctx context.Context, id string) (*domain.Epic, error) {
	e, ok := f.epics[id]
	if !ok {
		return nil, domain.NewNotFoundError("epic", id)
	}
	cp := *e
	return &cp, nil
}

func (f *fakeStore) ListEpics(ctx context.Context, projectID string) ([]domain.Epic, error) {
	var out []domain.Epic
	for _, e := range f.epics {
		if e.ProjectID == projectID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteEpic(ctx context.Context, id string) error {
	if _, ok := f.epics[id]; !ok {
		return domain.NewNotFoundError("epic", id)
	}
	for _, t := range f.tickets {
		if t.EpicID != nil && *t.EpicID == id {
			t.EpicID = nil
		}
	}
	delete(f.epics, id)
	delete(f.epicStates, id)
	return nil
}

func (f *fakeStore) GetEpicWorkflowState(ctx context.Context, epicID string) (*domain.EpicWorkflowState, error) {
	ws, ok := f.epicStates[epicID]
	if !ok {
		return nil, domain.NewNotFoundError("epic workflow state", epicID)
	}
	cp := *ws
	return &cp, nil
}

func (f *fakeStore) SaveEpicWorkflowState(ctx context.Context, state domain.EpicWorkflowState) error {
	f.epicStates[state.EpicID] = &state
	return nil
}

func (f *fakeStore) AddSession(ctx context.Context, s domain.Session) error {
	f.sessions[s.ID] = &s
	return nil
}

func (f *fakeStore) UpdateSession(ctx context.Context, s domain.Session) error {
	if _, ok := f.sessions[s.ID]; !ok {
		return domain.NewNotFoundError("session", s.ID)
	}
	f.sessions[s.ID] = &s
	return nil
}

func (f *fakeStore) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, domain.NewNotFoundError("session", id)
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) GetActiveSession(ctx context.Context, ticketID string) (*domain.Session, error) {
	var newest *domain.Session
	for _, s := range f.sessions {
		if s.TicketID != ticketID || s.CompletedAt != nil {
			continue
		}
		if newest == nil || s.StartedAt.After(newest.StartedAt) {
			cp := *s
			newest = &cp
		}
	}
	return newest, nil
}

func (f *fakeStore) GetLatestSession(ctx context.Context, ticketID string) (*domain.Session, error) {
	var newest *domain.Session
	for _, s := range f.sessions {
		if s.TicketID != ticketID {
			continue
		}
		if newest == nil || s.StartedAt.After(newest.StartedAt) {
			cp := *s
			newest = &cp
		}
	}
	if newest == nil {
		return nil, domain.NewNotFoundError("session for ticket", ticketID)
	}
	return newest, nil
}

func (f *fakeStore) ListSessions(ctx context.Context, ticketID string, limit int) ([]domain.SessionSummary, error) {
	var out []domain.SessionSummary
	for _, s := range f.sessions {
		if s.TicketID != ticketID {
			continue
		}
		out = append(out, domain.SessionSummary{
			CompletedAt:   s.CompletedAt,
			HistoryLength: len(s.History),
			ID:            s.ID,
			Outcome:       s.Outcome,
			StartedAt:     s.StartedAt,
			State:         s.State,
			TicketID:      s.TicketID,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) AppendEvent(ctx context.Context, e domain.SessionEvent) error {
	if f.appendEventErr != nil {
		return f.appendEventErr
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakeStore) ListEvents(ctx context.Context, sessionID, sinceID string, limit int) ([]domain.SessionEvent, error) {
	start := 0
	if sinceID != "" {
		found := false
		for i, e := range f.events {
			if e.ID == sinceID {
				start = i + 1
				found = true
				break
			}
		}
		if !found {
			return nil, domain.NewNotFoundError("event", sinceID)
		}
	}

	var out []domain.SessionEvent
	for _, e := range f.events[start:] {
		if e.SessionID != sessionID {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) AddComment(ctx context.Context, c domain.Comment) error {
	if f.addCommentErr != nil {
		return f.addCommentErr
	}
	f.comments = append(f.comments, c)
	return nil
}

func (f *fakeStore) ListComments(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, c := range f.comments {
		if c.TicketID == ticketID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) Close() error {
	return nil
}

// eventsOfType filters the recorded events by type
func (f *fakeStore) eventsOfType(t domain.EventType) []domain.SessionEvent {
	var out []domain.SessionEvent
	for _, e := range f.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// fakeGit is an in-memory ports.GitRepository. Branches are a set;
// checkout and create record their calls and can be forced to fail.
type fakeGit struct {
	branches map[string]bool
	current  string
	isRepo   bool
	stats    *domain.WorkStats
	statsErr error

	checkoutFails map[string]string
	createFails   map[string]string

	checkouts []string
	creates   []string
}

var _ ports.GitRepository = (*fakeGit)(nil)

func newFakeGit(branches ...string) *fakeGit {
	g := &fakeGit{
		branches:      make(map[string]bool),
		checkoutFails: make(map[string]string),
		createFails:   make(map[string]string),
		isRepo:        true,
	}
	for _, b := range branches {
		g.branches[b] = true
	}
	if len(branches) > 0 {
		g.current = branches[0]
	}
	return g
}

func (g *fakeGit) Run(command, workingDir string) ports.GitResult {
	return ports.GitResult{Success: true}
}

func (g *fakeGit) BranchExists(name, workingDir string) bool {
	return g.branches[name]
}

func (g *fakeGit) Checkout(name, workingDir string) ports.GitResult {
	g.checkouts = append(g.checkouts, name)
	if msg, ok := g.checkoutFails[name]; ok {
		return ports.GitResult{Output: msg}
	}
	if !g.branches[name] {
		return ports.GitResult{Output: fmt.Sprintf("pathspec %q did not match", name)}
	}
	g.current = name
	return ports.GitResult{Success: true}
}

func (g *fakeGit) CreateBranch(name, workingDir string) ports.GitResult {
	g.creates = append(g.creates, name)
	if msg, ok := g.createFails[name]; ok {
		return ports.GitResult{Output: msg}
	}
	g.branches[name] = true
	g.current = name
	return ports.GitResult{Success: true}
}

func (g *fakeGit) IsGitRepo(path string) (bool, string) {
	return g.isRepo, path
}

func (g *fakeGit) CurrentBranch(path string) string {
	return g.current
}

func (g *fakeGit) FetchWorkStats(ctx context.Context, workingDir, baseBranch string) (*domain.WorkStats, error) {
	if g.statsErr != nil {
		return nil, g.statsErr
	}
	if g.stats != nil {
		return g.stats, nil
	}
	return &domain.WorkStats{FetchedAt: time.Now().UTC()}, nil
}

// fixedClock advances by a second on every read so history timestamps
// are distinct and sortable
type fixedClock struct {
	now time.Time
}

func newFixedClock() *fixedClock {
	return &fixedClock{now: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

// seqIDs generates deterministic identifiers
type seqIDs struct {
	prefix string
	n      int
}

func (g *seqIDs) NewID() string {
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
