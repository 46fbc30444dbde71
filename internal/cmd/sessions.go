package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"obra/internal/domain"
	"obra/internal/theme"
)

// SessionsCmd groups session commands
type SessionsCmd struct {
	Start    SessionsStartCmd    `cmd:"start" help:"Create a session for a ticket"`
	SetState SessionsSetStateCmd `cmd:"set-state" help:"Transition a session to a new state"`
	Complete SessionsCompleteCmd `cmd:"complete" help:"Complete a session with a terminal outcome"`
	View     SessionsViewCmd     `cmd:"view" help:"View a session by session id or ticket id"`
	List     SessionsListCmd     `cmd:"list" help:"List a ticket's sessions"`
	Events   SessionsEventsCmd   `cmd:"events" help:"List or follow a session's event stream"`
	Emit     SessionsEmitCmd     `cmd:"emit" help:"Append an event to a session" hidden:""`
}

// SessionsStartCmd creates a session
type SessionsStartCmd struct {
	Ticket string `arg:"" help:"Ticket id"`
}

// Run executes the start command
func (s *SessionsStartCmd) Run(cli *CLI) error {
	res, err := cli.Container.SessionService.Create(context.Background(), s.Ticket)
	if err != nil {
		return err
	}

	printWarnings(res.Warnings)
	fmt.Printf("Created session %s in state %s\n", res.Session.ID,
		theme.SessionStateStyle(string(res.Session.State)).Render(string(res.Session.State)))
	if !res.StateFileWritten {
		fmt.Println(theme.WarningStyle.Render("warning: session file not written, hooks will not see this session"))
	}
	return nil
}

// SessionsSetStateCmd transitions a session
type SessionsSetStateCmd struct {
	ID       string   `arg:"" help:"Session id"`
	State    string   `arg:"" help:"Target state" enum:"idle,analyzing,implementing,testing,committing,reviewing,done"`
	Metadata []string `help:"Metadata entries as key=value (e.g. message=..., file=..., testResult=...)"`
}

// Run executes the set-state command
func (s *SessionsSetStateCmd) Run(cli *CLI) error {
	metadata, err := parseMetadata(s.Metadata)
	if err != nil {
		return err
	}

	res, err := cli.Container.SessionService.UpdateState(context.Background(), s.ID, s.State, metadata)
	if err != nil {
		return err
	}

	printWarnings(res.Warnings)
	fmt.Printf("Session %s: %s -> %s\n", res.Session.ID,
		res.PreviousState,
		theme.SessionStateStyle(string(res.Session.State)).Render(string(res.Session.State)))
	return nil
}

// SessionsCompleteCmd finishes a session
type SessionsCompleteCmd struct {
	ID      string `arg:"" help:"Session id"`
	Outcome string `arg:"" help:"Terminal outcome" enum:"success,failure,timeout,cancelled"`
	Error   string `help:"Error message for failed sessions"`
}

// Run executes the complete command
func (s *SessionsCompleteCmd) Run(cli *CLI) error {
	res, err := cli.Container.SessionService.Complete(context.Background(), s.ID, s.Outcome, s.Error)
	if err != nil {
		return err
	}

	printWarnings(res.Warnings)
	fmt.Printf("Session %s completed: %s\n", res.Session.ID, s.Outcome)
	return nil
}

// SessionsViewCmd shows a session
type SessionsViewCmd struct {
	ID     string `help:"Session id" xor:"ref"`
	Ticket string `help:"Ticket id (shows the ticket's latest session)" xor:"ref"`
	Format string `help:"Output format: table or json" enum:"table,json" default:"table"`
}

// Run executes the view command
func (s *SessionsViewCmd) Run(cli *CLI) error {
	session, err := cli.Container.SessionService.Get(context.Background(), s.ID, s.Ticket)
	if err != nil {
		return err
	}

	if s.Format == "json" {
		return printJSON(session)
	}

	fmt.Printf("Session: %s\n", session.ID)
	fmt.Printf("Ticket: %s\n", session.TicketID)
	fmt.Printf("State: %s\n", theme.SessionStateStyle(string(session.State)).Render(string(session.State)))
	fmt.Printf("Started: %s\n", session.StartedAt.Format("2006-01-02 15:04:05"))
	if session.CompletedAt != nil {
		fmt.Printf("Completed: %s\n", session.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	if session.Outcome != nil {
		fmt.Printf("Outcome: %s\n", *session.Outcome)
	}
	if session.ErrorMessage != "" {
		fmt.Printf("Error: %s\n", theme.ErrorStyle.Render(session.ErrorMessage))
	}

	fmt.Println()
	fmt.Println(theme.HeaderStyle.Render("History"))
	for _, entry := range session.History {
		line := fmt.Sprintf("  %s %s", entry.Timestamp,
			theme.SessionStateStyle(string(entry.State)).Render(string(entry.State)))
		if len(entry.Metadata) > 0 {
			line += " " + theme.BranchStyle.Render(formatMetadata(entry.Metadata))
		}
		fmt.Println(line)
	}
	return nil
}

// SessionsListCmd lists a ticket's sessions
type SessionsListCmd struct {
	Ticket string `arg:"" help:"Ticket id"`
	Limit  int    `help:"Maximum number of sessions to show" default:"20"`
	Format string `help:"Output format: table or json" enum:"table,json" default:"table"`
}

// Run executes the list command
func (s *SessionsListCmd) Run(cli *CLI) error {
	summaries, err := cli.Container.SessionService.List(context.Background(), s.Ticket, s.Limit)
	if err != nil {
		return err
	}

	if s.Format == "json" {
		return printJSON(summaries)
	}

	if len(summaries) == 0 {
		fmt.Println("No sessions yet")
		return nil
	}

	fmt.Println(theme.HeaderStyle.Render(fmt.Sprintf("%-38s %-14s %-10s %-8s %s", "ID", "STATE", "OUTCOME", "STEPS", "STARTED")))
	for _, sum := range summaries {
		outcome := "-"
		if sum.Outcome != nil {
			outcome = string(*sum.Outcome)
		}
		state := theme.SessionStateStyle(string(sum.State)).Render(fmt.Sprintf("%-14s", sum.State))
		fmt.Printf("%-38s %s %-10s %-8d %s\n",
			sum.ID, state, outcome, sum.HistoryLength,
			sum.StartedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// SessionsEventsCmd lists or follows a session's event stream
type SessionsEventsCmd struct {
	ID       string        `arg:"" help:"Session id"`
	Since    string        `help:"Only show events after this event id"`
	Limit    int           `help:"Maximum number of events per fetch" default:"100"`
	Follow   bool          `help:"Poll for new events until interrupted" short:"f"`
	Interval time.Duration `help:"Polling interval when following" default:"2s"`
}

// Run executes the events command
func (s *SessionsEventsCmd) Run(cli *CLI) error {
	ctx := context.Background()
	cursor := s.Since

	for {
		events, err := cli.Container.SessionService.ListEvents(ctx, s.ID, cursor, s.Limit)
		if err != nil {
			return err
		}

		for _, event := range events {
			printEvent(event)
			cursor = event.ID
		}

		if !s.Follow {
			return nil
		}
		time.Sleep(s.Interval)
	}
}

// SessionsEmitCmd appends an agent-reported event to a session
type SessionsEmitCmd struct {
	ID      string   `arg:"" help:"Session id"`
	Type    string   `arg:"" help:"Event type" enum:"thinking,tool_start,tool_end,file_change,progress,error"`
	Payload []string `help:"Payload entries as key=value"`
}

// Run executes the emit command
func (s *SessionsEmitCmd) Run(cli *CLI) error {
	payload, err := parseMetadata(s.Payload)
	if err != nil {
		return err
	}

	event, err := cli.Container.SessionService.RecordEvent(context.Background(), s.ID, s.Type, payload)
	if err != nil {
		return err
	}

	fmt.Printf("Appended %s event %s\n", event.Type, event.ID)
	return nil
}

// parseMetadata parses key=value pairs from the command line
func parseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata entry %q, expected key=value", pair)
		}
		out[key] = value
	}
	return out, nil
}

// formatMetadata renders metadata as stable key=value text
func formatMetadata(metadata map[string]string) string {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+metadata[k])
	}
	return strings.Join(parts, " ")
}

func printEvent(event domain.SessionEvent) {
	line := fmt.Sprintf("%s %-13s", event.CreatedAt.Format("15:04:05.000"), event.Type)
	if len(event.Payload) > 0 {
		line += " " + formatMetadata(event.Payload)
	}
	if event.Type == domain.EventError {
		line = theme.ErrorStyle.Render(line)
	}
	fmt.Println(line)
}
