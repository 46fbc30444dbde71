package cmd

import (
	"context"
	"fmt"

	"obra/internal/theme"
)

// TicketsCmd groups ticket commands
type TicketsCmd struct {
	Add      TicketsAddCmd      `cmd:"add" help:"Create a ticket in the backlog"`
	List     TicketsListCmd     `cmd:"list" help:"List a project's tickets"`
	View     TicketsViewCmd     `cmd:"view" help:"View a ticket with its comments"`
	Status   TicketsStatusCmd   `cmd:"status" help:"Set a ticket's status"`
	Move     TicketsMoveCmd     `cmd:"move" help:"Reorder a ticket within its project"`
	Epic     TicketsEpicCmd     `cmd:"epic" help:"Link a ticket to an epic (or unlink)"`
	Start    TicketsStartCmd    `cmd:"start" help:"Start work on a ticket (resolves a git branch)"`
	Complete TicketsCompleteCmd `cmd:"complete" help:"Complete work and hand the ticket to review"`
}

// TicketsAddCmd creates a ticket
type TicketsAddCmd struct {
	Project     string `arg:"" help:"Project id"`
	Title       string `arg:"" help:"Ticket title"`
	Description string `help:"Ticket description"`
}

// Run executes the add command
func (t *TicketsAddCmd) Run(cli *CLI) error {
	ticket, err := cli.Container.TrackerService.AddTicket(context.Background(), t.Project, t.Title, t.Description)
	if err != nil {
		return err
	}

	fmt.Printf("Created ticket %s: %s\n", shortID(ticket.ID), ticket.Title)
	return nil
}

// TicketsListCmd lists tickets in a project
type TicketsListCmd struct {
	Project string `arg:"" help:"Project id"`
	Format  string `help:"Output format: table or json" enum:"table,json" default:"table"`
}

// Run executes the list command
func (t *TicketsListCmd) Run(cli *CLI) error {
	tickets, err := cli.Container.TrackerService.ListTickets(context.Background(), t.Project)
	if err != nil {
		return err
	}

	if t.Format == "json" {
		return printJSON(tickets)
	}

	if len(tickets) == 0 {
		fmt.Println("No tickets yet")
		return nil
	}

	fmt.Println(theme.HeaderStyle.Render(fmt.Sprintf("%-4s %-10s %-14s %-40s %s", "POS", "ID", "STATUS", "TITLE", "BRANCH")))
	for _, ticket := range tickets {
		status := theme.StatusStyle(string(ticket.Status)).Render(fmt.Sprintf("%-14s", ticket.Status))
		fmt.Printf("%-4d %-10s %s %-40s %s\n",
			ticket.Position, shortID(ticket.ID), status, ticket.Title,
			theme.BranchStyle.Render(ticket.BranchName))
	}
	return nil
}

// TicketsViewCmd shows a ticket with its audit comments
type TicketsViewCmd struct {
	ID     string `arg:"" help:"Ticket id"`
	Format string `help:"Output format: table or json" enum:"table,json" default:"table"`
}

// Run executes the view command
func (t *TicketsViewCmd) Run(cli *CLI) error {
	ctx := context.Background()
	tracker := cli.Container.TrackerService

	ticket, err := tracker.GetTicket(ctx, t.ID)
	if err != nil {
		return err
	}
	comments, err := tracker.ListComments(ctx, ticket.ID)
	if err != nil {
		return err
	}

	if t.Format == "json" {
		return printJSON(map[string]any{"ticket": ticket, "comments": comments})
	}

	fmt.Println(theme.TitleStyle.Render(ticket.Title))
	fmt.Printf("ID: %s\n", ticket.ID)
	fmt.Printf("Status: %s\n", theme.StatusStyle(string(ticket.Status)).Render(string(ticket.Status)))
	if ticket.EpicID != nil {
		fmt.Printf("Epic: %s\n", shortID(*ticket.EpicID))
	}
	if ticket.BranchName != "" {
		fmt.Printf("Branch: %s\n", theme.BranchStyle.Render(ticket.BranchName))
	}
	if ticket.Description != "" {
		fmt.Printf("\n%s\n", ticket.Description)
	}

	if len(comments) > 0 {
		fmt.Println()
		fmt.Println(theme.HeaderStyle.Render("Comments"))
		for _, c := range comments {
			fmt.Printf("[%s] %s (%s): %s\n",
				c.CreatedAt.Format("2006-01-02 15:04"), c.Author, c.Type, c.Body)
		}
	}
	return nil
}

// TicketsStatusCmd sets a ticket's status
type TicketsStatusCmd struct {
	ID     string `arg:"" help:"Ticket id"`
	Status string `arg:"" help:"New status" enum:"backlog,ready,in_progress,ai_review,human_review,done"`
}

// Run executes the status command
func (t *TicketsStatusCmd) Run(cli *CLI) error {
	ticket, err := cli.Container.TrackerService.SetTicketStatus(context.Background(), t.ID, t.Status)
	if err != nil {
		return err
	}

	fmt.Printf("Ticket %s is now %s\n", shortID(ticket.ID),
		theme.StatusStyle(string(ticket.Status)).Render(string(ticket.Status)))
	return nil
}

// TicketsMoveCmd reorders a ticket
type TicketsMoveCmd struct {
	ID       string `arg:"" help:"Ticket id"`
	Position int    `arg:"" help:"New position (1-based)"`
}

// Run executes the move command
func (t *TicketsMoveCmd) Run(cli *CLI) error {
	ticket, err := cli.Container.TrackerService.SetTicketPosition(context.Background(), t.ID, t.Position)
	if err != nil {
		return err
	}

	fmt.Printf("Ticket %s moved to position %d\n", shortID(ticket.ID), ticket.Position)
	return nil
}

// TicketsEpicCmd links or unlinks a ticket's epic
type TicketsEpicCmd struct {
	ID   string `arg:"" help:"Ticket id"`
	Epic string `arg:"" optional:"" help:"Epic id (omit to unlink)"`
}

// Run executes the epic command
func (t *TicketsEpicCmd) Run(cli *CLI) error {
	ticket, err := cli.Container.TrackerService.AssignTicketEpic(context.Background(), t.ID, t.Epic)
	if err != nil {
		return err
	}

	if ticket.EpicID == nil {
		fmt.Printf("Ticket %s unlinked from its epic\n", shortID(ticket.ID))
	} else {
		fmt.Printf("Ticket %s linked to epic %s\n", shortID(ticket.ID), shortID(*ticket.EpicID))
	}
	return nil
}

// TicketsStartCmd starts work on a ticket
type TicketsStartCmd struct {
	ID string `arg:"" help:"Ticket id"`
}

// Run executes the start command
func (t *TicketsStartCmd) Run(cli *CLI) error {
	res, err := cli.Container.WorkflowService.StartWork(context.Background(), t.ID)
	if err != nil {
		return err
	}

	printWarnings(res.Warnings)
	if res.AlreadyStarted {
		return nil
	}

	kind := "dedicated branch"
	if res.EpicBranch {
		kind = "shared epic branch"
	}
	verb := "Reusing"
	if res.BranchCreated {
		verb = "Created"
	}
	fmt.Printf("%s %s %s\n", verb, kind, theme.BranchStyle.Render(res.BranchName))
	fmt.Printf("Ticket %s is now %s\n", shortID(res.Ticket.ID),
		theme.StatusStyle(string(res.Ticket.Status)).Render(string(res.Ticket.Status)))
	return nil
}

// TicketsCompleteCmd completes work on a ticket
type TicketsCompleteCmd struct {
	ID      string `arg:"" help:"Ticket id"`
	Summary string `help:"Short summary of the work done"`
}

// Run executes the complete command
func (t *TicketsCompleteCmd) Run(cli *CLI) error {
	res, err := cli.Container.WorkflowService.CompleteWork(context.Background(), t.ID, t.Summary)
	if err != nil {
		return err
	}

	printWarnings(res.Warnings)
	fmt.Printf("Ticket %s handed to %s\n", shortID(res.Ticket.ID),
		theme.StatusStyle(string(res.Ticket.Status)).Render(string(res.Ticket.Status)))

	if res.Stats != nil {
		fmt.Printf("%d commits, %d files changed since the base branch\n",
			len(res.Stats.Commits), res.Stats.FilesChanged)
	}

	fmt.Println(theme.HeaderStyle.Render("Next steps"))
	for _, step := range res.NextSteps {
		fmt.Printf("  - %s\n", step)
	}

	if res.NextTicket != nil {
		fmt.Printf("Suggested next ticket: %s (%s)\n",
			shortID(res.NextTicket.ID), res.NextTicket.Title)
	}
	return nil
}
