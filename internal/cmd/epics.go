package cmd

import (
	"context"
	"fmt"

	"obra/internal/theme"
)

// EpicsCmd groups epic commands
type EpicsCmd struct {
	Add    EpicsAddCmd    `cmd:"add" help:"Create an epic in a project"`
	List   EpicsListCmd   `cmd:"list" help:"List a project's epics"`
	View   EpicsViewCmd   `cmd:"view" help:"View an epic with its member tickets"`
	Delete EpicsDeleteCmd `cmd:"delete" help:"Delete an epic (dry run without --confirm)"`
	Start  EpicsStartCmd  `cmd:"start" help:"Check out or create the epic's shared branch"`
}

// EpicsAddCmd creates an epic
type EpicsAddCmd struct {
	Project     string `arg:"" help:"Project id"`
	Title       string `arg:"" help:"Epic title"`
	Description string `help:"Epic description"`
}

// Run executes the add command
func (e *EpicsAddCmd) Run(cli *CLI) error {
	epic, err := cli.Container.TrackerService.AddEpic(context.Background(), e.Project, e.Title, e.Description)
	if err != nil {
		return err
	}

	fmt.Printf("Created epic %s: %s\n", shortID(epic.ID), epic.Title)
	return nil
}

// EpicsListCmd lists epics in a project
type EpicsListCmd struct {
	Project string `arg:"" help:"Project id"`
	Format  string `help:"Output format: table or json" enum:"table,json" default:"table"`
}

// Run executes the list command
func (e *EpicsListCmd) Run(cli *CLI) error {
	epics, err := cli.Container.TrackerService.ListEpics(context.Background(), e.Project)
	if err != nil {
		return err
	}

	if e.Format == "json" {
		return printJSON(epics)
	}

	if len(epics) == 0 {
		fmt.Println("No epics yet")
		return nil
	}

	fmt.Println(theme.HeaderStyle.Render(fmt.Sprintf("%-10s %s", "ID", "TITLE")))
	for _, epic := range epics {
		fmt.Printf("%-10s %s\n", shortID(epic.ID), epic.Title)
	}
	return nil
}

// EpicsViewCmd shows an epic and its member tickets
type EpicsViewCmd struct {
	ID     string `arg:"" help:"Epic id"`
	Format string `help:"Output format: table or json" enum:"table,json" default:"table"`
}

// Run executes the view command
func (e *EpicsViewCmd) Run(cli *CLI) error {
	ctx := context.Background()
	tracker := cli.Container.TrackerService

	epic, err := tracker.GetEpic(ctx, e.ID)
	if err != nil {
		return err
	}
	tickets, err := tracker.ListTicketsByEpic(ctx, epic.ID)
	if err != nil {
		return err
	}

	if e.Format == "json" {
		return printJSON(map[string]any{"epic": epic, "tickets": tickets})
	}

	fmt.Println(theme.TitleStyle.Render(epic.Title))
	fmt.Printf("ID: %s\n", epic.ID)
	if epic.Description != "" {
		fmt.Printf("\n%s\n", epic.Description)
	}

	if len(tickets) > 0 {
		fmt.Println()
		fmt.Println(theme.HeaderStyle.Render("Tickets"))
		for _, ticket := range tickets {
			status := theme.StatusStyle(string(ticket.Status)).Render(string(ticket.Status))
			fmt.Printf("  %-10s %-14s %s\n", shortID(ticket.ID), status, ticket.Title)
		}
	}
	return nil
}

// EpicsDeleteCmd deletes an epic, previewing the effect unless confirmed
type EpicsDeleteCmd struct {
	ID      string `arg:"" help:"Epic id"`
	Confirm bool   `help:"Actually delete; without this flag the command only previews"`
}

// Run executes the delete command
func (e *EpicsDeleteCmd) Run(cli *CLI) error {
	res, err := cli.Container.EpicService.DeleteEpic(context.Background(), e.ID, e.Confirm)
	if err != nil {
		return err
	}

	if !res.Deleted {
		fmt.Printf("Would delete epic %s (%s) and unlink %d tickets:\n",
			shortID(res.Epic.ID), res.Epic.Title, len(res.UnlinkedTickets))
		for _, ticket := range res.UnlinkedTickets {
			fmt.Printf("  %-10s %s\n", shortID(ticket.ID), ticket.Title)
		}
		fmt.Println("Re-run with --confirm to delete")
		return nil
	}

	fmt.Printf("Deleted epic %s, unlinked %d tickets\n", shortID(res.Epic.ID), len(res.UnlinkedTickets))
	return nil
}

// EpicsStartCmd launches work on an epic's shared branch
type EpicsStartCmd struct {
	ID string `arg:"" help:"Epic id"`
}

// Run executes the start command
func (e *EpicsStartCmd) Run(cli *CLI) error {
	res, err := cli.Container.EpicService.StartEpicWork(context.Background(), e.ID)
	if err != nil {
		return err
	}

	verb := "Reusing"
	if res.BranchCreated {
		verb = "Created"
	}
	fmt.Printf("%s epic branch %s\n", verb, theme.BranchStyle.Render(res.BranchName))
	fmt.Printf("Tickets: %d/%d done\n", res.TicketsDone, res.TicketsTotal)
	for _, ticket := range res.Tickets {
		status := theme.StatusStyle(string(ticket.Status)).Render(string(ticket.Status))
		fmt.Printf("  %-10s %-14s %s\n", shortID(ticket.ID), status, ticket.Title)
	}
	return nil
}
