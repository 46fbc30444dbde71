package cmd

import (
	"context"
	"fmt"

	"obra/internal/theme"
)

// ProjectsCmd groups project management commands
type ProjectsCmd struct {
	Add  ProjectsAddCmd  `cmd:"add" help:"Register a project backed by a local git checkout"`
	List ProjectsListCmd `cmd:"list" help:"List registered projects"`
	View ProjectsViewCmd `cmd:"view" help:"View a project"`
}

// ProjectsAddCmd registers a new project
type ProjectsAddCmd struct {
	Name string `arg:"" help:"Project name"`
	Path string `arg:"" help:"Path to the project's git checkout" type:"path"`
}

// Run executes the add command
func (p *ProjectsAddCmd) Run(cli *CLI) error {
	project, err := cli.Container.TrackerService.AddProject(context.Background(), p.Name, p.Path)
	if err != nil {
		return err
	}

	fmt.Printf("Created project %s (%s)\n", shortID(project.ID), project.Name)
	return nil
}

// ProjectsListCmd lists all projects
type ProjectsListCmd struct {
	Format string `help:"Output format: table or json" enum:"table,json" default:"table"`
}

// Run executes the list command
func (p *ProjectsListCmd) Run(cli *CLI) error {
	projects, err := cli.Container.TrackerService.ListProjects(context.Background())
	if err != nil {
		return err
	}

	if p.Format == "json" {
		return printJSON(projects)
	}

	if len(projects) == 0 {
		fmt.Println("No projects yet")
		return nil
	}

	fmt.Println(theme.HeaderStyle.Render(fmt.Sprintf("%-10s %-20s %s", "ID", "NAME", "PATH")))
	for _, project := range projects {
		fmt.Printf("%-10s %-20s %s\n", shortID(project.ID), project.Name,
			theme.BranchStyle.Render(project.Path))
	}
	return nil
}

// ProjectsViewCmd shows one project with its tickets and epics
type ProjectsViewCmd struct {
	ID     string `arg:"" help:"Project id"`
	Format string `help:"Output format: table or json" enum:"table,json" default:"table"`
}

// Run executes the view command
func (p *ProjectsViewCmd) Run(cli *CLI) error {
	ctx := context.Background()
	tracker := cli.Container.TrackerService

	project, err := tracker.GetProject(ctx, p.ID)
	if err != nil {
		return err
	}
	tickets, err := tracker.ListTickets(ctx, project.ID)
	if err != nil {
		return err
	}
	epics, err := tracker.ListEpics(ctx, project.ID)
	if err != nil {
		return err
	}

	if p.Format == "json" {
		return printJSON(map[string]any{
			"project": project,
			"tickets": tickets,
			"epics":   epics,
		})
	}

	fmt.Println(theme.TitleStyle.Render(project.Name))
	fmt.Printf("ID: %s\n", project.ID)
	fmt.Printf("Path: %s\n", project.Path)
	fmt.Printf("Tickets: %d\n", len(tickets))
	fmt.Printf("Epics: %d\n", len(epics))
	return nil
}
