package cmd

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"obra/internal/config"
	"obra/internal/logging"
)

// CLI represents the command-line interface structure
type CLI struct {
	Version     kong.VersionFlag `help:"Show version information"`
	Debug       bool             `help:"Enable debug logging to file" short:"d"`
	DebugFile   string           `help:"Custom path for debug log file (disables automatic cleanup)"`
	MaxLogFiles int              `help:"Maximum number of log files to keep (0 = unlimited)" default:"1000"`
	DBPath      string           `help:"Path to SQLite database" type:"path" default:"~/.obra/obra.db" env:"OBRA_DB_PATH"`

	Projects ProjectsCmd `cmd:"projects" help:"Manage projects (add, list, view)"`
	Tickets  TicketsCmd  `cmd:"tickets" help:"Manage tickets and their work lifecycle"`
	Epics    EpicsCmd    `cmd:"epics" help:"Manage epics and their shared branches"`
	Sessions SessionsCmd `cmd:"sessions" help:"Drive and observe unattended agent sessions"`
	Settings SettingsCmd `cmd:"settings" help:"View and persist settings"`

	// Internal fields (not flags)
	Container *Container       `kong:"-"`
	settings  *config.Settings `kong:"-"`
}

// SetSettings sets the settings on the CLI struct
func (c *CLI) SetSettings(settings *config.Settings) {
	c.settings = settings
}

// AfterApply initializes logging after CLI parsing and applies settings.
// Precedence: CLI flags > env vars > settings.json > defaults.
func (c *CLI) AfterApply() error {
	if c.settings != nil {
		if c.MaxLogFiles == 1000 {
			if _, hasEnv := os.LookupEnv("OBRA_MAX_LOG_FILES"); !hasEnv {
				if c.settings.MaxLogFiles != nil {
					c.MaxLogFiles = *c.settings.MaxLogFiles
				}
			}
		}

		if !c.Debug {
			if _, hasEnv := os.LookupEnv("OBRA_DEBUG"); !hasEnv {
				if c.settings.Debug != nil && *c.settings.Debug {
					c.Debug = true
				}
			}
		}
	}

	logFilePath, err := logging.Initialize(c.Debug, c.DebugFile, c.MaxLogFiles)
	if err != nil {
		return err
	}

	// Exported after initialization so child processes inherit the debug
	// settings and append to the same log file
	if c.Debug || c.DebugFile != "" {
		os.Setenv("OBRA_DEBUG", "1")
		if logFilePath != "" {
			os.Setenv("OBRA_DEBUG_FILE", logFilePath)
		}
	}

	// The container needs logging up before GORM's logger is touched
	container, err := NewContainer(c.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	c.Container = container

	return nil
}

// Close closes all resources held by the CLI
func (c *CLI) Close() error {
	if c.Container != nil {
		return c.Container.Close()
	}
	return nil
}
