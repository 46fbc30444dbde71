package cmd

import (
	"fmt"

	"obra/internal/config"
)

// SettingsCmd groups settings commands
type SettingsCmd struct {
	View SettingsViewCmd `cmd:"view" help:"Show persisted settings"`
	Set  SettingsSetCmd  `cmd:"set" help:"Persist settings to settings.json"`
}

// SettingsViewCmd shows the persisted settings
type SettingsViewCmd struct{}

// Run executes the view command
func (s *SettingsViewCmd) Run() error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	fmt.Printf("Settings file: %s\n", config.GetSettingsPath())
	if settings.Debug != nil {
		fmt.Printf("debug: %t\n", *settings.Debug)
	}
	if settings.MaxLogFiles != nil {
		fmt.Printf("max_log_files: %d\n", *settings.MaxLogFiles)
	}
	return nil
}

// SettingsSetCmd persists settings
type SettingsSetCmd struct {
	Debug       *bool `help:"Enable debug logging by default"`
	MaxLogFiles *int  `help:"Maximum number of log files to keep"`
}

// Run executes the set command
func (s *SettingsSetCmd) Run() error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	if s.Debug != nil {
		settings.Debug = s.Debug
	}
	if s.MaxLogFiles != nil {
		settings.MaxLogFiles = s.MaxLogFiles
	}

	if err := config.SaveSettings(settings); err != nil {
		return err
	}

	fmt.Printf("Saved %s\n", config.GetSettingsPath())
	return nil
}
