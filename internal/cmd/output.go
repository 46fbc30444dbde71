package cmd

import (
	"encoding/json"
	"fmt"

	"obra/internal/theme"
)

// printJSON renders any value as indented JSON on stdout
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// printWarnings renders advisory warnings collected by an operation
func printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Println(theme.WarningStyle.Render("warning: " + w))
	}
}

// shortID returns the first 8 characters of an identifier for display
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
