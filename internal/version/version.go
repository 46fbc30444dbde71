package version

import "fmt"

// Tagline is the application's tagline used in help text
const Tagline = "obra tracks tickets and keeps coding agents honest"

// Build information injected at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info returns formatted version information
func Info() string {
	return fmt.Sprintf("obra %s (commit: %s, built: %s)", Version, Commit, Date)
}
