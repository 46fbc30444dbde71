package ports

import (
	"context"

	"obra/internal/domain"
)

// GitResult carries the outcome of a single git invocation. A failed
// command is data, not an error: Success is false and Output holds the
// captured stdout/stderr text.
type GitResult struct {
	Output  string
	Success bool
}

// GitClient is the narrow capability gateway to the version-control
// client. Every call is synchronous, attempted exactly once, and mutates
// (or reads) the working tree at workingDir.
type GitClient interface {
	// Run executes an arbitrary git command (shell-level) for read-only
	// introspection such as log, diff, or status.
	Run(command, workingDir string) GitResult
	// BranchExists tests branch existence via a low-level ref check,
	// without shell interpolation of the branch name.
	BranchExists(name, workingDir string) bool
	// Checkout switches the working tree to an existing branch.
	Checkout(name, workingDir string) GitResult
	// CreateBranch creates a branch and switches to it.
	CreateBranch(name, workingDir string) GitResult
}

// RepoInspector queries repository information
type RepoInspector interface {
	IsGitRepo(path string) (bool, string)
	CurrentBranch(path string) string
}

// WorkStatsProvider gathers commit and diff information for work summaries
type WorkStatsProvider interface {
	FetchWorkStats(ctx context.Context, workingDir, baseBranch string) (*domain.WorkStats, error)
}

// GitRepository is the composite interface
type GitRepository interface {
	GitClient
	RepoInspector
	WorkStatsProvider
}
