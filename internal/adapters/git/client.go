package git

import (
	"context"

	"obra/internal/domain"
	"obra/internal/ports"
)

// CLIClient implements ports.GitRepository using local git commands
type CLIClient struct{}

// Verify interface compliance at compile time
var _ ports.GitRepository = (*CLIClient)(nil)

// NewCLIClient creates a new CLIClient
func NewCLIClient() *CLIClient {
	return &CLIClient{}
}

// GitClient methods

// Run implements GitClient.Run
func (c *CLIClient) Run(command, workingDir string) ports.GitResult {
	return runShell(command, workingDir)
}

// BranchExists implements GitClient.BranchExists
func (c *CLIClient) BranchExists(name, workingDir string) bool {
	return branchExists(name, workingDir)
}

// Checkout implements GitClient.Checkout
func (c *CLIClient) Checkout(name, workingDir string) ports.GitResult {
	return checkout(name, workingDir)
}

// CreateBranch implements GitClient.CreateBranch
func (c *CLIClient) CreateBranch(name, workingDir string) ports.GitResult {
	return createBranch(name, workingDir)
}

// RepoInspector methods

// IsGitRepo implements RepoInspector.IsGitRepo
func (c *CLIClient) IsGitRepo(path string) (bool, string) {
	return isGitRepo(path)
}

// CurrentBranch implements RepoInspector.CurrentBranch
func (c *CLIClient) CurrentBranch(path string) string {
	return currentBranch(path)
}

// WorkStatsProvider methods

// FetchWorkStats implements WorkStatsProvider.FetchWorkStats
func (c *CLIClient) FetchWorkStats(ctx context.Context, workingDir, baseBranch string) (*domain.WorkStats, error) {
	return fetchWorkStats(ctx, workingDir, baseBranch)
}
