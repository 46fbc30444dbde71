package git

import (
	"fmt"
	"os/exec"
	"strings"

	"obra/internal/logging"
	"obra/internal/ports"
)

// runShell executes an arbitrary git command through the shell and
// captures its combined output. A failed command is reported through the
// result, never as an error.
func runShell(command, workingDir string) ports.GitResult {
	logging.Logger.Debug("Running git command", "command", command, "dir", workingDir)

	cmd := exec.Command("sh", "-c", command)
	cmd.Dir = workingDir
	output, err := cmd.CombinedOutput()
	if err != nil {
		logging.Logger.Debug("Git command failed", "command", command, "error", err, "output", string(output))
		return ports.GitResult{Success: false, Output: strings.TrimSpace(string(output))}
	}

	return ports.GitResult{Success: true, Output: strings.TrimSpace(string(output))}
}

// branchExists checks whether a local branch exists. Uses show-ref with
// the branch name passed as an argument, so no shell interpolation.
func branchExists(name, workingDir string) bool {
	cmd := exec.Command("git", "show-ref", "--verify", "--quiet", fmt.Sprintf("refs/heads/%s", name))
	cmd.Dir = workingDir
	return cmd.Run() == nil
}

// checkout switches the working tree to an existing branch
func checkout(name, workingDir string) ports.GitResult {
	logging.Logger.Debug("Checking out branch", "branch", name, "dir", workingDir)

	cmd := exec.Command("git", "checkout", name)
	cmd.Dir = workingDir
	output, err := cmd.CombinedOutput()
	if err != nil {
		logging.Logger.Debug("Checkout failed", "branch", name, "output", string(output))
		return ports.GitResult{Success: false, Output: strings.TrimSpace(string(output))}
	}

	return ports.GitResult{Success: true, Output: strings.TrimSpace(string(output))}
}

// createBranch creates a branch from the current HEAD and switches to it
func createBranch(name, workingDir string) ports.GitResult {
	logging.Logger.Info("Creating branch", "branch", name, "dir", workingDir)

	cmd := exec.Command("git", "checkout", "-b", name)
	cmd.Dir = workingDir
	output, err := cmd.CombinedOutput()
	if err != nil {
		logging.Logger.Error("Branch creation failed", "branch", name, "output", string(output))
		return ports.GitResult{Success: false, Output: strings.TrimSpace(string(output))}
	}

	return ports.GitResult{Success: true, Output: strings.TrimSpace(string(output))}
}

// isGitRepo checks if path is inside a git repository
// Returns (isGit, repoRoot)
func isGitRepo(path string) (bool, string) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = path

	output, err := cmd.Output()
	if err != nil {
		logging.Logger.Debug("Not a git repository", "path", path)
		return false, ""
	}

	return true, strings.TrimSpace(string(output))
}

// currentBranch returns the currently checked out branch, or "" when it
// cannot be determined
func currentBranch(path string) string {
	cmd := exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD")
	cmd.Dir = path

	output, err := cmd.Output()
	if err != nil {
		logging.Logger.Debug("Failed to get current branch", "path", path, "error", err)
		return ""
	}

	return strings.TrimSpace(string(output))
}
