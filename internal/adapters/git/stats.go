package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"obra/internal/domain"
	"obra/internal/logging"
)

// fetchWorkStats gathers commits and diff stats since baseBranch.
// Each leg is non-fatal: a repository with no history against the base
// branch yields empty fields.
func fetchWorkStats(ctx context.Context, workingDir, baseBranch string) (*domain.WorkStats, error) {
	logging.Logger.Debug("Fetching work stats", "dir", workingDir, "base", baseBranch)

	stats := &domain.WorkStats{
		FetchedAt: time.Now().UTC(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		commits, err := getCommitsSince(ctx, workingDir, baseBranch)
		if err != nil {
			logging.Logger.Debug("Failed to get commits", "error", err)
			return nil
		}
		stats.Commits = commits
		return nil
	})

	g.Go(func() error {
		diffStat, filesChanged, err := getDiffStat(ctx, workingDir, baseBranch)
		if err != nil {
			logging.Logger.Debug("Failed to get diff stat", "error", err)
			return nil
		}
		stats.DiffStat = diffStat
		stats.FilesChanged = filesChanged
		return nil
	})

	if err := g.Wait(); err != nil {
		return stats, err
	}

	return stats, nil
}

// getCommitsSince returns one-line commit subjects on HEAD but not on base
func getCommitsSince(ctx context.Context, path, base string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "log", "--oneline", fmt.Sprintf("%s..HEAD", base))
	cmd.Dir = path

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git log failed: %w", err)
	}

	text := strings.TrimSpace(string(output))
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

// getDiffStat returns the diff stat text against base plus the changed file count
func getDiffStat(ctx context.Context, path, base string) (string, int, error) {
	cmd := exec.CommandContext(ctx, "git", "diff", "--stat", fmt.Sprintf("%s...HEAD", base))
	cmd.Dir = path

	output, err := cmd.Output()
	if err != nil {
		return "", 0, fmt.Errorf("git diff failed: %w", err)
	}

	text := strings.TrimSpace(string(output))
	if text == "" {
		return "", 0, nil
	}

	// The last line is the summary ("N files changed, ..."); everything
	// before it is one line per file.
	lines := strings.Split(text, "\n")
	filesChanged := len(lines) - 1
	if filesChanged < 0 {
		filesChanged = 0
	}
	return text, filesChanged, nil
}
