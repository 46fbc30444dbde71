package domain

import "time"

// WorkStats holds commit and file-diff information gathered for a work
// summary, measured against the project's base branch. Best-effort: a
// repository with no history yields empty fields, not an error.
type WorkStats struct {
	Commits      []string
	DiffStat     string
	FetchedAt    time.Time
	FilesChanged int
}
