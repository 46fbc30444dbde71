package domain

import "strings"

// maxSlugLen bounds the slug portion of generated branch names
const maxSlugLen = 50

// Slugify converts a title into a branch-safe slug: lowercase, runs of
// non-alphanumeric characters collapsed to a single hyphen, leading and
// trailing hyphens stripped, truncated to 50 characters. An all-symbol
// input yields the empty string.
func Slugify(title string) string {
	var b strings.Builder
	lastWasHyphen := false

	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastWasHyphen = false
		} else if !lastWasHyphen {
			b.WriteRune('-')
			lastWasHyphen = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = slug[:maxSlugLen]
	}
	return slug
}

// shortID returns the first 8 characters of an identifier
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// TicketBranchName derives the deterministic branch name for a ticket
func TicketBranchName(ticketID, title string) string {
	return "feature/" + shortID(ticketID) + "-" + Slugify(title)
}

// EpicBranchName derives the deterministic shared branch name for an epic
func EpicBranchName(epicID, title string) string {
	return "feature/epic-" + shortID(epicID) + "-" + Slugify(title)
}
