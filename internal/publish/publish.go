// Package publish delivers accepted discoveries to human-facing outputs: a
// CSV file per run and a Google Sheets worksheet per run. Publishers are
// best-effort by contract; the pipeline treats their failures as non-fatal.
package publish

import (
	"context"
	"strings"

	"github.com/nedmenton/twitterbotrailway/internal/scoring"
)

// Publisher delivers one run's accepted discoveries under a run label.
type Publisher interface {
	Publish(ctx context.Context, accepted []*scoring.ScoredAccount, runLabel string) error
}

// joinList flattens a match list for a single cell, preserving order.
func joinList(items []string) string {
	return strings.Join(items, ", ")
}

// cleanCell makes a value safe for a single spreadsheet cell: newlines
// become spaces and the value is capped at 500 characters.
func cleanCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return truncate(s, 500)
}

// truncate caps s at n characters, not bytes, so multibyte text survives.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// atHandle renders a handle for display, ensuring a single @ prefix.
func atHandle(handle string) string {
	if strings.HasPrefix(handle, "@") {
		return handle
	}
	return "@" + handle
}
