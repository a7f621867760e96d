// Package observability provides formatted output utilities for the end-of-run
// report printed by the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nedmenton/twitterbotrailway/internal/discovery"
	"github.com/nedmenton/twitterbotrailway/internal/scoring"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxDiscoveriesToShow is the number of accepted accounts listed in the report
	maxDiscoveriesToShow = 10
)

// Printer handles formatted output for the run report
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRunSummary outputs the totals of a completed discovery run.
func (p *Printer) PrintRunSummary(res *discovery.Result) {
	if res == nil {
		return
	}

	var sb strings.Builder
	s := res.Summary

	sb.WriteString(fmt.Sprintf("Run date:            %s\n", s.RunDate.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("New discoveries:     %d\n", s.CompaniesDiscovered))
	sb.WriteString(fmt.Sprintf("Duplicates skipped:  %d\n", res.Tally[discovery.OutcomeDuplicate]))
	sb.WriteString(fmt.Sprintf("Rejected on score:   %d\n", res.Tally[discovery.OutcomeRejected]))
	sb.WriteString(fmt.Sprintf("Filtered out:        %d followers, %d age\n", s.FilteredFollowers, s.FilteredAge))
	sb.WriteString(fmt.Sprintf("Signals processed:   %d in %d batches\n", s.SignalsProcessed, s.BatchCount))
	sb.WriteString(fmt.Sprintf("API calls:           %d\n", s.TotalAPICalls))
	sb.WriteString(fmt.Sprintf("Runtime:             %s", s.Runtime.Round(time.Second)))

	p.printBox("WEEKLY RUN COMPLETE", sb.String())
}

// PrintTopDiscoveries outputs the first accepted accounts in discovery order.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintTopDiscoveries(accepted []*scoring.ScoredAccount) {
	if len(accepted) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO NEW DISCOVERIES THIS WEEK")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Accepted %d new accounts:\n\n", len(accepted)))

	count := min(len(accepted), maxDiscoveriesToShow)
	for i := 0; i < count; i++ {
		a := accepted[i]
		sb.WriteString(fmt.Sprintf("@%s | Score: %d | Followers: %d\n",
			a.Handle, a.TotalScore, a.FollowersCount))
		if len(a.KeywordsFound) > 0 {
			keywords := strings.Join(a.KeywordsFound, ", ")
			if len(keywords) > 40 {
				keywords = keywords[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("    Keywords: %s\n", keywords))
		}
	}

	if len(accepted) > maxDiscoveriesToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(accepted)-maxDiscoveriesToShow))
	}

	p.printBox("TOP NEW DISCOVERIES THIS WEEK", strings.TrimSuffix(sb.String(), "\n"))
}
