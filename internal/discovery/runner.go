// Package discovery orchestrates a full run over the signal registry:
// fetch each signal account's recent follows, filter and score the
// candidates, persist acceptances, record a run summary, and hand the
// accepted set to the publisher.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nedmenton/twitterbotrailway/internal/dedup"
	"github.com/nedmenton/twitterbotrailway/internal/scoring"
	"github.com/nedmenton/twitterbotrailway/internal/signals"
	"github.com/nedmenton/twitterbotrailway/internal/sorsa"
	"github.com/nedmenton/twitterbotrailway/internal/store"
)

// runLabelLayout names CSV files and sheet tabs for one run.
const runLabelLayout = "20060102_150405"

// Outcome classifies what happened to a single candidate.
type Outcome string

const (
	OutcomeAccepted          Outcome = "accepted"
	OutcomeRejected          Outcome = "rejected"
	OutcomeDuplicate         Outcome = "duplicate"
	OutcomeFilteredFollowers Outcome = "filtered_followers"
	OutcomeFilteredAge       Outcome = "filtered_age"
	OutcomeUnidentifiable    Outcome = "unidentifiable"
	OutcomeError             Outcome = "error"
)

// Source yields the candidate pool for a signal account.
type Source interface {
	RecentFollows(ctx context.Context, handle string) ([]sorsa.Account, error)
}

// Scorer evaluates candidates and computes account ages for the pre-filter.
type Scorer interface {
	AgeWeeks(registerDate string) int
	Score(acct sorsa.Account, discoveredBy string) (*scoring.ScoredAccount, error)
}

// Publisher receives the accepted set after a run completes. Publishing is
// best-effort; failures never abort a run.
type Publisher interface {
	Publish(ctx context.Context, accepted []*scoring.ScoredAccount, runLabel string) error
}

// Options tune a discovery run.
type Options struct {
	// BatchSize partitions the registry for pacing and progress logs only;
	// batch boundaries have no effect on results.
	BatchSize int

	// Pace is the pause after each signal account, honoring the remote
	// source's rate limits. It applies whether or not the fetch succeeded.
	Pace time.Duration

	// MaxFollowers and MaxAgeWeeks pre-filter candidates before scoring.
	MaxFollowers int
	MaxAgeWeeks  int

	// ScoreThreshold is the minimum total score for acceptance.
	ScoreThreshold int
}

// DefaultOptions returns the standard weekly-run tuning.
func DefaultOptions() Options {
	return Options{
		BatchSize:      20,
		Pace:           time.Second,
		MaxFollowers:   5000,
		MaxAgeWeeks:    104,
		ScoreThreshold: 200,
	}
}

// Result is what one run produced. Accepted preserves discovery order, and
// Tally counts every candidate outcome seen during the run.
type Result struct {
	Summary  store.RunSummary
	Accepted []*scoring.ScoredAccount
	Tally    map[Outcome]int
}

// Runner executes discovery runs. The run is strictly sequential: one signal
// account at a time, one candidate at a time. Publisher may be nil to skip
// publishing.
type Runner struct {
	Source    Source
	Scorer    Scorer
	Store     store.Store
	Registry  *signals.Registry
	Publisher Publisher
	Options   Options

	// Now supplies the run clock; it defaults to time.Now.
	Now func() time.Time
}

// NewRunner returns a runner with default options over the given
// dependencies.
func NewRunner(source Source, scorer Scorer, st store.Store, registry *signals.Registry) *Runner {
	return &Runner{
		Source:   source,
		Scorer:   scorer,
		Store:    st,
		Registry: registry,
		Options:  DefaultOptions(),
		Now:      time.Now,
	}
}

// Run crawls every signal account once and returns the run's summary and
// accepted candidates. It fails only when the registry is empty or the
// dedup seed cannot be loaded; every later failure is isolated to the
// candidate or signal account it occurred on.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := r.now()

	handles := r.Registry.Handles()
	if len(handles) == 0 {
		return nil, fmt.Errorf("signal registry is empty")
	}

	known, err := r.Store.AllHandles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load known handles: %w", err)
	}
	seen := dedup.NewSet(known)

	slog.Info("starting discovery run",
		"signals", len(handles),
		"known_companies", seen.Len(),
		"batch_size", r.Options.BatchSize)

	tally := make(map[Outcome]int)
	var accepted []*scoring.ScoredAccount
	apiCalls := 0

	batches := partition(handles, r.Options.BatchSize)
	for i, batch := range batches {
		batchStart := r.now()
		batchAccepted, batchDuplicates := 0, 0
		slog.Info("processing batch",
			"batch", i+1, "batches", len(batches), "signals", len(batch))

		for _, signal := range batch {
			accounts, err := r.Source.RecentFollows(ctx, signal)
			apiCalls++
			if err != nil {
				slog.Warn("recent follows fetch failed",
					"signal", signal, "error", err)
			} else {
				for _, acct := range accounts {
					outcome, scored := r.evaluate(ctx, acct, signal, seen)
					tally[outcome]++
					switch outcome {
					case OutcomeAccepted:
						accepted = append(accepted, scored)
						batchAccepted++
					case OutcomeDuplicate:
						batchDuplicates++
					}
				}
			}
			r.pace()
		}

		slog.Info("batch complete",
			"batch", i+1,
			"new", batchAccepted,
			"duplicates", batchDuplicates,
			"elapsed", r.now().Sub(batchStart))
	}

	summary := store.RunSummary{
		ID:                  uuid.New(),
		RunDate:             start,
		CompaniesDiscovered: tally[OutcomeAccepted],
		TotalAPICalls:       apiCalls,
		SignalsProcessed:    len(handles),
		Runtime:             r.now().Sub(start),
		BatchCount:          len(batches),
		FilteredFollowers:   tally[OutcomeFilteredFollowers],
		FilteredAge:         tally[OutcomeFilteredAge],
	}
	if err := r.Store.AppendRunSummary(ctx, &summary); err != nil {
		slog.Error("failed to record run summary", "error", err)
	}

	r.publish(ctx, accepted)

	slog.Info("discovery run complete",
		"accepted", tally[OutcomeAccepted],
		"duplicates", tally[OutcomeDuplicate],
		"rejected", tally[OutcomeRejected],
		"api_calls", apiCalls,
		"runtime", summary.Runtime)

	return &Result{Summary: summary, Accepted: accepted, Tally: tally}, nil
}

// evaluate runs one candidate through the dedup check, the pre-filters, the
// scoring model, and the acceptance threshold. The returned account is
// non-nil only for OutcomeAccepted.
func (r *Runner) evaluate(ctx context.Context, acct sorsa.Account, signal string, seen *dedup.Set) (Outcome, *scoring.ScoredAccount) {
	handle := acct.Handle()
	if handle == "" {
		slog.Debug("skipping unidentifiable candidate", "signal", signal, "id", acct.ID)
		return OutcomeUnidentifiable, nil
	}
	if seen.Contains(handle) {
		return OutcomeDuplicate, nil
	}

	// Cheap pre-filters run before the model so filtered candidates are
	// never scored.
	if acct.FollowersCount > r.Options.MaxFollowers {
		return OutcomeFilteredFollowers, nil
	}
	if r.Scorer.AgeWeeks(acct.RegisterDate) > r.Options.MaxAgeWeeks {
		return OutcomeFilteredAge, nil
	}

	scored, err := r.Scorer.Score(acct, signal)
	if err != nil {
		slog.Warn("failed to score candidate",
			"handle", handle, "signal", signal, "error", err)
		return OutcomeError, nil
	}
	if scored.TotalScore < r.Options.ScoreThreshold {
		return OutcomeRejected, nil
	}

	// Persist before marking as seen so a failed write can be retried on a
	// future run.
	if err := r.Store.UpsertCompany(ctx, store.NewCompany(scored)); err != nil {
		slog.Error("failed to save discovery",
			"handle", handle, "error", err)
		return OutcomeError, nil
	}
	seen.Add(handle)

	slog.Info("accepted discovery",
		"handle", handle,
		"total", scored.TotalScore,
		"signal", signal)
	return OutcomeAccepted, scored
}

// publish hands the accepted set to the publisher. Nothing is published for
// an empty run.
func (r *Runner) publish(ctx context.Context, accepted []*scoring.ScoredAccount) {
	if r.Publisher == nil || len(accepted) == 0 {
		return
	}

	label := r.now().Format(runLabelLayout)
	if err := r.Publisher.Publish(ctx, accepted, label); err != nil {
		slog.Error("failed to publish discoveries", "error", err)
	}
}

func (r *Runner) pace() {
	if r.Options.Pace > 0 {
		time.Sleep(r.Options.Pace)
	}
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// partition splits handles into consecutive batches of at most size. A
// non-positive size yields a single batch.
func partition(handles []string, size int) [][]string {
	if len(handles) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(handles)
	}

	var batches [][]string
	for start := 0; start < len(handles); start += size {
		end := start + size
		if end > len(handles) {
			end = len(handles)
		}
		batches = append(batches, handles[start:end])
	}
	return batches
}
