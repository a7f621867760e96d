// Package store persists discovered companies and run summaries. Two
// backends implement the same contract: PostgreSQL for shared deployments
// and a local SQLite file for single-host runs.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nedmenton/twitterbotrailway/internal/scoring"
)

// Store is the persistence contract used by the discovery pipeline.
type Store interface {
	// Exists reports whether a company with this handle was already
	// accepted, ignoring case.
	Exists(ctx context.Context, handle string) (bool, error)

	// AllHandles returns every accepted handle, lowercased, for seeding the
	// in-memory dedup set at run start.
	AllHandles(ctx context.Context) ([]string, error)

	// UpsertCompany inserts a company or, when the handle is already
	// present, replaces the row with the newer evaluation.
	UpsertCompany(ctx context.Context, c *Company) error

	// CompaniesByScore returns accepted companies with total_score at or
	// above minScore, ordered by total_score descending.
	CompaniesByScore(ctx context.Context, minScore int) ([]Company, error)

	// AppendRunSummary records one completed run. Summaries are append-only.
	AppendRunSummary(ctx context.Context, s *RunSummary) error

	Close() error
}

// Company is a persisted acceptance: a scored account whose total met the
// discovery threshold.
type Company struct {
	ID             int64
	Name           string
	Handle         string
	Bio            string
	FollowersCount int
	CreationDate   string
	WeeksOld       int

	FollowerScore    int
	CreationScore    int
	KeywordScore     int
	LinkScore        int
	AttributionScore int
	TotalScore       int

	KeywordsFound []string
	LinksFound    []string
	AttributedTo  []string

	Verified     bool
	Protected    bool
	DiscoveredAt time.Time
	LastUpdated  time.Time
}

// RunSummary is the append-only record of one completed discovery run.
type RunSummary struct {
	ID                  uuid.UUID
	RunDate             time.Time
	CompaniesDiscovered int
	TotalAPICalls       int
	SignalsProcessed    int
	Runtime             time.Duration
	BatchCount          int
	FilteredFollowers   int
	FilteredAge         int
}

// NewCompany converts a scored candidate into its durable form.
func NewCompany(s *scoring.ScoredAccount) *Company {
	return &Company{
		Name:             s.Name,
		Handle:           s.Handle,
		Bio:              s.Bio,
		FollowersCount:   s.FollowersCount,
		CreationDate:     s.RegisterDate,
		WeeksOld:         s.WeeksOld,
		FollowerScore:    s.FollowerScore,
		CreationScore:    s.CreationScore,
		KeywordScore:     s.KeywordScore,
		LinkScore:        s.LinkScore,
		AttributionScore: s.AttributionScore,
		TotalScore:       s.TotalScore,
		KeywordsFound:    s.KeywordsFound,
		LinksFound:       s.LinksFound,
		AttributedTo:     s.AttributedTo,
		Verified:         s.Verified,
		Protected:        s.Protected,
		DiscoveredAt:     s.DiscoveredAt,
	}
}

// Scored converts a persisted row back into publishable form.
func (c *Company) Scored() *scoring.ScoredAccount {
	return &scoring.ScoredAccount{
		Handle:           c.Handle,
		Name:             c.Name,
		Bio:              c.Bio,
		FollowersCount:   c.FollowersCount,
		RegisterDate:     c.CreationDate,
		WeeksOld:         c.WeeksOld,
		FollowerScore:    c.FollowerScore,
		CreationScore:    c.CreationScore,
		KeywordScore:     c.KeywordScore,
		LinkScore:        c.LinkScore,
		AttributionScore: c.AttributionScore,
		TotalScore:       c.TotalScore,
		KeywordsFound:    c.KeywordsFound,
		LinksFound:       c.LinksFound,
		AttributedTo:     c.AttributedTo,
		Verified:         c.Verified,
		Protected:        c.Protected,
		DiscoveredAt:     c.DiscoveredAt,
	}
}

// Open connects to the store named by databaseURL. postgres:// and
// postgresql:// URLs select the PostgreSQL backend; any other value is
// treated as a SQLite file path.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return OpenPostgres(ctx, databaseURL)
	}
	return OpenSQLite(databaseURL)
}

func normalizeHandle(handle string) string {
	return strings.ToLower(handle)
}
