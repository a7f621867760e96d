package publish

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nedmenton/twitterbotrailway/internal/scoring"
)

// CSV writes one discoveries file per run into Dir. An empty Dir means the
// current working directory.
type CSV struct {
	Dir string
}

// NewCSV returns a CSV publisher writing into dir.
func NewCSV(dir string) *CSV {
	return &CSV{Dir: dir}
}

var csvHeader = []string{
	"name", "handle", "bio", "followers_count", "creation_date",
	"creation_weeks_old", "follower_score", "creation_score",
	"keyword_score", "link_score", "attribution_score", "total_score",
	"discovered_at", "attributed_to", "keywords_found", "links_found",
	"verified", "protected",
}

// Publish writes the accepted set to NEW_WEEKLY_discoveries_<runLabel>.csv.
// Nothing is written for an empty set.
func (c *CSV) Publish(_ context.Context, accepted []*scoring.ScoredAccount, runLabel string) error {
	if len(accepted) == 0 {
		return nil
	}

	if c.Dir != "" {
		if err := os.MkdirAll(c.Dir, 0o755); err != nil {
			return fmt.Errorf("failed to ensure output dir: %w", err)
		}
	}
	path := filepath.Join(c.Dir, fmt.Sprintf("NEW_WEEKLY_discoveries_%s.csv", runLabel))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, a := range accepted {
		if err := w.Write(csvRecord(a)); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close csv file: %w", err)
	}

	slog.Info("saved discoveries csv", "path", path, "rows", len(accepted))
	return nil
}

func csvRecord(a *scoring.ScoredAccount) []string {
	return []string{
		a.Name,
		a.Handle,
		a.Bio,
		strconv.Itoa(a.FollowersCount),
		a.RegisterDate,
		strconv.Itoa(a.WeeksOld),
		strconv.Itoa(a.FollowerScore),
		strconv.Itoa(a.CreationScore),
		strconv.Itoa(a.KeywordScore),
		strconv.Itoa(a.LinkScore),
		strconv.Itoa(a.AttributionScore),
		strconv.Itoa(a.TotalScore),
		a.DiscoveredAt.Format(time.RFC3339),
		joinList(a.AttributedTo),
		joinList(a.KeywordsFound),
		joinList(a.LinksFound),
		strconv.FormatBool(a.Verified),
		strconv.FormatBool(a.Protected),
	}
}
