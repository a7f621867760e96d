package publish

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/nedmenton/twitterbotrailway/internal/scoring"
)

// Multi fans one run out to every publisher. Each publisher gets a full
// attempt even when a sibling fails; the first failure is reported after all
// have finished.
type Multi []Publisher

// Publish delivers to all publishers concurrently.
func (m Multi) Publish(ctx context.Context, accepted []*scoring.ScoredAccount, runLabel string) error {
	var g errgroup.Group
	for _, p := range m {
		p := p
		g.Go(func() error {
			if err := p.Publish(ctx, accepted, runLabel); err != nil {
				slog.Error("publisher failed", "error", err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
