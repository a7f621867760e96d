package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is the pgx-backed store.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres establishes a connection pool and ensures the schema exists.
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS companies (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			handle TEXT NOT NULL,
			handle_lower TEXT NOT NULL UNIQUE,
			bio TEXT NOT NULL DEFAULT '',
			followers_count INTEGER NOT NULL DEFAULT 0,
			creation_date TEXT NOT NULL DEFAULT '',
			creation_weeks_old INTEGER NOT NULL DEFAULT 0,
			follower_score INTEGER NOT NULL DEFAULT 0,
			creation_score INTEGER NOT NULL DEFAULT 0,
			keyword_score INTEGER NOT NULL DEFAULT 0,
			link_score INTEGER NOT NULL DEFAULT 0,
			attribution_score INTEGER NOT NULL DEFAULT 0,
			total_score INTEGER NOT NULL DEFAULT 0,
			keywords_found TEXT[] NOT NULL DEFAULT '{}',
			links_found TEXT[] NOT NULL DEFAULT '{}',
			attributed_to TEXT[] NOT NULL DEFAULT '{}',
			verified BOOLEAN NOT NULL DEFAULT FALSE,
			protected BOOLEAN NOT NULL DEFAULT FALSE,
			discovered_at TIMESTAMPTZ NOT NULL,
			last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS discovery_runs (
			id UUID PRIMARY KEY,
			run_date TIMESTAMPTZ NOT NULL,
			companies_discovered INTEGER NOT NULL,
			total_api_calls INTEGER NOT NULL,
			signals_processed INTEGER NOT NULL,
			runtime_seconds DOUBLE PRECISION NOT NULL,
			batch_count INTEGER NOT NULL,
			filtered_followers INTEGER NOT NULL,
			filtered_age INTEGER NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

// Exists reports whether a company with this handle was already accepted.
func (p *Postgres) Exists(ctx context.Context, handle string) (bool, error) {
	var one int
	err := p.pool.QueryRow(ctx,
		`SELECT 1 FROM companies WHERE handle_lower = $1`,
		normalizeHandle(handle),
	).Scan(&one)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check company: %w", err)
	}
	return true, nil
}

// AllHandles returns every accepted handle, lowercased.
func (p *Postgres) AllHandles(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `SELECT handle_lower FROM companies`)
	if err != nil {
		return nil, fmt.Errorf("failed to list handles: %w", err)
	}
	defer rows.Close()

	var handles []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("failed to scan handle: %w", err)
		}
		handles = append(handles, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list handles: %w", err)
	}
	return handles, nil
}

// UpsertCompany inserts or replaces the row keyed by the lowercased handle.
func (p *Postgres) UpsertCompany(ctx context.Context, c *Company) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO companies (
			name, handle, handle_lower, bio, followers_count, creation_date,
			creation_weeks_old, follower_score, creation_score, keyword_score,
			link_score, attribution_score, total_score, keywords_found,
			links_found, attributed_to, verified, protected, discovered_at,
			last_updated
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, NOW())
		 ON CONFLICT (handle_lower) DO UPDATE SET
			name = EXCLUDED.name,
			handle = EXCLUDED.handle,
			bio = EXCLUDED.bio,
			followers_count = EXCLUDED.followers_count,
			creation_date = EXCLUDED.creation_date,
			creation_weeks_old = EXCLUDED.creation_weeks_old,
			follower_score = EXCLUDED.follower_score,
			creation_score = EXCLUDED.creation_score,
			keyword_score = EXCLUDED.keyword_score,
			link_score = EXCLUDED.link_score,
			attribution_score = EXCLUDED.attribution_score,
			total_score = EXCLUDED.total_score,
			keywords_found = EXCLUDED.keywords_found,
			links_found = EXCLUDED.links_found,
			attributed_to = EXCLUDED.attributed_to,
			verified = EXCLUDED.verified,
			protected = EXCLUDED.protected,
			discovered_at = EXCLUDED.discovered_at,
			last_updated = NOW()`,
		c.Name, c.Handle, normalizeHandle(c.Handle), c.Bio, c.FollowersCount,
		c.CreationDate, c.WeeksOld, c.FollowerScore, c.CreationScore,
		c.KeywordScore, c.LinkScore, c.AttributionScore, c.TotalScore,
		c.KeywordsFound, c.LinksFound, c.AttributedTo, c.Verified, c.Protected,
		c.DiscoveredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert company: %w", err)
	}
	return nil
}

// CompaniesByScore returns accepted companies at or above minScore,
// highest total first.
func (p *Postgres) CompaniesByScore(ctx context.Context, minScore int) ([]Company, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, name, handle, bio, followers_count, creation_date,
			creation_weeks_old, follower_score, creation_score, keyword_score,
			link_score, attribution_score, total_score, keywords_found,
			links_found, attributed_to, verified, protected, discovered_at,
			last_updated
		 FROM companies
		 WHERE total_score >= $1
		 ORDER BY total_score DESC`,
		minScore,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		var c Company
		err := rows.Scan(
			&c.ID, &c.Name, &c.Handle, &c.Bio, &c.FollowersCount,
			&c.CreationDate, &c.WeeksOld, &c.FollowerScore, &c.CreationScore,
			&c.KeywordScore, &c.LinkScore, &c.AttributionScore, &c.TotalScore,
			&c.KeywordsFound, &c.LinksFound, &c.AttributedTo, &c.Verified,
			&c.Protected, &c.DiscoveredAt, &c.LastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	return companies, nil
}

// AppendRunSummary records one completed run.
func (p *Postgres) AppendRunSummary(ctx context.Context, s *RunSummary) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO discovery_runs (
			id, run_date, companies_discovered, total_api_calls,
			signals_processed, runtime_seconds, batch_count,
			filtered_followers, filtered_age
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.RunDate, s.CompaniesDiscovered, s.TotalAPICalls,
		s.SignalsProcessed, s.Runtime.Seconds(), s.BatchCount,
		s.FilteredFollowers, s.FilteredAge,
	)
	if err != nil {
		return fmt.Errorf("failed to append run summary: %w", err)
	}
	return nil
}
