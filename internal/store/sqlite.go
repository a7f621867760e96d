package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultSQLitePath is the local database file used when no database URL is
// configured.
const DefaultSQLitePath = "crypto_intelligence.db"

// SQLite is the file-backed store.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite store at path, creating the file and schema as
// needed.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to ensure data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set foreign_keys pragma: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set journal_mode pragma: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS companies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
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
			keywords_found TEXT NOT NULL DEFAULT '[]',
			links_found TEXT NOT NULL DEFAULT '[]',
			attributed_to TEXT NOT NULL DEFAULT '[]',
			verified INTEGER NOT NULL DEFAULT 0,
			protected INTEGER NOT NULL DEFAULT 0,
			discovered_at TEXT NOT NULL,
			last_updated TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS discovery_runs (
			id TEXT PRIMARY KEY,
			run_date TEXT NOT NULL,
			companies_discovered INTEGER NOT NULL,
			total_api_calls INTEGER NOT NULL,
			signals_processed INTEGER NOT NULL,
			runtime_seconds REAL NOT NULL,
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

// Close closes the database file.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Exists reports whether a company with this handle was already accepted.
func (s *SQLite) Exists(ctx context.Context, handle string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM companies WHERE handle_lower = ?`,
		normalizeHandle(handle),
	).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check company: %w", err)
	}
	return true, nil
}

// AllHandles returns every accepted handle, lowercased.
func (s *SQLite) AllHandles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT handle_lower FROM companies`)
	if err != nil {
		return nil, fmt.Errorf("failed to list handles: %w", err)
	}
	defer func() { _ = rows.Close() }()

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
func (s *SQLite) UpsertCompany(ctx context.Context, c *Company) error {
	keywords, err := encodeList(c.KeywordsFound)
	if err != nil {
		return err
	}
	links, err := encodeList(c.LinksFound)
	if err != nil {
		return err
	}
	attributed, err := encodeList(c.AttributedTo)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO companies (
			name, handle, handle_lower, bio, followers_count, creation_date,
			creation_weeks_old, follower_score, creation_score, keyword_score,
			link_score, attribution_score, total_score, keywords_found,
			links_found, attributed_to, verified, protected, discovered_at,
			last_updated
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(handle_lower) DO UPDATE SET
			name = excluded.name,
			handle = excluded.handle,
			bio = excluded.bio,
			followers_count = excluded.followers_count,
			creation_date = excluded.creation_date,
			creation_weeks_old = excluded.creation_weeks_old,
			follower_score = excluded.follower_score,
			creation_score = excluded.creation_score,
			keyword_score = excluded.keyword_score,
			link_score = excluded.link_score,
			attribution_score = excluded.attribution_score,
			total_score = excluded.total_score,
			keywords_found = excluded.keywords_found,
			links_found = excluded.links_found,
			attributed_to = excluded.attributed_to,
			verified = excluded.verified,
			protected = excluded.protected,
			discovered_at = excluded.discovered_at,
			last_updated = excluded.last_updated`,
		c.Name, c.Handle, normalizeHandle(c.Handle), c.Bio, c.FollowersCount,
		c.CreationDate, c.WeeksOld, c.FollowerScore, c.CreationScore,
		c.KeywordScore, c.LinkScore, c.AttributionScore, c.TotalScore,
		keywords, links, attributed, c.Verified, c.Protected,
		encodeTime(c.DiscoveredAt), encodeTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert company: %w", err)
	}
	return nil
}

// CompaniesByScore returns accepted companies at or above minScore,
// highest total first.
func (s *SQLite) CompaniesByScore(ctx context.Context, minScore int) ([]Company, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, handle, bio, followers_count, creation_date,
			creation_weeks_old, follower_score, creation_score, keyword_score,
			link_score, attribution_score, total_score, keywords_found,
			links_found, attributed_to, verified, protected, discovered_at,
			last_updated
		 FROM companies
		 WHERE total_score >= ?
		 ORDER BY total_score DESC`,
		minScore,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var companies []Company
	for rows.Next() {
		var (
			c                         Company
			keywords, links, attr     string
			discoveredAt, lastUpdated string
		)
		err := rows.Scan(
			&c.ID, &c.Name, &c.Handle, &c.Bio, &c.FollowersCount,
			&c.CreationDate, &c.WeeksOld, &c.FollowerScore, &c.CreationScore,
			&c.KeywordScore, &c.LinkScore, &c.AttributionScore, &c.TotalScore,
			&keywords, &links, &attr, &c.Verified, &c.Protected,
			&discoveredAt, &lastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		if c.KeywordsFound, err = decodeList(keywords); err != nil {
			return nil, err
		}
		if c.LinksFound, err = decodeList(links); err != nil {
			return nil, err
		}
		if c.AttributedTo, err = decodeList(attr); err != nil {
			return nil, err
		}
		if c.DiscoveredAt, err = decodeTime(discoveredAt); err != nil {
			return nil, err
		}
		if c.LastUpdated, err = decodeTime(lastUpdated); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	return companies, nil
}

// AppendRunSummary records one completed run.
func (s *SQLite) AppendRunSummary(ctx context.Context, summary *RunSummary) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO discovery_runs (
			id, run_date, companies_discovered, total_api_calls,
			signals_processed, runtime_seconds, batch_count,
			filtered_followers, filtered_age
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.ID.String(), encodeTime(summary.RunDate),
		summary.CompaniesDiscovered, summary.TotalAPICalls,
		summary.SignalsProcessed, summary.Runtime.Seconds(),
		summary.BatchCount, summary.FilteredFollowers, summary.FilteredAge,
	)
	if err != nil {
		return fmt.Errorf("failed to append run summary: %w", err)
	}
	return nil
}

// encodeList stores a string list as a JSON array, preserving order.
func encodeList(items []string) (string, error) {
	if len(items) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(data), nil
}

// decodeList restores a JSON array column. Empty arrays decode to nil.
func decodeList(raw string) ([]string, error) {
	if raw == "" || raw == "[]" || raw == "null" {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("failed to decode list: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to decode time: %w", err)
	}
	return t, nil
}
