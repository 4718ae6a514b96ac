package venues

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	_ "github.com/lib-x/entsqlite"
	"go.uber.org/zap"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/logger"
)

const sqliteDSN = "file:%s?cache=shared&_pragma=foreign_keys(1)&_pragma=journal_mode(DELETE)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(10000)"

// ExamplePlaceholder is the exclusion entry shipped in the starter config.
// It is never seeded.
const ExamplePlaceholder = "Example Excluded Venue"

// Dates are TEXT so the driver hands them back as written.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS venues (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		region TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT 'NY',
		venue_type TEXT NOT NULL DEFAULT '',
		capacity_estimate INTEGER,
		has_live_music INTEGER NOT NULL DEFAULT 1,
		website TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		booking_contact TEXT NOT NULL DEFAULT '',
		genres TEXT NOT NULL DEFAULT '[]',
		notes TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		source_url TEXT NOT NULL DEFAULT '',
		first_seen TEXT,
		last_seen TEXT,
		last_updated TEXT DEFAULT CURRENT_TIMESTAMP,
		status TEXT NOT NULL DEFAULT 'active',
		rating REAL,
		UNIQUE(name, city)
	)`,
	`CREATE TABLE IF NOT EXISTS search_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		search_date TEXT NOT NULL,
		search_query TEXT,
		region TEXT,
		result_title TEXT,
		result_snippet TEXT,
		result_url TEXT,
		venue_id TEXT REFERENCES venues(id),
		processed INTEGER NOT NULL DEFAULT 0,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS opportunities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		venue_id TEXT REFERENCES venues(id),
		opportunity_type TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		source_url TEXT NOT NULL DEFAULT '',
		discovered_date TEXT,
		expiry_date TEXT,
		status TEXT NOT NULL DEFAULT 'new',
		priority INTEGER NOT NULL DEFAULT 5,
		notes TEXT NOT NULL DEFAULT '',
		suitable_acts TEXT NOT NULL DEFAULT '[]',
		created_at TEXT DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS search_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		search_date TEXT NOT NULL,
		query TEXT NOT NULL,
		results_count INTEGER NOT NULL DEFAULT 0,
		new_venues_found INTEGER NOT NULL DEFAULT 0,
		opportunities_found INTEGER NOT NULL DEFAULT 0,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		report_date TEXT NOT NULL,
		week_start TEXT,
		week_end TEXT,
		report_path TEXT,
		summary TEXT,
		new_venues_count INTEGER NOT NULL DEFAULT 0,
		opportunities_count INTEGER NOT NULL DEFAULT 0,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS excluded_venues (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		venue_id TEXT,
		name TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL DEFAULT '',
		date_excluded TEXT,
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(name, city)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_venues_first_seen ON venues(first_seen)`,
	`CREATE INDEX IF NOT EXISTS idx_opportunities_discovered ON opportunities(discovered_date)`,
}

// Store is the venue database.
type Store struct {
	db  *sql.DB
	log *logger.Logger

	// Now is the clock used for dates written by the store.
	Now func() time.Time
}

// Open opens (creating if needed) the database at path.
func Open(path string, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open(dialect.SQLite, fmt.Sprintf(sqliteDSN, path))
	if err != nil {
		return nil, fmt.Errorf("open venue database: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY between our own
	// statements.
	db.SetMaxOpenConns(1)

	return &Store{db: db, log: log, Now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the schema. It is safe to run repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating venue database: %w", err)
		}
	}
	return nil
}

// SeedExclusions copies configured exclusions into the database, skipping
// entries already present and the starter placeholder. It returns the
// number of rows added.
func (s *Store) SeedExclusions(ctx context.Context, entries []config.ExcludedVenueConfig) (int, error) {
	added := 0
	for _, e := range entries {
		if e.Name == "" || e.Name == ExamplePlaceholder {
			continue
		}
		query, args := builder().Insert("excluded_venues").
			Columns("venue_id", "name", "city", "reason", "date_excluded", "notes").
			Values(VenueID(e.Name, e.City), e.Name, e.City, e.Reason, nullString(e.DateExcluded), e.Notes).
			OnConflict(entsql.DoNothing()).
			Query()
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return added, fmt.Errorf("seeding exclusion %s: %w", e.Name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	if added > 0 {
		s.log.Info("Seeded exclusions from config", zap.Int("count", added))
	}
	return added, nil
}

// Init migrates the schema and seeds exclusions from cfg.
func (s *Store) Init(ctx context.Context, cfg *config.Config) error {
	if err := s.Migrate(ctx); err != nil {
		return err
	}
	_, err := s.SeedExclusions(ctx, cfg.Excluded.Venues)
	return err
}

func (s *Store) today() string {
	return s.Now().Format(DateLayout)
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func encodeList(v []string) string {
	if len(v) == 0 {
		return "[]"
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

func decodeList(raw string) []string {
	var out []string
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func (s *Store) count(ctx context.Context, sel *entsql.Selector) (int, error) {
	query, args := sel.Query()
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
