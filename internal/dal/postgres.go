package dal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresDAL implements DraftDAL using PostgreSQL
type PostgresDAL struct {
	*sqlStore
}

// NewPostgresDAL creates a new PostgreSQL data access layer optimized for CloudNativePG
func NewPostgresDAL(connString string) (*PostgresDAL, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	// CloudNativePG: bounded pool, recycled connections to ride out failovers
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	// Retry the first ping to tolerate DNS propagation delays in Kubernetes
	maxRetries := 5
	retryDelay := 5 * time.Second
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		lastErr = db.PingContext(ctx)
		cancel()
		if lastErr == nil {
			break
		}
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	if lastErr != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres after %d retries: %w", maxRetries, lastErr)
	}

	dal := &PostgresDAL{sqlStore: &sqlStore{db: db, bind: dollarPlaceholders}}
	if err := dal.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return dal, nil
}

func (p *PostgresDAL) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		position TEXT NOT NULL,
		tier TEXT NOT NULL CHECK (tier IN ('A', 'B', 'C')),
		batch TEXT NOT NULL,
		photo TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS event_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		event TEXT NOT NULL,
		team_count INTEGER NOT NULL CHECK (team_count >= 2),
		team_names JSONB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rosters (
		event TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		roster JSONB NOT NULL,
		completed_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_players_tier ON players(tier);
	CREATE INDEX IF NOT EXISTS idx_rosters_completed_at ON rosters(completed_at DESC);
	`

	if _, err := p.db.Exec(schema); err != nil {
		return err
	}

	return p.seedSettings()
}
