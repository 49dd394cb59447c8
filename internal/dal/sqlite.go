package dal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDAL implements DraftDAL using SQLite
type SQLiteDAL struct {
	*sqlStore
}

// NewSQLiteDAL creates a new SQLite data access layer
func NewSQLiteDAL(dbPath string) (*SQLiteDAL, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// A single writer avoids SQLITE_BUSY under concurrent handlers
	db.SetMaxOpenConns(1)

	dal := &SQLiteDAL{sqlStore: &sqlStore{db: db, bind: questionMarks}}
	if err := dal.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return dal, nil
}

func (s *SQLiteDAL) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		position TEXT NOT NULL,
		tier TEXT NOT NULL,
		batch TEXT NOT NULL,
		photo TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS event_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		event TEXT NOT NULL,
		team_count INTEGER NOT NULL,
		team_names TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rosters (
		event TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		roster TEXT NOT NULL,
		completed_at TIMESTAMP NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	return s.seedSettings()
}
