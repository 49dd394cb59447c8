package mocks

import (
	"github.com/Billy-Davies-2/team-draft/internal/dal"
	"github.com/Billy-Davies-2/team-draft/internal/logger"
)

// MockPostgresDAL stands in for Postgres with a SQLite file, so the
// postgres driver can be exercised in development without a server
type MockPostgresDAL struct {
	dal.DraftDAL
}

// NewMockPostgresDAL creates a mock Postgres DAL using SQLite
func NewMockPostgresDAL(sqliteFile string) (*MockPostgresDAL, error) {
	logger.Info("Using MOCK Postgres (SQLite) for local development", "file", sqliteFile)

	sqliteDAL, err := dal.NewSQLiteDAL(sqliteFile)
	if err != nil {
		return nil, err
	}

	return &MockPostgresDAL{
		DraftDAL: sqliteDAL,
	}, nil
}
