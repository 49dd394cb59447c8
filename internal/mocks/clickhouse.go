package mocks

import (
	"context"
	"sync"

	"github.com/Billy-Davies-2/team-draft/internal/logger"
	"github.com/Billy-Davies-2/team-draft/internal/models"
)

// MockClickHouseClient keeps recorded rosters in memory for local development
type MockClickHouseClient struct {
	mu      sync.RWMutex
	rosters map[string]models.Roster
	picks   int
}

// NewMockClickHouseClient creates a mock ClickHouse client
func NewMockClickHouseClient() *MockClickHouseClient {
	logger.Info("Using MOCK ClickHouse client for local development")
	return &MockClickHouseClient{rosters: make(map[string]models.Roster)}
}

// RecordRoster stores the roster as the latest for its event
func (m *MockClickHouseClient) RecordRoster(_ context.Context, roster models.Roster) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rosters[roster.Event] = roster
	m.picks += len(roster.History)
	logger.Debug("Mock ClickHouse: Recorded roster", "event", roster.Event, "picks", len(roster.History))
	return nil
}

// TeamScores recomputes team scores from the latest stored roster
func (m *MockClickHouseClient) TeamScores(_ context.Context, event string) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	scores := make(map[string]int)
	roster, ok := m.rosters[event]
	if !ok {
		return scores, nil
	}
	for _, rec := range roster.History {
		scores[rec.TeamName] += rec.Player.Tier.Value()
	}
	return scores, nil
}

// RecordedPicks returns how many picks were recorded in total
func (m *MockClickHouseClient) RecordedPicks() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.picks
}

// Ping always succeeds
func (m *MockClickHouseClient) Ping(context.Context) error { return nil }

// Close is a no-op for mock client
func (m *MockClickHouseClient) Close() error { return nil }
