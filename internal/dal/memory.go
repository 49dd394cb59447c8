package dal

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Billy-Davies-2/team-draft/internal/models"
)

// MemoryDAL implements DraftDAL using in-memory storage
type MemoryDAL struct {
	mu      sync.RWMutex
	state   *models.EventState
	rosters map[string]models.Roster
}

// NewMemoryDAL creates a new in-memory data access layer
func NewMemoryDAL() *MemoryDAL {
	return &MemoryDAL{
		state:   defaultState(DefaultEvent),
		rosters: make(map[string]models.Roster),
	}
}

func (m *MemoryDAL) GetState() (*models.EventState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Copy to avoid races with writers
	return cloneState(m.state), nil
}

func (m *MemoryDAL) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = defaultState(m.state.Event)
	delete(m.rosters, m.state.Event)
	return nil
}

func (m *MemoryDAL) SetEvent(name string) (*models.EventState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("event name is required")
	}
	m.state.Event = name
	m.state.Positions = PositionsFor(name)
	return cloneState(m.state), nil
}

func (m *MemoryDAL) AddPlayer(player *models.Player) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if player.ID == "" {
		player.ID = genID()
	}
	for _, p := range m.state.Players {
		if p.ID == player.ID {
			return nil, fmt.Errorf("player %s already exists", player.ID)
		}
	}

	m.state.Players = append(m.state.Players, *player)
	return player, nil
}

func (m *MemoryDAL) UpdatePlayer(player *models.Player) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.state.Players {
		if m.state.Players[i].ID == player.ID {
			m.state.Players[i] = *player
			return player, nil
		}
	}
	return nil, fmt.Errorf("player %s: %w", player.ID, ErrNotFound)
}

func (m *MemoryDAL) DeletePlayer(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.state.Players {
		if m.state.Players[i].ID == id {
			m.state.Players = append(m.state.Players[:i], m.state.Players[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("player %s: %w", id, ErrNotFound)
}

func (m *MemoryDAL) SetTeamCount(count int) (*models.EventState, error) {
	if count < 2 {
		return nil, ErrInvalidTeamCount
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.TeamCount = count
	m.state.TeamNames = resizeTeamNames(m.state.TeamNames, count)
	return cloneState(m.state), nil
}

func (m *MemoryDAL) RenameTeam(index int, name string) (*models.EventState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if index < 0 || index >= m.state.TeamCount {
		return nil, ErrInvalidTeamIndex
	}
	m.state.TeamNames[index] = name
	return cloneState(m.state), nil
}

func (m *MemoryDAL) SaveRoster(roster *models.Roster) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rosters[roster.Event] = *roster
	return nil
}

func (m *MemoryDAL) LatestRoster(event string) (*models.Roster, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rosters[event]
	if !ok {
		return nil, fmt.Errorf("roster for %q: %w", event, ErrNotFound)
	}
	return &r, nil
}

func (m *MemoryDAL) Close() error { return nil }
