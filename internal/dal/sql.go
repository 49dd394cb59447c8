package dal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Billy-Davies-2/team-draft/internal/models"
)

// sqlStore holds the queries shared by the SQLite and Postgres stores.
// Queries are written with ? placeholders and passed through bind.
type sqlStore struct {
	db   *sql.DB
	bind func(query string) string
}

func questionMarks(query string) string { return query }

// dollarPlaceholders rewrites ? placeholders as $1, $2, ...
func dollarPlaceholders(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) exec(q string, args ...any) (sql.Result, error) {
	return s.db.Exec(s.bind(q), args...)
}

func (s *sqlStore) seedSettings() error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM event_settings").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return s.writeSettings(s.db, defaultState(DefaultEvent))
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (s *sqlStore) writeSettings(db execer, state *models.EventState) error {
	names, err := json.Marshal(state.TeamNames)
	if err != nil {
		return err
	}
	_, err = db.Exec(s.bind(`
		INSERT INTO event_settings (id, event, team_count, team_names)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			event = excluded.event,
			team_count = excluded.team_count,
			team_names = excluded.team_names
	`), state.Event, state.TeamCount, string(names))
	return err
}

func (s *sqlStore) readSettings() (*models.EventState, error) {
	state := &models.EventState{}
	var names string
	err := s.db.QueryRow(`SELECT event, team_count, team_names FROM event_settings WHERE id = 1`).
		Scan(&state.Event, &state.TeamCount, &names)
	if err != nil {
		return nil, fmt.Errorf("failed to load event settings: %w", err)
	}
	if err := json.Unmarshal([]byte(names), &state.TeamNames); err != nil {
		return nil, fmt.Errorf("failed to decode team names: %w", err)
	}
	state.Positions = PositionsFor(state.Event)
	state.Batches = Batches()
	return state, nil
}

func (s *sqlStore) GetState() (*models.EventState, error) {
	state, err := s.readSettings()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT id, name, position, tier, batch, photo FROM players ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	state.Players = []models.Player{}
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.Position, &p.Tier, &p.Batch, &p.Photo); err != nil {
			return nil, err
		}
		state.Players = append(state.Players, p)
	}
	return state, rows.Err()
}

func (s *sqlStore) Reset() error {
	current, err := s.readSettings()
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM players`); err != nil {
		return err
	}
	if _, err := tx.Exec(s.bind(`DELETE FROM rosters WHERE event = ?`), current.Event); err != nil {
		return err
	}
	if err := s.writeSettings(tx, defaultState(current.Event)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *sqlStore) SetEvent(name string) (*models.EventState, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("event name is required")
	}
	if _, err := s.exec(`UPDATE event_settings SET event = ? WHERE id = 1`, name); err != nil {
		return nil, err
	}
	return s.GetState()
}

func (s *sqlStore) AddPlayer(player *models.Player) (*models.Player, error) {
	if player.ID == "" {
		player.ID = genID()
	}
	_, err := s.exec(`
		INSERT INTO players (id, name, position, tier, batch, photo)
		VALUES (?, ?, ?, ?, ?, ?)
	`, player.ID, player.Name, player.Position, player.Tier, player.Batch, player.Photo)
	if err != nil {
		return nil, fmt.Errorf("failed to add player: %w", err)
	}
	return player, nil
}

func (s *sqlStore) UpdatePlayer(player *models.Player) (*models.Player, error) {
	res, err := s.exec(`
		UPDATE players SET name = ?, position = ?, tier = ?, batch = ?, photo = ?
		WHERE id = ?
	`, player.Name, player.Position, player.Tier, player.Batch, player.Photo, player.ID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("player %s: %w", player.ID, ErrNotFound)
	}
	return player, nil
}

func (s *sqlStore) DeletePlayer(id string) error {
	res, err := s.exec(`DELETE FROM players WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("player %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *sqlStore) SetTeamCount(count int) (*models.EventState, error) {
	if count < 2 {
		return nil, ErrInvalidTeamCount
	}
	state, err := s.readSettings()
	if err != nil {
		return nil, err
	}
	state.TeamCount = count
	state.TeamNames = resizeTeamNames(state.TeamNames, count)
	if err := s.writeSettings(s.db, state); err != nil {
		return nil, err
	}
	return s.GetState()
}

func (s *sqlStore) RenameTeam(index int, name string) (*models.EventState, error) {
	state, err := s.readSettings()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= state.TeamCount {
		return nil, ErrInvalidTeamIndex
	}
	state.TeamNames[index] = name
	if err := s.writeSettings(s.db, state); err != nil {
		return nil, err
	}
	return s.GetState()
}

func (s *sqlStore) SaveRoster(roster *models.Roster) error {
	data, err := json.Marshal(roster)
	if err != nil {
		return fmt.Errorf("failed to encode roster: %w", err)
	}
	_, err = s.exec(`
		INSERT INTO rosters (event, mode, roster, completed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (event) DO UPDATE SET
			mode = excluded.mode,
			roster = excluded.roster,
			completed_at = excluded.completed_at
	`, roster.Event, string(roster.Mode), string(data), roster.CompletedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save roster: %w", err)
	}
	return nil
}

func (s *sqlStore) LatestRoster(event string) (*models.Roster, error) {
	var data string
	err := s.db.QueryRow(s.bind(`SELECT roster FROM rosters WHERE event = ?`), event).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("roster for %q: %w", event, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var roster models.Roster
	if err := json.Unmarshal([]byte(data), &roster); err != nil {
		return nil, fmt.Errorf("failed to decode roster: %w", err)
	}
	return &roster, nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
