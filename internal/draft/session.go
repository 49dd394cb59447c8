package draft

import (
	"errors"
	"fmt"

	"github.com/Billy-Davies-2/team-draft/internal/models"
)

var ErrUnknownTeam = errors.New("unknown team")

// Session is the state of one draft. Methods never modify the receiver;
// transitions return a new Session.
type Session struct {
	Pool       []models.Player     `json:"-"`
	TeamCount  int                 `json:"teamCount"`
	TierTotals models.TierCounts   `json:"tierTotals"`
	Queue      []models.Player     `json:"queue"`
	Teams      []models.Team       `json:"teams"`
	History    []models.PickRecord `json:"history"`
}

// DefaultTeamName is the name given to team i when the host supplies none
func DefaultTeamName(i int) string {
	return fmt.Sprintf("Team %c", 'A'+rune(i%26))
}

// NewSession validates the pool, builds the queue and creates empty teams
func NewSession(pool []models.Player, teamNames []string, teamCount int, src RandomSource) (Session, error) {
	queue, err := BuildQueue(pool, teamCount, src)
	if err != nil {
		return Session{}, err
	}

	teams := make([]models.Team, teamCount)
	for i := range teams {
		name := DefaultTeamName(i)
		if i < len(teamNames) && teamNames[i] != "" {
			name = teamNames[i]
		}
		teams[i] = models.NewTeam(i, name)
	}

	original := make([]models.Player, len(pool))
	copy(original, pool)

	return Session{
		Pool:       original,
		TeamCount:  teamCount,
		TierTotals: TierTotals(pool),
		Queue:      queue,
		Teams:      teams,
		History:    []models.PickRecord{},
	}, nil
}

// Clone returns a deep copy of the session's mutable parts. Pool is shared
// because it is never written.
func (s Session) Clone() Session {
	queue := make([]models.Player, len(s.Queue))
	copy(queue, s.Queue)
	teams := make([]models.Team, len(s.Teams))
	for i, t := range s.Teams {
		teams[i] = t.Clone()
	}
	history := make([]models.PickRecord, len(s.History))
	copy(history, s.History)

	return Session{
		Pool:       s.Pool,
		TeamCount:  s.TeamCount,
		TierTotals: s.TierTotals.Clone(),
		Queue:      queue,
		Teams:      teams,
		History:    history,
	}
}

// Done reports whether every player has been assigned
func (s Session) Done() bool { return len(s.Queue) == 0 }

// OnTheBlock returns the player awaiting assignment
func (s Session) OnTheBlock() (models.Player, bool) {
	if len(s.Queue) == 0 {
		return models.Player{}, false
	}
	return s.Queue[0], true
}

// Candidates returns the eligible teams and their weights for the player
// on the block, in canonical team order.
func (s Session) Candidates() []WeightedTeam {
	player, ok := s.OnTheBlock()
	if !ok {
		return nil
	}
	eligible := EligibleTeams(player.Tier, s.Teams, s.TierTotals[player.Tier], s.TeamCount)
	return Weigh(eligible)
}

// Assign commits the player on the block to team teamID
func (s Session) Assign(teamID int) (Session, models.PickRecord, error) {
	player, ok := s.OnTheBlock()
	if !ok {
		return s, models.PickRecord{}, ErrDraftComplete
	}
	if teamID < 0 || teamID >= len(s.Teams) {
		return s, models.PickRecord{}, fmt.Errorf("%w: %d", ErrUnknownTeam, teamID)
	}

	next := s.Clone()
	team := &next.Teams[teamID]
	team.Members = append(team.Members, player)
	team.Stats[player.Tier]++
	team.Score += player.Tier.Value()

	pick := models.PickRecord{
		Pick:     len(s.History) + 1,
		Player:   player,
		TeamID:   team.ID,
		TeamName: team.Name,
	}
	next.History = append([]models.PickRecord{pick}, next.History...)
	next.Queue = next.Queue[1:]

	next.mustHold()
	return next, pick, nil
}

// Resolve selects a team for the player on the block and assigns it
func (s Session) Resolve(src RandomSource) (Session, models.PickRecord, error) {
	candidates := s.Candidates()
	idx, err := Select(candidates, src)
	if err != nil {
		return s, models.PickRecord{}, err
	}
	return s.Assign(candidates[idx].TeamID)
}

// Check verifies score consistency and player conservation
func (s Session) Check() error {
	for _, t := range s.Teams {
		if t.Stats.Total() != len(t.Members) {
			return fmt.Errorf("team %d: %d counted, %d members", t.ID, t.Stats.Total(), len(t.Members))
		}
		if want := Score(t); t.Score != want {
			return fmt.Errorf("team %d: score %d, recomputed %d", t.ID, t.Score, want)
		}
	}

	remaining := make(map[string]int, len(s.Pool))
	for _, p := range s.Pool {
		remaining[p.ID]++
	}
	take := func(p models.Player) error {
		if remaining[p.ID] == 0 {
			return fmt.Errorf("player %s duplicated or not in pool", p.ID)
		}
		remaining[p.ID]--
		return nil
	}
	for _, t := range s.Teams {
		for _, p := range t.Members {
			if err := take(p); err != nil {
				return err
			}
		}
	}
	for _, p := range s.Queue {
		if err := take(p); err != nil {
			return err
		}
	}
	for id, n := range remaining {
		if n != 0 {
			return fmt.Errorf("player %s lost", id)
		}
	}
	return nil
}

func (s Session) mustHold() {
	if err := s.Check(); err != nil {
		panic("draft: invariant violated: " + err.Error())
	}
}
