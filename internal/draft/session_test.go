package draft

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Billy-Davies-2/team-draft/internal/models"
)

func TestNewSessionNamesTeams(t *testing.T) {
	s, err := NewSession(makePool(2, 2, 2), []string{"Team Alpha", ""}, 3, NewSeededSource(1))
	require.NoError(t, err)

	require.Equal(t, "Team Alpha", s.Teams[0].Name)
	require.Equal(t, "Team B", s.Teams[1].Name)
	require.Equal(t, "Team C", s.Teams[2].Name)
	require.Len(t, s.Queue, 6)
	require.Empty(t, s.History)
	require.NoError(t, s.Check())
}

func TestNewSessionInsufficientPlayers(t *testing.T) {
	_, err := NewSession(makePool(1, 0, 0), nil, 2, NewSeededSource(1))
	require.ErrorIs(t, err, ErrInsufficientPlayers)
}

func TestAssignCommitsPick(t *testing.T) {
	s, err := NewSession(makePool(1, 1, 0), nil, 2, NewSeededSource(1))
	require.NoError(t, err)

	head, _ := s.OnTheBlock()
	next, pick, err := s.Assign(1)
	require.NoError(t, err)

	require.Equal(t, 1, pick.Pick)
	require.Equal(t, head.ID, pick.Player.ID)
	require.Equal(t, "Team B", pick.TeamName)
	require.Equal(t, []models.Player{head}, next.Teams[1].Members)
	require.Equal(t, 1, next.Teams[1].Stats[models.TierA])
	require.Equal(t, 100, next.Teams[1].Score)
	require.Len(t, next.Queue, 1)

	// the receiver is untouched
	require.Len(t, s.Queue, 2)
	require.Empty(t, s.Teams[1].Members)
	require.Zero(t, s.Teams[1].Stats[models.TierA])
}

func TestAssignHistoryIsMostRecentFirst(t *testing.T) {
	s, err := NewSession(makePool(2, 1, 0), nil, 2, NewSeededSource(5))
	require.NoError(t, err)

	var picks []models.PickRecord
	for !s.Done() {
		var pick models.PickRecord
		s, pick, err = s.Assign(len(picks) % 2)
		require.NoError(t, err)
		picks = append(picks, pick)
	}

	require.Len(t, s.History, 3)
	for i, rec := range s.History {
		require.Equal(t, picks[len(picks)-1-i], rec)
	}
	require.Equal(t, 3, s.History[0].Pick)
}

func TestAssignErrors(t *testing.T) {
	s, err := NewSession(makePool(1, 1, 0), nil, 2, NewSeededSource(1))
	require.NoError(t, err)

	_, _, err = s.Assign(5)
	require.ErrorIs(t, err, ErrUnknownTeam)

	s, _, _ = s.Assign(0)
	s, _, _ = s.Assign(1)
	_, _, err = s.Assign(0)
	require.ErrorIs(t, err, ErrDraftComplete)
}

func TestAssignPanicsOnCorruptedState(t *testing.T) {
	s, err := NewSession(makePool(2, 0, 0), nil, 2, NewSeededSource(1))
	require.NoError(t, err)
	s.Teams[0].Score = 999

	require.Panics(t, func() { _, _, _ = s.Assign(1) })
}

func TestCheckDetectsViolations(t *testing.T) {
	base, err := NewSession(makePool(2, 1, 0), nil, 2, NewSeededSource(1))
	require.NoError(t, err)

	dup := base.Clone()
	dup.Queue = append(dup.Queue, dup.Queue[0])
	require.Error(t, dup.Check())

	lost := base.Clone()
	lost.Queue = lost.Queue[1:]
	require.Error(t, lost.Check())

	drift := base.Clone()
	drift.Teams[0].Stats[models.TierC] = 1
	require.Error(t, drift.Check())
}

func TestCloneIsIndependent(t *testing.T) {
	s, err := NewSession(makePool(2, 1, 0), nil, 2, NewSeededSource(1))
	require.NoError(t, err)
	s, _, err = s.Assign(0)
	require.NoError(t, err)

	c := s.Clone()
	c.Teams[0].Members[0].Name = "changed"
	c.Teams[0].Stats[models.TierA] = 7
	c.Queue[0].Name = "changed"
	c.History[0].TeamName = "changed"

	require.NotEqual(t, "changed", s.Teams[0].Members[0].Name)
	require.NotEqual(t, 7, s.Teams[0].Stats[models.TierA])
	require.NotEqual(t, "changed", s.Queue[0].Name)
	require.NotEqual(t, "changed", s.History[0].TeamName)
}

// The 2-team, 3/2/1 scenario: two A players on team A force the third A
// player onto team B.
func TestExampleScenarioForcesThirdPick(t *testing.T) {
	s, err := NewSession(makePool(3, 2, 1), nil, 2, NewSeededSource(8))
	require.NoError(t, err)

	require.Equal(t, []int{0, 1}, candidateIDs(s.Candidates()))
	s, _, err = s.Assign(0)
	require.NoError(t, err)

	require.Equal(t, []int{0, 1}, candidateIDs(s.Candidates()))
	s, _, err = s.Assign(0)
	require.NoError(t, err)

	head, _ := s.OnTheBlock()
	require.Equal(t, models.TierA, head.Tier)
	require.Equal(t, []int{1}, candidateIDs(s.Candidates()))

	s, pick, err := s.Resolve(NewSeededSource(123))
	require.NoError(t, err)
	require.Equal(t, 1, pick.TeamID)
}

func TestResolveConservesPlayersAndRespectsCaps(t *testing.T) {
	for seed := uint64(1); seed <= 40; seed++ {
		pool := fakePool(seed, 10+int(seed%23))
		teamCount := 2 + int(seed%5)
		if len(pool) < teamCount {
			continue
		}
		src := NewSeededSource(seed)
		s, err := NewSession(pool, nil, teamCount, src)
		require.NoError(t, err)

		for !s.Done() {
			s, _, err = s.Resolve(src)
			require.NoError(t, err)
			require.NoError(t, s.Check())
		}

		for _, team := range s.Teams {
			require.Equal(t, Score(team), team.Score)
			for _, tier := range models.Tiers {
				limit := CapPerTeam(s.TierTotals[tier], teamCount)
				require.LessOrEqual(t, team.Stats[tier], limit, "seed %d team %d tier %s", seed, team.ID, tier)
			}
		}
		require.Len(t, s.History, len(pool))
	}
}

func candidateIDs(cands []WeightedTeam) []int {
	out := make([]int, len(cands))
	for i, c := range cands {
		out[i] = c.TeamID
	}
	return out
}
