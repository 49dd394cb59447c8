package draft

import (
	"fmt"
	"sort"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/Billy-Davies-2/team-draft/internal/models"
)

// seqSource replays vals in a loop
type seqSource struct {
	vals []float64
	i    int
}

func (s *seqSource) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func fixed(vals ...float64) *seqSource {
	return &seqSource{vals: vals}
}

// makePool builds a pool with a, b and c players of tiers A, B and C
func makePool(a, b, c int) []models.Player {
	var pool []models.Player
	add := func(n int, tier models.Tier) {
		for i := 1; i <= n; i++ {
			pool = append(pool, models.Player{
				ID:       fmt.Sprintf("%s%d", tier, i),
				Name:     fmt.Sprintf("Player %s%d", tier, i),
				Position: "Batsman",
				Tier:     tier,
				Batch:    "Batch 19",
			})
		}
	}
	add(a, models.TierA)
	add(b, models.TierB)
	add(c, models.TierC)
	return pool
}

// fakePool builds n players with random names and tiers
func fakePool(seed uint64, n int) []models.Player {
	f := gofakeit.New(seed)
	pool := make([]models.Player, n)
	for i := range pool {
		pool[i] = models.Player{
			ID:       fmt.Sprintf("p%03d", i),
			Name:     f.Name(),
			Position: f.RandomString([]string{"Striker", "Midfielder", "Defender", "Goalkeeper"}),
			Tier:     models.Tier(f.RandomString([]string{"A", "B", "C"})),
			Batch:    fmt.Sprintf("Batch %d", f.IntRange(15, 20)),
		}
	}
	return pool
}

func ids(players []models.Player) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.ID
	}
	return out
}

func sortedIDs(players []models.Player) []string {
	out := ids(players)
	sort.Strings(out)
	return out
}

func teamsByID(teams []models.Team) map[int]models.Team {
	out := make(map[int]models.Team, len(teams))
	for _, t := range teams {
		out[t.ID] = t
	}
	return out
}
