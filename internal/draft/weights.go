package draft

import (
	"github.com/samber/lo"

	"github.com/Billy-Davies-2/team-draft/internal/models"
)

// WeightFloor is added to every weight so the leading team keeps a
// non-zero chance.
const WeightFloor = 20

// WeightedTeam is a team eligible for the current pick with its selection weight
type WeightedTeam struct {
	TeamID int     `json:"teamId"`
	Name   string  `json:"name"`
	Score  int     `json:"score"`
	Weight float64 `json:"weight"`
}

// Score recomputes a team's score from its tier counts
func Score(team models.Team) int {
	return lo.SumBy(models.Tiers, func(t models.Tier) int {
		return team.Stats[t] * t.Value()
	})
}

// Weigh assigns each eligible team weight = maxScore - score + WeightFloor,
// keeping the input order.
func Weigh(eligible []models.Team) []WeightedTeam {
	if len(eligible) == 0 {
		return nil
	}
	scores := lo.Map(eligible, func(t models.Team, _ int) int { return Score(t) })
	maxScore := lo.Max(scores)

	return lo.Map(eligible, func(t models.Team, i int) WeightedTeam {
		return WeightedTeam{
			TeamID: t.ID,
			Name:   t.Name,
			Score:  scores[i],
			Weight: float64(maxScore - scores[i] + WeightFloor),
		}
	})
}

// TotalWeight sums the weights of a candidate set
func TotalWeight(weighted []WeightedTeam) float64 {
	return lo.SumBy(weighted, func(w WeightedTeam) float64 { return w.Weight })
}
