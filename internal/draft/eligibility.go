package draft

import (
	"github.com/samber/lo"

	"github.com/Billy-Davies-2/team-draft/internal/models"
)

// CapPerTeam is the most players of one tier a team should get when the
// tier is spread evenly: ceil(totalOfTier / teamCount).
func CapPerTeam(totalOfTier, teamCount int) int {
	if teamCount <= 0 || totalOfTier <= 0 {
		return 0
	}
	return (totalOfTier + teamCount - 1) / teamCount
}

// EligibleTeams returns the teams still below the cap for tier. When no
// team qualifies the cap is relaxed and every team is returned.
func EligibleTeams(tier models.Tier, teams []models.Team, totalOfTier, teamCount int) []models.Team {
	limit := CapPerTeam(totalOfTier, teamCount)
	eligible := lo.Filter(teams, func(t models.Team, _ int) bool {
		return t.Stats[tier] < limit
	})
	if len(eligible) == 0 {
		out := make([]models.Team, len(teams))
		copy(out, teams)
		return out
	}
	return eligible
}
