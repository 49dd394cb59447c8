package draft

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/Billy-Davies-2/team-draft/internal/models"
)

var (
	ErrInsufficientPlayers = errors.New("not enough players to create teams")
	ErrInvalidTeamCount    = errors.New("team count must be at least 2")
	ErrUnknownTier         = errors.New("unknown tier")
	ErrDuplicatePlayer     = errors.New("duplicate player id")
)

// ValidatePool checks the preconditions for drafting pool into teamCount teams
func ValidatePool(pool []models.Player, teamCount int) error {
	if teamCount < 2 {
		return ErrInvalidTeamCount
	}
	if len(pool) < teamCount {
		return fmt.Errorf("%w: %d players for %d teams", ErrInsufficientPlayers, len(pool), teamCount)
	}
	seen := make(map[string]struct{}, len(pool))
	for _, p := range pool {
		if !p.Tier.Valid() {
			return fmt.Errorf("%w %q for player %s", ErrUnknownTier, p.Tier, p.ID)
		}
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// TierTotals counts the players of each tier in pool
func TierTotals(pool []models.Player) models.TierCounts {
	totals := models.TierCounts{models.TierA: 0, models.TierB: 0, models.TierC: 0}
	for _, p := range pool {
		totals[p.Tier]++
	}
	return totals
}

// BuildQueue returns the draft order: players grouped by tier in priority
// order, each group shuffled.
func BuildQueue(pool []models.Player, teamCount int, src RandomSource) ([]models.Player, error) {
	if err := ValidatePool(pool, teamCount); err != nil {
		return nil, err
	}

	byTier := lo.GroupBy(pool, func(p models.Player) models.Tier { return p.Tier })

	queue := make([]models.Player, 0, len(pool))
	for _, tier := range models.Tiers {
		group := make([]models.Player, len(byTier[tier]))
		copy(group, byTier[tier])
		shuffle(group, src)
		queue = append(queue, group...)
	}
	return queue, nil
}

// shuffle is a Fisher-Yates shuffle, so every permutation is equally likely
func shuffle(players []models.Player, src RandomSource) {
	for i := len(players) - 1; i > 0; i-- {
		j := intn(src, i+1)
		players[i], players[j] = players[j], players[i]
	}
}
