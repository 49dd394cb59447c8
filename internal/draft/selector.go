package draft

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNoCandidates  = errors.New("no candidate teams")
	ErrInvalidWeight = errors.New("weights must be positive and finite")
)

// Select draws one index from weighted with probability weight/total.
// Candidates are walked in slice order; the order only decides which team
// owns which sub-interval of [0, total).
func Select(weighted []WeightedTeam, src RandomSource) (int, error) {
	if len(weighted) == 0 {
		return 0, ErrNoCandidates
	}
	total := 0.0
	for _, w := range weighted {
		if !(w.Weight > 0) || math.IsInf(w.Weight, 0) {
			return 0, fmt.Errorf("%w: team %d has weight %v", ErrInvalidWeight, w.TeamID, w.Weight)
		}
		total += w.Weight
	}

	r := src.Float64() * total
	for i, w := range weighted {
		if r < w.Weight {
			return i, nil
		}
		r -= w.Weight
	}
	// Rounding can leave a sliver of r after the walk.
	return len(weighted) - 1, nil
}
