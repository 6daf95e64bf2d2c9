package engine

import (
	"sort"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

// guaranteedProfitBase lifts every guaranteed-profit strategy above every
// non-guaranteed one; within the tier they rank by the size of the floor.
const guaranteedProfitBase = 1_000_000

// Score ranks a strategy. A strategy whose combined curve is strictly
// positive everywhere is a true arbitrage and scores guaranteedProfitBase
// plus its worst-case profit. Everything else scores by the fraction of
// grid points in profit plus a capped profit-to-loss ratio.
func Score(s *domain.Strategy) float64 {
	minPL := s.MaxLoss
	maxPL := s.MaxProfit

	if minPL > 0 {
		return guaranteedProfitBase + minPL
	}

	positive := 0
	for _, p := range s.Payoff {
		if p.Profit > 0 {
			positive++
		}
	}
	positiveRatio := 0.0
	if len(s.Payoff) > 0 {
		positiveRatio = float64(positive) / float64(len(s.Payoff))
	}

	// minPL == 0 would make the ratio infinite; it is clamped either way.
	lossRatio := 100.0
	if minPL < 0 {
		if r := maxPL / -minPL; r < 100 {
			lossRatio = r
		}
	}

	return positiveRatio*100 + lossRatio
}

// sortByScore orders strategies by descending score. The sort is stable so
// identical inputs always yield the identical ranking.
func sortByScore(strategies []*domain.Strategy) {
	scores := make(map[*domain.Strategy]float64, len(strategies))
	for _, s := range strategies {
		scores[s] = Score(s)
	}
	sort.SliceStable(strategies, func(i, j int) bool {
		return scores[strategies[i]] > scores[strategies[j]]
	})
}
