package engine

import (
	"math"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

// Breakevens scans consecutive pairs of the combined curve and linearly
// interpolates each zero crossing (including touches of exactly zero),
// weighting by the two profits' magnitudes and rounding to a whole dollar.
// The grid is ascending, so the breakevens come out ascending too.
func Breakevens(payoff []domain.PayoffPoint) []float64 {
	var breakevens []float64
	for i := 1; i < len(payoff); i++ {
		prev, curr := payoff[i-1], payoff[i]

		crossesUp := prev.Profit <= 0 && curr.Profit > 0
		crossesDown := prev.Profit >= 0 && curr.Profit < 0
		if !crossesUp && !crossesDown {
			continue
		}

		frac := math.Abs(prev.Profit) / (math.Abs(prev.Profit) + math.Abs(curr.Profit))
		breakevens = append(breakevens, math.Round(prev.Price+frac*(curr.Price-prev.Price)))
	}
	return breakevens
}
