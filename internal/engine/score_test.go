package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

func flatStrategy(profits ...float64) *domain.Strategy {
	points := make([]domain.PayoffPoint, len(profits))
	minPL, maxPL := profits[0], profits[0]
	for i, p := range profits {
		points[i] = domain.PayoffPoint{Price: float64(100000 + i), Profit: p}
		if p < minPL {
			minPL = p
		}
		if p > maxPL {
			maxPL = p
		}
	}
	return &domain.Strategy{Payoff: points, MaxProfit: maxPL, MaxLoss: minPL}
}

func TestScore(t *testing.T) {
	t.Run("guaranteed profit scores above everything else", func(t *testing.T) {
		guaranteed := flatStrategy(50, 80, 120)
		assert.Equal(t, 1_000_050.0, Score(guaranteed))
		assert.True(t, guaranteed.GuaranteedProfit())

		risky := flatStrategy(-10, 500, 5000)
		assert.Less(t, Score(risky), 1_000_000.0)
	})

	t.Run("risky strategies rank by profit share and loss ratio", func(t *testing.T) {
		// 2 of 4 points positive, max 100 against min -50.
		s := flatStrategy(-50, -10, 40, 100)
		assert.InDelta(t, 50+100.0/50, Score(s), 1e-9)
	})

	t.Run("loss ratio clamps at 100", func(t *testing.T) {
		s := flatStrategy(-0.01, 10000)
		assert.InDelta(t, 50+100, Score(s), 1e-9)
	})

	t.Run("zero worst case gets the clamped ratio", func(t *testing.T) {
		s := flatStrategy(0, 10)
		assert.InDelta(t, 50+100, Score(s), 1e-9)
		assert.False(t, s.GuaranteedProfit())
	})
}

func TestSortByScore(t *testing.T) {
	a := flatStrategy(50, 60)       // guaranteed
	b := flatStrategy(-10, 40, 100) // risky
	c := flatStrategy(200, 300)     // guaranteed, bigger floor

	strategies := []*domain.Strategy{b, a, c}
	sortByScore(strategies)

	assert.Equal(t, []*domain.Strategy{c, a, b}, strategies)

	t.Run("stable on equal scores", func(t *testing.T) {
		x := flatStrategy(-10, 40, 100)
		y := flatStrategy(-10, 40, 100)
		strategies := []*domain.Strategy{x, y}
		sortByScore(strategies)
		assert.Equal(t, []*domain.Strategy{x, y}, strategies)
	})
}
