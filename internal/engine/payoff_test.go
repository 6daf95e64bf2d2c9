package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

func TestPriceGrid(t *testing.T) {
	a := testAnalyzer()
	prices := a.PriceGrid(100000)

	require.Len(t, prices, 301)
	assert.Equal(t, 50000.0, prices[0])
	assert.Equal(t, 150000.0, prices[300])

	t.Run("ascending, whole dollars", func(t *testing.T) {
		for i, p := range prices {
			assert.Equal(t, math.Round(p), p)
			if i > 0 {
				assert.Greater(t, p, prices[i-1])
			}
		}
	})

	t.Run("deterministic for the same spot", func(t *testing.T) {
		assert.Equal(t, prices, a.PriceGrid(100000))
	})
}

func TestEvaluate(t *testing.T) {
	a := testAnalyzer()
	prices := a.PriceGrid(100000)

	combo := domain.Combo{
		BinaryLeg: domain.AtomicPosition{
			Name: "Long YES above $100K", Instrument: "Poly YES above $100K",
			Refs: []string{"yes-token"}, Bias: domain.BiasBull,
			CostPerUnit: 0.40, MaxPayout: domain.Bounded(1),
			Payoff: domain.Payoff{Kind: domain.PayoffIndicator, Strike: 100000, Direction: domain.DirectionAbove},
		},
		OptionLeg: domain.AtomicPosition{
			Name: "Long Put @$100K", Instrument: "BTC-28MAR25-100000-P",
			Refs: []string{"BTC-28MAR25-100000-P"}, Bias: domain.BiasBear,
			CostPerUnit: 1500, MaxPayout: domain.Bounded(100000),
			Payoff: domain.Payoff{Kind: domain.PayoffVanilla, Strike: 100000, Option: domain.OptionPut},
		},
	}
	sizing := Sizing{BinaryQty: 1000, OptionQty: 1}

	s := a.Evaluate(combo, sizing, prices)

	t.Run("curves sampled at every grid point", func(t *testing.T) {
		assert.Len(t, s.Payoff, len(prices))
		require.Len(t, s.LegPayoffs, 2)
		assert.Len(t, s.LegPayoffs[0], len(prices))
	})

	t.Run("combined equals the sum of the legs", func(t *testing.T) {
		for i := range s.Payoff {
			sum := s.LegPayoffs[0][i].Profit + s.LegPayoffs[1][i].Profit
			assert.InDelta(t, sum, s.Payoff[i].Profit, 1e-9)
		}
	})

	t.Run("profit at the extremes", func(t *testing.T) {
		// At 50000: binary loses 400, put pays 50000 - 1500 cost net 48500.
		assert.InDelta(t, -400+48500, s.Payoff[0].Profit, 1e-9)
		// At 150000: binary nets 600, put expires worthless.
		assert.InDelta(t, 600-1500, s.Payoff[300].Profit, 1e-9)
	})

	t.Run("max profit and loss bound every grid point", func(t *testing.T) {
		for _, p := range s.Payoff {
			assert.LessOrEqual(t, p.Profit, s.MaxProfit)
			assert.GreaterOrEqual(t, p.Profit, s.MaxLoss)
		}
	})

	t.Run("legs carry the sized quantities and signed costs", func(t *testing.T) {
		bin, opt := s.BinaryLeg(), s.OptionLeg()
		assert.Equal(t, domain.LegLong, bin.Direction)
		assert.Equal(t, 1000.0, bin.Quantity)
		assert.InDelta(t, 400, bin.TotalCost, 1e-9)
		assert.Equal(t, 1.0, opt.Quantity)
		assert.InDelta(t, 1900, s.TotalCost, 1e-9)
	})

	t.Run("name and description compose the leg names", func(t *testing.T) {
		assert.Equal(t, "Long YES above $100K + Long Put @$100K", s.Name)
		assert.Equal(t, "Long YES above $100K (x1000) + Long Put @$100K (x1.0)", s.Description)
	})

	t.Run("short leg direction follows the cost sign", func(t *testing.T) {
		short := combo
		short.OptionLeg.CostPerUnit = -1500
		s := a.Evaluate(short, sizing, prices)
		assert.Equal(t, domain.LegShort, s.OptionLeg().Direction)
		assert.InDelta(t, 1500, s.OptionLeg().UnitPrice, 1e-9)
	})
}

func TestBreakevens(t *testing.T) {
	t.Run("interpolates the crossing between grid points", func(t *testing.T) {
		curve := []domain.PayoffPoint{
			{Price: 100000, Profit: -10},
			{Price: 101000, Profit: 10},
		}
		assert.Equal(t, []float64{100500}, Breakevens(curve))
	})

	t.Run("weights by the profit magnitudes", func(t *testing.T) {
		curve := []domain.PayoffPoint{
			{Price: 100000, Profit: -30},
			{Price: 101000, Profit: 10},
		}
		assert.Equal(t, []float64{100750}, Breakevens(curve))
	})

	t.Run("detects downward crossings", func(t *testing.T) {
		curve := []domain.PayoffPoint{
			{Price: 100000, Profit: 10},
			{Price: 101000, Profit: -10},
		}
		assert.Equal(t, []float64{100500}, Breakevens(curve))
	})

	t.Run("multiple crossings come out ascending", func(t *testing.T) {
		curve := []domain.PayoffPoint{
			{Price: 100000, Profit: -10},
			{Price: 101000, Profit: 10},
			{Price: 102000, Profit: -10},
		}
		bes := Breakevens(curve)
		require.Len(t, bes, 2)
		assert.Less(t, bes[0], bes[1])
	})

	t.Run("no crossing, no breakevens", func(t *testing.T) {
		curve := []domain.PayoffPoint{
			{Price: 100000, Profit: 10},
			{Price: 101000, Profit: 20},
		}
		assert.Empty(t, Breakevens(curve))
	})
}
