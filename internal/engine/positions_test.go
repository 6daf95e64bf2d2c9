package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

func TestBinaryPositions(t *testing.T) {
	bin := domain.BinaryContract{
		Strike:     100000,
		Direction:  domain.DirectionAbove,
		YesPrice:   0.40,
		NoPrice:    0.60,
		YesTokenID: "yes-token",
		NoTokenID:  "no-token",
	}

	positions := BinaryPositions(bin)
	require.Len(t, positions, 4)

	t.Run("two bull and two bear", func(t *testing.T) {
		bulls := 0
		for _, p := range positions {
			if p.Bias == domain.BiasBull {
				bulls++
			}
		}
		assert.Equal(t, 2, bulls)
	})

	t.Run("long yes of an above contract is bull", func(t *testing.T) {
		longYes := positions[0]
		assert.Equal(t, "Long YES above $100K", longYes.Name)
		assert.Equal(t, domain.BiasBull, longYes.Bias)
		assert.Equal(t, 0.40, longYes.CostPerUnit)
		assert.Equal(t, domain.Bounded(1), longYes.MaxPayout)
		assert.Equal(t, []string{"yes-token"}, longYes.Refs)
	})

	t.Run("short positions receive premium and cap payout at it", func(t *testing.T) {
		shortYes := positions[1]
		assert.Equal(t, -0.40, shortYes.CostPerUnit)
		assert.Equal(t, domain.BiasBear, shortYes.Bias)
		assert.Equal(t, domain.Bounded(0.40), shortYes.MaxPayout)
	})

	t.Run("no leg carries the flipped direction", func(t *testing.T) {
		longNo := positions[2]
		assert.Equal(t, domain.DirectionBelow, longNo.Payoff.Direction)
		assert.Equal(t, domain.BiasBear, longNo.Bias)
		assert.Equal(t, []string{"no-token"}, longNo.Refs)
	})

	t.Run("below contract flips every bias", func(t *testing.T) {
		below := bin
		below.Direction = domain.DirectionBelow
		flipped := BinaryPositions(below)
		assert.Equal(t, domain.BiasBear, flipped[0].Bias) // long YES below
		assert.Equal(t, domain.BiasBull, flipped[2].Bias) // long NO below
	})
}

func TestVanillaPositions(t *testing.T) {
	call := domain.ListedOption{
		InstrumentName: "BTC-28MAR25-100000-C",
		Strike:         100000,
		Kind:           domain.OptionCall,
		MidPrice:       1500,
	}

	positions := vanillaPositions(call)
	require.Len(t, positions, 2)

	t.Run("long call is unbounded bull", func(t *testing.T) {
		long := positions[0]
		assert.Equal(t, domain.BiasBull, long.Bias)
		assert.Equal(t, 1500.0, long.CostPerUnit)
		assert.True(t, long.MaxPayout.Unbounded)
	})

	t.Run("short call is bounded by the premium", func(t *testing.T) {
		short := positions[1]
		assert.Equal(t, domain.BiasBear, short.Bias)
		assert.Equal(t, -1500.0, short.CostPerUnit)
		assert.Equal(t, domain.Bounded(1500), short.MaxPayout)
	})

	t.Run("long put is bounded by the strike", func(t *testing.T) {
		put := call
		put.Kind = domain.OptionPut
		put.InstrumentName = "BTC-28MAR25-100000-P"
		positions := vanillaPositions(put)
		require.Len(t, positions, 2)
		assert.Equal(t, domain.BiasBear, positions[0].Bias)
		assert.Equal(t, domain.Bounded(100000), positions[0].MaxPayout)
	})
}

func TestSpreadConstruction(t *testing.T) {
	a := testAnalyzer()

	mkCall := func(strike, bid, ask float64) domain.ListedOption {
		return domain.ListedOption{
			InstrumentName: "C" + strikeLabel(strike),
			Strike:         strike, Kind: domain.OptionCall,
			BidPrice: bid, AskPrice: ask, MidPrice: (bid + ask) / 2,
		}
	}

	t.Run("long spread enters at ask minus bid, short at bid minus ask", func(t *testing.T) {
		calls := []domain.ListedOption{
			mkCall(100000, 2000, 2200),
			mkCall(110000, 900, 1000),
		}
		positions := a.callSpreads(calls)
		require.Len(t, positions, 2)

		long := positions[0]
		assert.True(t, long.IsSpread)
		assert.Equal(t, domain.BiasBull, long.Bias)
		assert.InDelta(t, 2200-900, long.CostPerUnit, 1e-9)
		assert.Equal(t, domain.Bounded(10000), long.MaxPayout)
		assert.Equal(t, []string{"C$100K", "C$110K"}, long.Refs)

		short := positions[1]
		assert.Equal(t, domain.BiasBear, short.Bias)
		assert.InDelta(t, -(2000 - 1000), short.CostPerUnit, 1e-9)
		assert.Equal(t, domain.Bounded(1000), short.MaxPayout)
	})

	t.Run("width outside the band is skipped", func(t *testing.T) {
		calls := []domain.ListedOption{
			mkCall(100000, 2000, 2200),
			mkCall(101000, 1900, 2100), // 1000 wide, under minimum
		}
		assert.Empty(t, a.callSpreads(calls))

		calls[1] = mkCall(140000, 100, 200) // 40000 wide, over maximum
		assert.Empty(t, a.callSpreads(calls))
	})

	t.Run("entry at or above the width cannot profit and is skipped", func(t *testing.T) {
		calls := []domain.ListedOption{
			mkCall(100000, 11000, 12000),
			mkCall(110000, 900, 1000),
		}
		// long debit 12000 - 900 >= 10000 width; only the short survives
		positions := a.callSpreads(calls)
		require.Len(t, positions, 1)
		assert.Equal(t, domain.BiasBear, positions[0].Bias)
	})

	t.Run("put spread buys the higher strike", func(t *testing.T) {
		mkPut := func(strike, bid, ask float64) domain.ListedOption {
			opt := mkCall(strike, bid, ask)
			opt.Kind = domain.OptionPut
			opt.InstrumentName = "P" + strikeLabel(strike)
			return opt
		}
		puts := []domain.ListedOption{
			mkPut(90000, 800, 900),
			mkPut(100000, 2500, 2700),
		}
		positions := a.putSpreads(puts)
		require.Len(t, positions, 2)

		long := positions[0]
		assert.Equal(t, domain.BiasBear, long.Bias)
		assert.InDelta(t, 2700-800, long.CostPerUnit, 1e-9)
		assert.Equal(t, []string{"P$100K", "P$90K"}, long.Refs)
	})

	t.Run("one-sided quotes are excluded from spreads", func(t *testing.T) {
		options := []domain.ListedOption{
			mkCall(100000, 2000, 2200),
			mkCall(110000, 0, 1000), // no bid
		}
		positions := a.OptionPositions(options)
		for _, p := range positions {
			assert.False(t, p.IsSpread)
		}
	})
}

func TestFindCombos(t *testing.T) {
	bull := domain.AtomicPosition{Name: "bull", Bias: domain.BiasBull}
	bear := domain.AtomicPosition{Name: "bear", Bias: domain.BiasBear}

	combos := FindCombos(
		[]domain.AtomicPosition{bull, bear},
		[]domain.AtomicPosition{bull, bear},
	)
	require.Len(t, combos, 2)
	for _, c := range combos {
		assert.NotEqual(t, c.BinaryLeg.Bias, c.OptionLeg.Bias)
	}
}
