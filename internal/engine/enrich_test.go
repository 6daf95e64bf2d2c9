package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

// fakeBooks serves canned depth per instrument ref and records the sides it
// was asked to fill. Safe for the enricher's concurrent fan-out.
type fakeBooks struct {
	mu     sync.Mutex
	levels map[string][]domain.PriceLevel
	err    error
	sides  map[string]domain.BookSide
}

func newFakeBooks() *fakeBooks {
	return &fakeBooks{
		levels: make(map[string][]domain.PriceLevel),
		sides:  make(map[string]domain.BookSide),
	}
}

func (f *fakeBooks) BookVWAP(_ context.Context, ref string, quantity float64, side domain.BookSide) (domain.VWAPResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.VWAPResult{}, f.err
	}
	f.sides[ref] = side
	return domain.WalkDepth(f.levels[ref], quantity), nil
}

func testStrategy() *domain.Strategy {
	grid := []domain.PayoffPoint{
		{Price: 90000, Profit: -100},
		{Price: 110000, Profit: 300},
	}
	return &domain.Strategy{
		Name: "Long YES above $100K + Short Call @$100K",
		Legs: []domain.StrategyLeg{
			{
				Instrument: "Poly YES above $100K", Refs: []string{"yes-token"},
				Direction: domain.LegLong, Quantity: 1000, UnitPrice: 0.40, TotalCost: 400,
			},
			{
				Instrument: "BTC-28MAR25-100000-C", Refs: []string{"BTC-28MAR25-100000-C"},
				Direction: domain.LegShort, Quantity: 2, UnitPrice: 1500, TotalCost: -3000,
			},
		},
		Payoff:     grid,
		LegPayoffs: [][]domain.PayoffPoint{grid, grid},
	}
}

func testEnricher(binary, option *fakeBooks) *Enricher {
	return NewEnricher(DefaultParams(), binary, option, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestEnrich(t *testing.T) {
	t.Run("tight books make the strategy executable", func(t *testing.T) {
		binary := newFakeBooks()
		binary.levels["yes-token"] = []domain.PriceLevel{{Price: 0.40, Size: 2000}}
		option := newFakeBooks()
		option.levels["BTC-28MAR25-100000-C"] = []domain.PriceLevel{{Price: 1495, Size: 5}}

		s := testStrategy()
		testEnricher(binary, option).Enrich(context.Background(), s)

		require.NotNil(t, s.Execution)
		require.NotNil(t, s.Execution.BinaryFill)
		require.NotNil(t, s.Execution.OptionFill)
		assert.Equal(t, 100.0, s.Execution.BinaryFill.FillPct)
		assert.Equal(t, 100.0, s.Execution.OptionFill.FillPct)
		assert.True(t, s.Execution.Executable)

		// Short leg walks the bid side.
		assert.Equal(t, domain.BookSell, option.sides["BTC-28MAR25-100000-C"])
		assert.Equal(t, domain.BookBuy, binary.sides["yes-token"])
	})

	t.Run("slippage beyond the cap kills executability", func(t *testing.T) {
		binary := newFakeBooks()
		// Paying 0.45 against a 0.40 mid is 12.5% slippage.
		binary.levels["yes-token"] = []domain.PriceLevel{{Price: 0.45, Size: 2000}}
		option := newFakeBooks()
		option.levels["BTC-28MAR25-100000-C"] = []domain.PriceLevel{{Price: 1500, Size: 5}}

		s := testStrategy()
		testEnricher(binary, option).Enrich(context.Background(), s)

		require.NotNil(t, s.Execution.BinaryFill)
		assert.InDelta(t, 0.125, s.Execution.BinaryFill.SlippagePct, 1e-9)
		assert.False(t, s.Execution.Executable)
	})

	t.Run("thin option book fails the minimum fill", func(t *testing.T) {
		binary := newFakeBooks()
		binary.levels["yes-token"] = []domain.PriceLevel{{Price: 0.40, Size: 2000}}
		option := newFakeBooks()
		option.levels["BTC-28MAR25-100000-C"] = []domain.PriceLevel{{Price: 1500, Size: 1}}

		s := testStrategy()
		testEnricher(binary, option).Enrich(context.Background(), s)

		require.NotNil(t, s.Execution.OptionFill)
		assert.Equal(t, 50.0, s.Execution.OptionFill.FillPct)
		assert.False(t, s.Execution.Executable)
	})

	t.Run("book errors leave fills unset and the strategy not executable", func(t *testing.T) {
		binary := newFakeBooks()
		binary.err = errors.New("gateway timeout")
		option := newFakeBooks()
		option.err = errors.New("gateway timeout")

		s := testStrategy()
		testEnricher(binary, option).Enrich(context.Background(), s)

		require.NotNil(t, s.Execution)
		assert.Nil(t, s.Execution.BinaryFill)
		assert.Nil(t, s.Execution.OptionFill)
		assert.False(t, s.Execution.Executable)
	})

	t.Run("slippage shifts the combined curve down by a constant", func(t *testing.T) {
		binary := newFakeBooks()
		binary.levels["yes-token"] = []domain.PriceLevel{{Price: 0.41, Size: 2000}}
		option := newFakeBooks()
		option.levels["BTC-28MAR25-100000-C"] = []domain.PriceLevel{{Price: 1495, Size: 5}}

		s := testStrategy()
		testEnricher(binary, option).Enrich(context.Background(), s)

		// Binary pays up 0.01 x 1000; the short option receives 5 less x 2.
		totalSlip := 10.0 + 10.0
		require.Len(t, s.Execution.CombinedPayoff, len(s.Payoff))
		for i := range s.Payoff {
			assert.InDelta(t, s.Payoff[i].Profit-totalSlip, s.Execution.CombinedPayoff[i].Profit, 1e-9)
		}
	})

	t.Run("spread leg fills only as well as its worse half", func(t *testing.T) {
		binary := newFakeBooks()
		binary.levels["yes-token"] = []domain.PriceLevel{{Price: 0.40, Size: 2000}}
		option := newFakeBooks()
		option.levels["C-LO"] = []domain.PriceLevel{{Price: 2200, Size: 2}}
		option.levels["C-HI"] = []domain.PriceLevel{{Price: 900, Size: 1}}

		s := testStrategy()
		s.Legs[1] = domain.StrategyLeg{
			Instrument: "C-LO / C-HI", Refs: []string{"C-LO", "C-HI"},
			Direction: domain.LegLong, Quantity: 2, UnitPrice: 1300,
			TotalCost: 2600, IsSpread: true,
		}
		testEnricher(binary, option).Enrich(context.Background(), s)

		require.NotNil(t, s.Execution.OptionFill)
		assert.Equal(t, 50.0, s.Execution.OptionFill.FillPct)
		assert.InDelta(t, 1300, s.Execution.OptionFill.VWAP, 1e-9)
		assert.Equal(t, domain.BookBuy, option.sides["C-LO"])
		assert.Equal(t, domain.BookSell, option.sides["C-HI"])
		assert.False(t, s.Execution.Executable)
	})
}

func TestEnrichTop(t *testing.T) {
	binary := newFakeBooks()
	binary.levels["yes-token"] = []domain.PriceLevel{{Price: 0.40, Size: 5000}}
	option := newFakeBooks()
	option.levels["BTC-28MAR25-100000-C"] = []domain.PriceLevel{{Price: 1500, Size: 50}}

	opp := &domain.Opportunity{
		Strategies: []*domain.Strategy{
			testStrategy(), testStrategy(), testStrategy(), testStrategy(), testStrategy(),
		},
	}

	err := testEnricher(binary, option).EnrichTop(context.Background(), opp)
	require.NoError(t, err)

	for i, s := range opp.Strategies {
		if i < DefaultParams().TopN {
			assert.NotNil(t, s.Execution, "strategy %d should be enriched", i)
		} else {
			assert.Nil(t, s.Execution, "strategy %d should be skipped", i)
		}
	}

	t.Run("cancelled context surfaces", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := testEnricher(binary, option).EnrichTop(ctx, opp)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
