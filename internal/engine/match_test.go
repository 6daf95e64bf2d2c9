package engine

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

func testAnalyzer() *Analyzer {
	return NewAnalyzer(DefaultParams(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func expiryUTC(day int) time.Time {
	return time.Date(2025, time.March, day, 8, 0, 0, 0, time.UTC)
}

func listedCall(name string, strike float64, expiry time.Time) domain.ListedOption {
	return domain.ListedOption{
		InstrumentName: name, Strike: strike, Kind: domain.OptionCall,
		Expiration: expiry, BidPrice: 1000, AskPrice: 1100, MidPrice: 1050,
	}
}

func TestMatchMarkets(t *testing.T) {
	a := testAnalyzer()

	bin := domain.BinaryContract{
		MarketID:   "m1",
		Strike:     100000,
		Direction:  domain.DirectionAbove,
		Expiration: time.Date(2025, time.March, 28, 12, 0, 0, 0, time.UTC),
		YesPrice:   0.40,
	}

	t.Run("picks the nearest expiration group", func(t *testing.T) {
		options := []domain.ListedOption{
			listedCall("BTC-21MAR25-100000-C", 100000, expiryUTC(21)),
			listedCall("BTC-28MAR25-100000-C", 100000, expiryUTC(28)),
			listedCall("BTC-28MAR25-105000-C", 105000, expiryUTC(28)),
		}

		pairs := a.MatchMarkets([]domain.BinaryContract{bin}, options)
		require.Len(t, pairs, 1)
		for _, opt := range pairs[0].Options {
			assert.Equal(t, expiryUTC(28), opt.Expiration)
		}
	})

	t.Run("rejects groups beyond the expiry tolerance", func(t *testing.T) {
		options := []domain.ListedOption{
			listedCall("BTC-25APR25-100000-C", 100000, time.Date(2025, time.April, 25, 8, 0, 0, 0, time.UTC)),
		}
		pairs := a.MatchMarkets([]domain.BinaryContract{bin}, options)
		assert.Empty(t, pairs)
	})

	t.Run("narrows candidates to the strike band", func(t *testing.T) {
		options := []domain.ListedOption{
			listedCall("BTC-28MAR25-100000-C", 100000, expiryUTC(28)),
			listedCall("BTC-28MAR25-110000-C", 110000, expiryUTC(28)),
			listedCall("BTC-28MAR25-140000-C", 140000, expiryUTC(28)), // 40% away
		}
		pairs := a.MatchMarkets([]domain.BinaryContract{bin}, options)
		require.Len(t, pairs, 1)
		assert.Len(t, pairs[0].Options, 2)
	})

	t.Run("nearest call and put ignore the band", func(t *testing.T) {
		put := listedCall("BTC-28MAR25-140000-P", 140000, expiryUTC(28))
		put.Kind = domain.OptionPut
		options := []domain.ListedOption{
			listedCall("BTC-28MAR25-100000-C", 100000, expiryUTC(28)),
			put,
		}
		pairs := a.MatchMarkets([]domain.BinaryContract{bin}, options)
		require.Len(t, pairs, 1)
		require.NotNil(t, pairs[0].NearestCall)
		require.NotNil(t, pairs[0].NearestPut)
		assert.Equal(t, 100000.0, pairs[0].NearestCall.Strike)
		assert.Equal(t, 140000.0, pairs[0].NearestPut.Strike)
		assert.Len(t, pairs[0].Options, 1)
	})

	t.Run("no options means no pairs, not an error", func(t *testing.T) {
		assert.Empty(t, a.MatchMarkets([]domain.BinaryContract{bin}, nil))
	})
}
