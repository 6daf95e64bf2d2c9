package polymarket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

func TestExtractStrike(t *testing.T) {
	cases := []struct {
		title string
		want  float64
	}{
		{"Will Bitcoin be above $100k on March 28?", 100000},
		{"Will Bitcoin be above $95.5K on March 28?", 95500},
		{"Will the price of Bitcoin be above $70,000 on February 15?", 70000},
		{"Will Bitcoin hit $1m by 2030?", 1000000},
		{"Will Bitcoin hit $1.5M by 2030?", 1500000},
		{"Will Bitcoin go up this week?", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, extractStrike(tc.title), tc.title)
	}
}

func TestClassifyMarket(t *testing.T) {
	t.Run("above and over are upward binaries", func(t *testing.T) {
		for _, title := range []string{"above $100k", "over $100k"} {
			dir, typ, ok := classifyMarket(title)
			require.True(t, ok, title)
			assert.Equal(t, domain.DirectionAbove, dir)
			assert.Equal(t, domain.BinaryTypeEuropean, typ)
		}
	})

	t.Run("below and under are downward binaries", func(t *testing.T) {
		for _, title := range []string{"below $80k", "under $80k"} {
			dir, typ, ok := classifyMarket(title)
			require.True(t, ok, title)
			assert.Equal(t, domain.DirectionBelow, dir)
			assert.Equal(t, domain.BinaryTypeEuropean, typ)
		}
	})

	t.Run("hit reach touch are upward barriers", func(t *testing.T) {
		for _, title := range []string{"hit $150k", "reach $150k", "touch $150k"} {
			dir, typ, ok := classifyMarket(title)
			require.True(t, ok, title)
			assert.Equal(t, domain.DirectionAbove, dir)
			assert.Equal(t, domain.BinaryTypeBarrier, typ)
		}
	})

	t.Run("unrelated wording does not classify", func(t *testing.T) {
		_, _, ok := classifyMarket("Will Bitcoin dominance grow?")
		assert.False(t, ok)
	})
}

func TestIsBTCPriceMarket(t *testing.T) {
	assert.True(t, isBTCPriceMarket("Will Bitcoin be above $100,000 on March 28?"))
	assert.True(t, isBTCPriceMarket("Will BTC hit $150k in 2025?"))
	assert.False(t, isBTCPriceMarket("Will Ethereum be above $5,000 on March 28?"))
	assert.False(t, isBTCPriceMarket("Will Bitcoin reach a new all-time high in March?"))
	assert.False(t, isBTCPriceMarket("Will Bitcoin be above its January open?"))
}

func validMarket() APIMarket {
	return APIMarket{
		ID:            "512329",
		ConditionID:   "0xabc",
		Question:      "Will Bitcoin be above $100,000 on March 28?",
		EndDateISO:    "2099-03-28T12:00:00Z",
		OutcomePrices: `["0.40", "0.60"]`,
		ClobTokenIDs:  `["yes-token", "no-token"]`,
		BestBid:       0.39,
		BestAsk:       0.41,
	}
}

func TestParseMarket(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	t.Run("parses a complete market", func(t *testing.T) {
		bin, ok := parseMarket(validMarket(), "bitcoin-above-on-march-28", now)
		require.True(t, ok)
		assert.Equal(t, "512329", bin.MarketID)
		assert.Equal(t, 100000.0, bin.Strike)
		assert.Equal(t, domain.DirectionAbove, bin.Direction)
		assert.Equal(t, domain.BinaryTypeEuropean, bin.Type)
		assert.InDelta(t, 0.40, bin.YesPrice, 1e-9) // (0.39+0.41)/2
		assert.InDelta(t, 0.60, bin.NoPrice, 1e-9)
		assert.Equal(t, "yes-token", bin.YesTokenID)
		assert.Equal(t, "no-token", bin.NoTokenID)
		assert.Equal(t, "bitcoin-above-on-march-28", bin.EventSlug)
	})

	t.Run("quoted bid and ask override the outcome prices", func(t *testing.T) {
		m := validMarket()
		m.BestBid = 0.30
		m.BestAsk = 0.34
		bin, ok := parseMarket(m, "", now)
		require.True(t, ok)
		assert.InDelta(t, 0.32, bin.YesPrice, 1e-9)
	})

	t.Run("wide spread is rejected as illiquid", func(t *testing.T) {
		m := validMarket()
		m.BestBid = 0.10
		m.BestAsk = 0.45
		_, ok := parseMarket(m, "", now)
		assert.False(t, ok)
	})

	t.Run("closed and expired markets are rejected", func(t *testing.T) {
		m := validMarket()
		m.Closed = true
		_, ok := parseMarket(m, "", now)
		assert.False(t, ok)

		m = validMarket()
		m.EndDateISO = "2024-01-01T00:00:00Z"
		_, ok = parseMarket(m, "", now)
		assert.False(t, ok)
	})

	t.Run("unparsable outcome prices are rejected", func(t *testing.T) {
		m := validMarket()
		m.OutcomePrices = "not json"
		_, ok := parseMarket(m, "", now)
		assert.False(t, ok)
	})

	t.Run("missing token ids still parse", func(t *testing.T) {
		m := validMarket()
		m.ClobTokenIDs = ""
		bin, ok := parseMarket(m, "", now)
		require.True(t, ok)
		assert.Empty(t, bin.YesTokenID)
	})
}

func TestDateSlugs(t *testing.T) {
	now := time.Date(2025, time.March, 30, 0, 0, 0, 0, time.UTC)
	slugs := dateSlugs(now, 4)
	assert.Equal(t, []string{
		"bitcoin-above-on-march-30",
		"bitcoin-above-on-march-31",
		"bitcoin-above-on-april-1",
		"bitcoin-above-on-april-2",
	}, slugs)
}
