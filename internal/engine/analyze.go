package engine

import (
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

// Analyze runs the full synthesis pipeline for one matched pair: position
// generation on both venues, opposite-bias combination, sizing, payoff
// simulation, and ranking. Combos that cannot be sized, and strategies
// whose worst case exceeds twice the notional ceiling, are dropped
// silently. The ranked list plus the implied-probability gap between the
// venues form the opportunity.
func (a *Analyzer) Analyze(pair domain.Pair, spot float64) domain.Opportunity {
	prices := a.PriceGrid(spot)

	binaryPositions := BinaryPositions(pair.Binary)
	optionPositions := a.OptionPositions(pair.Options)
	combos := FindCombos(binaryPositions, optionPositions)

	var strategies []*domain.Strategy
	for _, combo := range combos {
		sizing := a.SizeCombo(combo)
		if !sizing.Viable() {
			continue
		}

		strategy := a.Evaluate(combo, sizing, prices)
		if strategy.MaxLoss < -2*a.params.MaxNotional {
			continue // absurd worst case, not a hedge worth showing
		}
		strategies = append(strategies, strategy)
	}

	sortByScore(strategies)

	impliedBinary := pair.Binary.ImpliedProbability()
	impliedOptions := a.optionImpliedProbability(pair, spot)

	a.logger.Debug("pair analyzed",
		slog.String("market", pair.Binary.MarketID),
		slog.Int("combos", len(combos)),
		slog.Int("strategies", len(strategies)),
	)

	return domain.Opportunity{
		ID:                 uuid.NewString(),
		Pair:               pair,
		Strategies:         strategies,
		ImpliedProbBinary:  impliedBinary,
		ImpliedProbOptions: impliedOptions,
		ProbabilityGap:     math.Abs(impliedBinary - impliedOptions),
		SpotPrice:          spot,
		AnalyzedAt:         time.Now().UTC(),
	}
}

// optionImpliedProbability reads the option venue's probability that the
// underlying finishes above the binary strike: the nearest call's delta when
// the ticker carried greeks, else the Black-Scholes N(d2) estimate from its
// mark IV, else 0.5.
func (a *Analyzer) optionImpliedProbability(pair domain.Pair, spot float64) float64 {
	call := pair.NearestCall
	if call == nil {
		return 0.5
	}
	if call.Delta != 0 {
		return math.Abs(call.Delta)
	}
	if call.MarkIV > 0 && spot > 0 {
		years := YearsToExpiry(pair.Expiration, time.Now().UTC())
		return ProbAboveStrike(spot, call.Strike, call.MarkIV/100, years)
	}
	return 0.5
}
