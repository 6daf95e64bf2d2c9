package engine

import (
	"context"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

// BookSource walks live order-book depth for one venue: it fills quantity
// against the book for the given instrument ref and returns the achieved
// VWAP. Implementations must report empty or unknown books as a zero fill,
// not as an error; the enricher additionally normalizes transport errors to
// zero fills, so a failed fetch only leaves enrichment fields unset.
type BookSource interface {
	BookVWAP(ctx context.Context, ref string, quantity float64, side domain.BookSide) (domain.VWAPResult, error)
}

// Enricher re-prices scored strategies against live order-book depth. It is
// a deliberately bounded step: only the top-ranked strategies of an
// opportunity are enriched, never every generated combo. Each strategy is
// enriched in isolation by attaching an Execution to it; no state is shared
// between calls, so enrichment may fan out across strategies freely.
type Enricher struct {
	params       Params
	binaryBooks  BookSource
	optionBooks  BookSource
	fetchTimeout time.Duration
	logger       *slog.Logger
}

// NewEnricher creates an Enricher reading binary-venue and option-venue
// depth from the given sources.
func NewEnricher(params Params, binaryBooks, optionBooks BookSource, fetchTimeout time.Duration, logger *slog.Logger) *Enricher {
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}
	return &Enricher{
		params:       params,
		binaryBooks:  binaryBooks,
		optionBooks:  optionBooks,
		fetchTimeout: fetchTimeout,
		logger:       logger.With(slog.String("component", "enricher")),
	}
}

// EnrichTop enriches the opportunity's TopN highest-ranked strategies
// concurrently. Individual strategies that cannot be enriched keep a nil
// Execution (unknown executability); EnrichTop itself only fails on context
// cancellation.
func (e *Enricher) EnrichTop(ctx context.Context, opp *domain.Opportunity) error {
	n := e.params.TopN
	if n > len(opp.Strategies) {
		n = len(opp.Strategies)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, strategy := range opp.Strategies[:n] {
		strategy := strategy
		g.Go(func() error {
			e.Enrich(ctx, strategy)
			return ctx.Err()
		})
	}
	return g.Wait()
}

// Enrich walks both legs' books and attaches the execution view to the
// strategy: per-leg VWAPs, fill percentages, slippage-adjusted payoff
// curves, book-price total cost, and the executability verdict. Legs whose
// book cannot be fetched simply keep a nil fill.
func (e *Enricher) Enrich(ctx context.Context, strategy *domain.Strategy) {
	exec := &domain.Execution{}

	binarySlippage := e.enrichBinaryLeg(ctx, strategy, exec)
	optionSlippage := e.enrichOptionLeg(ctx, strategy, exec)

	// Slippage is a fixed entry cost, so it shifts the whole combined
	// curve down by a constant rather than varying with price.
	if total := binarySlippage + optionSlippage; total != 0 {
		exec.CombinedPayoff = shiftCurve(strategy.Payoff, total)
	}

	binaryLeg, optionLeg := strategy.BinaryLeg(), strategy.OptionLeg()
	exec.TotalCost = legBookCost(binaryLeg, exec.BinaryFill) + legBookCost(optionLeg, exec.OptionFill)

	binaryOK := exec.BinaryFill == nil || exec.BinaryFill.SlippagePct <= e.params.MaxSlippagePct
	optionOK := exec.OptionFill == nil || exec.OptionFill.SlippagePct <= e.params.MaxSlippagePct
	optionFilled := exec.OptionFill != nil && exec.OptionFill.FillPct >= e.params.MinFillPct
	exec.Executable = binaryOK && optionOK && optionFilled

	strategy.Execution = exec
}

// enrichBinaryLeg walks the outcome token's book and returns the leg's
// signed slippage in dollars (zero when the book is unavailable).
func (e *Enricher) enrichBinaryLeg(ctx context.Context, strategy *domain.Strategy, exec *domain.Execution) float64 {
	leg := strategy.BinaryLeg()
	if len(leg.Refs) == 0 || leg.Refs[0] == "" || leg.Quantity <= 0 {
		return 0
	}

	res := e.fetch(ctx, e.binaryBooks, leg.Refs[0], leg.Quantity, legSide(leg))
	if res.Filled <= 0 || res.VWAP <= 0 {
		return 0
	}

	fill := buildFill(leg, res.VWAP, res.Filled)
	exec.BinaryFill = &fill
	exec.BinaryPayoff = shiftCurve(strategy.LegPayoffs[0], fill.SlippageUSD)
	return fill.SlippageUSD
}

// enrichOptionLeg walks the option instrument's book - or, for a spread,
// both legs' books in their respective directions - and returns the leg's
// signed slippage in dollars.
func (e *Enricher) enrichOptionLeg(ctx context.Context, strategy *domain.Strategy, exec *domain.Execution) float64 {
	leg := strategy.OptionLeg()
	if len(leg.Refs) == 0 || leg.Quantity <= 0 {
		return 0
	}

	if len(leg.Refs) == 1 {
		res := e.fetch(ctx, e.optionBooks, leg.Refs[0], leg.Quantity, legSide(leg))
		if res.Filled <= 0 || res.VWAP <= 0 {
			return 0
		}

		fill := buildFill(leg, res.VWAP, res.Filled)
		exec.OptionFill = &fill
		exec.OptionPayoff = shiftCurve(strategy.LegPayoffs[1], fill.SlippageUSD)
		return fill.SlippageUSD
	}

	// Spread: one instrument is bought and the other sold. The realized
	// cost is the signed difference of the two VWAPs, and the spread fills
	// only as well as its worse-filled leg.
	buying := leg.Direction == domain.LegLong
	sideA, sideB := domain.BookBuy, domain.BookSell
	if !buying {
		sideA, sideB = domain.BookSell, domain.BookBuy
	}

	resA := e.fetch(ctx, e.optionBooks, leg.Refs[0], leg.Quantity, sideA)
	resB := e.fetch(ctx, e.optionBooks, leg.Refs[1], leg.Quantity, sideB)

	filled := math.Min(pctFilled(resA, leg.Quantity), pctFilled(resB, leg.Quantity))
	if filled <= 0 {
		return 0
	}

	spreadCost := resA.VWAP - resB.VWAP
	if !buying {
		spreadCost = resB.VWAP - resA.VWAP
	}

	mid := leg.UnitPrice
	slipPerUnit := spreadCost - mid
	if !buying {
		slipPerUnit = mid - spreadCost
	}

	fill := domain.LegFill{
		VWAP:        math.Abs(spreadCost),
		FillPct:     filled,
		SlippageUSD: leg.Quantity * slipPerUnit,
	}
	if mid > 0 {
		fill.SlippagePct = math.Abs(slipPerUnit / mid)
	}

	exec.OptionFill = &fill
	exec.OptionPayoff = shiftCurve(strategy.LegPayoffs[1], fill.SlippageUSD)
	return fill.SlippageUSD
}

// fetch walks a book with an independent timeout, normalizing any transport
// failure to a zero fill. A failed fetch is final for this invocation;
// there is no retry.
func (e *Enricher) fetch(ctx context.Context, books BookSource, ref string, quantity float64, side domain.BookSide) domain.VWAPResult {
	ctx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()

	res, err := books.BookVWAP(ctx, ref, quantity, side)
	if err != nil {
		e.logger.Warn("book fetch failed, treating as zero fill",
			slog.String("ref", ref),
			slog.String("error", err.Error()),
		)
		return domain.VWAPResult{}
	}
	return res
}

// buildFill derives the fill metrics for a single-instrument leg: slippage
// is signed so that an adverse move (paying up on a buy, receiving less on
// a sell) is positive.
func buildFill(leg domain.StrategyLeg, vwap, filled float64) domain.LegFill {
	mid := leg.UnitPrice
	slipPerUnit := vwap - mid
	if leg.Direction == domain.LegShort {
		slipPerUnit = mid - vwap
	}

	fill := domain.LegFill{
		VWAP:        vwap,
		FillPct:     filled / leg.Quantity * 100,
		SlippageUSD: leg.Quantity * slipPerUnit,
	}
	if mid > 0 {
		fill.SlippagePct = math.Abs(slipPerUnit / mid)
	}
	return fill
}

func pctFilled(res domain.VWAPResult, target float64) float64 {
	if res.Filled <= 0 || target <= 0 {
		return 0
	}
	return res.Filled / target * 100
}

func legSide(leg domain.StrategyLeg) domain.BookSide {
	if leg.Direction == domain.LegLong {
		return domain.BookBuy
	}
	return domain.BookSell
}

func legBookCost(leg domain.StrategyLeg, fill *domain.LegFill) float64 {
	price := leg.UnitPrice
	if fill != nil {
		price = fill.VWAP
	}
	return leg.Quantity * price
}

// shiftCurve subtracts a flat dollar amount from every point of a curve.
func shiftCurve(curve []domain.PayoffPoint, amount float64) []domain.PayoffPoint {
	out := make([]domain.PayoffPoint, len(curve))
	for i, p := range curve {
		out[i] = domain.PayoffPoint{Price: p.Price, Profit: p.Profit - amount}
	}
	return out
}
