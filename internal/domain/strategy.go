package domain

import "time"

// PayoffPoint is one sample of a profit/loss curve: profit in USD at a given
// underlying price at expiration.
type PayoffPoint struct {
	Price  float64 `json:"price"`
	Profit float64 `json:"profit"`
}

// LegDirection is whether a sized leg is bought or sold.
type LegDirection string

const (
	LegLong  LegDirection = "long"
	LegShort LegDirection = "short"
)

// StrategyLeg is one sized leg of a strategy.
type StrategyLeg struct {
	Instrument string       // display instrument, spread legs joined by " / "
	Refs       []string     // venue refs for order-book lookup
	Direction  LegDirection
	Quantity   float64 // contracts, >= 0
	UnitPrice  float64 // absolute entry price per contract, USD
	TotalCost  float64 // signed: Quantity * signed cost per unit
	IsSpread   bool
}

// LegFill is the result of re-pricing one leg against live order-book depth.
type LegFill struct {
	VWAP        float64 // achievable fill price, USD per contract
	FillPct     float64 // filled / target quantity, percent
	SlippagePct float64 // |VWAP - mid| / mid, fraction
	SlippageUSD float64 // signed slippage across the whole leg, adverse > 0
}

// Execution carries the order-book-aware view of a strategy, attached by the
// enricher after scoring. Leg fills are nil when the book could not be
// fetched or had no depth; the strategy's executability is then unknown.
type Execution struct {
	BinaryFill     *LegFill
	OptionFill     *LegFill
	BinaryPayoff   []PayoffPoint // binary leg curve at book VWAP
	OptionPayoff   []PayoffPoint // option leg curve at book VWAP
	CombinedPayoff []PayoffPoint // combined curve shifted by total slippage
	TotalCost      float64       // entry cost at book prices
	Executable     bool
}

// Strategy is a sized, simulated and scored hedge combination: a binary leg
// plus an option leg of opposite bias.
type Strategy struct {
	Name        string
	Description string
	Legs        []StrategyLeg // [0] binary venue, [1] option venue
	Payoff      []PayoffPoint // combined mid-price curve over the price grid
	LegPayoffs  [][]PayoffPoint
	TotalCost   float64 // net entry cost, USD
	MaxProfit   float64
	MaxLoss     float64
	Breakevens  []float64 // ascending underlying prices where profit crosses zero

	// Execution is nil until the enricher has run for this strategy.
	Execution *Execution
}

// BinaryLeg returns the binary-venue leg.
func (s *Strategy) BinaryLeg() StrategyLeg { return s.Legs[0] }

// OptionLeg returns the option-venue leg.
func (s *Strategy) OptionLeg() StrategyLeg { return s.Legs[1] }

// GuaranteedProfit reports whether the mid-price combined curve is strictly
// positive at every grid point (a true arbitrage at mid prices).
func (s *Strategy) GuaranteedProfit() bool { return s.MaxLoss > 0 }

// Pair is a binary contract matched to the option chain expiring nearest to
// it, narrowed to strikes near the binary strike. NearestCall and NearestPut
// are the closest-strike options regardless of the proximity band; the call's
// delta doubles as a probability proxy.
type Pair struct {
	Binary      BinaryContract
	Options     []ListedOption
	NearestCall *ListedOption
	NearestPut  *ListedOption
	Expiration  time.Time
}

// Opportunity is the result of analyzing one matched pair: the ranked
// strategies plus the implied-probability gap between the two venues.
type Opportunity struct {
	ID                 string
	Pair               Pair
	Strategies         []*Strategy
	ImpliedProbBinary  float64
	ImpliedProbOptions float64
	ProbabilityGap     float64
	SpotPrice          float64
	AnalyzedAt         time.Time
}
