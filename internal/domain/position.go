package domain

import "math"

// Venue identifies which exchange a position trades on.
type Venue string

const (
	VenuePolymarket Venue = "polymarket"
	VenueDeribit    Venue = "deribit"
)

// Bias is the directional exposure of a position: bull profits when the
// underlying rises, bear when it falls.
type Bias string

const (
	BiasBull Bias = "bull"
	BiasBear Bias = "bear"
)

// MaxPayout is the per-unit payout ceiling of a position. A naked long call
// has no ceiling; that case is an explicit flag rather than an infinity
// sentinel so it cannot silently leak into sizing arithmetic.
type MaxPayout struct {
	Amount    float64
	Unbounded bool
}

// Bounded returns a finite max payout.
func Bounded(amount float64) MaxPayout { return MaxPayout{Amount: amount} }

// Unbounded returns the no-ceiling payout marker.
func Unbounded() MaxPayout { return MaxPayout{Unbounded: true} }

// PayoffKind tags the payoff structure of an atomic position.
type PayoffKind int

const (
	PayoffIndicator PayoffKind = iota // binary: pays 1 if condition holds
	PayoffVanilla                     // single call or put
	PayoffVerticalSpread              // two same-kind legs at different strikes
)

// Payoff is the gross per-unit payout structure of a position at expiration,
// before entry cost and before long/short sign. Modeling payoffs as a tagged
// variant (rather than a closure) keeps positions comparable, serializable,
// and cheap to test.
type Payoff struct {
	Kind      PayoffKind
	Strike    float64    // indicator and vanilla
	LoStrike  float64    // vertical spread
	HiStrike  float64    // vertical spread
	Direction Direction  // indicator: above pays on price >= strike
	Option    OptionKind // vanilla and vertical spread
}

// Gross evaluates the structure's payout at the given expiration price.
func (p Payoff) Gross(price float64) float64 {
	switch p.Kind {
	case PayoffIndicator:
		if p.Direction == DirectionAbove {
			if price >= p.Strike {
				return 1
			}
			return 0
		}
		if price < p.Strike {
			return 1
		}
		return 0
	case PayoffVanilla:
		return vanillaPayout(p.Option, p.Strike, price)
	case PayoffVerticalSpread:
		if p.Option == OptionCall {
			return vanillaPayout(OptionCall, p.LoStrike, price) - vanillaPayout(OptionCall, p.HiStrike, price)
		}
		return vanillaPayout(OptionPut, p.HiStrike, price) - vanillaPayout(OptionPut, p.LoStrike, price)
	}
	return 0
}

func vanillaPayout(kind OptionKind, strike, price float64) float64 {
	if kind == OptionCall {
		return math.Max(price-strike, 0)
	}
	return math.Max(strike-price, 0)
}

// AtomicPosition is a single long or short position on one venue, the unit
// the combination search works with. CostPerUnit is signed: positive means
// pay to enter, negative means premium received. Ephemeral; regenerated on
// every analysis run.
type AtomicPosition struct {
	Venue       Venue
	Name        string   // human-readable, e.g. "Long Call @$100K"
	Instrument  string   // display instrument, spread legs joined by " / "
	Refs        []string // venue refs for book lookup: token ID or instrument name(s)
	Bias        Bias
	CostPerUnit float64
	MaxPayout   MaxPayout
	Payoff      Payoff
	IsSpread    bool
}

// ProfitPerUnit is the per-unit profit at the given expiration price: the
// gross payout with the long/short sign applied, net of entry cost. A short
// position (negative CostPerUnit) earns the premium and pays out the
// structure.
func (a AtomicPosition) ProfitPerUnit(price float64) float64 {
	sign := 1.0
	if a.CostPerUnit < 0 {
		sign = -1
	}
	return sign*a.Payoff.Gross(price) - a.CostPerUnit
}

// Combo pairs a binary-venue position with an option-venue position of
// strictly opposite bias. Opposite bias is the defining hedge property.
type Combo struct {
	BinaryLeg AtomicPosition
	OptionLeg AtomicPosition
}
