package engine

import (
	"math"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

// nearZeroDenominator guards the cost-ratio division: a binary leg whose
// potential gain (or premium) is this small cannot anchor a sane hedge.
const nearZeroDenominator = 0.001

// Sizing is the per-leg quantity solution for a combo. Zero quantities are
// the deliberate no-trade signal: the combo cannot be constructed at a sane
// size and is dropped, never surfaced as an error.
type Sizing struct {
	BinaryQty float64
	OptionQty float64
}

// Viable reports whether the sizing produced tradable quantities.
func (s Sizing) Viable() bool { return s.BinaryQty > 0 && s.OptionQty > 0 }

// SizeCombo solves for (binaryQty, optionQty) so that the total absolute
// notional lands near TargetNotional, within [MinNotional, MaxNotional].
//
// The binary-per-option-unit ratio is payout-matching for spreads
// (spread max payout over binary max payout) and cost-ratio for vanilla
// legs (option cost over the binary's per-contract gain or premium). The
// option quantity is stepped to the venue's lot increment and clamped; the
// binary quantity is floored to whole contracts so the budget is never
// exceeded. If the realized notional with rounded quantities falls outside
// the band, the sizing fails.
func (a *Analyzer) SizeCombo(combo domain.Combo) Sizing {
	binLeg, optLeg := combo.BinaryLeg, combo.OptionLeg

	absOptCost := math.Abs(optLeg.CostPerUnit)
	if absOptCost <= 0 {
		return Sizing{}
	}

	var binaryPerOptionUnit float64
	if optLeg.IsSpread {
		// Payout matching: scale so the spread's ceiling covers the
		// binary side's ceiling. Both ceilings are finite here; an
		// unbounded payout cannot be matched and is a no-trade.
		if optLeg.MaxPayout.Unbounded || binLeg.MaxPayout.Unbounded || binLeg.MaxPayout.Amount <= 0 {
			return Sizing{}
		}
		binaryPerOptionUnit = optLeg.MaxPayout.Amount / binLeg.MaxPayout.Amount
	} else {
		absBinCost := math.Abs(binLeg.CostPerUnit)
		denominator := absBinCost // short: premium received per contract
		if binLeg.CostPerUnit >= 0 {
			denominator = 1 - absBinCost // long: potential gain per contract
		}
		if denominator <= nearZeroDenominator {
			return Sizing{}
		}
		binaryPerOptionUnit = absOptCost / denominator
	}

	costPerOptionUnit := absOptCost + binaryPerOptionUnit*math.Abs(binLeg.CostPerUnit)
	if costPerOptionUnit <= 0 {
		return Sizing{}
	}

	optionQty := roundToStep(a.params.TargetNotional/costPerOptionUnit, a.params.LotStep)
	optionQty = math.Max(a.params.LotStep, math.Min(a.params.MaxOptionQty, optionQty))

	binaryQty := math.Floor(optionQty * binaryPerOptionUnit)

	total := optionQty*absOptCost + binaryQty*math.Abs(binLeg.CostPerUnit)
	if total < a.params.MinNotional || total > a.params.MaxNotional {
		return Sizing{}
	}

	return Sizing{BinaryQty: binaryQty, OptionQty: optionQty}
}

// roundToStep rounds x to the nearest multiple of step.
func roundToStep(x, step float64) float64 {
	return math.Round(x/step) * step
}
