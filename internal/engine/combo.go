package engine

import "github.com/alanyoungcy/polyhedge/internal/domain"

// FindCombos cross-joins the binary-venue and option-venue position sets,
// keeping only opposite-bias pairs. One leg must profit if price rises and
// the other if it falls; that is what bounds the pair's combined risk
// relative to either leg alone. Combos that merely look alike (two listed
// options with identical payoffs) are kept distinct.
func FindCombos(binaryPositions, optionPositions []domain.AtomicPosition) []domain.Combo {
	combos := make([]domain.Combo, 0, len(binaryPositions)*len(optionPositions)/2)
	for _, bin := range binaryPositions {
		for _, opt := range optionPositions {
			if bin.Bias == opt.Bias {
				continue
			}
			combos = append(combos, domain.Combo{BinaryLeg: bin, OptionLeg: opt})
		}
	}
	return combos
}
