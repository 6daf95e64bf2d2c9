package engine

import (
	"fmt"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

// BinaryPositions expands a binary contract into its four atomic positions:
// long and short of each outcome token. YES of an "above" contract pays on
// price >= strike; NO pays on the complement, so the NO indicator carries
// the flipped direction. Exactly two of the four positions are bull and two
// are bear, regardless of the contract's direction.
func BinaryPositions(bin domain.BinaryContract) []domain.AtomicPosition {
	label := strikeLabel(bin.Strike)
	dir := string(bin.Direction)

	yes := domain.Payoff{Kind: domain.PayoffIndicator, Strike: bin.Strike, Direction: bin.Direction}
	no := domain.Payoff{Kind: domain.PayoffIndicator, Strike: bin.Strike, Direction: opposite(bin.Direction)}

	// A YES share of an "above" contract gains on rising price.
	yesBias, noBias := domain.BiasBull, domain.BiasBear
	if bin.Direction == domain.DirectionBelow {
		yesBias, noBias = domain.BiasBear, domain.BiasBull
	}

	return []domain.AtomicPosition{
		{
			Venue:       domain.VenuePolymarket,
			Name:        fmt.Sprintf("Long YES %s %s", dir, label),
			Instrument:  fmt.Sprintf("Poly YES %s %s", dir, label),
			Refs:        []string{bin.YesTokenID},
			Bias:        yesBias,
			CostPerUnit: bin.YesPrice,
			MaxPayout:   domain.Bounded(1),
			Payoff:      yes,
		},
		{
			Venue:       domain.VenuePolymarket,
			Name:        fmt.Sprintf("Short YES %s %s", dir, label),
			Instrument:  fmt.Sprintf("Poly YES %s %s", dir, label),
			Refs:        []string{bin.YesTokenID},
			Bias:        flip(yesBias),
			CostPerUnit: -bin.YesPrice,
			MaxPayout:   domain.Bounded(bin.YesPrice),
			Payoff:      yes,
		},
		{
			Venue:       domain.VenuePolymarket,
			Name:        fmt.Sprintf("Long NO %s %s", dir, label),
			Instrument:  fmt.Sprintf("Poly NO %s %s", dir, label),
			Refs:        []string{bin.NoTokenID},
			Bias:        noBias,
			CostPerUnit: bin.NoPrice,
			MaxPayout:   domain.Bounded(1),
			Payoff:      no,
		},
		{
			Venue:       domain.VenuePolymarket,
			Name:        fmt.Sprintf("Short NO %s %s", dir, label),
			Instrument:  fmt.Sprintf("Poly NO %s %s", dir, label),
			Refs:        []string{bin.NoTokenID},
			Bias:        flip(noBias),
			CostPerUnit: -bin.NoPrice,
			MaxPayout:   domain.Bounded(bin.NoPrice),
			Payoff:      no,
		},
	}
}

func opposite(d domain.Direction) domain.Direction {
	if d == domain.DirectionAbove {
		return domain.DirectionBelow
	}
	return domain.DirectionAbove
}

func flip(b domain.Bias) domain.Bias {
	if b == domain.BiasBull {
		return domain.BiasBear
	}
	return domain.BiasBull
}

// strikeLabel renders a strike as "$100K" for display names.
func strikeLabel(strike float64) string {
	return fmt.Sprintf("$%.0fK", strike/1000)
}
