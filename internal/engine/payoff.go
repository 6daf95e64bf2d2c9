package engine

import (
	"fmt"
	"math"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

// PriceGrid builds the simulation grid: GridSteps evenly spaced intervals
// (GridSteps+1 points including both endpoints) spanning half to one and a
// half times the current spot, each point rounded to a whole dollar. The
// grid is ascending and fully determined by spot, so repeated simulations
// are identical.
func (a *Analyzer) PriceGrid(spot float64) []float64 {
	lo := spot * 0.5
	hi := spot * 1.5
	step := (hi - lo) / float64(a.params.GridSteps)

	prices := make([]float64, 0, a.params.GridSteps+1)
	for i := 0; i <= a.params.GridSteps; i++ {
		prices = append(prices, math.Round(lo+float64(i)*step))
	}
	return prices
}

// Evaluate sizes a combo and simulates its per-leg and combined profit/loss
// across the price grid, producing a named strategy with breakevens and the
// max profit/loss scan of the combined curve.
func (a *Analyzer) Evaluate(combo domain.Combo, sizing Sizing, prices []float64) *domain.Strategy {
	binLeg, optLeg := combo.BinaryLeg, combo.OptionLeg

	binaryPayoff := make([]domain.PayoffPoint, 0, len(prices))
	optionPayoff := make([]domain.PayoffPoint, 0, len(prices))
	combined := make([]domain.PayoffPoint, 0, len(prices))

	maxProfit := math.Inf(-1)
	maxLoss := math.Inf(1)
	for _, price := range prices {
		binPL := sizing.BinaryQty * binLeg.ProfitPerUnit(price)
		optPL := sizing.OptionQty * optLeg.ProfitPerUnit(price)
		total := binPL + optPL

		binaryPayoff = append(binaryPayoff, domain.PayoffPoint{Price: price, Profit: binPL})
		optionPayoff = append(optionPayoff, domain.PayoffPoint{Price: price, Profit: optPL})
		combined = append(combined, domain.PayoffPoint{Price: price, Profit: total})

		if total > maxProfit {
			maxProfit = total
		}
		if total < maxLoss {
			maxLoss = total
		}
	}

	binCost := sizing.BinaryQty * binLeg.CostPerUnit
	optCost := sizing.OptionQty * optLeg.CostPerUnit

	legs := []domain.StrategyLeg{
		{
			Instrument: binLeg.Instrument,
			Refs:       binLeg.Refs,
			Direction:  legDirection(binLeg.CostPerUnit),
			Quantity:   sizing.BinaryQty,
			UnitPrice:  math.Abs(binLeg.CostPerUnit),
			TotalCost:  binCost,
		},
		{
			Instrument: optLeg.Instrument,
			Refs:       optLeg.Refs,
			Direction:  legDirection(optLeg.CostPerUnit),
			Quantity:   sizing.OptionQty,
			UnitPrice:  math.Abs(optLeg.CostPerUnit),
			TotalCost:  optCost,
			IsSpread:   optLeg.IsSpread,
		},
	}

	return &domain.Strategy{
		Name: binLeg.Name + " + " + optLeg.Name,
		Description: fmt.Sprintf("%s (x%.0f) + %s (x%.1f)",
			binLeg.Name, sizing.BinaryQty, optLeg.Name, sizing.OptionQty),
		Legs:       legs,
		Payoff:     combined,
		LegPayoffs: [][]domain.PayoffPoint{binaryPayoff, optionPayoff},
		TotalCost:  binCost + optCost,
		MaxProfit:  maxProfit,
		MaxLoss:    maxLoss,
		Breakevens: Breakevens(combined),
	}
}

func legDirection(costPerUnit float64) domain.LegDirection {
	if costPerUnit >= 0 {
		return domain.LegLong
	}
	return domain.LegShort
}
