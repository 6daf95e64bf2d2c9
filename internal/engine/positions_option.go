package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

// OptionPositions expands listed options into long/short vanilla positions
// plus long/short vertical spreads for every same-kind strike pair of
// acceptable width. Vanilla positions enter at mid price; spreads enter at
// bid/ask to reflect the cost of trading both legs, and are only built from
// options quoted on both sides.
func (a *Analyzer) OptionPositions(options []domain.ListedOption) []domain.AtomicPosition {
	var positions []domain.AtomicPosition

	for _, opt := range options {
		positions = append(positions, vanillaPositions(opt)...)
	}

	var liquid []domain.ListedOption
	for _, opt := range options {
		if opt.Liquid() {
			liquid = append(liquid, opt)
		}
	}

	calls := filterByKind(liquid, domain.OptionCall)
	puts := filterByKind(liquid, domain.OptionPut)

	positions = append(positions, a.callSpreads(calls)...)
	positions = append(positions, a.putSpreads(puts)...)

	return positions
}

func vanillaPositions(opt domain.ListedOption) []domain.AtomicPosition {
	label := strikeLabel(opt.Strike)
	payoff := domain.Payoff{Kind: domain.PayoffVanilla, Strike: opt.Strike, Option: opt.Kind}

	if opt.Kind == domain.OptionCall {
		return []domain.AtomicPosition{
			{
				Venue: domain.VenueDeribit, Name: "Long Call @" + label,
				Instrument: opt.InstrumentName, Refs: []string{opt.InstrumentName},
				Bias: domain.BiasBull, CostPerUnit: opt.MidPrice,
				MaxPayout: domain.Unbounded(), Payoff: payoff,
			},
			{
				Venue: domain.VenueDeribit, Name: "Short Call @" + label,
				Instrument: opt.InstrumentName, Refs: []string{opt.InstrumentName},
				Bias: domain.BiasBear, CostPerUnit: -opt.MidPrice,
				MaxPayout: domain.Bounded(opt.MidPrice), Payoff: payoff,
			},
		}
	}

	// A long put's payout is capped by the strike: price cannot go negative.
	return []domain.AtomicPosition{
		{
			Venue: domain.VenueDeribit, Name: "Long Put @" + label,
			Instrument: opt.InstrumentName, Refs: []string{opt.InstrumentName},
			Bias: domain.BiasBear, CostPerUnit: opt.MidPrice,
			MaxPayout: domain.Bounded(opt.Strike), Payoff: payoff,
		},
		{
			Venue: domain.VenueDeribit, Name: "Short Put @" + label,
			Instrument: opt.InstrumentName, Refs: []string{opt.InstrumentName},
			Bias: domain.BiasBull, CostPerUnit: -opt.MidPrice,
			MaxPayout: domain.Bounded(opt.MidPrice), Payoff: payoff,
		},
	}
}

// callSpreads builds long and short call verticals for every strike pair of
// acceptable width. The long spread buys the lower strike at its ask and
// sells the higher at its bid; an entry cost that is non-positive, infinite,
// or at least the width cannot be financed and the construction is skipped.
func (a *Analyzer) callSpreads(calls []domain.ListedOption) []domain.AtomicPosition {
	var positions []domain.AtomicPosition

	for i := 0; i < len(calls); i++ {
		for j := i + 1; j < len(calls); j++ {
			lo, hi := calls[i], calls[j]
			width := hi.Strike - lo.Strike
			if width < a.params.MinSpreadWidth || width > a.params.MaxSpreadWidth {
				continue
			}

			name := fmt.Sprintf("%.0fK/%.0fK", lo.Strike/1000, hi.Strike/1000)
			instrument := lo.InstrumentName + " / " + hi.InstrumentName
			refs := []string{lo.InstrumentName, hi.InstrumentName}
			payoff := domain.Payoff{
				Kind:     domain.PayoffVerticalSpread,
				LoStrike: lo.Strike, HiStrike: hi.Strike,
				Option: domain.OptionCall,
			}

			if cost := lo.AskPrice - hi.BidPrice; spreadEntryValid(cost, width) {
				positions = append(positions, domain.AtomicPosition{
					Venue: domain.VenueDeribit, Name: "Long Call Spread " + name,
					Instrument: instrument, Refs: refs,
					Bias: domain.BiasBull, CostPerUnit: cost,
					MaxPayout: domain.Bounded(width), Payoff: payoff, IsSpread: true,
				})
			}

			if credit := lo.BidPrice - hi.AskPrice; spreadEntryValid(credit, width) {
				positions = append(positions, domain.AtomicPosition{
					Venue: domain.VenueDeribit, Name: "Short Call Spread " + name,
					Instrument: instrument, Refs: refs,
					Bias: domain.BiasBear, CostPerUnit: -credit,
					MaxPayout: domain.Bounded(credit), Payoff: payoff, IsSpread: true,
				})
			}
		}
	}

	return positions
}

// putSpreads mirrors callSpreads: the long put vertical buys the higher
// strike at its ask and sells the lower at its bid.
func (a *Analyzer) putSpreads(puts []domain.ListedOption) []domain.AtomicPosition {
	var positions []domain.AtomicPosition

	for i := 0; i < len(puts); i++ {
		for j := i + 1; j < len(puts); j++ {
			lo, hi := puts[i], puts[j]
			width := hi.Strike - lo.Strike
			if width < a.params.MinSpreadWidth || width > a.params.MaxSpreadWidth {
				continue
			}

			name := fmt.Sprintf("%.0fK/%.0fK", lo.Strike/1000, hi.Strike/1000)
			instrument := hi.InstrumentName + " / " + lo.InstrumentName
			refs := []string{hi.InstrumentName, lo.InstrumentName}
			payoff := domain.Payoff{
				Kind:     domain.PayoffVerticalSpread,
				LoStrike: lo.Strike, HiStrike: hi.Strike,
				Option: domain.OptionPut,
			}

			if cost := hi.AskPrice - lo.BidPrice; spreadEntryValid(cost, width) {
				positions = append(positions, domain.AtomicPosition{
					Venue: domain.VenueDeribit, Name: "Long Put Spread " + name,
					Instrument: instrument, Refs: refs,
					Bias: domain.BiasBear, CostPerUnit: cost,
					MaxPayout: domain.Bounded(width), Payoff: payoff, IsSpread: true,
				})
			}

			if credit := hi.BidPrice - lo.AskPrice; spreadEntryValid(credit, width) {
				positions = append(positions, domain.AtomicPosition{
					Venue: domain.VenueDeribit, Name: "Short Put Spread " + name,
					Instrument: instrument, Refs: refs,
					Bias: domain.BiasBull, CostPerUnit: -credit,
					MaxPayout: domain.Bounded(credit), Payoff: payoff, IsSpread: true,
				})
			}
		}
	}

	return positions
}

// spreadEntryValid rejects entries that are financially impossible: the
// debit (or credit) must be positive, finite, and strictly below the width.
func spreadEntryValid(entry, width float64) bool {
	return entry > 0 && !math.IsInf(entry, 0) && !math.IsNaN(entry) && entry < width
}

func filterByKind(options []domain.ListedOption, kind domain.OptionKind) []domain.ListedOption {
	var out []domain.ListedOption
	for _, opt := range options {
		if opt.Kind == kind {
			out = append(out, opt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Strike < out[j].Strike })
	return out
}
