// Package engine implements the cross-venue strategy synthesis core: it
// pairs binary contracts with the option chain expiring nearest to them,
// enumerates opposite-bias hedge combinations, sizes each to a target
// notional, simulates profit/loss across a price grid, and ranks the
// results. Everything here is a pure computation over in-memory data; the
// only I/O lives in the Enricher, which re-prices top strategies against
// live order-book depth.
package engine

import (
	"log/slog"
	"time"
)

// Params are the tunables of the synthesis pipeline. Defaults reproduce the
// production configuration; see config.EngineConfig for the TOML surface.
type Params struct {
	// Sizing: target total notional across both legs, with an acceptance
	// band. A combo that cannot be sized into the band is dropped.
	TargetNotional float64
	MinNotional    float64
	MaxNotional    float64

	// Option-venue contract stepping and sanity cap.
	LotStep      float64
	MaxOptionQty float64

	// Vertical spread construction: acceptable strike width, USD.
	MinSpreadWidth float64
	MaxSpreadWidth float64

	// Simulation grid: number of steps across [0.5, 1.5] x spot.
	GridSteps int

	// Matching: max expiration distance and relative strike proximity.
	ExpiryTolerance time.Duration
	StrikeBand      float64

	// Enrichment: executability thresholds and how many top strategies to
	// re-price against the books.
	MaxSlippagePct float64
	MinFillPct     float64
	TopN           int
}

// DefaultParams returns the production defaults.
func DefaultParams() Params {
	return Params{
		TargetNotional:  3000,
		MinNotional:     500,
		MaxNotional:     8000,
		LotStep:         0.1,
		MaxOptionQty:    50,
		MinSpreadWidth:  2000,
		MaxSpreadWidth:  30000,
		GridSteps:       300,
		ExpiryTolerance: 24 * time.Hour,
		StrikeBand:      0.15,
		MaxSlippagePct:  0.05,
		MinFillPct:      90,
		TopN:            3,
	}
}

// Analyzer runs the synchronous synthesis pipeline. It holds no mutable
// state; Analyze is safe to call concurrently.
type Analyzer struct {
	params Params
	logger *slog.Logger
}

// NewAnalyzer creates an Analyzer with the given parameters.
func NewAnalyzer(params Params, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		params: params,
		logger: logger.With(slog.String("component", "analyzer")),
	}
}

// Params returns the analyzer's parameters.
func (a *Analyzer) Params() Params { return a.params }
