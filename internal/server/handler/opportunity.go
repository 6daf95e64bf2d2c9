package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

// OpportunityHandler serves analysis results over HTTP. The cache holds the
// full latest run; the store holds summary history. Either may be nil when
// the corresponding backend is not configured.
type OpportunityHandler struct {
	cache  domain.OpportunityCache
	store  domain.OpportunityStore
	spot   domain.SpotCache
	logger *slog.Logger
}

// NewOpportunityHandler creates an OpportunityHandler with the given backends.
func NewOpportunityHandler(cache domain.OpportunityCache, store domain.OpportunityStore, spot domain.SpotCache, logger *slog.Logger) *OpportunityHandler {
	return &OpportunityHandler{cache: cache, store: store, spot: spot, logger: logger}
}

type marketDTO struct {
	MarketID   string    `json:"market_id"`
	Title      string    `json:"title"`
	Strike     float64   `json:"strike"`
	Direction  string    `json:"direction"`
	Type       string    `json:"type"`
	Expiration time.Time `json:"expiration"`
	YesPrice   float64   `json:"yes_price"`
	EventSlug  string    `json:"event_slug,omitempty"`
}

type legDTO struct {
	Instrument string   `json:"instrument"`
	Refs       []string `json:"refs,omitempty"`
	Direction  string   `json:"direction"`
	Quantity   float64  `json:"quantity"`
	UnitPrice  float64  `json:"unit_price"`
	TotalCost  float64  `json:"total_cost"`
	IsSpread   bool     `json:"is_spread,omitempty"`
}

type fillDTO struct {
	VWAP        float64 `json:"vwap"`
	FillPct     float64 `json:"fill_pct"`
	SlippagePct float64 `json:"slippage_pct"`
	SlippageUSD float64 `json:"slippage_usd"`
}

type executionDTO struct {
	BinaryFill     *fillDTO             `json:"binary_fill,omitempty"`
	OptionFill     *fillDTO             `json:"option_fill,omitempty"`
	CombinedPayoff []domain.PayoffPoint `json:"combined_payoff,omitempty"`
	TotalCost      float64              `json:"total_cost"`
	Executable     bool                 `json:"executable"`
}

type strategyDTO struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Legs        []legDTO             `json:"legs"`
	Payoff      []domain.PayoffPoint `json:"payoff,omitempty"`
	TotalCost   float64              `json:"total_cost"`
	MaxProfit   float64              `json:"max_profit"`
	MaxLoss     float64              `json:"max_loss"`
	Breakevens  []float64            `json:"breakevens"`
	Guaranteed  bool                 `json:"guaranteed"`
	Execution   *executionDTO        `json:"execution,omitempty"`
}

type opportunityDTO struct {
	ID                 string        `json:"id"`
	Market             marketDTO     `json:"market"`
	SpotPrice          float64       `json:"spot_price"`
	ImpliedProbBinary  float64       `json:"implied_prob_binary"`
	ImpliedProbOptions float64       `json:"implied_prob_options"`
	ProbabilityGap     float64       `json:"probability_gap"`
	AnalyzedAt         time.Time     `json:"analyzed_at"`
	Strategies         []strategyDTO `json:"strategies"`
}

type listOpportunitiesResponse struct {
	Opportunities []opportunityDTO `json:"opportunities"`
}

// Latest returns the most recent analysis run from the cache, with full
// payoff curves and execution views.
// GET /api/opportunities
func (h *OpportunityHandler) Latest(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		writeError(w, http.StatusNotImplemented, "opportunity cache not configured")
		return
	}

	opps, err := h.cache.GetLatest(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusOK, listOpportunitiesResponse{Opportunities: []opportunityDTO{}})
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: latest opportunities failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load opportunities")
		return
	}

	writeJSON(w, http.StatusOK, listOpportunitiesResponse{Opportunities: toOpportunityDTOs(opps, true)})
}

// History returns recent stored opportunities, newest first, without payoff
// curves.
// GET /api/opportunities/history?limit=50
func (h *OpportunityHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotImplemented, "opportunity store not configured")
		return
	}

	limit := limitParam(r, 50, 200)
	opps, err := h.store.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: opportunity history failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list opportunities")
		return
	}

	writeJSON(w, http.StatusOK, listOpportunitiesResponse{Opportunities: toOpportunityDTOs(opps, false)})
}

// Spot returns the latest cached index price.
// GET /api/spot
func (h *OpportunityHandler) Spot(w http.ResponseWriter, r *http.Request) {
	if h.spot == nil {
		writeError(w, http.StatusNotImplemented, "spot cache not configured")
		return
	}

	price, ts, err := h.spot.GetSpot(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no spot price cached")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: spot failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load spot price")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"price":     price,
		"timestamp": ts.UTC().Format(time.RFC3339),
	})
}

func toOpportunityDTOs(opps []domain.Opportunity, includeCurves bool) []opportunityDTO {
	out := make([]opportunityDTO, 0, len(opps))
	for _, opp := range opps {
		bin := opp.Pair.Binary
		dto := opportunityDTO{
			ID: opp.ID,
			Market: marketDTO{
				MarketID:   bin.MarketID,
				Title:      bin.Title,
				Strike:     bin.Strike,
				Direction:  string(bin.Direction),
				Type:       string(bin.Type),
				Expiration: bin.Expiration,
				YesPrice:   bin.YesPrice,
				EventSlug:  bin.EventSlug,
			},
			SpotPrice:          opp.SpotPrice,
			ImpliedProbBinary:  opp.ImpliedProbBinary,
			ImpliedProbOptions: opp.ImpliedProbOptions,
			ProbabilityGap:     opp.ProbabilityGap,
			AnalyzedAt:         opp.AnalyzedAt,
			Strategies:         make([]strategyDTO, 0, len(opp.Strategies)),
		}
		for _, strat := range opp.Strategies {
			dto.Strategies = append(dto.Strategies, toStrategyDTO(strat, includeCurves))
		}
		out = append(out, dto)
	}
	return out
}

func toStrategyDTO(strat *domain.Strategy, includeCurves bool) strategyDTO {
	dto := strategyDTO{
		Name:        strat.Name,
		Description: strat.Description,
		Legs:        make([]legDTO, 0, len(strat.Legs)),
		TotalCost:   strat.TotalCost,
		MaxProfit:   strat.MaxProfit,
		MaxLoss:     strat.MaxLoss,
		Breakevens:  strat.Breakevens,
		Guaranteed:  strat.GuaranteedProfit(),
	}
	if dto.Breakevens == nil {
		dto.Breakevens = []float64{}
	}
	for _, leg := range strat.Legs {
		dto.Legs = append(dto.Legs, legDTO{
			Instrument: leg.Instrument,
			Refs:       leg.Refs,
			Direction:  string(leg.Direction),
			Quantity:   leg.Quantity,
			UnitPrice:  leg.UnitPrice,
			TotalCost:  leg.TotalCost,
			IsSpread:   leg.IsSpread,
		})
	}
	if includeCurves {
		dto.Payoff = strat.Payoff
	}
	if strat.Execution != nil {
		exec := &executionDTO{
			TotalCost:  strat.Execution.TotalCost,
			Executable: strat.Execution.Executable,
		}
		if strat.Execution.BinaryFill != nil {
			exec.BinaryFill = toFillDTO(strat.Execution.BinaryFill)
		}
		if strat.Execution.OptionFill != nil {
			exec.OptionFill = toFillDTO(strat.Execution.OptionFill)
		}
		if includeCurves {
			exec.CombinedPayoff = strat.Execution.CombinedPayoff
		}
		dto.Execution = exec
	}
	return dto
}

func toFillDTO(fill *domain.LegFill) *fillDTO {
	return &fillDTO{
		VWAP:        fill.VWAP,
		FillPct:     fill.FillPct,
		SlippagePct: fill.SlippagePct,
		SlippageUSD: fill.SlippageUSD,
	}
}
