package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

// OpportunityStore persists analysis results in PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates a store backed by the given pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

// legRecord is the JSONB shape of one strategy leg.
type legRecord struct {
	Instrument string   `json:"instrument"`
	Refs       []string `json:"refs,omitempty"`
	Direction  string   `json:"direction"`
	Quantity   float64  `json:"quantity"`
	UnitPrice  float64  `json:"unit_price"`
	TotalCost  float64  `json:"total_cost"`
	IsSpread   bool     `json:"is_spread,omitempty"`
}

const insertOpportunityQuery = `
	INSERT INTO opportunities (
		id, market_id, condition_id, title, strike, direction, binary_type,
		expiration, yes_price, spot_price, implied_prob_binary,
		implied_prob_options, probability_gap, analyzed_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

const insertStrategyQuery = `
	INSERT INTO strategies (
		opportunity_id, rank, name, description, legs, total_cost,
		max_profit, max_loss, breakevens, guaranteed, executable
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// Insert stores the opportunity row and one summary row per strategy in a
// single transaction. Payoff curves are not persisted; the cache holds the
// full latest run.
func (s *OpportunityStore) Insert(ctx context.Context, opp domain.Opportunity) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin insert opportunity: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	bin := opp.Pair.Binary
	_, err = tx.Exec(ctx, insertOpportunityQuery,
		opp.ID,
		bin.MarketID,
		bin.ConditionID,
		bin.Title,
		bin.Strike,
		string(bin.Direction),
		string(bin.Type),
		bin.Expiration,
		bin.YesPrice,
		opp.SpotPrice,
		opp.ImpliedProbBinary,
		opp.ImpliedProbOptions,
		opp.ProbabilityGap,
		opp.AnalyzedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert opportunity: %w", err)
	}

	for rank, strat := range opp.Strategies {
		legs := make([]legRecord, 0, len(strat.Legs))
		for _, leg := range strat.Legs {
			legs = append(legs, legRecord{
				Instrument: leg.Instrument,
				Refs:       leg.Refs,
				Direction:  string(leg.Direction),
				Quantity:   leg.Quantity,
				UnitPrice:  leg.UnitPrice,
				TotalCost:  leg.TotalCost,
				IsSpread:   leg.IsSpread,
			})
		}
		legsJSON, err := json.Marshal(legs)
		if err != nil {
			return fmt.Errorf("postgres: marshal strategy legs: %w", err)
		}

		var executable *bool
		if strat.Execution != nil {
			executable = &strat.Execution.Executable
		}

		breakevens := strat.Breakevens
		if breakevens == nil {
			breakevens = []float64{}
		}

		_, err = tx.Exec(ctx, insertStrategyQuery,
			opp.ID,
			rank,
			strat.Name,
			strat.Description,
			legsJSON,
			strat.TotalCost,
			strat.MaxProfit,
			strat.MaxLoss,
			breakevens,
			strat.GuaranteedProfit(),
			executable,
		)
		if err != nil {
			return fmt.Errorf("postgres: insert strategy: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit insert opportunity: %w", err)
	}
	return nil
}

const selectOpportunitiesQuery = `
	SELECT id, market_id, condition_id, title, strike, direction, binary_type,
	       expiration, yes_price, spot_price, implied_prob_binary,
	       implied_prob_options, probability_gap, analyzed_at
	FROM opportunities
	ORDER BY analyzed_at DESC
	LIMIT $1`

const selectStrategiesQuery = `
	SELECT opportunity_id, rank, name, description, legs, total_cost,
	       max_profit, max_loss, breakevens, executable
	FROM strategies
	WHERE opportunity_id = ANY($1)
	ORDER BY opportunity_id, rank`

// ListRecent returns the most recent opportunities with strategy summaries,
// newest first. Payoff curves and fills are not stored, so the returned
// strategies carry names, legs, costs and breakevens only.
func (s *OpportunityStore) ListRecent(ctx context.Context, limit int) ([]domain.Opportunity, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, selectOpportunitiesQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list opportunities: %w", err)
	}
	defer rows.Close()

	var opps []domain.Opportunity
	ids := make([]string, 0, limit)
	for rows.Next() {
		var (
			opp       domain.Opportunity
			direction string
			binType   string
		)
		bin := &opp.Pair.Binary
		err := rows.Scan(
			&opp.ID,
			&bin.MarketID,
			&bin.ConditionID,
			&bin.Title,
			&bin.Strike,
			&direction,
			&binType,
			&bin.Expiration,
			&bin.YesPrice,
			&opp.SpotPrice,
			&opp.ImpliedProbBinary,
			&opp.ImpliedProbOptions,
			&opp.ProbabilityGap,
			&opp.AnalyzedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		bin.Direction = domain.Direction(direction)
		bin.Type = domain.BinaryType(binType)
		bin.NoPrice = 1 - bin.YesPrice
		opp.Pair.Expiration = bin.Expiration
		ids = append(ids, opp.ID)
		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate opportunities: %w", err)
	}
	if len(opps) == 0 {
		return opps, nil
	}

	strategies, err := s.strategiesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range opps {
		opps[i].Strategies = strategies[opps[i].ID]
	}
	return opps, nil
}

func (s *OpportunityStore) strategiesFor(ctx context.Context, ids []string) (map[string][]*domain.Strategy, error) {
	rows, err := s.pool.Query(ctx, selectStrategiesQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("postgres: list strategies: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]*domain.Strategy, len(ids))
	for rows.Next() {
		var (
			oppID      string
			rank       int
			legsJSON   []byte
			executable *bool
			strat      domain.Strategy
		)
		err := rows.Scan(
			&oppID,
			&rank,
			&strat.Name,
			&strat.Description,
			&legsJSON,
			&strat.TotalCost,
			&strat.MaxProfit,
			&strat.MaxLoss,
			&strat.Breakevens,
			&executable,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan strategy: %w", err)
		}

		var legs []legRecord
		if err := json.Unmarshal(legsJSON, &legs); err != nil {
			return nil, fmt.Errorf("postgres: unmarshal strategy legs: %w", err)
		}
		strat.Legs = make([]domain.StrategyLeg, 0, len(legs))
		for _, leg := range legs {
			strat.Legs = append(strat.Legs, domain.StrategyLeg{
				Instrument: leg.Instrument,
				Refs:       leg.Refs,
				Direction:  domain.LegDirection(leg.Direction),
				Quantity:   leg.Quantity,
				UnitPrice:  leg.UnitPrice,
				TotalCost:  leg.TotalCost,
				IsSpread:   leg.IsSpread,
			})
		}
		if executable != nil {
			strat.Execution = &domain.Execution{Executable: *executable}
		}

		out[oppID] = append(out[oppID], &strat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate strategies: %w", err)
	}
	return out, nil
}

var _ domain.OpportunityStore = (*OpportunityStore)(nil)
