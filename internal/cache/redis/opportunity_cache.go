package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

const (
	latestKey = "opportunities:latest"

	// latestTTL bounds staleness: a crashed analysis loop should not
	// leave day-old results looking current.
	latestTTL = time.Hour
)

// OpportunityCache implements domain.OpportunityCache by storing the whole
// latest analysis run as one JSON blob. Runs are small (dozens of pairs)
// and always read whole, so a single key beats per-opportunity entries.
type OpportunityCache struct {
	rdb *redis.Client
}

// NewOpportunityCache creates an OpportunityCache backed by the given
// Client.
func NewOpportunityCache(c *Client) *OpportunityCache {
	return &OpportunityCache{rdb: c.Underlying()}
}

// SetLatest replaces the cached analysis run.
func (oc *OpportunityCache) SetLatest(ctx context.Context, opps []domain.Opportunity) error {
	payload, err := json.Marshal(opps)
	if err != nil {
		return fmt.Errorf("redis: marshal opportunities: %w", err)
	}
	if err := oc.rdb.Set(ctx, latestKey, payload, latestTTL).Err(); err != nil {
		return fmt.Errorf("redis: set latest opportunities: %w", err)
	}
	return nil
}

// GetLatest returns the cached analysis run. It returns domain.ErrNotFound
// when no run has been cached or the previous one has expired.
func (oc *OpportunityCache) GetLatest(ctx context.Context) ([]domain.Opportunity, error) {
	payload, err := oc.rdb.Get(ctx, latestKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get latest opportunities: %w", err)
	}

	var opps []domain.Opportunity
	if err := json.Unmarshal(payload, &opps); err != nil {
		return nil, fmt.Errorf("redis: unmarshal opportunities: %w", err)
	}
	return opps, nil
}

// Compile-time interface check.
var _ domain.OpportunityCache = (*OpportunityCache)(nil)
