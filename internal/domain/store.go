package domain

import (
	"context"
	"time"
)

// OpportunityStore persists analysis results for history and review.
type OpportunityStore interface {
	// Insert stores an opportunity and summary rows for its strategies.
	Insert(ctx context.Context, opp Opportunity) error
	// ListRecent returns the most recent opportunities, newest first.
	ListRecent(ctx context.Context, limit int) ([]Opportunity, error)
}

// SpotCache holds the latest underlying index price.
type SpotCache interface {
	SetSpot(ctx context.Context, price float64, ts time.Time) error
	// GetSpot returns ErrNotFound when no price has been cached yet.
	GetSpot(ctx context.Context) (float64, time.Time, error)
}

// OpportunityCache holds the latest analysis run for fast read access.
type OpportunityCache interface {
	SetLatest(ctx context.Context, opps []Opportunity) error
	// GetLatest returns ErrNotFound when no run has been cached yet.
	GetLatest(ctx context.Context) ([]Opportunity, error)
}
