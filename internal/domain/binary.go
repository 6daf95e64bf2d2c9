package domain

import "time"

// Direction is the binary contract's price condition side.
type Direction string

const (
	DirectionAbove Direction = "above"
	DirectionBelow Direction = "below"
)

// BinaryType distinguishes European binaries ("above X on date") from
// barrier markets ("hit X before date"). The analysis treats both as
// fixed-date binaries; the type is carried for display and storage.
type BinaryType string

const (
	BinaryTypeEuropean BinaryType = "binary"
	BinaryTypeBarrier  BinaryType = "barrier"
)

// BinaryContract is a Polymarket binary option on the underlying price:
// it pays 1 per YES share if the condition (price above/below Strike at
// Expiration) holds, else 0. Prices are probability-like, in [0, 1].
// Immutable once fetched.
type BinaryContract struct {
	MarketID    string
	ConditionID string
	Title       string
	Strike      float64
	Direction   Direction
	Type        BinaryType
	Expiration  time.Time
	YesPrice    float64 // bid/ask midpoint
	NoPrice     float64 // 1 - YesPrice
	YesBid      float64
	YesAsk      float64
	YesTokenID  string // CLOB token ID for the YES outcome
	NoTokenID   string // CLOB token ID for the NO outcome
	EventSlug   string
}

// ImpliedProbability is the market-implied probability that the underlying
// finishes above the strike, regardless of the contract's direction. This is
// the quantity comparable to a call option's delta.
func (b BinaryContract) ImpliedProbability() float64 {
	if b.Direction == DirectionAbove {
		return b.YesPrice
	}
	return 1 - b.YesPrice
}
