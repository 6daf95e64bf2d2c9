package domain

// PriceLevel is a single price+size entry in an order book.
type PriceLevel struct {
	Price float64
	Size  float64
}

// BookSide is the direction of a fill against the book.
type BookSide string

const (
	BookBuy  BookSide = "buy"
	BookSell BookSide = "sell"
)

// VWAPResult is the outcome of walking order-book depth to fill a target
// quantity. Filled == 0 means no depth was available; that is a data
// condition, not an error.
type VWAPResult struct {
	VWAP      float64 // fill-weighted average price over the filled amount
	Filled    float64 // quantity actually fillable
	TotalCost float64 // Filled * VWAP
}

// WalkDepth fills target quantity against the given levels, best price
// first, and returns the volume-weighted average price over the filled
// amount. Levels must already be ordered best-first (ascending asks for a
// buy, descending bids for a sell). Depth exhaustion yields a partial fill.
func WalkDepth(levels []PriceLevel, target float64) VWAPResult {
	if target <= 0 {
		return VWAPResult{}
	}

	remaining := target
	var totalCost, filled float64
	for _, lvl := range levels {
		fill := lvl.Size
		if fill > remaining {
			fill = remaining
		}
		totalCost += fill * lvl.Price
		filled += fill
		remaining -= fill
		if remaining <= 0 {
			break
		}
	}

	if filled == 0 {
		return VWAPResult{}
	}
	return VWAPResult{
		VWAP:      totalCost / filled,
		Filled:    filled,
		TotalCost: totalCost,
	}
}

// WalkDepthAtLimit consumes levels best-first until the marginal price moves
// past priceLimit, returning the maximum fillable quantity within that
// limit. Used for "how much can I trade within X% slippage" queries.
func WalkDepthAtLimit(levels []PriceLevel, priceLimit float64, side BookSide) VWAPResult {
	var totalCost, filled float64
	for _, lvl := range levels {
		if side == BookBuy && lvl.Price > priceLimit {
			break
		}
		if side == BookSell && lvl.Price < priceLimit {
			break
		}
		totalCost += lvl.Size * lvl.Price
		filled += lvl.Size
	}

	if filled == 0 {
		return VWAPResult{}
	}
	return VWAPResult{
		VWAP:      totalCost / filled,
		Filled:    filled,
		TotalCost: totalCost,
	}
}
