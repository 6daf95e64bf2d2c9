package domain

import "time"

// OptionKind is the vanilla option type.
type OptionKind string

const (
	OptionCall OptionKind = "call"
	OptionPut  OptionKind = "put"
)

// ListedOption is a Deribit vanilla option quote. Prices are in quote
// currency (USD); the BTC-denominated originals are kept because the venue
// quotes and fills in BTC. Immutable once fetched.
type ListedOption struct {
	InstrumentName string // e.g. "BTC-28MAR25-100000-C"
	Strike         float64
	Kind           OptionKind
	Expiration     time.Time
	BidPrice       float64 // USD
	AskPrice       float64 // USD
	MidPrice       float64 // USD
	BidPriceBTC    float64
	AskPriceBTC    float64
	MidPriceBTC    float64
	IndexPrice     float64 // underlying index at fetch time
	MarkIV         float64 // implied volatility, percent
	Delta          float64
}

// Liquid reports whether both sides of the option are quoted, i.e. the
// option can realistically be traded in either direction.
func (o ListedOption) Liquid() bool {
	return o.BidPrice > 0 && o.AskPrice > 0
}
