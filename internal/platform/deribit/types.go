package deribit

// rpcEnvelope is the common JSON-RPC response wrapper of the Deribit v2
// public REST API.
type rpcEnvelope[T any] struct {
	Result T         `json:"result"`
	Error  *rpcError `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// APIInstrument is one entry of public/get_instruments.
type APIInstrument struct {
	InstrumentName      string  `json:"instrument_name"`
	Strike              float64 `json:"strike"`
	OptionType          string  `json:"option_type"` // "call" or "put"
	ExpirationTimestamp int64   `json:"expiration_timestamp"`
	IsActive            bool    `json:"is_active"`
}

// APITicker is the result of public/ticker. Prices are BTC-denominated.
type APITicker struct {
	BestBidPrice *float64 `json:"best_bid_price"`
	BestAskPrice *float64 `json:"best_ask_price"`
	MarkPrice    float64  `json:"mark_price"`
	IndexPrice   float64  `json:"index_price"`
	MarkIV       float64  `json:"mark_iv"`
	Greeks       struct {
		Delta float64 `json:"delta"`
	} `json:"greeks"`
}

// APIIndexPrice is the result of public/get_index_price.
type APIIndexPrice struct {
	IndexPrice float64 `json:"index_price"`
}

// APIOrderBook is the result of public/get_order_book. Levels are
// [price_btc, amount_btc] pairs, already best-first.
type APIOrderBook struct {
	Bids            [][2]float64 `json:"bids"`
	Asks            [][2]float64 `json:"asks"`
	IndexPrice      float64      `json:"index_price"`
	UnderlyingPrice float64      `json:"underlying_price"`
}
