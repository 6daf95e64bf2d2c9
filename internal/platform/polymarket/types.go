package polymarket

import "encoding/json"

// APIEvent represents an event as returned by the Polymarket Gamma API. An
// event groups one or more related markets under a shared slug.
type APIEvent struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	Slug    string      `json:"slug"`
	Active  bool        `json:"active"`
	Closed  bool        `json:"closed"`
	Markets []APIMarket `json:"markets"`
}

// APIMarket represents a market inside a Gamma event response. OutcomePrices
// and ClobTokenIDs are JSON arrays encoded as strings, a Gamma quirk.
type APIMarket struct {
	ID             string  `json:"id"`
	ConditionID    string  `json:"conditionId"`
	Question       string  `json:"question"`
	EndDate        string  `json:"endDate"`
	EndDateISO     string  `json:"endDateIso"`
	Active         bool    `json:"active"`
	Closed         bool    `json:"closed"`
	OutcomePrices  string  `json:"outcomePrices"`
	ClobTokenIDs   string  `json:"clobTokenIds"`
	Outcomes       string  `json:"outcomes"`
	BestBid        float64 `json:"bestBid"`
	BestAsk        float64 `json:"bestAsk"`
	LastTradePrice float64 `json:"lastTradePrice"`
	NegRisk        bool    `json:"negRisk"`
}

// outcomePrices decodes the JSON-in-string price array.
func (m *APIMarket) outcomePrices() ([]string, error) {
	var prices []string
	if err := json.Unmarshal([]byte(m.OutcomePrices), &prices); err != nil {
		return nil, err
	}
	return prices, nil
}

// clobTokenIDs decodes the JSON-in-string token ID array.
func (m *APIMarket) clobTokenIDs() ([]string, error) {
	var ids []string
	if err := json.Unmarshal([]byte(m.ClobTokenIDs), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// CLOBBook is the order book returned by the CLOB /book endpoint.
type CLOBBook struct {
	Bids []CLOBLevel `json:"bids"`
	Asks []CLOBLevel `json:"asks"`
}

// CLOBLevel is a single price level; the CLOB API sends numbers as strings.
type CLOBLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}
