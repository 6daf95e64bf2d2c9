package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

// CLOBClient reads order-book depth from the Polymarket CLOB API. It
// satisfies the analysis engine's BookSource for the binary venue.
type CLOBClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewCLOBClient creates a CLOB depth client.
//
// baseURL is the CLOB API root, e.g. "https://clob.polymarket.com".
func NewCLOBClient(baseURL string, logger *slog.Logger) *CLOBClient {
	return &CLOBClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.With(slog.String("component", "polymarket_clob")),
	}
}

// BookVWAP walks the token's book to fill quantity contracts and returns
// the volume-weighted average price over the fillable amount. A book with
// no depth on the needed side is a zero fill, not an error.
func (c *CLOBClient) BookVWAP(ctx context.Context, tokenID string, quantity float64, side domain.BookSide) (domain.VWAPResult, error) {
	if tokenID == "" || quantity <= 0 {
		return domain.VWAPResult{}, nil
	}

	levels, err := c.fetchLevels(ctx, tokenID, side)
	if err != nil {
		return domain.VWAPResult{}, fmt.Errorf("polymarket/clob: book %s: %w", tokenID, err)
	}

	return domain.WalkDepth(levels, quantity), nil
}

// MaxFillAtSlippage returns the largest quantity fillable while the
// marginal price stays within maxSlippagePct of midPrice.
func (c *CLOBClient) MaxFillAtSlippage(ctx context.Context, tokenID string, midPrice, maxSlippagePct float64, side domain.BookSide) (domain.VWAPResult, error) {
	if tokenID == "" || midPrice <= 0 {
		return domain.VWAPResult{}, nil
	}

	priceLimit := midPrice * (1 + maxSlippagePct)
	if side == domain.BookSell {
		priceLimit = midPrice * (1 - maxSlippagePct)
	}

	levels, err := c.fetchLevels(ctx, tokenID, side)
	if err != nil {
		return domain.VWAPResult{}, fmt.Errorf("polymarket/clob: book %s: %w", tokenID, err)
	}

	return domain.WalkDepthAtLimit(levels, priceLimit, side), nil
}

// fetchLevels fetches the book and returns the side to walk, best price
// first: ascending asks for a buy, descending bids for a sell.
func (c *CLOBClient) fetchLevels(ctx context.Context, tokenID string, side domain.BookSide) ([]domain.PriceLevel, error) {
	params := url.Values{}
	params.Set("token_id", tokenID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/book?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	var book CLOBBook
	if err := json.Unmarshal(body, &book); err != nil {
		return nil, fmt.Errorf("decode book: %w", err)
	}

	raw := book.Asks
	if side == domain.BookSell {
		raw = book.Bids
	}

	levels := make([]domain.PriceLevel, 0, len(raw))
	for _, lvl := range raw {
		price, _ := strconv.ParseFloat(lvl.Price, 64)
		size, _ := strconv.ParseFloat(lvl.Size, 64)
		if price <= 0 || size <= 0 {
			continue
		}
		levels = append(levels, domain.PriceLevel{Price: price, Size: size})
	}

	sort.Slice(levels, func(i, j int) bool {
		if side == domain.BookBuy {
			return levels[i].Price < levels[j].Price
		}
		return levels[i].Price > levels[j].Price
	})

	return levels, nil
}
