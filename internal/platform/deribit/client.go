package deribit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

const (
	// tickerBatchSize bounds how many ticker requests run concurrently;
	// the public API rate-limits aggressive bursts.
	tickerBatchSize = 20
	tickerBatchGap  = 200 * time.Millisecond

	// defaultLookahead and defaultMoneyness bound the unfiltered
	// instrument universe when no target expirations are given.
	defaultLookahead = 90 * 24 * time.Hour
	defaultMoneyness = 0.30
)

// Client is the REST client for the Deribit v2 public API: instrument
// discovery, index price, and option quotes.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Deribit public API client.
//
// baseURL is the API root, e.g. "https://www.deribit.com/api/v2".
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger.With(slog.String("component", "deribit")),
	}
}

// IndexPrice returns the current BTC/USD index.
func (c *Client) IndexPrice(ctx context.Context) (float64, error) {
	params := url.Values{}
	params.Set("index_name", "btc_usd")

	var result APIIndexPrice
	if err := c.get(ctx, "/public/get_index_price", params, &result); err != nil {
		return 0, fmt.Errorf("deribit: get index price: %w", err)
	}
	return result.IndexPrice, nil
}

// FetchOptions returns quoted BTC options. When targetExpirations is
// non-empty, the chain is narrowed to instruments within the tolerance of
// any target; otherwise it falls back to near-the-money instruments
// expiring within 90 days. Options without a positive mid quote are
// dropped. Prices come back in USD, converted at each ticker's own index
// price, with the BTC originals preserved.
func (c *Client) FetchOptions(ctx context.Context, targetExpirations []time.Time, tolerance time.Duration) ([]domain.ListedOption, float64, error) {
	params := url.Values{}
	params.Set("currency", "BTC")
	params.Set("kind", "option")
	params.Set("expired", "false")

	var instruments []APIInstrument
	if err := c.get(ctx, "/public/get_instruments", params, &instruments); err != nil {
		return nil, 0, fmt.Errorf("deribit: get instruments: %w", err)
	}

	indexPrice, err := c.IndexPrice(ctx)
	if err != nil {
		return nil, 0, err
	}

	filtered := c.filterInstruments(instruments, targetExpirations, tolerance, indexPrice)

	c.logger.Info("fetching deribit tickers",
		slog.Int("total", len(instruments)),
		slog.Int("filtered", len(filtered)),
		slog.Float64("index_price", indexPrice),
	)

	options, err := c.fetchTickers(ctx, filtered)
	if err != nil {
		return nil, 0, err
	}

	return options, indexPrice, nil
}

func (c *Client) filterInstruments(instruments []APIInstrument, targets []time.Time, tolerance time.Duration, indexPrice float64) []APIInstrument {
	now := time.Now()

	var filtered []APIInstrument
	for _, instr := range instruments {
		if !instr.IsActive {
			continue
		}
		expiry := time.UnixMilli(instr.ExpirationTimestamp)

		if len(targets) > 0 {
			for _, target := range targets {
				diff := expiry.Sub(target)
				if diff < 0 {
					diff = -diff
				}
				if diff < tolerance {
					filtered = append(filtered, instr)
					break
				}
			}
			continue
		}

		withinTime := expiry.After(now) && expiry.Sub(now) < defaultLookahead
		nearMoney := math.Abs(instr.Strike-indexPrice)/indexPrice < defaultMoneyness
		if withinTime && nearMoney {
			filtered = append(filtered, instr)
		}
	}
	return filtered
}

// fetchTickers pulls quotes for each instrument in rate-limited batches.
// Individual ticker failures drop the instrument rather than failing the
// whole fetch.
func (c *Client) fetchTickers(ctx context.Context, instruments []APIInstrument) ([]domain.ListedOption, error) {
	var (
		mu      sync.Mutex
		options []domain.ListedOption
	)

	for i := 0; i < len(instruments); i += tickerBatchSize {
		batch := instruments[i:min(i+tickerBatchSize, len(instruments))]

		eg, batchCtx := errgroup.WithContext(ctx)
		for _, instr := range batch {
			instr := instr
			eg.Go(func() error {
				opt, err := c.fetchTicker(batchCtx, instr)
				if err != nil {
					c.logger.Warn("ticker fetch failed",
						slog.String("instrument", instr.InstrumentName),
						slog.String("error", err.Error()),
					)
					return nil
				}
				if opt.MidPrice <= 0 {
					return nil
				}
				mu.Lock()
				options = append(options, opt)
				mu.Unlock()
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}

		if i+tickerBatchSize < len(instruments) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(tickerBatchGap):
			}
		}
	}

	return options, nil
}

func (c *Client) fetchTicker(ctx context.Context, instr APIInstrument) (domain.ListedOption, error) {
	params := url.Values{}
	params.Set("instrument_name", instr.InstrumentName)

	var ticker APITicker
	if err := c.get(ctx, "/public/ticker", params, &ticker); err != nil {
		return domain.ListedOption{}, err
	}

	bidBTC := 0.0
	if ticker.BestBidPrice != nil {
		bidBTC = *ticker.BestBidPrice
	}
	askBTC := bidBTC
	if ticker.BestAskPrice != nil {
		askBTC = *ticker.BestAskPrice
	}
	midBTC := (bidBTC + askBTC) / 2

	expiration, err := ParseExpiry(instr.InstrumentName)
	if err != nil {
		return domain.ListedOption{}, err
	}

	kind := domain.OptionCall
	if instr.OptionType == "put" {
		kind = domain.OptionPut
	}

	return domain.ListedOption{
		InstrumentName: instr.InstrumentName,
		Strike:         instr.Strike,
		Kind:           kind,
		Expiration:     expiration,
		BidPrice:       bidBTC * ticker.IndexPrice,
		AskPrice:       askBTC * ticker.IndexPrice,
		MidPrice:       midBTC * ticker.IndexPrice,
		BidPriceBTC:    bidBTC,
		AskPriceBTC:    askBTC,
		MidPriceBTC:    midBTC,
		IndexPrice:     ticker.IndexPrice,
		MarkIV:         ticker.MarkIV,
		Delta:          ticker.Greeks.Delta,
	}, nil
}

// get sends a GET to a public endpoint and decodes the JSON-RPC result.
func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, body)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, body)
	}

	var envelope rpcEnvelope[json.RawMessage]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("rpc error %d: %s", envelope.Error.Code, envelope.Error.Message)
	}
	if err := json.Unmarshal(envelope.Result, result); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}
