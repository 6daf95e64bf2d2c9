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
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

const (
	slugLookaheadDays = 90
	slugBatchSize     = 5
	searchPageLimit   = 100
	searchMaxOffset   = 500
)

// GammaClient is the REST client for the Polymarket Gamma API, which
// provides market discovery, metadata, and search.
type GammaClient struct {
	baseURL       string
	lookaheadDays int
	httpClient    *http.Client
	logger        *slog.Logger
}

// NewGammaClient creates a new Gamma API client. lookaheadDays bounds the
// date-slug discovery pass; values <= 0 fall back to the default.
//
// baseURL is the Gamma API root, e.g. "https://gamma-api.polymarket.com".
func NewGammaClient(baseURL string, lookaheadDays int, logger *slog.Logger) *GammaClient {
	if lookaheadDays <= 0 {
		lookaheadDays = slugLookaheadDays
	}
	return &GammaClient{
		baseURL:       baseURL,
		lookaheadDays: lookaheadDays,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With(slog.String("component", "polymarket_gamma")),
	}
}

// FetchBinaries discovers every open Bitcoin price-level binary on
// Polymarket. Two passes: the daily "bitcoin-above-on-{date}" event slugs
// over the lookahead window, then a paginated scan of active events for anything
// else mentioning Bitcoin. Results are deduplicated by market ID and sorted
// by expiration, then strike.
func (g *GammaClient) FetchBinaries(ctx context.Context) ([]domain.BinaryContract, error) {
	now := time.Now().UTC()

	slugEvents, err := g.eventsForSlugs(ctx, dateSlugs(now, g.lookaheadDays))
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: fetch slug events: %w", err)
	}

	searchEvents, err := g.searchBTCEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: search events: %w", err)
	}

	seen := make(map[string]struct{})
	var binaries []domain.BinaryContract
	for _, event := range append(slugEvents, searchEvents...) {
		for _, market := range event.Markets {
			bin, ok := parseMarket(market, event.Slug, now)
			if !ok {
				continue
			}
			if _, ok := seen[bin.MarketID]; ok {
				continue
			}
			seen[bin.MarketID] = struct{}{}
			binaries = append(binaries, bin)
		}
	}

	sort.Slice(binaries, func(i, j int) bool {
		if !binaries[i].Expiration.Equal(binaries[j].Expiration) {
			return binaries[i].Expiration.Before(binaries[j].Expiration)
		}
		return binaries[i].Strike < binaries[j].Strike
	})

	g.logger.Info("fetched polymarket binaries",
		slog.Int("slug_events", len(slugEvents)),
		slog.Int("search_events", len(searchEvents)),
		slog.Int("binaries", len(binaries)),
	)

	return binaries, nil
}

// eventsForSlugs looks up each slug in small concurrent batches. A slug
// with no event behind it is normal and skipped silently.
func (g *GammaClient) eventsForSlugs(ctx context.Context, slugs []string) ([]APIEvent, error) {
	var (
		mu     sync.Mutex
		events []APIEvent
	)

	for i := 0; i < len(slugs); i += slugBatchSize {
		batch := slugs[i:min(i+slugBatchSize, len(slugs))]

		eg, ctx := errgroup.WithContext(ctx)
		for _, slug := range batch {
			slug := slug
			eg.Go(func() error {
				found, err := g.getEvents(ctx, url.Values{"slug": []string{slug}})
				if err != nil {
					return err
				}
				mu.Lock()
				for _, event := range found {
					if len(event.Markets) > 0 {
						events = append(events, event)
					}
				}
				mu.Unlock()
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}

	return events, nil
}

// searchBTCEvents pages through active events looking for Bitcoin titles
// the slug pattern missed (weekly markets, barrier markets, etc).
func (g *GammaClient) searchBTCEvents(ctx context.Context) ([]APIEvent, error) {
	var events []APIEvent

	for offset := 0; offset < searchMaxOffset; offset += searchPageLimit {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(searchPageLimit))
		params.Set("offset", strconv.Itoa(offset))
		params.Set("active", "true")
		params.Set("closed", "false")

		page, err := g.getEvents(ctx, params)
		if err != nil {
			return nil, err
		}

		for _, event := range page {
			title := strings.ToLower(event.Title)
			if !strings.Contains(title, "bitcoin") && !strings.Contains(title, "btc") {
				continue
			}
			if len(event.Markets) > 0 {
				events = append(events, event)
			}
		}

		if len(page) < searchPageLimit {
			break
		}
	}

	return events, nil
}

func (g *GammaClient) getEvents(ctx context.Context, params url.Values) ([]APIEvent, error) {
	body, err := g.doGet(ctx, "/events?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var events []APIEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}

// doGet sends an unauthenticated GET request to the Gamma API.
func (g *GammaClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
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

	return body, nil
}

// checkHTTPStatus maps non-2xx status codes to appropriate domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, body)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, body)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, body)
	}
}
