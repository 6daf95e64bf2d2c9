package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

// spotKey holds the latest BTC index price as a hash with fields "price"
// and "ts" (Unix nanosecond timestamp).
const spotKey = "spot:btc_usd"

// SpotCache implements domain.SpotCache using a Redis hash. The websocket
// feed writes it on every index tick; the analysis loop and the HTTP
// handlers read it.
type SpotCache struct {
	rdb *redis.Client
}

// NewSpotCache creates a SpotCache backed by the given Client.
func NewSpotCache(c *Client) *SpotCache {
	return &SpotCache{rdb: c.Underlying()}
}

// SetSpot stores the latest index price and its timestamp.
func (sc *SpotCache) SetSpot(ctx context.Context, price float64, ts time.Time) error {
	fields := map[string]interface{}{
		"price": strconv.FormatFloat(price, 'f', -1, 64),
		"ts":    strconv.FormatInt(ts.UnixNano(), 10),
	}
	if err := sc.rdb.HSet(ctx, spotKey, fields).Err(); err != nil {
		return fmt.Errorf("redis: set spot: %w", err)
	}
	return nil
}

// GetSpot retrieves the latest index price and timestamp. It returns
// domain.ErrNotFound when no price has been cached yet.
func (sc *SpotCache) GetSpot(ctx context.Context) (float64, time.Time, error) {
	vals, err := sc.rdb.HGetAll(ctx, spotKey).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis: get spot: %w", err)
	}
	if len(vals) == 0 {
		return 0, time.Time{}, domain.ErrNotFound
	}

	priceStr, ok := vals["price"]
	if !ok {
		return 0, time.Time{}, domain.ErrNotFound
	}
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis: parse spot price: %w", err)
	}

	tsStr, ok := vals["ts"]
	if !ok {
		return 0, time.Time{}, domain.ErrNotFound
	}
	tsNano, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis: parse spot ts: %w", err)
	}

	return price, time.Unix(0, tsNano), nil
}

// Compile-time interface check.
var _ domain.SpotCache = (*SpotCache)(nil)
