// Package feed streams live index prices from the Deribit WebSocket API.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	reconnectDelay    = 2 * time.Second
	maxReconnectDelay = 60 * time.Second

	indexChannel = "deribit_price_index.btc_usd"
)

// SpotHandler is called for each index price update.
type SpotHandler func(ctx context.Context, price float64, ts time.Time)

// DeribitSpotFeed subscribes to the BTC index price channel on the Deribit
// WebSocket API and writes each update to the spot cache. It reconnects with
// exponential backoff on disconnect.
type DeribitSpotFeed struct {
	wsURL   string
	cache   domain.SpotCache
	onPrice SpotHandler
	logger  *slog.Logger
}

// NewDeribitSpotFeed creates a feed writing to the given cache. onPrice is
// optional and is invoked after the cache write.
func NewDeribitSpotFeed(wsURL string, cache domain.SpotCache, onPrice SpotHandler, logger *slog.Logger) *DeribitSpotFeed {
	return &DeribitSpotFeed{
		wsURL:   wsURL,
		cache:   cache,
		onPrice: onPrice,
		logger:  logger.With(slog.String("component", "deribit_spot_feed")),
	}
}

// Run connects and streams index prices until ctx is cancelled.
func (f *DeribitSpotFeed) Run(ctx context.Context) error {
	delay := reconnectDelay
	for {
		err := f.runConnection(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f.logger.Warn("deribit ws disconnected, reconnecting",
			slog.String("error", err.Error()),
			slog.Duration("delay", delay),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
}

// subscribeRequest is the JSON-RPC frame that opens the index subscription.
type subscribeRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int            `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
}

// subscriptionFrame covers both subscribe confirmations and notifications.
type subscriptionFrame struct {
	Method string `json:"method"`
	Params struct {
		Channel string `json:"channel"`
		Data    struct {
			IndexName string  `json:"index_name"`
			Price     float64 `json:"price"`
			Timestamp int64   `json:"timestamp"`
		} `json:"data"`
	} `json:"params"`
}

func (f *DeribitSpotFeed) runConnection(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 15 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, f.wsURL, nil)
	if err != nil {
		return fmt.Errorf("feed: connect: %w", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	sub := subscribeRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "public/subscribe",
		Params:  map[string]any{"channels": []string{indexChannel}},
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("feed: subscribe: %w", err)
	}
	f.logger.Info("deribit ws subscribed", slog.String("channel", indexChannel))

	// Close the connection when ctx ends so the blocked read returns.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			)
			conn.Close()
		case <-stop:
		}
	}()

	go f.pingLoop(conn, stop)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("feed: read: %w", domain.ErrWSDisconnect)
		}
		f.handleMessage(ctx, message)
	}
}

func (f *DeribitSpotFeed) pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (f *DeribitSpotFeed) handleMessage(ctx context.Context, raw []byte) {
	var frame subscriptionFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return
	}
	if frame.Method != "subscription" || frame.Params.Channel != indexChannel {
		return
	}

	price := frame.Params.Data.Price
	if price <= 0 {
		return
	}
	ts := time.UnixMilli(frame.Params.Data.Timestamp).UTC()

	if f.cache != nil {
		if err := f.cache.SetSpot(ctx, price, ts); err != nil {
			f.logger.Warn("spot cache write failed", slog.String("error", err.Error()))
		}
	}
	if f.onPrice != nil {
		f.onPrice(ctx, price, ts)
	}
}
