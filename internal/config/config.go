// Package config defines the top-level configuration for the arbitrage
// analyzer and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by POLYHEDGE_* environment
// variables.
type Config struct {
	Polymarket PolymarketConfig `toml:"polymarket"`
	Deribit    DeribitConfig    `toml:"deribit"`
	Engine     EngineConfig     `toml:"engine"`
	Postgres   PostgresConfig   `toml:"postgres"`
	Redis      RedisConfig      `toml:"redis"`
	Server     ServerConfig     `toml:"server"`
	Notify     NotifyConfig     `toml:"notify"`
	Poll       PollConfig       `toml:"poll"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// PolymarketConfig holds Polymarket API endpoints.
type PolymarketConfig struct {
	GammaHost string `toml:"gamma_host"`
	ClobHost  string `toml:"clob_host"`
}

// DeribitConfig holds Deribit API endpoints.
type DeribitConfig struct {
	BaseURL string `toml:"base_url"`
	WsURL   string `toml:"ws_url"`
}

// EngineConfig is the TOML surface of the analysis engine's parameters.
type EngineConfig struct {
	TargetNotional  float64  `toml:"target_notional"`
	MinNotional     float64  `toml:"min_notional"`
	MaxNotional     float64  `toml:"max_notional"`
	LotStep         float64  `toml:"lot_step"`
	MaxOptionQty    float64  `toml:"max_option_qty"`
	MinSpreadWidth  float64  `toml:"min_spread_width"`
	MaxSpreadWidth  float64  `toml:"max_spread_width"`
	GridSteps       int      `toml:"grid_steps"`
	ExpiryTolerance duration `toml:"expiry_tolerance"`
	StrikeBand      float64  `toml:"strike_band"`
	MaxSlippagePct  float64  `toml:"max_slippage_pct"`
	MinFillPct      float64  `toml:"min_fill_pct"`
	TopN            int      `toml:"top_n"`
	FetchTimeout    duration `toml:"fetch_timeout"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string `toml:"telegram_token"`
	TelegramChatID    string `toml:"telegram_chat_id"`
	DiscordWebhookURL string `toml:"discord_webhook_url"`
}

// PollConfig holds the analysis loop parameters.
type PollConfig struct {
	Interval      duration `toml:"interval"`
	LookaheadDays int      `toml:"lookahead_days"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			GammaHost: "https://gamma-api.polymarket.com",
			ClobHost:  "https://clob.polymarket.com",
		},
		Deribit: DeribitConfig{
			BaseURL: "https://www.deribit.com/api/v2",
			WsURL:   "wss://www.deribit.com/ws/api/v2",
		},
		Engine: EngineConfig{
			TargetNotional:  3000,
			MinNotional:     500,
			MaxNotional:     8000,
			LotStep:         0.1,
			MaxOptionQty:    50,
			MinSpreadWidth:  2000,
			MaxSpreadWidth:  30000,
			GridSteps:       300,
			ExpiryTolerance: duration{24 * time.Hour},
			StrikeBand:      0.15,
			MaxSlippagePct:  0.05,
			MinFillPct:      90,
			TopN:            3,
			FetchTimeout:    duration{10 * time.Second},
		},
		Postgres: PostgresConfig{
			Enabled:       false,
			Host:          "localhost",
			Port:          5432,
			Database:      "polyhedge",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Poll: PollConfig{
			Interval:      duration{5 * time.Minute},
			LookaheadDays: 90,
		},
		Mode:     "once",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"once":   true,
	"poll":   true,
	"server": true,
	"full":   true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and
// returns a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: once, poll, server, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must be set")
	}
	if c.Polymarket.ClobHost == "" {
		errs = append(errs, "polymarket: clob_host must be set")
	}
	if c.Deribit.BaseURL == "" {
		errs = append(errs, "deribit: base_url must be set")
	}

	e := c.Engine
	if e.TargetNotional <= 0 {
		errs = append(errs, "engine: target_notional must be positive")
	}
	if e.MinNotional < 0 || e.MaxNotional < e.MinNotional {
		errs = append(errs, "engine: notional band must satisfy 0 <= min <= max")
	}
	if e.TargetNotional < e.MinNotional || e.TargetNotional > e.MaxNotional {
		errs = append(errs, "engine: target_notional must lie inside the notional band")
	}
	if e.LotStep <= 0 {
		errs = append(errs, "engine: lot_step must be positive")
	}
	if e.GridSteps < 2 {
		errs = append(errs, "engine: grid_steps must be at least 2")
	}
	if e.StrikeBand <= 0 || e.StrikeBand >= 1 {
		errs = append(errs, "engine: strike_band must be in (0, 1)")
	}
	if e.MinSpreadWidth <= 0 || e.MaxSpreadWidth < e.MinSpreadWidth {
		errs = append(errs, "engine: spread width band must satisfy 0 < min <= max")
	}
	if e.TopN <= 0 {
		errs = append(errs, "engine: top_n must be positive")
	}

	mode := strings.ToLower(c.Mode)
	if (mode == "server" || mode == "full") && !c.Server.Enabled {
		errs = append(errs, "server: must be enabled for mode "+mode)
	}
	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server: invalid port %d", c.Server.Port))
	}
	if c.Poll.Interval.Duration <= 0 && (mode == "poll" || mode == "full") {
		errs = append(errs, "poll: interval must be positive for mode "+mode)
	}

	if c.Postgres.Enabled && c.Postgres.DSN == "" && c.Postgres.Host == "" {
		errs = append(errs, "postgres: dsn or host must be set when enabled")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must be set when enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
