package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies POLYHEDGE_* environment variable overrides,
// and returns the final Config. The returned Config has NOT been validated;
// the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known POLYHEDGE_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject endpoints and secrets at deploy time without
// touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Polymarket.GammaHost, "POLYHEDGE_POLYMARKET_GAMMA_HOST")
	setStr(&cfg.Polymarket.ClobHost, "POLYHEDGE_POLYMARKET_CLOB_HOST")

	setStr(&cfg.Deribit.BaseURL, "POLYHEDGE_DERIBIT_BASE_URL")
	setStr(&cfg.Deribit.WsURL, "POLYHEDGE_DERIBIT_WS_URL")

	setFloat64(&cfg.Engine.TargetNotional, "POLYHEDGE_ENGINE_TARGET_NOTIONAL")
	setFloat64(&cfg.Engine.MinNotional, "POLYHEDGE_ENGINE_MIN_NOTIONAL")
	setFloat64(&cfg.Engine.MaxNotional, "POLYHEDGE_ENGINE_MAX_NOTIONAL")
	setFloat64(&cfg.Engine.LotStep, "POLYHEDGE_ENGINE_LOT_STEP")
	setFloat64(&cfg.Engine.MaxOptionQty, "POLYHEDGE_ENGINE_MAX_OPTION_QTY")
	setFloat64(&cfg.Engine.MinSpreadWidth, "POLYHEDGE_ENGINE_MIN_SPREAD_WIDTH")
	setFloat64(&cfg.Engine.MaxSpreadWidth, "POLYHEDGE_ENGINE_MAX_SPREAD_WIDTH")
	setInt(&cfg.Engine.GridSteps, "POLYHEDGE_ENGINE_GRID_STEPS")
	setDuration(&cfg.Engine.ExpiryTolerance, "POLYHEDGE_ENGINE_EXPIRY_TOLERANCE")
	setFloat64(&cfg.Engine.StrikeBand, "POLYHEDGE_ENGINE_STRIKE_BAND")
	setFloat64(&cfg.Engine.MaxSlippagePct, "POLYHEDGE_ENGINE_MAX_SLIPPAGE_PCT")
	setFloat64(&cfg.Engine.MinFillPct, "POLYHEDGE_ENGINE_MIN_FILL_PCT")
	setInt(&cfg.Engine.TopN, "POLYHEDGE_ENGINE_TOP_N")
	setDuration(&cfg.Engine.FetchTimeout, "POLYHEDGE_ENGINE_FETCH_TIMEOUT")

	setBool(&cfg.Postgres.Enabled, "POLYHEDGE_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "POLYHEDGE_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "POLYHEDGE_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "POLYHEDGE_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "POLYHEDGE_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "POLYHEDGE_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "POLYHEDGE_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "POLYHEDGE_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "POLYHEDGE_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "POLYHEDGE_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "POLYHEDGE_POSTGRES_RUN_MIGRATIONS")

	setBool(&cfg.Redis.Enabled, "POLYHEDGE_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "POLYHEDGE_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "POLYHEDGE_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "POLYHEDGE_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "POLYHEDGE_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "POLYHEDGE_REDIS_MAX_RETRIES")

	setBool(&cfg.Server.Enabled, "POLYHEDGE_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "POLYHEDGE_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "POLYHEDGE_SERVER_CORS_ORIGINS")

	setStr(&cfg.Notify.TelegramToken, "POLYHEDGE_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "POLYHEDGE_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "POLYHEDGE_NOTIFY_DISCORD_WEBHOOK_URL")

	setDuration(&cfg.Poll.Interval, "POLYHEDGE_POLL_INTERVAL")
	setInt(&cfg.Poll.LookaheadDays, "POLYHEDGE_POLL_LOOKAHEAD_DAYS")

	setStr(&cfg.Mode, "POLYHEDGE_MODE")
	setStr(&cfg.LogLevel, "POLYHEDGE_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
