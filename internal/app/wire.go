package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/polyhedge/internal/cache/redis"
	"github.com/alanyoungcy/polyhedge/internal/config"
	"github.com/alanyoungcy/polyhedge/internal/domain"
	"github.com/alanyoungcy/polyhedge/internal/engine"
	"github.com/alanyoungcy/polyhedge/internal/notify"
	"github.com/alanyoungcy/polyhedge/internal/platform/deribit"
	"github.com/alanyoungcy/polyhedge/internal/platform/polymarket"
	"github.com/alanyoungcy/polyhedge/internal/store/postgres"
)

// Dependencies bundles everything the application modes need to operate. It
// is constructed by Wire and torn down by the returned cleanup function.
// SpotCache, OppCache, OppStore are nil when the corresponding backend is
// disabled in the configuration.
type Dependencies struct {
	Gamma   *polymarket.GammaClient
	CLOB    *polymarket.CLOBClient
	Deribit *deribit.Client

	Analyzer *engine.Analyzer
	Enricher *engine.Enricher

	SpotCache domain.SpotCache
	OppCache  domain.OpportunityCache
	OppStore  domain.OpportunityStore

	Notifier *notify.Notifier
}

// engineParams maps the TOML engine section onto engine.Params.
func engineParams(cfg config.EngineConfig) engine.Params {
	return engine.Params{
		TargetNotional:  cfg.TargetNotional,
		MinNotional:     cfg.MinNotional,
		MaxNotional:     cfg.MaxNotional,
		LotStep:         cfg.LotStep,
		MaxOptionQty:    cfg.MaxOptionQty,
		MinSpreadWidth:  cfg.MinSpreadWidth,
		MaxSpreadWidth:  cfg.MaxSpreadWidth,
		GridSteps:       cfg.GridSteps,
		ExpiryTolerance: cfg.ExpiryTolerance.Duration,
		StrikeBand:      cfg.StrikeBand,
		MaxSlippagePct:  cfg.MaxSlippagePct,
		MinFillPct:      cfg.MinFillPct,
		TopN:            cfg.TopN,
	}
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Gamma:   polymarket.NewGammaClient(cfg.Polymarket.GammaHost, cfg.Poll.LookaheadDays, logger),
		CLOB:    polymarket.NewCLOBClient(cfg.Polymarket.ClobHost, logger),
		Deribit: deribit.NewClient(cfg.Deribit.BaseURL, logger),
	}

	params := engineParams(cfg.Engine)
	deps.Analyzer = engine.NewAnalyzer(params, logger)
	deps.Enricher = engine.NewEnricher(params, deps.CLOB, deps.Deribit, cfg.Engine.FetchTimeout.Duration, logger)

	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.SpotCache = redis.NewSpotCache(redisClient)
		deps.OppCache = redis.NewOpportunityCache(redisClient)
	}

	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		deps.OppStore = postgres.NewOpportunityStore(pgClient.Pool())
	}

	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, logger)

	return deps, cleanup, nil
}
