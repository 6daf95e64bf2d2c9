package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/polyhedge/internal/domain"
	"github.com/alanyoungcy/polyhedge/internal/feed"
	"github.com/alanyoungcy/polyhedge/internal/server"
	"github.com/alanyoungcy/polyhedge/internal/server/handler"
)

// spotMaxAge is how stale a cached spot price may be before the analysis
// falls back to the index price returned by the option fetch.
const spotMaxAge = 2 * time.Minute

// OnceMode runs a single analysis pass and exits.
func (a *App) OnceMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting once mode")

	opps, err := a.runAnalysis(ctx, deps)
	if err != nil {
		return fmt.Errorf("app: analysis: %w", err)
	}
	a.logSummary(ctx, opps)
	return nil
}

// PollMode runs the analysis immediately and then on every tick of the
// configured interval, until the context is cancelled.
func (a *App) PollMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting poll mode",
		slog.Duration("interval", a.cfg.Poll.Interval.Duration),
	)
	return a.pollLoop(ctx, deps)
}

// ServerMode serves previously cached and stored results over HTTP without
// running the analysis loop.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps)
	return g.Wait()
}

// FullMode runs the poll loop, the live spot price feed, and the HTTP server
// together.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.pollLoop(ctx, deps)
	})

	if deps.SpotCache != nil && a.cfg.Deribit.WsURL != "" {
		spotFeed := feed.NewDeribitSpotFeed(a.cfg.Deribit.WsURL, deps.SpotCache, nil, a.logger)
		g.Go(func() error {
			return spotFeed.Run(ctx)
		})
	}

	a.startHTTPServer(ctx, g, deps)

	return g.Wait()
}

// pollLoop runs the analysis immediately and then at every interval tick. A
// failing pass is logged and retried on the next tick.
func (a *App) pollLoop(ctx context.Context, deps *Dependencies) error {
	run := func() {
		opps, err := a.runAnalysis(ctx, deps)
		if err != nil {
			a.logger.ErrorContext(ctx, "analysis pass failed",
				slog.String("error", err.Error()),
			)
			return
		}
		a.logSummary(ctx, opps)
	}

	run()

	ticker := time.NewTicker(a.cfg.Poll.Interval.Duration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			run()
		}
	}
}

// runAnalysis is one full pass: discover binaries, fetch the matching option
// chains, pair and analyze, enrich the top strategies against live books, and
// fan the results out to the cache, the store, and the notifier.
func (a *App) runAnalysis(ctx context.Context, deps *Dependencies) ([]domain.Opportunity, error) {
	binaries, err := deps.Gamma.FetchBinaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch binaries: %w", err)
	}
	if len(binaries) == 0 {
		a.logger.InfoContext(ctx, "no binary markets found")
		return nil, nil
	}

	tolerance := a.cfg.Engine.ExpiryTolerance.Duration
	options, indexPrice, err := deps.Deribit.FetchOptions(ctx, uniqueExpirations(binaries), tolerance)
	if err != nil {
		return nil, fmt.Errorf("fetch options: %w", err)
	}

	spot := indexPrice
	if deps.SpotCache != nil {
		if price, ts, err := deps.SpotCache.GetSpot(ctx); err == nil && time.Since(ts) < spotMaxAge {
			spot = price
		}
	}

	pairs := deps.Analyzer.MatchMarkets(binaries, options)

	var opps []domain.Opportunity
	for _, pair := range pairs {
		opp := deps.Analyzer.Analyze(pair, spot)
		if len(opp.Strategies) == 0 {
			continue
		}
		if err := deps.Enricher.EnrichTop(ctx, &opp); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			a.logger.WarnContext(ctx, "enrichment failed",
				slog.String("market", opp.Pair.Binary.Title),
				slog.String("error", err.Error()),
			)
		}
		opps = append(opps, opp)
	}

	a.publish(ctx, deps, opps)
	return opps, nil
}

// publish pushes one pass's results to the cache, the store, and the
// notifier. Failures are logged, not fatal: the next pass overwrites.
func (a *App) publish(ctx context.Context, deps *Dependencies, opps []domain.Opportunity) {
	if deps.OppCache != nil {
		if err := deps.OppCache.SetLatest(ctx, opps); err != nil {
			a.logger.WarnContext(ctx, "cache write failed", slog.String("error", err.Error()))
		}
	}
	if deps.OppStore != nil {
		for _, opp := range opps {
			if err := deps.OppStore.Insert(ctx, opp); err != nil {
				a.logger.WarnContext(ctx, "store insert failed",
					slog.String("opportunity_id", opp.ID),
					slog.String("error", err.Error()),
				)
			}
		}
	}
	if err := deps.Notifier.AlertGuaranteed(ctx, opps); err != nil {
		a.logger.WarnContext(ctx, "notification failed", slog.String("error", err.Error()))
	}
}

func (a *App) logSummary(ctx context.Context, opps []domain.Opportunity) {
	var strategies, guaranteed int
	for _, opp := range opps {
		strategies += len(opp.Strategies)
		for _, strat := range opp.Strategies {
			if strat.GuaranteedProfit() {
				guaranteed++
			}
		}
	}
	a.logger.InfoContext(ctx, "analysis pass complete",
		slog.Int("opportunities", len(opps)),
		slog.Int("strategies", strategies),
		slog.Int("guaranteed", guaranteed),
	)
}

// startHTTPServer registers the HTTP server goroutines on the errgroup: one
// serving, one waiting for ctx cancellation to trigger a graceful shutdown.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	handlers := server.Handlers{
		Health:        handler.NewHealthHandler(a.cfg.Mode, deps.OppCache != nil, deps.OppStore != nil, a.logger),
		Opportunities: handler.NewOpportunityHandler(deps.OppCache, deps.OppStore, deps.SpotCache, a.logger),
	}
	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
	}, handlers, a.logger)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	})
}

// uniqueExpirations returns the sorted distinct expirations of the given
// binaries.
func uniqueExpirations(binaries []domain.BinaryContract) []time.Time {
	seen := make(map[time.Time]struct{}, len(binaries))
	var out []time.Time
	for _, bin := range binaries {
		exp := bin.Expiration.UTC()
		if _, ok := seen[exp]; ok {
			continue
		}
		seen[exp] = struct{}{}
		out = append(out, exp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
