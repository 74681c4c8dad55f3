package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Akanimoh12/iPredict/internal/domain"
	"github.com/Akanimoh12/iPredict/internal/indexer"
	"github.com/Akanimoh12/iPredict/internal/query"
	"github.com/Akanimoh12/iPredict/internal/server"
	"github.com/Akanimoh12/iPredict/internal/server/handler"
	"github.com/Akanimoh12/iPredict/internal/server/ws"
	"github.com/Akanimoh12/iPredict/internal/service"
)

// ServeMode runs the HTTP/WS API plus the background read pollers. The
// indexer is expected to run in a separate process (mode "index").
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startAPI(ctx, g, deps)
	return g.Wait()
}

// IndexMode runs only the event indexer and the archive loop.
func (a *App) IndexMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting index mode")

	if !a.cfg.Indexer.Enabled {
		return fmt.Errorf("index mode: indexer.enabled is false")
	}

	g, ctx := errgroup.WithContext(ctx)
	a.startIndexer(ctx, g, deps)
	return g.Wait()
}

// FullMode runs the indexer and the API server in one process.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)
	if a.cfg.Indexer.Enabled {
		a.startIndexer(ctx, g, deps)
	}
	if a.cfg.Server.Enabled {
		a.startAPI(ctx, g, deps)
	}
	return g.Wait()
}

// startIndexer adds the indexer catch-up loop and, when archival is
// configured, the archive loop to the errgroup.
func (a *App) startIndexer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	ix := indexer.New(
		deps.Filterer,
		deps.EthClient,
		deps.ActivityStore,
		deps.StatsStore,
		deps.CheckpointStore,
		deps.SignalBus,
		deps.LockManager,
		deps.MarketCache,
		deps.Notifier,
		deps.Archiver,
		indexer.Config{
			StartBlock:      a.cfg.Contract.DeployBlock,
			BatchBlocks:     a.cfg.Indexer.BatchBlocks,
			Confirmations:   a.cfg.Indexer.Confirmations,
			PollInterval:    a.cfg.Indexer.PollInterval.Duration,
			ArchiveInterval: a.cfg.Indexer.ArchiveInterval.Duration,
		},
		a.logger,
	)

	g.Go(func() error {
		return ix.Run(ctx)
	})
	g.Go(func() error {
		return ix.RunArchiver(ctx)
	})
}

// platformSource serves platform state from a polled query snapshot so every
// HTTP request shares one poll loop instead of issuing its own contract reads.
type platformSource struct {
	q *query.Query[domain.PlatformState]
}

func (p *platformSource) Platform(ctx context.Context) (domain.PlatformState, error) {
	snap := p.q.Get()
	if snap.UpdatedAt.IsZero() {
		// First request before the poller has primed; fetch inline.
		snap, err := p.q.Refetch(ctx)
		if err != nil {
			return domain.PlatformState{}, err
		}
		return snap.Data, nil
	}
	return snap.Data, nil
}

// startAPI builds the service layer, the read pollers, the WebSocket hub, and
// the HTTP server, and adds their goroutines to the errgroup.
func (a *App) startAPI(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	marketSvc := service.NewMarketService(deps.Caller, deps.MarketCache, a.logger)
	userSvc := service.NewUserService(deps.Caller, a.logger)
	boardSvc := service.NewLeaderboardService(deps.StatsStore)
	activitySvc := service.NewActivityService(deps.ActivityStore)

	// Background pollers. The list poller keeps the first page warm in Redis;
	// the platform poller feeds /api/platform directly from its snapshot.
	reg := query.NewRegistry()

	platformQ := query.Lookup(reg, query.Key("platform"),
		func(ctx context.Context) (domain.PlatformState, error) {
			return marketSvc.Platform(ctx)
		},
		query.Options{
			Interval:   a.cfg.Poll.Account.Duration,
			MaxRetries: 2,
			Timeout:    10 * time.Second,
		}, a.logger)
	g.Go(func() error {
		platformQ.Run(ctx)
		return ctx.Err()
	})

	listQ := query.Lookup(reg, query.Key("markets", 0, 50),
		func(ctx context.Context) ([]domain.MarketWithOdds, error) {
			return marketSvc.ListMarkets(ctx, domain.ListOpts{Limit: 50}, "", "")
		},
		query.Options{
			Interval:   a.cfg.Poll.List.Duration,
			MaxRetries: 2,
			Timeout:    15 * time.Second,
		}, a.logger)
	g.Go(func() error {
		listQ.Run(ctx)
		return ctx.Err()
	})

	// WebSocket hub bridging the indexer's activity channel.
	hub := ws.NewHub(deps.SignalBus, indexer.ActivityChannel, a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	handlers := server.Handlers{
		Health:      handler.NewHealthHandler(a.logger),
		Platform:    handler.NewPlatformHandler(&platformSource{q: platformQ}, a.logger),
		Markets:     handler.NewMarketHandler(marketSvc, a.logger),
		Users:       handler.NewUserHandler(userSvc, a.logger),
		Leaderboard: handler.NewLeaderboardHandler(boardSvc, a.logger),
		Activity:    handler.NewActivityHandler(activitySvc, a.logger),
	}

	if deps.BlobReader != nil {
		archiveSvc := service.NewArchiveService(deps.BlobReader)
		handlers.Archive = handler.NewArchiveHandler(archiveSvc, a.logger)
	}

	if deps.Transactor != nil {
		adminSvc := service.NewAdminService(deps.Caller, deps.Transactor, deps.MarketCache, deps.Notifier, a.logger)
		handlers.Admin = handler.NewAdminHandler(adminSvc, a.logger)
	} else {
		a.logger.InfoContext(ctx, "no wallet configured, admin endpoints disabled")
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		AdminAPIKey: a.cfg.Server.AdminAPIKey,
		RateLimit:   a.cfg.Server.RateLimit,
		RateWindow:  time.Minute,
	}, handlers, hub, deps.RateLimiter, a.logger)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}
