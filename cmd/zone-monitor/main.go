// @title        Zone Monitor API
// @version      1.0
// @description  Live position reconciliation and geofence alerts for field officials.
// @BasePath     /
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"

	"github.com/bandobast/zone-monitor/internal/api"
	"github.com/bandobast/zone-monitor/internal/api/handler"
	"github.com/bandobast/zone-monitor/internal/api/metrics"
	"github.com/bandobast/zone-monitor/internal/core/domain"
	"github.com/bandobast/zone-monitor/internal/core/monitor"
	"github.com/bandobast/zone-monitor/internal/core/reconciler"
	"github.com/bandobast/zone-monitor/internal/core/service"
	"github.com/bandobast/zone-monitor/internal/core/zone"
	"github.com/bandobast/zone-monitor/internal/infrastructure/config"
	mongoinfra "github.com/bandobast/zone-monitor/internal/infrastructure/db/mongo"
	redisinfra "github.com/bandobast/zone-monitor/internal/infrastructure/db/redis"
	"github.com/bandobast/zone-monitor/internal/infrastructure/feed"
	httpinfra "github.com/bandobast/zone-monitor/internal/infrastructure/http"
	"github.com/bandobast/zone-monitor/internal/infrastructure/queue"
	"github.com/bandobast/zone-monitor/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "zone-monitor: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "zone-monitor",
	})

	// --- Zones ---
	registry, err := loadZones(cfg, log)
	if err != nil {
		return err
	}

	// --- Storage ---
	mongoClient, db, err := mongoinfra.Connect(ctx, mongoinfra.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisinfra.Connect(ctx, redisinfra.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	violations := mongoinfra.NewViolationRepository(db)
	if err := violations.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("could not create violation indexes")
	}
	officials := mongoinfra.NewOfficialRepository(db)

	// --- Core ---
	tracking := service.NewTrackingService(
		reconciler.New(),
		monitor.New(registry, cfg.FirstSightingPolicy()),
		registry,
		redisinfra.NewAlertPublisher(rdb, cfg.Redis.AlertChannel),
		redisinfra.NewAlertDedup(rdb, cfg.Redis.DedupTTL),
		violations,
		logger.Component("tracking"),
	)

	g, gctx := errgroup.WithContext(ctx)

	dispatcher := queue.NewDispatcher(cfg.Dispatch.Workers, tracking, logger.Component("dispatcher"))
	dispatcher.Start(gctx)

	// --- Feeds ---
	var fallback []domain.Official
	if cfg.Feeds.FallbackFile != "" {
		fallback, err = feed.LoadRoster(cfg.Feeds.FallbackFile)
		if err != nil {
			return err
		}
		log.Info().Int("officials", len(fallback)).Str("file", cfg.Feeds.FallbackFile).Msg("fallback roster loaded")
	}
	if cfg.Feeds.Live {
		live := feed.NewLiveFeed(officials, dispatcher, logger.Component("feed"))
		g.Go(func() error { return live.Run(gctx) })
	}
	if cfg.Feeds.Poll {
		poll := feed.NewPollFeed(officials, fallback, dispatcher, cfg.Feeds.PollInterval, logger.Component("feed"))
		g.Go(func() error { return poll.Run(gctx) })
	}

	// --- HTTP ---
	router := api.NewRouter(api.Deps{
		Service:    tracking,
		Zones:      registry,
		Dispatcher: dispatcher,
		Health: map[string]handler.Pinger{
			"mongodb": handler.PingFunc(func(ctx context.Context) error { return mongoClient.Ping(ctx, readpref.Primary()) }),
			"redis":   handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		},
		Log:         logger.Component("http"),
		IngestRate:  cfg.Ingest.Rate,
		IngestBurst: cfg.Ingest.Burst,
		Swagger:     !cfg.IsProduction(),
	})
	g.Go(func() error { return httpinfra.Serve(gctx, router, ":"+cfg.Port, log) })

	log.Info().
		Str("env", cfg.Env).
		Str("zone_match", string(registry.Mode())).
		Str("first_sighting", string(cfg.FirstSightingPolicy())).
		Bool("live_feed", cfg.Feeds.Live).
		Bool("poll_feed", cfg.Feeds.Poll).
		Msg("zone monitor started")

	err = g.Wait()
	log.Info().Msg("zone monitor stopped")
	return err
}

func loadZones(cfg *config.Config, log zerolog.Logger) (*zone.Registry, error) {
	zones := zone.DefaultZones()
	if cfg.Zones.File != "" {
		var err error
		if zones, err = zone.LoadFile(cfg.Zones.File); err != nil {
			return nil, err
		}
	}

	registry := zone.NewRegistry(cfg.MatchMode())
	if err := registry.Replace(zones); err != nil {
		return nil, fmt.Errorf("load zones: %w", err)
	}
	metrics.ZonesConfigured.Set(float64(registry.Len()))

	names := make([]string, 0, len(zones))
	for _, z := range registry.Zones() {
		names = append(names, z.Name)
	}
	log.Info().Strs("zones", names).Msg("zones loaded")
	return registry, nil
}
