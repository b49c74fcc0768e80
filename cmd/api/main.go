package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"geoplaces-api/internal/cache"
	"geoplaces-api/internal/config"
	_ "geoplaces-api/internal/docs"
	"geoplaces-api/internal/events"
	"geoplaces-api/internal/geo"
	"geoplaces-api/internal/handler"
	"geoplaces-api/internal/logging"
	"geoplaces-api/internal/middleware"
	"geoplaces-api/internal/observability"
	"geoplaces-api/internal/presenter"
	"geoplaces-api/internal/repository"
	"geoplaces-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const serviceName = "geoplaces-api"

// store is what the API needs from either repository implementation.
type store interface {
	service.PlaceRepository
	service.DistanceRepository
	handler.Pinger
}

func main() {
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.TracingEnabled,
		ServiceName: serviceName,
		Exporter:    cfg.TracingExporter,
		Endpoint:    cfg.TracingEndpoint,
		SampleRatio: cfg.TracingSampleRatio,
	}, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot init tracing")
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, logger)

	normalizer, err := geo.NewNormalizer(cfg.DefaultSRID)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid DEFAULT_SRID")
	}

	// Database connection
	repo, closeStore, err := openStore(ctx, cfg, normalizer)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("cannot connect to db")
	}
	defer closeStore()

	// Optional collaborators
	var placeCache service.PlaceCache
	if cfg.CacheAddr != "" {
		c, err := cache.New(cfg.CacheAddr)
		if err != nil {
			log.Warn().Err(err).Msg("cache unavailable; continuing without it")
		} else {
			defer c.Close()
			placeCache = c
		}
	}

	var publisher service.EventPublisher
	if cfg.NATSURL != "" {
		p, err := events.NewPublisher(cfg.NATSURL)
		if err != nil {
			log.Warn().Err(err).Msg("event publisher unavailable; continuing without it")
		} else {
			defer p.Close()
			publisher = p
		}
	}

	// Initialize layers
	placeService := service.NewPlaceService(repo, placeCache, publisher, cfg.CacheTTL)
	nearestService := service.NewNearestService(repo, normalizer.CanonicalSRID())

	placeHandler := handler.NewPlaceHandler(placeService, nearestService, presenter.NewDecoder(normalizer))
	healthHandler := handler.NewHealthHandler(repo)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Tracing(serviceName),
		middleware.Metrics(),
		middleware.AccessLog(),
	)

	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	handler.RegisterRoutes(r, placeHandler)

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", cfg.ServerAddress).
			Str("driver", cfg.DBDriver).
			Int("canonical_srid", normalizer.CanonicalSRID()).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func openStore(ctx context.Context, cfg config.Config, normalizer *geo.Normalizer) (store, func(), error) {
	switch cfg.DBDriver {
	case "sqlite":
		db, err := repository.OpenSQLite(ctx, cfg.DBSource)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSQLiteRepository(db, normalizer), func() { db.Close() }, nil
	default:
		pool, err := repository.OpenPostgres(ctx, cfg.DBSource, cfg.DBMaxConns)
		if err != nil {
			return nil, nil, err
		}
		log.Debug().Int32("max_conns", pool.Config().MaxConns).Msg("postgres pool ready")
		return repository.NewPostgresRepository(pool), pool.Close, nil
	}
}
