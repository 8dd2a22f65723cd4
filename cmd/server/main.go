package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"immersion/internal/establishment/store"
	"immersion/internal/platform/config"
	"immersion/internal/platform/httpserver"
	"immersion/internal/platform/logger"
	platformmetrics "immersion/internal/platform/metrics"
	"immersion/internal/platform/postgres"
	platformredis "immersion/internal/platform/redis"
	"immersion/internal/search/deletions"
	"immersion/internal/search/executor"
	"immersion/internal/search/gateway/lbb"
	"immersion/internal/search/handler"
	searchmetrics "immersion/internal/search/metrics"
	"immersion/internal/search/ports"
	"immersion/internal/search/telemetry"
	"immersion/internal/trades"
	httptransport "immersion/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Every infrastructure backend is optional: without postgres, redis, or
// Kafka the service runs fully in memory, which is what local development
// and most tests use.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	var (
		aggregates       ports.LocalSearcher
		deletionRegistry ports.DeletionRegistry
		telemetrySinks   []ports.TelemetrySink
		resolver         ports.TradeResolver
	)

	if cfg.Postgres.URL != "" {
		db, err := postgres.Open(ctx, cfg.Postgres.URL)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		aggregates = store.NewPostgres(db)
		deletionRegistry = deletions.NewPostgres(db)
		telemetrySinks = append(telemetrySinks, telemetry.NewPostgres(db))
		resolver = trades.NewPostgresResolver(db)
	} else {
		log.Warn("POSTGRES_URL not set, using in-memory stores")
		aggregates = store.NewInMemory()
		deletionRegistry = deletions.NewInMemory()
		telemetrySinks = append(telemetrySinks, telemetry.NewInMemory())
		resolver = trades.NewInMemoryResolver()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		resolver = trades.NewCachedResolver(resolver, redisClient.Client,
			trades.WithCacheLogger(log))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := telemetry.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic,
			telemetry.WithKafkaLogger(log))
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		telemetrySinks = append(telemetrySinks, kafkaSink)
	}

	gateway := lbb.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.APIKey,
		lbb.WithLogger(log))

	exec, err := executor.New(
		aggregates,
		gateway,
		deletionRegistry,
		telemetry.NewMulti(telemetrySinks...),
		resolver,
		executor.WithLogger(log),
		executor.WithMetrics(searchmetrics.New()),
	)
	if err != nil {
		log.Error("executor construction failed", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(
		handler.New(exec, log),
		platformmetrics.New(),
		[]byte(cfg.Server.JWTSigningKey),
		log,
	)
	srv := httpserver.New(cfg.Server.Addr, router)

	log.Info("starting immersion search service", "addr", cfg.Server.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
