// Package main is the entry point for the Matchup API server.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hanbyul-dev/matchup/internal/api"
	"github.com/hanbyul-dev/matchup/internal/battle"
	"github.com/hanbyul-dev/matchup/internal/comment"
	"github.com/hanbyul-dev/matchup/internal/config"
	"github.com/hanbyul-dev/matchup/internal/health"
	"github.com/hanbyul-dev/matchup/internal/idempotency"
	"github.com/hanbyul-dev/matchup/internal/item"
	"github.com/hanbyul-dev/matchup/internal/leaderboard"
	"github.com/hanbyul-dev/matchup/internal/middleware"
	"github.com/hanbyul-dev/matchup/internal/ranking"
	"github.com/hanbyul-dev/matchup/internal/topic"
	"github.com/hanbyul-dev/matchup/internal/tracing"
)

func main() {
	help := flag.Bool("help", false, "display help message")
	configFile := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if *help {
		fmt.Println("Matchup API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configFile)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "config error:", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", configSummaryArgs(cfg)...)

	// Tracing
	tracerProvider, err := tracing.NewProvider(tracing.ConfigFromEnv(os.Getenv, cfg.Env))
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	// Repositories: Postgres when DATABASE_URL is set, in-memory otherwise
	var (
		topicRepo       topic.Repository
		itemRepo        item.Repository
		commentRepo     comment.Repository
		leaderboardRepo leaderboard.Repository
		idemRepo        idempotency.Repository
		db              *sql.DB
	)
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.PingContext(pingCtx); err != nil {
			cancel()
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
		cancel()

		topicRepo = topic.NewPostgresRepository(db, logger)
		itemRepo = item.NewPostgresRepository(db, logger)
		commentRepo = comment.NewPostgresRepository(db, logger)
		leaderboardRepo = leaderboard.NewPostgresRepository(db, logger)
		idemRepo = idempotency.NewPostgresRepository(db)
		logger.Info("using postgres repositories")
	} else {
		topicRepo = topic.NewInMemoryRepository()
		itemRepo = item.NewInMemoryRepository()
		commentRepo = comment.NewInMemoryRepository()
		leaderboardRepo = leaderboard.NewInMemoryRepository()
		idemRepo = idempotency.NewInMemoryRepository()
		logger.Info("using in-memory repositories")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	httpMetrics := middleware.NewMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		logger.Error("failed to register http metrics", "error", err)
		os.Exit(1)
	}
	battleMetrics := battle.NewMetrics()
	if err := battleMetrics.Register(registry); err != nil {
		logger.Error("failed to register battle metrics", "error", err)
		os.Exit(1)
	}

	// Domain services
	selector := battle.NewSelector(cfg.ExposureBias, nil)
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			selector.Cleanup(time.Hour)
		}
	}()
	eloParams := battle.EloParams{K: cfg.EloK, Floor: 0}
	battleService := battle.NewService(topicRepo, itemRepo, selector, eloParams, battleMetrics, logger)
	rankingService := ranking.NewService(topicRepo, itemRepo, logger)
	leaderboardService := leaderboard.NewService(leaderboardRepo, logger)

	// Health checks
	healthConfig := api.HealthHandlersConfig{}
	if db != nil {
		healthConfig.DBChecker = health.NewDBChecker(db)
	}

	// Rate limiting: Redis when configured, in-memory otherwise
	var rateLimitStore middleware.RateLimitStore
	if cfg.RedisURL != "" {
		redisClient, err := middleware.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		rateLimitStore = middleware.NewRedisRateLimitStore(redisClient, httpMetrics, logger)
		healthConfig.RedisChecker = health.NewRedisChecker(redisClient)
		logger.Info("using redis rate limit store")
	} else {
		inMem := middleware.NewInMemoryRateLimitStore()
		rateLimitStore = inMem
		go func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				inMem.Cleanup()
			}
		}()
	}

	// Background cleanup of expired idempotency keys
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	go idempotency.RunPeriodicCleanup(cleanupCtx, idemRepo, time.Hour, idempotency.DefaultExpiry)

	mux := api.NewRouter(api.RouterConfig{
		Topics:       api.NewTopicHandlers(topicRepo, itemRepo, rankingService),
		Items:        api.NewItemHandlers(itemRepo, topicRepo),
		Battles:      api.NewBattleHandlers(battleService),
		Comments:     api.NewCommentHandlers(commentRepo, topicRepo),
		Leaderboards: api.NewLeaderboardHandlers(leaderboardService),
		Health:       api.NewHealthHandlers(healthConfig),
		Registry:     registry,
	})

	// Middleware chain, outermost first:
	// RequestID -> Tracing -> SessionKey -> Logging -> HTTPMetrics -> CORS -> RateLimiter -> Idempotency
	var handler http.Handler = mux
	handler = middleware.Idempotency(idemRepo, map[string]bool{
		"/scores": true,
	})(handler)
	if cfg.RateLimitPerMinute > 0 {
		handler = middleware.RateLimiter(rateLimitStore, middleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimitPerMinute,
			WindowDuration:    time.Minute,
		}, middleware.SessionKeyFunc())(handler)
	}
	handler = middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: corsOriginsFromEnv(),
	})(handler)
	handler = middleware.HTTPMetrics(httpMetrics)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.SessionKey(handler)
	if tracerProvider.IsEnabled() {
		handler = middleware.Tracing("matchup-api")(handler)
	}
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := tracerProvider.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown tracer", "error", err)
	}

	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}

	logger.Info("server stopped")
}

// configSummaryArgs flattens the masked config summary into slog key/value pairs.
func configSummaryArgs(cfg *config.Config) []any {
	summary := cfg.LogSummary()
	args := make([]any, 0, len(summary)*2)
	for k, v := range summary {
		args = append(args, k, v)
	}
	return args
}

// corsOriginsFromEnv reads the comma-separated CORS origin allowlist.
// Empty means no cross-origin access.
func corsOriginsFromEnv() []string {
	raw := os.Getenv("MATCHUP_CORS_ORIGINS")
	if raw == "" {
		return nil
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
