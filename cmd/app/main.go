package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shop-seo-console/internal/config"
	"shop-seo-console/internal/domain/ports/adapter"
	"shop-seo-console/internal/domain/ports/repository"
	aiAdapters "shop-seo-console/internal/infra/adapters/ai"
	"shop-seo-console/internal/infra/adapters/catalog"
	pg "shop-seo-console/internal/infra/db/postgres"
	"shop-seo-console/internal/infra/logging"
	"shop-seo-console/internal/infra/metrics"
	red "shop-seo-console/internal/infra/redis"
	"shop-seo-console/internal/infra/sched"
	"shop-seo-console/internal/infra/seo"
	"shop-seo-console/internal/infra/web"
	"shop-seo-console/internal/infra/worker"
	"shop-seo-console/internal/usecase"
)

const (
	consoleTokenTTL = 12 * time.Hour
	drainGrace      = 30 * time.Second
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (relaxed auth, canned generator fallback)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Repositories ----
	var jobs repository.ResolutionJobRepository = pg.NewResolutionJobRepo(pool)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		jobs = red.NewJobRepoCacheDecorator(jobs, redisClient, cfg.Redis.TTL)
		logger.Info().Msg("job snapshot cache enabled")
	} else {
		logger.Warn().Msg("redis not configured; job snapshot cache disabled")
	}

	// ---- Content generator (Gemini -> OpenAI -> noop in dev) ----
	var gen adapter.ContentGenerator
	switch {
	case cfg.AI.GeminiKey != "":
		gen, err = aiAdapters.NewGeminiGenerator(ctx, cfg.AI.GeminiKey, cfg.AI.DefaultModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini generator")
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("content generator: Gemini")
	case cfg.AI.OpenAIKey != "":
		gen, err = aiAdapters.NewOpenAIGenerator(cfg.AI.OpenAIKey, cfg.AI.DefaultModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai generator")
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("content generator: OpenAI")
	case cfg.Runtime.Dev:
		gen = aiAdapters.NewNoopGenerator()
		logger.Warn().Msg("content generator: noop (dev mode, no provider key)")
	default:
		logger.Fatal().Msgf("no AI provider configured: set ai.gemini_key or ai.openai_key in %s", *cfgPath)
	}
	gen = aiAdapters.NewLimitedGenerator(gen, cfg.AI.ConcurrentLimit)

	// ---- Catalog ----
	store, err := catalog.NewRestStore(cfg.Catalog.BaseURL, cfg.Catalog.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("catalog store")
	}

	// ---- Use case ----
	runner := worker.NewRunner(ctx, logger)
	resolvers := seo.All(gen, store, cfg.Resolution.ItemDelay)
	resolutionUC := usecase.NewResolutionUseCase(jobs, resolvers, runner, logger)

	// ---- Stale job reaper ----
	txManager := pg.NewTxManager(pool)
	reaper := sched.NewReaper(cfg.Resolution.ReaperInterval, cfg.Resolution.StaleAfter, txManager, jobs, logger)
	go func() { _ = reaper.Run(ctx) }()

	// ---- Console API ----
	auth := web.NewAuthManager(cfg.Web.JWTSecret, consoleTokenTTL)
	srv := web.NewServer(resolutionUC, auth, logger)
	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Web.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", apiServer.Addr).Msg("console API listening")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("console API server")
		}
	}()

	// ---- Admin: metrics + health ----
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())
	adminMux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := pool.Ping(context.Background()); err != nil {
			http.Error(w, "db unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	adminServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Admin.Port),
		Handler:           adminMux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", adminServer.Addr).Msg("admin listening")
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("admin server")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = apiServer.Shutdown(shutdownCtx)
	_ = adminServer.Shutdown(shutdownCtx)

	// In-flight jobs keep their context until the grace period runs out;
	// only then are they cancelled, which fails them to a terminal state.
	drained := make(chan struct{})
	go func() {
		runner.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		logger.Info().Msg("all jobs drained, exiting")
	case <-time.After(drainGrace):
		logger.Warn().Dur("grace", drainGrace).Msg("drain grace period elapsed, cancelling in-flight jobs")
		cancel()
		<-drained
		logger.Info().Msg("in-flight jobs stopped, exiting")
	}
}
