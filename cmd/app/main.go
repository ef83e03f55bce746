// File: cmd/app/main.go
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

	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/config"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain/ports/adapter"
	agenthost "github.com/ava6969/emergent-ai-test-bed-sub000/internal/infra/adapters/agenthost"
	aiAdapters "github.com/ava6969/emergent-ai-test-bed-sub000/internal/infra/adapters/ai"
	searchAdapters "github.com/ava6969/emergent-ai-test-bed-sub000/internal/infra/adapters/search"
	pg "github.com/ava6969/emergent-ai-test-bed-sub000/internal/infra/db/postgres"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/infra/logging"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/infra/metrics"
	red "github.com/ava6969/emergent-ai-test-bed-sub000/internal/infra/redis"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/infra/scheduler"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/infra/web"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/infra/worker"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/registry"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/usecase"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, looser defaults)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("postgres schema")
	}

	personaRepo := pg.NewPostgresPersonaRepo(pool)
	goalRepo := pg.NewPostgresGoalRepo(pool)
	orgRepo := pg.NewPostgresOrganizationRepo(pool)

	// ---- Redis (optional; only rate limiting depends on it) ----
	var limiter web.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		limiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Warn().Msg("redis.url not set; generation rate limiting disabled")
	}

	// ---- Completion providers ----
	providers := map[string]adapter.CompletionAdapter{}
	if cfg.AI.OpenAIKey != "" {
		oa, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel, cfg.AI.OpenAIBaseURL, cfg.AI.MaxOutputTokens)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter")
		}
		providers["openai"] = oa
	}
	if cfg.AI.GeminiKey != "" {
		ga, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel, cfg.AI.MaxOutputTokens)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter")
		}
		providers["gemini"] = ga
	}
	if len(providers) == 0 {
		logger.Fatal().Msgf("no completion provider configured: set ai.openai_key or ai.gemini_key in %s", *cfgPath)
	}
	defaultProvider := "openai"
	if _, ok := providers["openai"]; !ok {
		defaultProvider = "gemini"
	}
	ai := aiAdapters.NewLimitedCompletion(
		aiAdapters.NewMultiAdapter(defaultProvider, providers, nil),
		cfg.AI.ConcurrentLimit,
	)

	// ---- Agent host + enrichment ----
	agent, err := agenthost.NewHTTPAdapter(cfg.AgentHost.BaseURL, cfg.AgentHost.APIKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("agent host adapter")
	}
	var search adapter.SearchAdapter
	if cfg.Enrichment.APIKey != "" {
		search, err = searchAdapters.NewExaAdapter(cfg.Enrichment.APIKey, cfg.Enrichment.BaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("search adapter")
		}
	} else {
		logger.Warn().Msg("enrichment.api_key not set; persona enrichment unavailable")
	}

	// ---- Registries, pool, use cases ----
	jobs := registry.NewJobRegistry()
	runs := registry.NewSimulationRegistry()

	pool2 := worker.NewPool(cfg.Generation.Workers, logger)
	pool2.Start(ctx)
	defer pool2.Stop()

	genUC := usecase.NewGenerationUseCase(jobs, ai, search, personaRepo, goalRepo, orgRepo,
		pool2, cfg.Generation, cfg.AI, cfg.Enrichment, logger)
	simUC := usecase.NewSimulationUseCase(runs, personaRepo, goalRepo, agent, ai,
		pool2, cfg.Simulation, cfg.AI, cfg.AgentHost, logger)

	// ---- Retention sweeper ----
	sweeper := scheduler.NewScheduler(cfg.Retention.PurgeInterval, logger)
	sweeper.Register("generation_jobs", cfg.Retention.JobTTL, jobs)
	sweeper.Register("simulation_runs", cfg.Retention.RunTTL, runs)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	// ---- HTTP ----
	srv := web.NewServer(genUC, simUC, personaRepo, goalRepo, orgRepo, limiter,
		cfg.Generation, cfg.Server.APIKey, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
