// Command taskrunner is the bookmark pipeline's service entrypoint: it
// wires the Postgres-backed store, the five pipeline agents, the Task
// Manager, and the discovery/admin/health HTTP surfaces into one process,
// then blocks until SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bookmarkhub/a2a/internal/a2a"
	"github.com/bookmarkhub/a2a/internal/admin"
	"github.com/bookmarkhub/a2a/internal/agents/categorization"
	"github.com/bookmarkhub/a2a/internal/agents/embedding"
	"github.com/bookmarkhub/a2a/internal/agents/enrichment"
	"github.com/bookmarkhub/a2a/internal/agents/importagent"
	"github.com/bookmarkhub/a2a/internal/agents/validation"
	"github.com/bookmarkhub/a2a/internal/ai"
	"github.com/bookmarkhub/a2a/internal/bookmarks"
	"github.com/bookmarkhub/a2a/internal/browserpool"
	"github.com/bookmarkhub/a2a/internal/config"
	"github.com/bookmarkhub/a2a/internal/discovery"
	"github.com/bookmarkhub/a2a/internal/embedstore"
	"github.com/bookmarkhub/a2a/internal/observability"
	"github.com/bookmarkhub/a2a/internal/progress"
	"github.com/bookmarkhub/a2a/internal/ratelimit"
	"github.com/bookmarkhub/a2a/internal/registry"
	"github.com/bookmarkhub/a2a/internal/store"
	"github.com/bookmarkhub/a2a/internal/taskmanager"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	cfg := config.Load()

	obs, err := observability.NewObservability(observability.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		JaegerEndpoint: cfg.JaegerEndpoint,
		PrometheusPort: cfg.PrometheusPort,
		Environment:    cfg.Environment,
		LogLevel:       cfg.LogLevel,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to initialize observability: %v", err))
	}
	logger := obs.Logger
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			logger.ErrorContext(shutdownCtx, "error shutting down observability", "error", err)
		}
	}()

	db, err := store.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.ErrorContext(ctx, "failed to open store", "error", err)
		panic(err)
	}
	defer db.Close()

	if err := store.Migrate(db.DB.DB); err != nil {
		logger.ErrorContext(ctx, "failed to apply migrations", "error", err)
		panic(err)
	}

	taskStore := store.NewTaskStore(db)
	artifactStore := store.NewArtifactStore(db)
	messageLog := store.NewMessageLog(db, logger)

	reg := registry.New(time.Duration(cfg.CapabilityHeartbeatSeconds) * time.Second)
	hub := progress.New(taskStore.Load, logger)
	tracer := observability.NewTraceManager(cfg.ServiceName)

	metrics, err := observability.NewMetricsManager(obs.Meter)
	if err != nil {
		logger.ErrorContext(ctx, "failed to initialize metrics", "error", err)
		panic(err)
	}

	manager := taskmanager.New(taskStore, artifactStore, messageLog, reg, hub, a2a.DefaultWorkflows(), tracer, metrics, logger)

	repo := bookmarks.NewRepository(db)

	vectorStore, err := embedstore.Open(cfg.EmbedStorePath, cfg.EmbeddingDims)
	if err != nil {
		logger.ErrorContext(ctx, "failed to open embedding store", "error", err)
		panic(err)
	}

	var completion ai.CompletionClient
	if cfg.AnthropicAPIKey != "" {
		completion = ai.NewAnthropicClient(ai.AnthropicConfig{APIKey: cfg.AnthropicAPIKey, Model: cfg.AnthropicModel}, logger)
	} else {
		logger.WarnContext(ctx, "ANTHROPIC_API_KEY not set, enrichment will use the mock completion client")
		completion = ai.NewMockCompletionClient()
	}
	embedder := ai.NewLocalVectorClient(cfg.EmbeddingDims)

	pool := browserpool.New(int64(cfg.BrowserPoolCapacity))
	limiter := ratelimit.New(cfg.EnrichmentRateLimitPerMinute)

	agents := map[string]a2a.Agent{
		a2a.AgentImport:         importagent.New(repo, importagent.DefaultChunkSize, logger),
		a2a.AgentValidation:     validation.New(repo, pool, logger),
		a2a.AgentEnrichment:     enrichment.New(repo, completion, limiter, cfg.EnrichmentConcurrency, logger),
		a2a.AgentCategorization: categorization.New(repo, logger),
		a2a.AgentEmbedding:      embedding.New(repo, embedder, vectorStore, cfg.EmbeddingBatchSize, cfg.EmbeddingParallelBatches, logger),
	}
	for agentType, agent := range agents {
		card := agent.Capabilities()
		card.AgentType = agentType
		card.Version = cfg.ServiceVersion
		reg.Register(agent, card)
		logger.InfoContext(ctx, "agent registered", "agent_type", agentType)
	}

	var required []string
	for _, workflow := range a2a.DefaultWorkflows() {
		required = append(required, workflow...)
	}
	if err := reg.EnsureRegistered(required); err != nil {
		logger.ErrorContext(ctx, "startup check failed: a workflow agent is not registered", "error", err)
		panic(err)
	}

	discoveryServer := discovery.NewServer(reg)
	adminServer := admin.NewServer(manager, taskStore, artifactStore, messageLog, hub)

	healthServer := observability.NewHealthServer(cfg.HealthPort, cfg.ServiceName, cfg.ServiceVersion)
	healthServer.AddChecker("store", observability.NewBasicHealthChecker("store", func(ctx context.Context) error {
		return db.PingContext(ctx)
	}))
	for agentType := range agents {
		agentType := agentType
		healthServer.AddChecker(agentType, observability.NewBasicHealthChecker(agentType, func(ctx context.Context) error {
			_, err := reg.Card(agentType)
			return err
		}))
	}

	discoveryHTTP := &http.Server{Addr: ":" + cfg.DiscoveryPort, Handler: discoveryServer.Handler()}
	adminHTTP := &http.Server{Addr: ":" + cfg.AdminPort, Handler: adminServer.Handler()}

	go func() {
		logger.InfoContext(ctx, "discovery surface listening", "addr", discoveryHTTP.Addr)
		if err := discoveryHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorContext(ctx, "discovery server failed", "error", err)
		}
	}()
	go func() {
		logger.InfoContext(ctx, "admin surface listening", "addr", adminHTTP.Addr)
		if err := adminHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorContext(ctx, "admin server failed", "error", err)
		}
	}()
	go func() {
		logger.InfoContext(ctx, "health surface listening", "port", cfg.HealthPort)
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.ErrorContext(ctx, "health server failed", "error", err)
		}
	}()

	heartbeat := time.NewTicker(time.Duration(cfg.CapabilityHeartbeatSeconds) * time.Second / 2)
	defer heartbeat.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-heartbeat.C:
				for agentType := range agents {
					if err := reg.Heartbeat(agentType); err != nil {
						logger.WarnContext(ctx, "heartbeat failed", "agent_type", agentType, "error", err)
					}
				}
				metrics.UpdateSystemMetrics(ctx)
			}
		}
	}()

	logger.InfoContext(ctx, "taskrunner started", "service", cfg.ServiceName, "version", cfg.ServiceVersion)
	<-ctx.Done()
	logger.InfoContext(context.Background(), "shutting down taskrunner")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	_ = discoveryHTTP.Shutdown(shutdownCtx)
	_ = adminHTTP.Shutdown(shutdownCtx)
	_ = healthServer.Shutdown(shutdownCtx)
}
