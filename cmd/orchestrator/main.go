// Command orchestrator runs the drug repurposing analysis service: the
// Temporal worker executing agent activities, the HTTP API that starts
// runs, and the Prometheus scrape endpoint.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/activities"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/agents"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/cache"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/config"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/db"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/httpapi"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/metrics"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/sources"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/webhook"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/workflows"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("orchestrator failed", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfg, v, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	src := sources.NewClient(cfg.Sources.Endpoints, cfg.Sources.RateRPM, logger)
	config.Watch(v, logger, src.SetRateLimits)

	var store *db.Store
	if cfg.Postgres.Host != "" {
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User,
			cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)
		store, err = db.Open(startupCtx, dsn, logger)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
	} else {
		logger.Warn("postgres not configured, analyses will not be persisted")
	}

	var results *cache.ResultCache
	if cfg.Redis.Addr != "" {
		results, err = cache.Connect(startupCtx, cfg.Redis.Addr, cfg.Redis.CacheTTL, logger)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer results.Close()
	} else {
		logger.Warn("redis not configured, idempotent replay disabled")
	}

	registry := agents.NewRegistry(src, agents.Timeouts{
		Default:  cfg.Orchestration.DefaultAgentTimeout,
		PerAgent: cfg.Orchestration.AgentTimeouts,
	}, logger)

	template := workflows.PlanTemplate{
		Specs:          registry.Specs(),
		Weights:        cfg.Scoring.Weights,
		Penalty:        cfg.Scoring.Penalty,
		GlobalDeadline: cfg.Orchestration.GlobalDeadline,
		WebhookURL:     cfg.Webhook.URL,
	}
	if err := template.Validate(); err != nil {
		return fmt.Errorf("invalid analysis plan: %w", err)
	}

	tc, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		return fmt.Errorf("dial temporal: %w", err)
	}
	defer tc.Close()

	dispatcher := webhook.NewDispatcher(cfg.Webhook.URL, cfg.Webhook.Timeout, logger)
	acts := activities.New(registry, dispatcher, store, results, logger)

	w := worker.New(tc, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(workflows.AnalysisWorkflow, workflow.RegisterOptions{Name: "AnalysisWorkflow"})
	w.RegisterActivityWithOptions(acts.RunAgent, activity.RegisterOptions{Name: activities.ActivityRunAgent})
	w.RegisterActivityWithOptions(acts.DispatchWebhook, activity.RegisterOptions{Name: activities.ActivityDispatchWebhook})
	w.RegisterActivityWithOptions(acts.PersistAnalysis, activity.RegisterOptions{Name: activities.ActivityPersistAnalysis})

	if err := w.Start(); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	defer w.Stop()

	metricsSrv := &http.Server{Addr: cfg.Server.MetricsAddr, Handler: metrics.Handler()}
	go func() {
		logger.Info("metrics listening", zap.String("addr", cfg.Server.MetricsAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	api := httpapi.NewServer(tc, cfg.Temporal.TaskQueue, template, results, store, logger)
	apiSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("api listening", zap.String("addr", cfg.Server.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("api server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	logger.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("api shutdown", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics shutdown", zap.Error(err))
	}
	return nil
}
