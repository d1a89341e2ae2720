// Package activities holds the Temporal activity implementations the
// analysis workflow schedules: agent execution, webhook dispatch and
// result persistence.
package activities

import (
	"context"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/agents"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/cache"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/db"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/metrics"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/webhook"
)

// Activity names; the workflow schedules by string so it never imports
// this package's implementations.
const (
	ActivityRunAgent        = "RunAgent"
	ActivityDispatchWebhook = "DispatchWebhook"
	ActivityPersistAnalysis = "PersistAnalysis"
)

// RunAgentInput carries one agent invocation: the request plus the
// already-resolved prerequisite sections.
type RunAgentInput struct {
	Request  models.AnalysisRequest          `json:"request"`
	Section  string                          `json:"section"`
	Resolved map[string]models.SectionResult `json:"resolved,omitempty"`
}

// Activities bundles the worker-side dependencies. Store and results may
// be nil; persistence then degrades to a logged no-op.
type Activities struct {
	registry   *agents.Registry
	dispatcher *webhook.Dispatcher
	store      *db.Store
	results    *cache.ResultCache
	logger     *zap.Logger
}

func New(registry *agents.Registry, dispatcher *webhook.Dispatcher, store *db.Store, results *cache.ResultCache, logger *zap.Logger) *Activities {
	return &Activities{
		registry:   registry,
		dispatcher: dispatcher,
		store:      store,
		results:    results,
		logger:     logger,
	}
}

// RunAgent executes one agent. Failures come back as application errors
// typed with the failure kind so the workflow can decide the fallback
// reason without parsing messages. Every error is non-retryable: the
// single-attempt contract lives here, not in retry policy tuning.
func (a *Activities) RunAgent(ctx context.Context, in RunAgentInput) (models.SectionResult, error) {
	agent, err := a.registry.Get(in.Section)
	if err != nil {
		return models.SectionResult{}, temporal.NewNonRetryableApplicationError(
			err.Error(), string(agents.ErrKindSchema), err)
	}

	start := time.Now()
	res, err := agent.Run(ctx, in.Request, in.Resolved)
	metrics.AgentDuration.WithLabelValues(in.Section).Observe(time.Since(start).Seconds())

	if err != nil {
		classified := agents.Classify(in.Section, err)
		a.logger.Warn("agent failed",
			zap.String("section", in.Section),
			zap.String("kind", string(classified.Kind)),
			zap.Error(err))
		return models.SectionResult{}, temporal.NewNonRetryableApplicationError(
			classified.Error(), string(classified.Kind), classified)
	}

	if err := res.Validate(); err != nil {
		classified := agents.NewError(agents.ErrKindSchema, in.Section, err)
		a.logger.Warn("agent produced invalid section",
			zap.String("section", in.Section),
			zap.Error(err))
		return models.SectionResult{}, temporal.NewNonRetryableApplicationError(
			classified.Error(), string(agents.ErrKindSchema), classified)
	}

	metrics.AgentRuns.WithLabelValues(in.Section, string(res.Provenance)).Inc()
	return res, nil
}

// DispatchWebhook delivers the completion event. The workflow fires this
// on a disconnected context and never awaits it; a failure here is counted
// and logged, nothing more.
func (a *Activities) DispatchWebhook(ctx context.Context, event models.WebhookEvent) error {
	if err := a.dispatcher.Dispatch(ctx, event); err != nil {
		metrics.WebhookDeliveries.WithLabelValues("failure").Inc()
		a.logger.Warn("webhook dispatch failed",
			zap.String("subject", event.Subject),
			zap.Error(err))
		return err
	}
	metrics.WebhookDeliveries.WithLabelValues("success").Inc()
	return nil
}

// PersistAnalysis writes the finished analysis to Postgres and Redis.
// Both sinks are best-effort audit surfaces; a partial failure returns an
// error for visibility but the workflow result is already final.
func (a *Activities) PersistAnalysis(ctx context.Context, res models.AnalysisResult) error {
	metrics.CompositeScores.Observe(res.Composite.Score)
	if a.store != nil {
		if err := a.store.SaveAnalysis(ctx, res); err != nil {
			return err
		}
	}
	if a.results != nil {
		if err := a.results.Put(ctx, res); err != nil {
			return err
		}
	}
	return nil
}
