package workflows

import (
	"errors"
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/agents"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/metrics"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/narrative"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/scoring"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/synthetic"
)

// Activity names the workflow schedules by string, mirroring the
// registrations in the activities package.
const (
	activityRunAgent        = "RunAgent"
	activityDispatchWebhook = "DispatchWebhook"
	activityPersistAnalysis = "PersistAnalysis"
)

// AnalysisWorkflow runs one full analysis: every agent launches in its own
// coroutine and blocks until its prerequisite sections resolve, each
// failure substitutes a deterministic synthetic section, and once all
// sections exist the composite score, narrative and final result are
// assembled inline. The workflow never fails for agent-level reasons; only
// an invalid plan or an inconsistent assembly aborts it.
func AnalysisWorkflow(ctx workflow.Context, plan AnalysisPlan) (models.AnalysisResult, error) {
	if err := plan.Validate(); err != nil {
		return models.AnalysisResult{}, err
	}

	logger := workflow.GetLogger(ctx)
	start := workflow.Now(ctx)
	logger.Info("analysis started",
		"request_id", plan.Request.RequestID,
		"subject", plan.Request.Subject,
		"context", plan.Request.Context,
		"agents", len(plan.Specs))

	// Write-once section map shared by the agent coroutines. Temporal
	// coroutines are cooperative, so plain map access is safe.
	results := make(map[string]models.SectionResult, len(plan.Specs))
	pending := len(plan.Specs)

	agentCtx, cancelAgents := workflow.WithCancel(ctx)

	for _, s := range plan.Specs {
		spec := s
		workflow.Go(agentCtx, func(gctx workflow.Context) {
			res := runOne(gctx, plan, spec, results)
			if _, done := results[spec.Name]; done {
				// Deadline substitution won the race; drop the late result.
				return
			}
			results[spec.Name] = res
			pending--
		})
	}

	completed, err := workflow.AwaitWithTimeout(ctx, plan.GlobalDeadline, func() bool {
		return pending == 0
	})
	if err != nil {
		return models.AnalysisResult{}, err
	}
	if !completed {
		cancelAgents()
		for _, spec := range plan.Specs {
			if _, done := results[spec.Name]; done {
				continue
			}
			logger.Warn("global deadline reached, substituting synthetic section",
				"section", spec.Name)
			countFallback(ctx, spec.Name, string(agents.ErrKindTimeout))
			sub, serr := synthetic.Generate(spec.Name, plan.Request)
			if serr != nil {
				return models.AnalysisResult{}, fmt.Errorf("deadline substitution for %s: %w", spec.Name, serr)
			}
			results[spec.Name] = sub
		}
	} else {
		cancelAgents()
	}

	if err := checkComplete(plan, results); err != nil {
		return models.AnalysisResult{}, err
	}

	composite := scoring.Compute(plan.Weights, plan.Penalty, results)
	report := narrative.Render(plan.Request, plan.Order(), results, composite)

	result := models.AnalysisResult{
		RequestID: plan.Request.RequestID,
		Subject:   plan.Request.Subject,
		Context:   plan.Request.Context,
		Timestamp: workflow.Now(ctx).UTC(),
		Sections:  results,
		Composite: composite,
		Narrative: report,
	}

	// Completion event goes out on a disconnected context and is never
	// awaited: delivery failures cannot touch the result.
	if plan.WebhookURL != "" {
		detached, _ := workflow.NewDisconnectedContext(ctx)
		detached = workflow.WithActivityOptions(detached, workflow.ActivityOptions{
			StartToCloseTimeout: 15 * time.Second,
			RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
		})
		workflow.ExecuteActivity(detached, activityDispatchWebhook, models.NewCompletionEvent(result))
	}

	persistCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 2},
	})
	if err := workflow.ExecuteActivity(persistCtx, activityPersistAnalysis, result).Get(ctx, nil); err != nil {
		// Persistence is an audit surface; the analysis itself is done.
		logger.Warn("failed to persist analysis", "error", err)
	}

	logger.Info("analysis completed",
		"request_id", plan.Request.RequestID,
		"composite", composite.Score,
		"elapsed", workflow.Now(ctx).Sub(start).String())
	return result, nil
}

// runOne waits for the agent's prerequisites, executes it as an activity,
// and falls back to the deterministic synthetic section on any failure.
func runOne(ctx workflow.Context, plan AnalysisPlan, spec agents.Spec, results map[string]models.SectionResult) models.SectionResult {
	logger := workflow.GetLogger(ctx)

	depsReady, err := workflow.AwaitWithTimeout(ctx, plan.GlobalDeadline, func() bool {
		for _, dep := range spec.DependsOn {
			if _, ok := results[dep]; !ok {
				return false
			}
		}
		return true
	})
	if err != nil || !depsReady {
		return fallback(ctx, plan, results, spec.Name, string(agents.ErrKindTimeout))
	}

	resolved := make(map[string]models.SectionResult, len(spec.DependsOn))
	for _, dep := range spec.DependsOn {
		resolved[dep] = results[dep]
	}

	actx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: spec.Timeout,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})

	var res models.SectionResult
	err = workflow.ExecuteActivity(actx, activityRunAgent, activityInput{
		Request:  plan.Request,
		Section:  spec.Name,
		Resolved: resolved,
	}).Get(ctx, &res)
	if err != nil {
		kind := failureKind(err)
		logger.Warn("agent failed, substituting synthetic section",
			"section", spec.Name,
			"kind", kind)
		return fallback(ctx, plan, results, spec.Name, kind)
	}
	return res
}

// activityInput mirrors activities.RunAgentInput; duplicated here so the
// workflow package stays import-free of worker-side code.
type activityInput struct {
	Request  models.AnalysisRequest          `json:"request"`
	Section  string                          `json:"section"`
	Resolved map[string]models.SectionResult `json:"resolved,omitempty"`
}

func fallback(ctx workflow.Context, plan AnalysisPlan, results map[string]models.SectionResult, section, kind string) models.SectionResult {
	// Cancelled coroutines land here after the deadline path has already
	// published and counted the section; count only a first-time fallback.
	if _, done := results[section]; !done {
		countFallback(ctx, section, kind)
	}
	res, err := synthetic.Generate(section, plan.Request)
	if err != nil {
		// Unreachable for plan-validated sections; panic surfaces the bug
		// as a workflow task failure rather than a silent hole.
		panic(fmt.Sprintf("synthetic generation for %s: %v", section, err))
	}
	return res
}

// countFallback increments the fallback counter, skipped on replay so
// history re-execution does not double-count.
func countFallback(ctx workflow.Context, section, kind string) {
	if !workflow.IsReplaying(ctx) {
		metrics.AgentFallbacks.WithLabelValues(section, kind).Inc()
	}
}

// failureKind digs the taxonomy kind out of an activity failure. Activity
// timeouts and cancellations map to the timeout kind; typed application
// errors carry their kind verbatim.
func failureKind(err error) string {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) && appErr.Type() != "" {
		return appErr.Type()
	}
	var timeoutErr *temporal.TimeoutError
	if errors.As(err, &timeoutErr) {
		return string(agents.ErrKindTimeout)
	}
	var canceledErr *temporal.CanceledError
	if errors.As(err, &canceledErr) {
		return string(agents.ErrKindTimeout)
	}
	return string(agents.ErrKindNetwork)
}

// checkComplete enforces the assembly invariant: exactly one section per
// planned agent, none extra, each internally valid.
func checkComplete(plan AnalysisPlan, sections map[string]models.SectionResult) error {
	if len(sections) != len(plan.Specs) {
		return fmt.Errorf("assembly: %d sections for %d agents", len(sections), len(plan.Specs))
	}
	for _, spec := range plan.Specs {
		s, ok := sections[spec.Name]
		if !ok {
			return fmt.Errorf("assembly: section %q missing", spec.Name)
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("assembly: section %q invalid: %w", spec.Name, err)
		}
	}
	return nil
}
