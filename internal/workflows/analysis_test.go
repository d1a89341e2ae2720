package workflows

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
	"go.uber.org/zap"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/activities"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/agents"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/metrics"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/scoring"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/synthetic"
)

func testPlan() AnalysisPlan {
	reg := agents.NewRegistry(nil, agents.Timeouts{Default: 5 * time.Second}, zap.NewNop())
	return AnalysisPlan{
		Request: models.AnalysisRequest{
			RequestID: "req-test-1",
			Subject:   "Aspirin",
			Context:   "Migraine",
		},
		Specs:          reg.Specs(),
		Weights:        scoring.DefaultWeights(),
		Penalty:        scoring.DefaultPenalty(),
		GlobalDeadline: time.Minute,
		WebhookURL:     "http://hooks.internal/analysis",
	}
}

// liveResult builds a shaped section and marks it live, standing in for
// real source data in the activity mocks.
func liveResult(t *testing.T, section string, req models.AnalysisRequest) models.SectionResult {
	t.Helper()
	res, err := synthetic.Generate(section, req)
	require.NoError(t, err)
	res.Provenance = models.ProvenanceLive
	return res
}

type recorder struct {
	mu       sync.Mutex
	events   []models.WebhookEvent
	persists []models.AnalysisResult
	inputs   []activities.RunAgentInput
}

func (r *recorder) recordEvent(e models.WebhookEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) recordPersist(res models.AnalysisResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.persists = append(r.persists, res)
}

func (r *recorder) recordInput(in activities.RunAgentInput) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, in)
}

// runAnalysis wires the three activity mocks and executes the workflow to
// completion. runAgent decides per-section live success or typed failure.
func runAnalysis(t *testing.T, plan AnalysisPlan, rec *recorder,
	runAgent func(in activities.RunAgentInput) (models.SectionResult, error),
	webhookErr error,
) models.AnalysisResult {
	t.Helper()

	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	env.RegisterActivityWithOptions(
		func(ctx context.Context, in activities.RunAgentInput) (models.SectionResult, error) {
			rec.recordInput(in)
			return runAgent(in)
		},
		activity.RegisterOptions{Name: activities.ActivityRunAgent},
	)
	env.RegisterActivityWithOptions(
		func(ctx context.Context, e models.WebhookEvent) error {
			rec.recordEvent(e)
			return webhookErr
		},
		activity.RegisterOptions{Name: activities.ActivityDispatchWebhook},
	)
	env.RegisterActivityWithOptions(
		func(ctx context.Context, res models.AnalysisResult) error {
			rec.recordPersist(res)
			return nil
		},
		activity.RegisterOptions{Name: activities.ActivityPersistAnalysis},
	)

	env.ExecuteWorkflow(AnalysisWorkflow, plan)
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var res models.AnalysisResult
	require.NoError(t, env.GetWorkflowResult(&res))
	return res
}

func allLive(t *testing.T, plan AnalysisPlan) func(activities.RunAgentInput) (models.SectionResult, error) {
	return func(in activities.RunAgentInput) (models.SectionResult, error) {
		return liveResult(t, in.Section, plan.Request), nil
	}
}

func TestAnalysisAllAgentsLive(t *testing.T) {
	plan := testPlan()
	rec := &recorder{}

	res := runAnalysis(t, plan, rec, allLive(t, plan), nil)

	assert.Equal(t, "req-test-1", res.RequestID)
	assert.Len(t, res.Sections, len(plan.Specs))
	for name, s := range res.Sections {
		assert.Equal(t, models.ProvenanceLive, s.Provenance, "section %s", name)
	}
	assert.Greater(t, res.Composite.Score, 0.0)
	assert.LessOrEqual(t, res.Composite.Score, 100.0)
	assert.NotContains(t, res.Narrative, "[modeled]")

	require.Len(t, rec.persists, 1)
	require.Len(t, rec.events, 1)
	ev := rec.events[0]
	assert.Equal(t, models.EventAnalysisCompleted, ev.EventType)
	assert.Equal(t, "completed", ev.Status)
	assert.InDelta(t, res.Composite.Score, ev.CompositeScore, 1e-9)
}

func TestNarrativeFollowsSectionOrder(t *testing.T) {
	plan := testPlan()
	rec := &recorder{}

	res := runAnalysis(t, plan, rec, allLive(t, plan), nil)

	last := -1
	for _, section := range plan.Order() {
		pos := strings.Index(res.Narrative, "## "+headingFor(section))
		require.GreaterOrEqual(t, pos, 0, "missing heading for %s", section)
		assert.Greater(t, pos, last, "section %s out of order", section)
		last = pos
	}
}

func headingFor(section string) string {
	// Headings come from the narrative title table; probing via a synthetic
	// render would be circular, so match on the stable title prefix.
	titles := map[string]string{
		models.SectionClinical:   "Clinical",
		models.SectionLiterature: "Literature",
		models.SectionMarket:     "Market",
		models.SectionPatent:     "Patent",
		models.SectionRegulatory: "Regulatory",
		models.SectionSafety:     "Safety",
		models.SectionOperations: "Operations",
		models.SectionMOA:        "Mechanism of Action",
		models.SectionPPI:        "Protein Interaction",
		models.SectionSimilarity: "Disease Similarity",
		models.SectionHypothesis: "Research Hypotheses",
	}
	return titles[section]
}

func TestSingleAgentFailureFallsBack(t *testing.T) {
	plan := testPlan()
	rec := &recorder{}

	res := runAnalysis(t, plan, rec, func(in activities.RunAgentInput) (models.SectionResult, error) {
		if in.Section == models.SectionPatent {
			return models.SectionResult{}, temporal.NewNonRetryableApplicationError(
				"patents endpoint unreachable", string(agents.ErrKindNetwork), nil)
		}
		return liveResult(t, in.Section, plan.Request), nil
	}, nil)

	assert.Equal(t, models.ProvenanceSynthetic, res.Sections[models.SectionPatent].Provenance)
	assert.Equal(t, models.ProvenanceLive, res.Sections[models.SectionClinical].Provenance)
	assert.Len(t, res.Sections, len(plan.Specs))
	assert.Contains(t, res.Narrative, "[modeled]")
	assert.Greater(t, res.Composite.Score, 0.0)
}

func TestSchemaMismatchFallsBack(t *testing.T) {
	plan := testPlan()
	rec := &recorder{}

	res := runAnalysis(t, plan, rec, func(in activities.RunAgentInput) (models.SectionResult, error) {
		if in.Section == models.SectionSafety {
			return models.SectionResult{}, temporal.NewNonRetryableApplicationError(
				"unexpected FAERS shape", string(agents.ErrKindSchema), nil)
		}
		return liveResult(t, in.Section, plan.Request), nil
	}, nil)

	safety := res.Sections[models.SectionSafety]
	assert.Equal(t, models.ProvenanceSynthetic, safety.Provenance)
	require.NotNil(t, safety.Payload.Safety)
	assert.GreaterOrEqual(t, safety.Payload.Safety.TotalSignals, 0)
}

func TestTotalFailureIsFullySyntheticAndDeterministic(t *testing.T) {
	plan := testPlan()
	failAll := func(in activities.RunAgentInput) (models.SectionResult, error) {
		return models.SectionResult{}, temporal.NewNonRetryableApplicationError(
			"down", string(agents.ErrKindNetwork), nil)
	}

	first := runAnalysis(t, plan, &recorder{}, failAll, nil)
	second := runAnalysis(t, plan, &recorder{}, failAll, nil)

	for name, s := range first.Sections {
		assert.Equal(t, models.ProvenanceSynthetic, s.Provenance, "section %s", name)
	}
	assert.Equal(t, first.Composite, second.Composite)
	assert.Equal(t, first.Narrative, second.Narrative)
	assert.Greater(t, first.Composite.Score, 0.0)
}

func TestWebhookFailureDoesNotAffectResult(t *testing.T) {
	plan := testPlan()
	rec := &recorder{}

	res := runAnalysis(t, plan, rec, allLive(t, plan), errors.New("endpoint down"))

	assert.Len(t, res.Sections, len(plan.Specs))
	assert.Greater(t, res.Composite.Score, 0.0)
	require.Len(t, rec.events, 1)
}

func TestNoWebhookWhenUnconfigured(t *testing.T) {
	plan := testPlan()
	plan.WebhookURL = ""
	rec := &recorder{}

	runAnalysis(t, plan, rec, allLive(t, plan), nil)

	assert.Empty(t, rec.events)
}

func TestDependentsReceiveResolvedSections(t *testing.T) {
	plan := testPlan()
	rec := &recorder{}

	runAnalysis(t, plan, rec, allLive(t, plan), nil)

	var ppiIn, hypIn *activities.RunAgentInput
	rec.mu.Lock()
	for i := range rec.inputs {
		switch rec.inputs[i].Section {
		case models.SectionPPI:
			ppiIn = &rec.inputs[i]
		case models.SectionHypothesis:
			hypIn = &rec.inputs[i]
		}
	}
	rec.mu.Unlock()

	require.NotNil(t, ppiIn)
	assert.Contains(t, ppiIn.Resolved, models.SectionMOA)

	require.NotNil(t, hypIn)
	for _, dep := range []string{
		models.SectionMOA, models.SectionPPI, models.SectionSimilarity,
		models.SectionClinical, models.SectionLiterature,
		models.SectionSafety, models.SectionMarket,
	} {
		assert.Contains(t, hypIn.Resolved, dep, "hypothesis missing %s", dep)
	}
}

func TestGlobalDeadlineForcesSyntheticSubstitution(t *testing.T) {
	// Agent timeouts far above the global deadline so the per-activity
	// timeout can never resolve the sections first.
	reg := agents.NewRegistry(nil, agents.Timeouts{Default: 10 * time.Minute}, zap.NewNop())
	plan := testPlan()
	plan.Specs = reg.Specs()
	plan.GlobalDeadline = 30 * time.Second

	before := make(map[string]float64, len(plan.Specs))
	for _, spec := range plan.Specs {
		before[spec.Name] = testutil.ToFloat64(
			metrics.AgentFallbacks.WithLabelValues(spec.Name, string(agents.ErrKindTimeout)))
	}

	rec := &recorder{}
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	env.RegisterActivityWithOptions(
		func(ctx context.Context, in activities.RunAgentInput) (models.SectionResult, error) {
			return liveResult(t, in.Section, plan.Request), nil
		},
		activity.RegisterOptions{Name: activities.ActivityRunAgent},
	)
	env.RegisterActivityWithOptions(
		func(ctx context.Context, e models.WebhookEvent) error {
			rec.recordEvent(e)
			return nil
		},
		activity.RegisterOptions{Name: activities.ActivityDispatchWebhook},
	)
	env.RegisterActivityWithOptions(
		func(ctx context.Context, res models.AnalysisResult) error {
			rec.recordPersist(res)
			return nil
		},
		activity.RegisterOptions{Name: activities.ActivityPersistAnalysis},
	)

	// Every agent call hangs past the deadline; the live result, if it ever
	// lands, must be discarded by the write-once map.
	env.OnActivity(activities.ActivityRunAgent, mock.Anything, mock.Anything).
		After(time.Minute).
		Return(liveResult(t, models.SectionClinical, plan.Request), nil)

	env.ExecuteWorkflow(AnalysisWorkflow, plan)
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var res models.AnalysisResult
	require.NoError(t, env.GetWorkflowResult(&res))

	assert.Len(t, res.Sections, len(plan.Specs))
	for name, s := range res.Sections {
		assert.Equal(t, models.ProvenanceSynthetic, s.Provenance, "section %s", name)
	}
	assert.GreaterOrEqual(t, res.Composite.Score, 0.0)
	assert.LessOrEqual(t, res.Composite.Score, 100.0)
	assert.Contains(t, res.Narrative, "[modeled]")
	require.Len(t, rec.persists, 1)

	// Exactly one timeout fallback per section: the cancelled coroutines
	// must not count their discarded substitutes a second time.
	for _, spec := range plan.Specs {
		after := testutil.ToFloat64(
			metrics.AgentFallbacks.WithLabelValues(spec.Name, string(agents.ErrKindTimeout)))
		assert.InDelta(t, 1.0, after-before[spec.Name], 1e-9, "fallback count for %s", spec.Name)
	}
}

func TestInvalidRequestFailsWorkflow(t *testing.T) {
	plan := testPlan()
	plan.Request.Subject = ""

	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.ExecuteWorkflow(AnalysisWorkflow, plan)

	require.True(t, env.IsWorkflowCompleted())
	assert.Error(t, env.GetWorkflowError())
}
