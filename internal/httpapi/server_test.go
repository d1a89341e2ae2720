package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/mocks"
	"go.uber.org/zap/zaptest"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/agents"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/cache"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/scoring"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/workflows"
)

func testTemplate() workflows.PlanTemplate {
	return workflows.PlanTemplate{
		Specs:          []agents.Spec{{Name: "clinical", Timeout: 5 * time.Second}},
		Weights:        scoring.Weights{"clinical": 1.0},
		Penalty:        scoring.DefaultPenalty(),
		GlobalDeadline: time.Minute,
	}
}

func testResult(requestID string) models.AnalysisResult {
	return models.AnalysisResult{
		RequestID: requestID,
		Subject:   "Aspirin",
		Context:   "Migraine",
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Composite: models.CompositeScore{Score: 64.2},
		Narrative: "EXECUTIVE SUMMARY",
	}
}

func newTestServer(t *testing.T, tc *mocks.Client, results *cache.ResultCache) *httptest.Server {
	t.Helper()
	s := NewServer(tc, "analysis", testTemplate(), results, nil, zaptest.NewLogger(t))
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func newTestCache(t *testing.T) *cache.ResultCache {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return cache.NewResultCache(rdb, time.Minute, zaptest.NewLogger(t))
}

func TestAnalyzeRunsWorkflow(t *testing.T) {
	run := &mocks.WorkflowRun{}
	run.On("Get", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ptr := args.Get(1).(*models.AnalysisResult)
			*ptr = testResult("req-1")
		}).
		Return(nil)

	tc := &mocks.Client{}
	tc.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(run, nil)

	srv := newTestServer(t, tc, nil)
	resp, err := http.Post(srv.URL+"/analyze", "application/json",
		strings.NewReader(`{"request_id":"req-1","subject":"Aspirin","context":"Migraine"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got models.AnalysisResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "req-1", got.RequestID)
	assert.InDelta(t, 64.2, got.Composite.Score, 1e-9)
	tc.AssertCalled(t, "ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyzeRejectsMissingSubject(t *testing.T) {
	srv := newTestServer(t, &mocks.Client{}, nil)

	resp, err := http.Post(srv.URL+"/analyze", "application/json",
		strings.NewReader(`{"context":"Migraine"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalyzeReplaysCachedResult(t *testing.T) {
	results := newTestCache(t)
	require.NoError(t, results.Put(context.Background(), testResult("req-9")))

	tc := &mocks.Client{} // no expectations: a hit must never start a workflow
	srv := newTestServer(t, tc, results)

	resp, err := http.Post(srv.URL+"/analyze", "application/json",
		strings.NewReader(`{"request_id":"req-9","subject":"Aspirin","context":"Migraine"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got models.AnalysisResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "req-9", got.RequestID)
	tc.AssertNotCalled(t, "ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetAnalysisNotFound(t *testing.T) {
	srv := newTestServer(t, &mocks.Client{}, newTestCache(t))

	resp, err := http.Get(srv.URL + "/analyses/unknown")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &mocks.Client{}, nil)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
