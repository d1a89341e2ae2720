package agents

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/sources"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/synthetic"
)

func testRequest() models.AnalysisRequest {
	return models.AnalysisRequest{RequestID: "r1", Subject: "Aspirin", Context: "Migraine"}
}

func sourcesFor(t *testing.T, srv *httptest.Server) *sources.Client {
	t.Helper()
	return sources.NewClient(sources.Endpoints{
		ClinicalTrials: srv.URL,
		EuropePMC:      srv.URL,
		PatentsView:    srv.URL,
		OpenFDA:        srv.URL,
	}, nil, zaptest.NewLogger(t))
}

const ctgovFixture = `{"studies":[
  {"protocolSection":{
    "identificationModule":{"nctId":"NCT001","briefTitle":"Aspirin for Migraine Prevention"},
    "statusModule":{"overallStatus":"Completed","enrollmentInfo":{"count":240},"startDateStruct":{"date":"2019-03"}},
    "designModule":{"phases":["PHASE2"]}}},
  {"protocolSection":{
    "identificationModule":{"nctId":"NCT002","briefTitle":"High-dose Aspirin in Acute Migraine"},
    "statusModule":{"overallStatus":"Recruiting","enrollmentInfo":{"count":80},"startDateStruct":{"date":"2023-01"}},
    "designModule":{"phases":["PHASE3"]}}}
]}`

func TestClinicalAgentLive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, ctgovFixture)
	}))
	defer srv.Close()

	agent := NewClinicalAgent(sourcesFor(t, srv), 5*time.Second, zaptest.NewLogger(t))
	res, err := agent.Run(context.Background(), testRequest(), nil)
	require.NoError(t, err)

	require.NoError(t, res.Validate())
	assert.Equal(t, models.ProvenanceLive, res.Provenance)
	p := res.Payload.Clinical
	require.NotNil(t, p)
	assert.Equal(t, 2, p.TotalTrials)
	assert.Equal(t, 320, p.TotalPatients)
	assert.Equal(t, 1, p.Phase2)
	assert.Equal(t, 1, p.Phase3)
	assert.Equal(t, 1, p.Completed)
	assert.Equal(t, 1, p.Active)
	assert.Contains(t, res.Narrative, "2 trials")
}

func TestClinicalAgentEmptyRegistryIsSchemaError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"studies":[]}`)
	}))
	defer srv.Close()

	agent := NewClinicalAgent(sourcesFor(t, srv), 5*time.Second, zaptest.NewLogger(t))
	_, err := agent.Run(context.Background(), testRequest(), nil)

	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, ErrKindSchema, ae.Kind)
}

func TestClinicalAgentServerErrorIsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	agent := NewClinicalAgent(sourcesFor(t, srv), 5*time.Second, zaptest.NewLogger(t))
	_, err := agent.Run(context.Background(), testRequest(), nil)

	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, ErrKindNetwork, ae.Kind)
}

func TestMOAAgentIsDeterministic(t *testing.T) {
	agent := NewMOAAgent(5 * time.Second)

	first, err := agent.Run(context.Background(), testRequest(), nil)
	require.NoError(t, err)
	second, err := agent.Run(context.Background(), testRequest(), nil)
	require.NoError(t, err)

	assert.Equal(t, first.Payload.MOA, second.Payload.MOA)
	assert.InDelta(t, first.Confidence, second.Confidence, 1e-9)
	require.NoError(t, first.Validate())
}

func TestPPIAgentConsumesMOATargets(t *testing.T) {
	moa, err := NewMOAAgent(5 * time.Second).Run(context.Background(), testRequest(), nil)
	require.NoError(t, err)

	resolved := map[string]models.SectionResult{models.SectionMOA: moa}
	res, err := NewPPIAgent(5 * time.Second).Run(context.Background(), testRequest(), resolved)
	require.NoError(t, err)

	require.NoError(t, res.Validate())
	assert.Equal(t, moa.Payload.MOA.PrimaryTargets, res.Payload.PPI.DrugTargets)
}

func TestPPIAgentRejectsMissingMOA(t *testing.T) {
	_, err := NewPPIAgent(5*time.Second).Run(context.Background(), testRequest(), nil)

	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, ErrKindSchema, ae.Kind)
}

func hypothesisDeps(t *testing.T) map[string]models.SectionResult {
	t.Helper()
	req := testRequest()
	resolved := map[string]models.SectionResult{}
	for _, dep := range []string{
		models.SectionMOA, models.SectionPPI, models.SectionSimilarity,
		models.SectionClinical, models.SectionLiterature,
		models.SectionSafety, models.SectionMarket,
	} {
		res, err := synthetic.Generate(dep, req)
		require.NoError(t, err)
		resolved[dep] = res
	}
	return resolved
}

func TestHypothesisAgentIntegratesEvidence(t *testing.T) {
	resolved := hypothesisDeps(t)

	res, err := NewHypothesisAgent(5*time.Second).Run(context.Background(), testRequest(), resolved)
	require.NoError(t, err)

	require.NoError(t, res.Validate())
	p := res.Payload.Hypothesis
	assert.Len(t, p.Hypotheses, 3)
	assert.Greater(t, p.OverallStrength, 0.0)
	assert.LessOrEqual(t, p.OverallStrength, 100.0)
	// All prerequisites are synthetic here, so the uncertainty flags must
	// say so.
	assert.Contains(t, strings.Join(p.UncertaintyFlags, " "), "modeled inputs")
}

func TestHypothesisAgentRejectsMissingPrerequisite(t *testing.T) {
	resolved := hypothesisDeps(t)
	delete(resolved, models.SectionSafety)

	_, err := NewHypothesisAgent(5*time.Second).Run(context.Background(), testRequest(), resolved)

	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, ErrKindSchema, ae.Kind)
}

func TestClassify(t *testing.T) {
	timeout := Classify("clinical", context.DeadlineExceeded)
	assert.Equal(t, ErrKindTimeout, timeout.Kind)

	passthrough := Classify("clinical", NewError(ErrKindSchema, "clinical", errors.New("bad shape")))
	assert.Equal(t, ErrKindSchema, passthrough.Kind)

	network := Classify("clinical", errors.New("connection refused"))
	assert.Equal(t, ErrKindNetwork, network.Kind)
}
