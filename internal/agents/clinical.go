package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/sources"
)

// ClinicalAgent analyzes the registered trial landscape from
// ClinicalTrials.gov.
type ClinicalAgent struct {
	sources *sources.Client
	timeout time.Duration
	logger  *zap.Logger
}

func NewClinicalAgent(src *sources.Client, timeout time.Duration, logger *zap.Logger) *ClinicalAgent {
	return &ClinicalAgent{sources: src, timeout: timeout, logger: logger}
}

func (a *ClinicalAgent) Name() string            { return models.SectionClinical }
func (a *ClinicalAgent) Dependencies() []string  { return nil }
func (a *ClinicalAgent) Timeout() time.Duration  { return a.timeout }

func (a *ClinicalAgent) Run(ctx context.Context, req models.AnalysisRequest, _ map[string]models.SectionResult) (models.SectionResult, error) {
	trials, err := a.sources.FetchTrials(ctx, req.Subject, req.Context)
	if err != nil {
		if errors.Is(err, sources.ErrMalformed) {
			return models.SectionResult{}, NewError(ErrKindSchema, a.Name(), err)
		}
		return models.SectionResult{}, Classify(a.Name(), err)
	}
	if len(trials) == 0 {
		return models.SectionResult{}, NewError(ErrKindSchema, a.Name(), fmt.Errorf("registry returned no usable studies for %s", req.Subject))
	}

	p := &models.ClinicalPayload{TotalTrials: len(trials), Trials: trials}
	for _, t := range trials {
		p.TotalPatients += t.Enrollment
		switch {
		case strings.Contains(t.Phase, "1"):
			p.Phase1++
		case strings.Contains(t.Phase, "2"):
			p.Phase2++
		case strings.Contains(t.Phase, "3"):
			p.Phase3++
		case strings.Contains(t.Phase, "4"):
			p.Phase4++
		}
		switch {
		case strings.Contains(t.Status, "Completed"):
			p.Completed++
		case strings.Contains(t.Status, "Terminated"), strings.Contains(t.Status, "Withdrawn"):
			p.Terminated++
		default:
			p.Active++
		}
	}

	confidence := 0.65 + float64(p.TotalTrials)*0.03
	if confidence > 0.95 {
		confidence = 0.95
	}

	narrative := fmt.Sprintf(
		"ClinicalTrials.gov lists %d trials investigating %s for %s with %d enrolled patients. "+
			"The portfolio spans %d Phase 1, %d Phase 2, %d Phase 3 and %d Phase 4 studies; "+
			"%d have completed and %d remain active, with %d terminated or withdrawn.",
		p.TotalTrials, req.Subject, req.Context, p.TotalPatients,
		p.Phase1, p.Phase2, p.Phase3, p.Phase4, p.Completed, p.Active, p.Terminated)

	return models.SectionResult{
		Section:    a.Name(),
		Confidence: confidence,
		Payload:    models.Payload{Clinical: p},
		Narrative:  narrative,
		Citations: []string{
			fmt.Sprintf("ClinicalTrials.gov API v2 — %d registered studies for %s", p.TotalTrials, req.Subject),
		},
		Provenance: models.ProvenanceLive,
	}, nil
}
