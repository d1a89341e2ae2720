package agents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/sources"
)

// SafetyAgent profiles real-world pharmacovigilance data from FDA FAERS.
// Its signal count feeds the composite score's safety penalty.
type SafetyAgent struct {
	sources *sources.Client
	timeout time.Duration
	logger  *zap.Logger
}

func NewSafetyAgent(src *sources.Client, timeout time.Duration, logger *zap.Logger) *SafetyAgent {
	return &SafetyAgent{sources: src, timeout: timeout, logger: logger}
}

func (a *SafetyAgent) Name() string           { return models.SectionSafety }
func (a *SafetyAgent) Dependencies() []string { return nil }
func (a *SafetyAgent) Timeout() time.Duration { return a.timeout }

func (a *SafetyAgent) Run(ctx context.Context, req models.AnalysisRequest, _ map[string]models.SectionResult) (models.SectionResult, error) {
	summary, err := a.sources.FetchAdverseEvents(ctx, req.Subject)
	if err != nil {
		if errors.Is(err, sources.ErrMalformed) {
			return models.SectionResult{}, NewError(ErrKindSchema, a.Name(), err)
		}
		return models.SectionResult{}, Classify(a.Name(), err)
	}

	p := &models.SafetyPayload{
		TotalReports:  summary.TotalReports,
		TotalSignals:  len(summary.TopEvents),
		SeriousEvents: summary.SeriousCount,
		TopEvents:     summary.TopEvents,
	}

	// Confidence grows with report volume: a well-characterized profile is
	// a known profile, even when signals are present.
	confidence := 0.55 + float64(p.TotalReports)/20000
	if confidence > 0.93 {
		confidence = 0.93
	}

	narrative := fmt.Sprintf(
		"FAERS holds %d adverse event reports for %s across %d reaction terms, %d serious. The leading signal is %s. Profile quality supports %s in the %s setting.",
		p.TotalReports, req.Subject, p.TotalSignals, p.SeriousEvents,
		p.TopEvents[0].Term, riskPosture(p), req.Context)

	return models.SectionResult{
		Section:    a.Name(),
		Confidence: confidence,
		Payload:    models.Payload{Safety: p},
		Narrative:  narrative,
		Citations: []string{
			fmt.Sprintf("FDA FAERS — %d reports for %s", p.TotalReports, req.Subject),
		},
		Provenance: models.ProvenanceLive,
	}, nil
}

func riskPosture(p *models.SafetyPayload) string {
	switch {
	case p.TotalSignals <= 3:
		return "routine monitoring"
	case p.TotalSignals <= 6:
		return "managed monitoring"
	default:
		return "enhanced pharmacovigilance"
	}
}
