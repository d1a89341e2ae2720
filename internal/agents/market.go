package agents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/sources"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/synthetic"
)

// MarketAgent assesses the commercial landscape. Competitive presence comes
// from the openFDA NDC directory; sizing figures are modeled
// deterministically from the subject seed, as no free registry carries them.
type MarketAgent struct {
	sources *sources.Client
	timeout time.Duration
	logger  *zap.Logger
}

func NewMarketAgent(src *sources.Client, timeout time.Duration, logger *zap.Logger) *MarketAgent {
	return &MarketAgent{sources: src, timeout: timeout, logger: logger}
}

func (a *MarketAgent) Name() string           { return models.SectionMarket }
func (a *MarketAgent) Dependencies() []string { return nil }
func (a *MarketAgent) Timeout() time.Duration { return a.timeout }

func (a *MarketAgent) Run(ctx context.Context, req models.AnalysisRequest, _ map[string]models.SectionResult) (models.SectionResult, error) {
	labelers, err := a.sources.MarketPresence(ctx, req.Subject)
	if err != nil {
		if errors.Is(err, sources.ErrMalformed) {
			return models.SectionResult{}, NewError(ErrKindSchema, a.Name(), err)
		}
		return models.SectionResult{}, Classify(a.Name(), err)
	}

	rng := synthetic.Rand(a.Name(), req.Subject, req.Context)
	size := float64(500 + rng.Intn(5000))
	p := &models.MarketPayload{
		MarketSizeUSDMillions:    size,
		CAGRPercent:              3.5 + float64(rng.Intn(150))/10,
		PeakSalesProjection:      fmt.Sprintf("$%.0fM", size*(0.8+rng.Float64()*0.6)),
		MarketShareTargetPercent: 5 + float64(rng.Intn(300))/10,
	}
	share := 60.0
	for i, name := range labelers {
		if i >= 5 {
			break
		}
		share = share * 0.6
		p.Competitors = append(p.Competitors, models.Competitor{Name: name, SharePercent: round1(share)})
	}

	confidence := 0.55 + float64(len(labelers))*0.015
	if confidence > 0.88 {
		confidence = 0.88
	}

	narrative := fmt.Sprintf(
		"%d labelers currently market %s products per the openFDA NDC directory. Addressable market for %s modeled at $%.0fM with %.1f%% CAGR; peak sales projection %s.",
		len(labelers), req.Subject, req.Context, p.MarketSizeUSDMillions, p.CAGRPercent, p.PeakSalesProjection)

	return models.SectionResult{
		Section:    a.Name(),
		Confidence: confidence,
		Payload:    models.Payload{Market: p},
		Narrative:  narrative,
		Citations: []string{
			fmt.Sprintf("OpenFDA NDC directory — %d active labelers for %s", len(labelers), req.Subject),
		},
		Provenance: models.ProvenanceLive,
	}, nil
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
