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

// PatentAgent maps the IP landscape from USPTO PatentsView.
type PatentAgent struct {
	sources *sources.Client
	timeout time.Duration
	logger  *zap.Logger
}

func NewPatentAgent(src *sources.Client, timeout time.Duration, logger *zap.Logger) *PatentAgent {
	return &PatentAgent{sources: src, timeout: timeout, logger: logger}
}

func (a *PatentAgent) Name() string           { return models.SectionPatent }
func (a *PatentAgent) Dependencies() []string { return nil }
func (a *PatentAgent) Timeout() time.Duration { return a.timeout }

func (a *PatentAgent) Run(ctx context.Context, req models.AnalysisRequest, _ map[string]models.SectionResult) (models.SectionResult, error) {
	patents, total, err := a.sources.FetchPatents(ctx, req.Subject)
	if err != nil {
		if errors.Is(err, sources.ErrMalformed) {
			return models.SectionResult{}, NewError(ErrKindSchema, a.Name(), err)
		}
		return models.SectionResult{}, Classify(a.Name(), err)
	}
	if total == 0 {
		total = len(patents)
	}

	primaryExpiry := "2030+"
	fto := "clear"
	if len(patents) > 0 {
		primaryExpiry = patents[0].Expiry
		if total > 20 {
			fto = "constrained"
		}
	}

	confidence := 0.5 + float64(total)*0.01
	if confidence > 0.9 {
		confidence = 0.9
	}

	p := &models.PatentPayload{
		TotalPatents:     total,
		PrimaryExpiry:    primaryExpiry,
		FreedomToOperate: fto,
		Patents:          patents,
	}

	narrative := fmt.Sprintf(
		"PatentsView reports %d granted patents referencing %s. Primary expiry horizon %s; freedom to operate assessed as %s for the %s indication.",
		total, req.Subject, primaryExpiry, fto, req.Context)

	return models.SectionResult{
		Section:    a.Name(),
		Confidence: confidence,
		Payload:    models.Payload{Patent: p},
		Narrative:  narrative,
		Citations: []string{
			fmt.Sprintf("USPTO PatentsView — %d patents for %s", total, req.Subject),
		},
		Provenance: models.ProvenanceLive,
	}, nil
}
