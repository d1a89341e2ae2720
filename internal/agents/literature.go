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

// LiteratureAgent reviews the published evidence base via Europe PMC.
type LiteratureAgent struct {
	sources *sources.Client
	timeout time.Duration
	logger  *zap.Logger
}

func NewLiteratureAgent(src *sources.Client, timeout time.Duration, logger *zap.Logger) *LiteratureAgent {
	return &LiteratureAgent{sources: src, timeout: timeout, logger: logger}
}

func (a *LiteratureAgent) Name() string           { return models.SectionLiterature }
func (a *LiteratureAgent) Dependencies() []string { return nil }
func (a *LiteratureAgent) Timeout() time.Duration { return a.timeout }

func (a *LiteratureAgent) Run(ctx context.Context, req models.AnalysisRequest, _ map[string]models.SectionResult) (models.SectionResult, error) {
	pubs, hits, err := a.sources.FetchLiterature(ctx, req.Subject, req.Context)
	if err != nil {
		if errors.Is(err, sources.ErrMalformed) {
			return models.SectionResult{}, NewError(ErrKindSchema, a.Name(), err)
		}
		return models.SectionResult{}, Classify(a.Name(), err)
	}

	support := "emerging"
	switch {
	case hits >= 100:
		support = "strong"
	case hits >= 20:
		support = "moderate"
	}

	confidence := 0.5 + float64(hits)/400
	if confidence > 0.92 {
		confidence = 0.92
	}

	p := &models.LiteraturePayload{
		PublicationCount: hits,
		MechanismSupport: support,
		Publications:     pubs,
	}

	citations := make([]string, 0, len(pubs))
	for _, pub := range pubs {
		citations = append(citations, fmt.Sprintf("%s (%s) — %s, %s", pub.Authors, pub.Year, pub.Title, pub.Journal))
	}

	narrative := fmt.Sprintf(
		"Europe PMC indexes %d publications linking %s and %s, indicating %s mechanistic support for this application.",
		hits, req.Subject, req.Context, support)

	return models.SectionResult{
		Section:    a.Name(),
		Confidence: confidence,
		Payload:    models.Payload{Literature: p},
		Narrative:  narrative,
		Citations:  citations,
		Provenance: models.ProvenanceLive,
	}, nil
}
