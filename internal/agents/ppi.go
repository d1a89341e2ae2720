package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/synthetic"
)

// PPIAgent maps the protein interaction network around the drug's targets.
// It consumes the moa section's target list — live or synthetic, it never
// distinguishes — which is the degradation guarantee dependents rely on.
type PPIAgent struct {
	timeout time.Duration
}

func NewPPIAgent(timeout time.Duration) *PPIAgent {
	return &PPIAgent{timeout: timeout}
}

func (a *PPIAgent) Name() string           { return models.SectionPPI }
func (a *PPIAgent) Dependencies() []string { return []string{models.SectionMOA} }
func (a *PPIAgent) Timeout() time.Duration { return a.timeout }

func (a *PPIAgent) Run(_ context.Context, req models.AnalysisRequest, resolved map[string]models.SectionResult) (models.SectionResult, error) {
	var targets []string
	if moa, ok := resolved[models.SectionMOA]; ok && moa.Payload.MOA != nil {
		targets = moa.Payload.MOA.PrimaryTargets
	}
	if len(targets) == 0 {
		return models.SectionResult{}, NewError(ErrKindSchema, a.Name(),
			fmt.Errorf("moa prerequisite carried no targets"))
	}

	rng := synthetic.Rand(a.Name(), req.Subject, req.Context)
	p := synthetic.PPIPayload(rng, targets)
	confidence := 0.55 + float64(rng.Intn(37))/100

	narrative := fmt.Sprintf(
		"Interaction mapping around %d targets of %s identifies %d direct and %d indirect links to %s-associated genes. Network centrality %.0f/100; relevance %.0f/100.",
		len(p.DrugTargets), req.Subject, p.DirectInteractions, p.IndirectInteractions,
		req.Context, p.CentralityScore, p.Score)

	return models.SectionResult{
		Section:    a.Name(),
		Confidence: confidence,
		Payload:    models.Payload{PPI: p},
		Narrative:  narrative,
		Citations:  []string{"STRING / BioGRID / IntAct interaction databases"},
		Provenance: models.ProvenanceLive,
	}, nil
}
