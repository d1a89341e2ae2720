package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/synthetic"
)

// HypothesisAgent integrates the evidence sections into testable research
// hypotheses. It is the most dependent agent in the graph and exercises the
// full chain: every prerequisite may itself be synthetic.
type HypothesisAgent struct {
	timeout time.Duration
}

func NewHypothesisAgent(timeout time.Duration) *HypothesisAgent {
	return &HypothesisAgent{timeout: timeout}
}

func (a *HypothesisAgent) Name() string { return models.SectionHypothesis }

func (a *HypothesisAgent) Dependencies() []string {
	return []string{
		models.SectionMOA, models.SectionPPI, models.SectionSimilarity,
		models.SectionClinical, models.SectionLiterature,
		models.SectionSafety, models.SectionMarket,
	}
}

func (a *HypothesisAgent) Timeout() time.Duration { return a.timeout }

func (a *HypothesisAgent) Run(_ context.Context, req models.AnalysisRequest, resolved map[string]models.SectionResult) (models.SectionResult, error) {
	for _, dep := range a.Dependencies() {
		if _, ok := resolved[dep]; !ok {
			return models.SectionResult{}, NewError(ErrKindSchema, a.Name(),
				fmt.Errorf("prerequisite %q unresolved", dep))
		}
	}

	rng := synthetic.Rand(a.Name(), req.Subject, req.Context)

	// Evidence integration: blend prerequisite confidences with the
	// mechanism/network/similarity sub-scores.
	var confSum float64
	for _, dep := range a.Dependencies() {
		confSum += resolved[dep].Confidence
	}
	evidence := confSum / float64(len(a.Dependencies())) * 100

	mechScore := subScoreOf(resolved, models.SectionMOA)
	netScore := subScoreOf(resolved, models.SectionPPI)
	simScore := subScoreOf(resolved, models.SectionSimilarity)
	overall := clamp100(0.4*evidence + 0.25*mechScore + 0.2*netScore + 0.15*simScore)

	var flags []string
	var syntheticDeps []string
	for _, dep := range a.Dependencies() {
		if resolved[dep].Provenance == models.ProvenanceSynthetic {
			syntheticDeps = append(syntheticDeps, dep)
		}
	}
	flags = append(flags, "requires experimental validation")
	if len(syntheticDeps) > 0 {
		flags = append(flags, fmt.Sprintf("modeled inputs: %s", strings.Join(syntheticDeps, ", ")))
	}

	p := &models.HypothesisPayload{
		OverallStrength:  overall,
		UncertaintyFlags: flags,
	}
	targets := ""
	if moa := resolved[models.SectionMOA].Payload.MOA; moa != nil && len(moa.PrimaryTargets) > 0 {
		targets = strings.Join(moa.PrimaryTargets, "/")
	}
	statements := []string{
		fmt.Sprintf("%s engagement of %s attenuates %s pathology", req.Subject, targets, req.Context),
		fmt.Sprintf("Network proximity between %s targets and %s-associated genes predicts responder subgroups", req.Subject, req.Context),
		fmt.Sprintf("Indication similarity between approved uses and %s transfers the established dose range", req.Context),
	}
	for _, s := range statements {
		p.Hypotheses = append(p.Hypotheses, models.Hypothesis{
			Statement: s,
			Strength:  clamp100(overall - 10 + float64(rng.Intn(21))),
			Rationale: "integrated mechanistic and clinical evidence",
		})
	}

	narrative := fmt.Sprintf(
		"Integrating %d evidence sections yields %d testable hypotheses for %s in %s with overall strength %.0f/100. These are research hypotheses, not clinical recommendations.",
		len(a.Dependencies()), len(p.Hypotheses), req.Subject, req.Context, overall)

	return models.SectionResult{
		Section:    a.Name(),
		Confidence: clamp100(overall) / 100 * 0.9, // hypotheses never exceed their evidence
		Payload:    models.Payload{Hypothesis: p},
		Narrative:  narrative,
		Citations:  nil,
		Provenance: models.ProvenanceLive,
	}, nil
}

func subScoreOf(resolved map[string]models.SectionResult, section string) float64 {
	if s, ok := resolved[section]; ok {
		if sub, ok := s.Payload.SubScore(); ok {
			return sub
		}
		return s.Confidence * 100
	}
	return 0
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
