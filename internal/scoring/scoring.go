// Package scoring combines per-section results into the composite
// feasibility score. Weights are configuration, not constants: the table is
// validated at startup (sums to 1.0 before penalty) and passed in
// immutably. The contract holds for fully synthetic inputs — a degraded run
// still yields a valid, deterministic composite.
package scoring

import (
	"fmt"
	"math"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
)

// Weights maps section name to its contribution weight.
type Weights map[string]float64

// Penalty configures the safety-signal deduction: perSignal points per
// reported signal, capped so the pre-clamp score cannot go negative.
type Penalty struct {
	PerSignal float64 `mapstructure:"per_signal" json:"per_signal"`
	Cap       float64 `mapstructure:"cap" json:"cap"`
}

const weightSumTolerance = 1e-9

// DefaultWeights is the shipped weight table. Clinical evidence carries the
// most weight; mechanistic sections (moa, ppi) and safety follow; patent and
// similarity round it out. Every deployment may override it in config.
func DefaultWeights() Weights {
	return Weights{
		models.SectionClinical:   0.20,
		models.SectionLiterature: 0.15,
		models.SectionPatent:     0.10,
		models.SectionSafety:     0.15,
		models.SectionMOA:        0.15,
		models.SectionPPI:        0.15,
		models.SectionSimilarity: 0.10,
	}
}

// DefaultPenalty is the shipped safety deduction: two points per adverse
// signal, capped at twenty.
func DefaultPenalty() Penalty {
	return Penalty{PerSignal: 2.0, Cap: 20.0}
}

// ValidateWeights checks the startup invariant: weights sum to 1.0 and are
// individually non-negative.
func ValidateWeights(w Weights) error {
	var sum float64
	for section, weight := range w {
		if weight < 0 {
			return fmt.Errorf("weight table: section %q has negative weight %v", section, weight)
		}
		sum += weight
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("weight table: weights sum to %v, want 1.0", sum)
	}
	return nil
}

// sectionScore is the 0–100 contribution basis for one section: the
// explicit feasibility sub-score where the payload declares one, otherwise
// confidence×100.
func sectionScore(s models.SectionResult) float64 {
	if sub, ok := s.Payload.SubScore(); ok {
		return sub
	}
	return s.Confidence * 100
}

// safetySignals reads the adverse-signal count from the safety section.
func safetySignals(sections map[string]models.SectionResult) int {
	s, ok := sections[models.SectionSafety]
	if !ok || s.Payload.Safety == nil {
		return 0
	}
	return s.Payload.Safety.TotalSignals
}

// Compute produces the composite score from the fully resolved section map.
// Sections absent from the weight table are informational and contribute
// nothing. The result is clamped into [0,100].
func Compute(weights Weights, penalty Penalty, sections map[string]models.SectionResult) models.CompositeScore {
	breakdown := make(map[string]float64, len(weights))
	var weighted float64
	for section, weight := range weights {
		s, ok := sections[section]
		if !ok {
			// Completeness is the assembler's invariant; an absent weighted
			// section simply contributes zero here.
			breakdown[section] = 0
			continue
		}
		contribution := weight * sectionScore(s)
		breakdown[section] = round2(contribution)
		weighted += contribution
	}

	applied := float64(safetySignals(sections)) * penalty.PerSignal
	if penalty.Cap > 0 && applied > penalty.Cap {
		applied = penalty.Cap
	}
	if applied > weighted {
		applied = weighted // bounded so the pre-clamp score stays non-negative
	}

	score := weighted - applied
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return models.CompositeScore{
		Score:     round2(score),
		Breakdown: breakdown,
		Penalty:   round2(applied),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
