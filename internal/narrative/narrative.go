// Package narrative assembles the executive summary from section results.
// Rendering iterates a fixed, declared section order — never map iteration
// order — so output is identical across runs for the same inputs.
package narrative

import (
	"fmt"
	"sort"
	"strings"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
)

// titles maps section names to their report headers.
var titles = map[string]string{
	models.SectionClinical:   "Clinical Trials & Evidence",
	models.SectionLiterature: "Literature & Mechanism",
	models.SectionMarket:     "Market & Commercial Landscape",
	models.SectionPatent:     "Patent & IP Landscape",
	models.SectionRegulatory: "Regulatory Pathway",
	models.SectionSafety:     "Safety & Pharmacovigilance",
	models.SectionOperations: "Operations & Investment",
	models.SectionMOA:        "Mechanism of Action",
	models.SectionPPI:        "Protein Interaction Network",
	models.SectionSimilarity: "Disease Similarity",
	models.SectionHypothesis: "Research Hypotheses",
}

// Title returns the display header for a section name.
func Title(section string) string {
	if t, ok := titles[section]; ok {
		return t
	}
	return section
}

// Render produces the executive summary: a header per section in declared
// order, each section's narrative text, then the composite breakdown.
func Render(req models.AnalysisRequest, order []string, sections map[string]models.SectionResult, composite models.CompositeScore) string {
	var b strings.Builder
	fmt.Fprintf(&b, "EXECUTIVE SUMMARY — %s for %s\n", req.Subject, req.Context)

	for _, name := range order {
		s, ok := sections[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n## %s", Title(name))
		if s.Provenance == models.ProvenanceSynthetic {
			b.WriteString(" [modeled]")
		}
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(s.Narrative))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n## Composite Feasibility\nScore: %.2f/100 (penalty %.2f)\n", composite.Score, composite.Penalty)
	for _, name := range sortedKeys(composite.Breakdown) {
		fmt.Fprintf(&b, "- %s: %.2f\n", Title(name), composite.Breakdown[name])
	}
	return b.String()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
