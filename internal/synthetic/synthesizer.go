// Package synthetic generates deterministic substitute sections for agents
// whose live data source is unreachable or malformed. The same
// (section, subject, context) triple always yields byte-identical output:
// the seed is a stable FNV-1a hash of those inputs and every numeric or
// categorical choice is drawn from a PRNG over that seed. That determinism
// is what keeps fallback behavior testable and auditable.
package synthetic

import (
	"fmt"
	"hash/fnv"
	"math/rand"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
)

// Seed derives the stable per-section seed.
func Seed(section, subject, context string) int64 {
	h := fnv.New64a()
	h.Write([]byte(section))
	h.Write([]byte{0})
	h.Write([]byte(subject))
	h.Write([]byte{0})
	h.Write([]byte(context))
	return int64(h.Sum64() & 0x7fffffffffffffff)
}

// Rand returns the seeded PRNG for a section triple. Derived agents share
// it so their locally computed content stays reproducible too.
func Rand(section, subject, context string) *rand.Rand {
	return rand.New(rand.NewSource(Seed(section, subject, context)))
}

// Generate produces the synthetic SectionResult for the named section.
// Unknown section names are a wiring bug, reported as an error.
func Generate(section string, req models.AnalysisRequest) (models.SectionResult, error) {
	rng := Rand(section, req.Subject, req.Context)

	var (
		payload    models.Payload
		confidence float64
		narrative  string
	)

	switch section {
	case models.SectionClinical:
		payload.Clinical = clinicalPayload(rng, req)
		confidence = 0.72
		p := payload.Clinical
		narrative = fmt.Sprintf(
			"Modeled clinical landscape for %s in %s: %d trials with approximately %d enrolled patients, including %d Phase 3 studies. %d trials have completed, supporting a moderate evidence base pending registry confirmation.",
			req.Subject, req.Context, p.TotalTrials, p.TotalPatients, p.Phase3, p.Completed)

	case models.SectionLiterature:
		payload.Literature = literaturePayload(rng, req)
		confidence = 0.68
		p := payload.Literature
		narrative = fmt.Sprintf(
			"Modeled literature profile for %s in %s: %d publications with %s mechanistic support. Findings are pattern-based pending index availability.",
			req.Subject, req.Context, p.PublicationCount, p.MechanismSupport)

	case models.SectionMarket:
		payload.Market = marketPayload(rng, req)
		confidence = 0.62
		p := payload.Market
		narrative = fmt.Sprintf(
			"Modeled commercial landscape for %s in %s: market size near $%.0fM at %.1f%% CAGR, peak sales projection %s with a %.1f%% share target.",
			req.Subject, req.Context, p.MarketSizeUSDMillions, p.CAGRPercent, p.PeakSalesProjection, p.MarketShareTargetPercent)

	case models.SectionPatent:
		payload.Patent = patentPayload(rng, req)
		confidence = 0.66
		p := payload.Patent
		narrative = fmt.Sprintf(
			"Modeled IP landscape for %s: %d patents, primary expiry %s, freedom-to-operate assessed as %s.",
			req.Subject, p.TotalPatents, p.PrimaryExpiry, p.FreedomToOperate)

	case models.SectionRegulatory:
		payload.Regulatory = regulatoryPayload(rng)
		confidence = 0.70
		p := payload.Regulatory
		narrative = fmt.Sprintf(
			"Modeled regulatory outlook for %s in %s: %s pathway with an anticipated %d-month review and %.0f%% approval probability based on precedent patterns.",
			req.Subject, req.Context, p.Pathway, p.ReviewMonths, p.ApprovalProbabilityPercent)

	case models.SectionSafety:
		payload.Safety = safetyPayload(rng, req)
		confidence = 0.64
		p := payload.Safety
		narrative = fmt.Sprintf(
			"Modeled pharmacovigilance profile for %s: %d reports across %d signal terms, %d serious. Surveillance data unavailable; profile reflects therapeutic-area patterns.",
			req.Subject, p.TotalReports, p.TotalSignals, p.SeriousEvents)

	case models.SectionOperations:
		payload.Operations = operationsPayload(rng)
		confidence = 0.75
		p := payload.Operations
		narrative = fmt.Sprintf(
			"Modeled operational readiness: $%.0fM investment over %d months, %s risk profile across %d candidate facilities.",
			p.InvestmentUSDMillions, p.TimelineMonths, p.RiskLevel, len(p.Facilities))

	case models.SectionMOA:
		payload.MOA = MOAPayload(rng)
		confidence = 0.60 + float64(rng.Intn(35))/100
		p := payload.MOA
		narrative = fmt.Sprintf(
			"Modeled mechanism of action for %s in %s: %d primary targets modulating %d pathways, relevance score %.0f/100.",
			req.Subject, req.Context, len(p.PrimaryTargets), len(p.AffectedPathways), p.Score)

	case models.SectionPPI:
		payload.PPI = PPIPayload(rng, nil)
		confidence = 0.55 + float64(rng.Intn(37))/100
		p := payload.PPI
		narrative = fmt.Sprintf(
			"Modeled protein interaction network: %d direct and %d indirect interactions, centrality %.0f/100, network relevance %.0f/100.",
			p.DirectInteractions, p.IndirectInteractions, p.CentralityScore, p.Score)

	case models.SectionSimilarity:
		payload.Similarity = SimilarityPayload(rng, req)
		confidence = 0.58 + float64(rng.Intn(32))/100
		p := payload.Similarity
		narrative = fmt.Sprintf(
			"Modeled disease similarity between approved indications of %s and %s: pathophysiology %.0f/100, mechanism overlap %.0f/100, overall %.0f/100.",
			req.Subject, req.Context, p.PathophysiologySimilarity, p.MechanismOverlap, p.Score)

	case models.SectionHypothesis:
		payload.Hypothesis = hypothesisPayload(rng, req)
		confidence = 0.50 + float64(rng.Intn(35))/100
		p := payload.Hypothesis
		narrative = fmt.Sprintf(
			"Modeled hypothesis set for %s in %s: %d testable hypotheses, overall strength %.0f/100. Speculative; requires experimental validation.",
			req.Subject, req.Context, len(p.Hypotheses), p.OverallStrength)

	default:
		return models.SectionResult{}, fmt.Errorf("synthetic: unknown section %q", section)
	}

	return models.SectionResult{
		Section:    section,
		Confidence: confidence,
		Payload:    payload,
		Narrative:  narrative,
		Citations:  citations(section, req),
		Provenance: models.ProvenanceSynthetic,
	}, nil
}

func citations(section string, req models.AnalysisRequest) []string {
	switch section {
	case models.SectionClinical:
		return []string{
			fmt.Sprintf("ClinicalTrials.gov registry — %s (modeled)", req.Subject),
			fmt.Sprintf("Cochrane systematic reviews in %s", req.Context),
		}
	case models.SectionLiterature:
		return []string{
			fmt.Sprintf("Europe PMC index — %s AND %s (modeled)", req.Subject, req.Context),
		}
	case models.SectionPatent:
		return []string{
			fmt.Sprintf("USPTO PatentsView — %s patent family (modeled)", req.Subject),
		}
	case models.SectionSafety:
		return []string{
			fmt.Sprintf("FDA FAERS — %s adverse event reports (modeled)", req.Subject),
		}
	case models.SectionMarket:
		return []string{
			fmt.Sprintf("OpenFDA NDC directory — %s market presence (modeled)", req.Subject),
		}
	default:
		return nil
	}
}

func clinicalPayload(rng *rand.Rand, req models.AnalysisRequest) *models.ClinicalPayload {
	total := 8 + rng.Intn(18)
	p := &models.ClinicalPayload{
		TotalTrials:   total,
		TotalPatients: 2500 + rng.Intn(6001),
		Phase1:        2 + rng.Intn(5),
		Phase2:        3 + rng.Intn(6),
		Phase3:        2 + rng.Intn(4),
		Phase4:        1 + rng.Intn(4),
	}
	p.Completed = total*2/5 + rng.Intn(total/3+1)
	if p.Completed > total {
		p.Completed = total
	}
	p.Terminated = rng.Intn(3)
	if p.Completed+p.Terminated > total {
		p.Terminated = total - p.Completed
	}
	p.Active = total - p.Completed - p.Terminated

	phases := []string{"Phase 1", "Phase 2", "Phase 2", "Phase 3", "Phase 3", "Phase 4"}
	statuses := []string{"Completed", "Completed", "Active, not recruiting", "Recruiting", "Terminated"}
	n := total
	if n > 20 {
		n = 20
	}
	for i := 0; i < n; i++ {
		phase := phases[rng.Intn(len(phases))]
		p.Trials = append(p.Trials, models.TrialRecord{
			ID:         fmt.Sprintf("NCT0%07d", 4000000+i+rng.Intn(1000000)),
			Title:      truncate(fmt.Sprintf("%s Study of %s in %s", phase, req.Subject, req.Context), 80),
			Phase:      phase,
			Status:     statuses[rng.Intn(len(statuses))],
			Enrollment: 50 + rng.Intn(551),
			Started:    fmt.Sprintf("%d-%02d", 2018+rng.Intn(7), 1+rng.Intn(12)),
		})
	}
	return p
}

func literaturePayload(rng *rand.Rand, req models.AnalysisRequest) *models.LiteraturePayload {
	support := []string{"strong", "moderate", "emerging"}
	count := 12 + rng.Intn(80)
	p := &models.LiteraturePayload{
		PublicationCount: count,
		MechanismSupport: support[rng.Intn(len(support))],
	}
	journals := []string{"The Lancet", "NEJM", "Nature Medicine", "BMJ", "JAMA"}
	for i := 0; i < 5; i++ {
		p.Publications = append(p.Publications, models.PublicationRecord{
			Title:   fmt.Sprintf("%s in the management of %s: cohort %d", req.Subject, req.Context, i+1),
			Journal: journals[rng.Intn(len(journals))],
			Year:    fmt.Sprintf("%d", 2016+rng.Intn(9)),
			Authors: fmt.Sprintf("Study Group %d", 1+rng.Intn(40)),
		})
	}
	return p
}

func marketPayload(rng *rand.Rand, req models.AnalysisRequest) *models.MarketPayload {
	size := float64(500 + rng.Intn(5000))
	return &models.MarketPayload{
		MarketSizeUSDMillions:    size,
		CAGRPercent:              3.5 + float64(rng.Intn(150))/10,
		PeakSalesProjection:      fmt.Sprintf("$%.0fM", size*(0.8+rng.Float64()*0.6)),
		MarketShareTargetPercent: 5 + float64(rng.Intn(300))/10,
		Competitors: []models.Competitor{
			{Name: "Competitor A", SharePercent: 25.3},
			{Name: "Competitor B", SharePercent: 18.7},
			{Name: "Competitor C", SharePercent: 15.2},
		},
	}
}

func patentPayload(rng *rand.Rand, req models.AnalysisRequest) *models.PatentPayload {
	total := 5 + rng.Intn(40)
	p := &models.PatentPayload{
		TotalPatents:     total,
		PrimaryExpiry:    fmt.Sprintf("%d", 2030+rng.Intn(10)),
		FreedomToOperate: []string{"clear", "constrained", "contested"}[rng.Intn(3)],
	}
	n := total
	if n > 15 {
		n = 15
	}
	for i := 0; i < n; i++ {
		p.Patents = append(p.Patents, models.PatentRecord{
			Number:   fmt.Sprintf("US%d", 10000000+i+rng.Intn(5000000)),
			Title:    truncate(fmt.Sprintf("Formulations of %s for %s", req.Subject, req.Context), 80),
			Assignee: fmt.Sprintf("Assignee %c", 'A'+rng.Intn(12)),
			Expiry:   fmt.Sprintf("%d", 2028+rng.Intn(12)),
		})
	}
	return p
}

func regulatoryPayload(rng *rand.Rand) *models.RegulatoryPayload {
	return &models.RegulatoryPayload{
		Pathway:                    []string{"Standard NDA", "505(b)(2)", "Supplemental NDA"}[rng.Intn(3)],
		ReviewMonths:               10 + rng.Intn(6),
		ApprovalProbabilityPercent: 55 + float64(rng.Intn(35)),
		Precedents: []string{
			"FDA guidance on repurposed indications",
			"Recent approvals in the same therapeutic class",
		},
	}
}

func safetyPayload(rng *rand.Rand, req models.AnalysisRequest) *models.SafetyPayload {
	terms := []string{"Nausea", "Headache", "Dizziness", "Fatigue", "Rash", "Insomnia", "Gastrointestinal upset", "Pruritus"}
	signals := 2 + rng.Intn(8)
	p := &models.SafetyPayload{
		TotalSignals:  signals,
		SeriousEvents: rng.Intn(signals + 1),
	}
	for i := 0; i < signals && i < len(terms); i++ {
		reports := 40 + rng.Intn(900)
		p.TotalReports += reports
		p.TopEvents = append(p.TopEvents, models.AdverseEvent{Term: terms[i], Reports: reports})
	}
	return p
}

func operationsPayload(rng *rand.Rand) *models.OperationsPayload {
	return &models.OperationsPayload{
		InvestmentUSDMillions: float64(30 + rng.Intn(70)),
		TimelineMonths:        9 + rng.Intn(16),
		RiskLevel:             []string{"low", "low-medium", "medium"}[rng.Intn(3)],
		Facilities:            []string{"Site Alpha", "Site Beta"},
	}
}

// MOAPayload builds the mechanism-of-action payload. Exported because the
// moa agent derives its live content from the same seeded pools.
func MOAPayload(rng *rand.Rand) *models.MOAPayload {
	targetPool := []string{"COX-1", "COX-2", "TNF-α", "IL-6", "PDE4", "5-HT1B", "CGRP receptor", "NMDA receptor", "PPAR-γ", "JAK1"}
	pathwayPool := []string{"prostaglandin synthesis", "NF-κB signaling", "serotonergic transmission", "calcium channel modulation", "cytokine release", "platelet aggregation"}
	targets := pick(rng, targetPool, 2+rng.Intn(3))
	pathways := pick(rng, pathwayPool, 2+rng.Intn(3))
	return &models.MOAPayload{
		PrimaryTargets:   targets,
		AffectedPathways: pathways,
		Score:            float64(50 + rng.Intn(46)),
	}
}

// PPIPayload builds the interaction-network payload. When the live ppi
// agent runs, it passes the moa targets it actually received; the fallback
// path passes nil and draws targets from the pool.
func PPIPayload(rng *rand.Rand, drugTargets []string) *models.PPIPayload {
	if len(drugTargets) == 0 {
		drugTargets = pick(rng, []string{"COX-1", "COX-2", "TNF-α", "IL-6", "PDE4"}, 2+rng.Intn(2))
	}
	return &models.PPIPayload{
		DrugTargets:          drugTargets,
		DiseaseGenes:         pick(rng, []string{"CALCA", "TRPV1", "SCN1A", "MTHFR", "KCNK18", "HCRTR2"}, 3),
		DirectInteractions:   2 + rng.Intn(8),
		IndirectInteractions: 4 + rng.Intn(15),
		CentralityScore:      float64(40 + rng.Intn(55)),
		Score:                float64(45 + rng.Intn(50)),
	}
}

// SimilarityPayload builds the disease-similarity payload, shared with the
// similarity agent's live computation.
func SimilarityPayload(rng *rand.Rand, req models.AnalysisRequest) *models.SimilarityPayload {
	return &models.SimilarityPayload{
		ApprovedIndications: pick(rng, []string{
			"Pain management", "Inflammatory disease", "Cardiovascular prophylaxis",
			"Rheumatoid arthritis", "Fever",
		}, 2+rng.Intn(2)),
		PathophysiologySimilarity: float64(40 + rng.Intn(55)),
		MechanismOverlap:          float64(35 + rng.Intn(60)),
		SymptomSimilarity:         float64(30 + rng.Intn(65)),
		GeneticOverlap:            float64(20 + rng.Intn(60)),
		Score:                     float64(45 + rng.Intn(50)),
	}
}

func hypothesisPayload(rng *rand.Rand, req models.AnalysisRequest) *models.HypothesisPayload {
	templates := []string{
		"%s modulates shared inflammatory mediators relevant to %s",
		"Approved-indication pathway overlap suggests %s efficacy in %s subpopulations",
		"Network proximity of %s targets to %s-associated genes supports repurposing",
	}
	p := &models.HypothesisPayload{
		OverallStrength:  float64(50 + rng.Intn(45)),
		UncertaintyFlags: []string{"requires experimental validation", "synthetic evidence base"},
	}
	for _, t := range templates {
		p.Hypotheses = append(p.Hypotheses, models.Hypothesis{
			Statement: fmt.Sprintf(t, req.Subject, req.Context),
			Strength:  float64(40 + rng.Intn(55)),
			Rationale: "integrated evidence pattern",
		})
	}
	return p
}

func pick(rng *rand.Rand, pool []string, n int) []string {
	if n > len(pool) {
		n = len(pool)
	}
	idx := rng.Perm(len(pool))[:n]
	out := make([]string, 0, n)
	for _, i := range idx {
		out = append(out, pool[i])
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
