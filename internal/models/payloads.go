package models

import "fmt"

// Section names. The set is closed: agents register statically at startup.
const (
	SectionClinical   = "clinical"
	SectionLiterature = "literature"
	SectionMarket     = "market"
	SectionPatent     = "patent"
	SectionRegulatory = "regulatory"
	SectionSafety     = "safety"
	SectionOperations = "operations"
	SectionMOA        = "moa"
	SectionPPI        = "ppi"
	SectionSimilarity = "similarity"
	SectionHypothesis = "hypothesis"
)

// Payload is the per-section structured payload. Exactly one field is set,
// matching the owning section name. Keeping this a closed union of fixed
// structs (rather than loose key/value blobs) is what makes schema
// conformance checkable for both live and synthetic results.
type Payload struct {
	Clinical   *ClinicalPayload   `json:"clinical,omitempty"`
	Literature *LiteraturePayload `json:"literature,omitempty"`
	Market     *MarketPayload     `json:"market,omitempty"`
	Patent     *PatentPayload     `json:"patent,omitempty"`
	Regulatory *RegulatoryPayload `json:"regulatory,omitempty"`
	Safety     *SafetyPayload     `json:"safety,omitempty"`
	Operations *OperationsPayload `json:"operations,omitempty"`
	MOA        *MOAPayload        `json:"moa,omitempty"`
	PPI        *PPIPayload        `json:"ppi,omitempty"`
	Similarity *SimilarityPayload `json:"similarity,omitempty"`
	Hypothesis *HypothesisPayload `json:"hypothesis,omitempty"`
}

// TrialRecord is one row of the clinical trials table.
type TrialRecord struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Phase      string `json:"phase"`
	Status     string `json:"status"`
	Enrollment int    `json:"enrollment"`
	Started    string `json:"started"`
}

type ClinicalPayload struct {
	TotalTrials   int           `json:"total_trials"`
	TotalPatients int           `json:"total_patients"`
	Phase1        int           `json:"phase_1"`
	Phase2        int           `json:"phase_2"`
	Phase3        int           `json:"phase_3"`
	Phase4        int           `json:"phase_4"`
	Completed     int           `json:"completed"`
	Active        int           `json:"active"`
	Terminated    int           `json:"terminated"`
	Trials        []TrialRecord `json:"trials"`
}

type PublicationRecord struct {
	Title   string `json:"title"`
	Journal string `json:"journal"`
	Year    string `json:"year"`
	Authors string `json:"authors"`
}

type LiteraturePayload struct {
	PublicationCount int                 `json:"publication_count"`
	MechanismSupport string              `json:"mechanism_support"`
	Publications     []PublicationRecord `json:"publications"`
}

type Competitor struct {
	Name         string  `json:"name"`
	SharePercent float64 `json:"share_percent"`
}

type MarketPayload struct {
	MarketSizeUSDMillions    float64      `json:"market_size_usd_millions"`
	CAGRPercent              float64      `json:"cagr_percent"`
	PeakSalesProjection      string       `json:"peak_sales_projection"`
	MarketShareTargetPercent float64      `json:"market_share_target_percent"`
	Competitors              []Competitor `json:"competitors"`
}

type PatentRecord struct {
	Number   string `json:"number"`
	Title    string `json:"title"`
	Assignee string `json:"assignee"`
	Expiry   string `json:"expiry"`
}

type PatentPayload struct {
	TotalPatents     int            `json:"total_patents"`
	PrimaryExpiry    string         `json:"primary_expiry"`
	FreedomToOperate string         `json:"freedom_to_operate"`
	Patents          []PatentRecord `json:"patents"`
}

type AdverseEvent struct {
	Term    string `json:"term"`
	Reports int    `json:"reports"`
}

type SafetyPayload struct {
	TotalReports  int            `json:"total_reports"`
	TotalSignals  int            `json:"total_signals"`
	SeriousEvents int            `json:"serious_events"`
	TopEvents     []AdverseEvent `json:"top_events"`
}

type RegulatoryPayload struct {
	Pathway                    string   `json:"pathway"`
	ReviewMonths               int      `json:"review_months"`
	ApprovalProbabilityPercent float64  `json:"approval_probability_percent"`
	Precedents                 []string `json:"precedents"`
}

type OperationsPayload struct {
	InvestmentUSDMillions float64  `json:"investment_usd_millions"`
	TimelineMonths        int      `json:"timeline_months"`
	RiskLevel             string   `json:"risk_level"`
	Facilities            []string `json:"facilities"`
}

type MOAPayload struct {
	PrimaryTargets   []string `json:"primary_targets"`
	AffectedPathways []string `json:"affected_pathways"`
	Score            float64  `json:"score"` // [0,100] mechanism relevance
}

type PPIPayload struct {
	DrugTargets          []string `json:"drug_targets"`
	DiseaseGenes         []string `json:"disease_genes"`
	DirectInteractions   int      `json:"direct_interactions"`
	IndirectInteractions int      `json:"indirect_interactions"`
	CentralityScore      float64  `json:"centrality_score"`
	Score                float64  `json:"score"` // [0,100] network relevance
}

type SimilarityPayload struct {
	ApprovedIndications       []string `json:"approved_indications"`
	PathophysiologySimilarity float64  `json:"pathophysiology_similarity"`
	MechanismOverlap          float64  `json:"mechanism_overlap"`
	SymptomSimilarity         float64  `json:"symptom_similarity"`
	GeneticOverlap            float64  `json:"genetic_overlap"`
	Score                     float64  `json:"score"` // [0,100] overall similarity
}

type Hypothesis struct {
	Statement string  `json:"statement"`
	Strength  float64 `json:"strength"` // [0,100]
	Rationale string  `json:"rationale"`
}

type HypothesisPayload struct {
	Hypotheses       []Hypothesis `json:"hypotheses"`
	OverallStrength  float64      `json:"overall_strength"`
	UncertaintyFlags []string     `json:"uncertainty_flags"`
}

// SubScore reports the explicit feasibility sub-score some sections carry
// instead of a bare confidence (moa/ppi/similarity in the weight table).
// The second return is false when the section contributes confidence*100.
func (p Payload) SubScore() (float64, bool) {
	switch {
	case p.MOA != nil:
		return p.MOA.Score, true
	case p.PPI != nil:
		return p.PPI.Score, true
	case p.Similarity != nil:
		return p.Similarity.Score, true
	}
	return 0, false
}

// set returns which union field is populated, and how many are.
func (p Payload) set() (string, int) {
	name, n := "", 0
	mark := func(s string, ok bool) {
		if ok {
			name = s
			n++
		}
	}
	mark(SectionClinical, p.Clinical != nil)
	mark(SectionLiterature, p.Literature != nil)
	mark(SectionMarket, p.Market != nil)
	mark(SectionPatent, p.Patent != nil)
	mark(SectionRegulatory, p.Regulatory != nil)
	mark(SectionSafety, p.Safety != nil)
	mark(SectionOperations, p.Operations != nil)
	mark(SectionMOA, p.MOA != nil)
	mark(SectionPPI, p.PPI != nil)
	mark(SectionSimilarity, p.Similarity != nil)
	mark(SectionHypothesis, p.Hypothesis != nil)
	return name, n
}

// Validate checks that the payload carries exactly the schema declared for
// the given section name.
func (p Payload) Validate(section string) error {
	name, n := p.set()
	if n == 0 {
		return fmt.Errorf("section %q: empty payload", section)
	}
	if n > 1 {
		return fmt.Errorf("section %q: payload sets %d schemas", section, n)
	}
	if name != section {
		return fmt.Errorf("section %q: payload carries %q schema", section, name)
	}
	return nil
}

// Validate checks the SectionResult invariants: confidence in range and a
// schema-conformant payload for the declared section.
func (s SectionResult) Validate() error {
	if s.Section == "" {
		return fmt.Errorf("section result: missing section name")
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return fmt.Errorf("section %q: confidence %v out of [0,1]", s.Section, s.Confidence)
	}
	if s.Provenance != ProvenanceLive && s.Provenance != ProvenanceSynthetic {
		return fmt.Errorf("section %q: unknown provenance %q", s.Section, s.Provenance)
	}
	return s.Payload.Validate(s.Section)
}
