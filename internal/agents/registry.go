package agents

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/sources"
)

// Registry is the closed, statically built set of analysis agents. No
// runtime discovery: the agent set is fixed at startup and read-only
// afterwards.
type Registry struct {
	agents map[string]Agent
	order  []string
}

// Timeouts supplies the per-agent call timeout; missing entries fall back
// to the default.
type Timeouts struct {
	Default  time.Duration
	PerAgent map[string]time.Duration
}

func (t Timeouts) forAgent(name string) time.Duration {
	if d, ok := t.PerAgent[name]; ok && d > 0 {
		return d
	}
	if t.Default > 0 {
		return t.Default
	}
	return 15 * time.Second
}

// NewRegistry wires the full agent set against the shared source client.
// The declaration order below is the canonical section order used by
// narrative rendering.
func NewRegistry(src *sources.Client, timeouts Timeouts, logger *zap.Logger) *Registry {
	all := []Agent{
		NewClinicalAgent(src, timeouts.forAgent(models.SectionClinical), logger),
		NewLiteratureAgent(src, timeouts.forAgent(models.SectionLiterature), logger),
		NewMarketAgent(src, timeouts.forAgent(models.SectionMarket), logger),
		NewPatentAgent(src, timeouts.forAgent(models.SectionPatent), logger),
		NewRegulatoryAgent(timeouts.forAgent(models.SectionRegulatory)),
		NewSafetyAgent(src, timeouts.forAgent(models.SectionSafety), logger),
		NewOperationsAgent(timeouts.forAgent(models.SectionOperations)),
		NewMOAAgent(timeouts.forAgent(models.SectionMOA)),
		NewPPIAgent(timeouts.forAgent(models.SectionPPI)),
		NewSimilarityAgent(timeouts.forAgent(models.SectionSimilarity)),
		NewHypothesisAgent(timeouts.forAgent(models.SectionHypothesis)),
	}

	r := &Registry{agents: make(map[string]Agent, len(all))}
	for _, a := range all {
		r.agents[a.Name()] = a
		r.order = append(r.order, a.Name())
	}
	return r
}

// Get returns the agent owning the named section.
func (r *Registry) Get(name string) (Agent, error) {
	a, ok := r.agents[name]
	if !ok {
		return nil, fmt.Errorf("registry: no agent for section %q", name)
	}
	return a, nil
}

// Names returns section names in canonical declaration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Spec describes one agent for scheduling: everything the scheduler needs,
// nothing it shouldn't touch.
type Spec struct {
	Name      string        `json:"name"`
	DependsOn []string      `json:"depends_on"`
	Timeout   time.Duration `json:"timeout"`
}

// Specs returns the scheduling view of the registry in canonical order.
func (r *Registry) Specs() []Spec {
	specs := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		a := r.agents[name]
		specs = append(specs, Spec{
			Name:      a.Name(),
			DependsOn: a.Dependencies(),
			Timeout:   a.Timeout(),
		})
	}
	return specs
}
