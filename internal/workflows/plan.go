// Package workflows holds the Temporal workflow that drives one analysis
// run: dependency-aware fan-out over the agent fleet, deterministic
// fallback on failure, composite scoring, narrative rendering and result
// assembly.
package workflows

import (
	"fmt"
	"time"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/agents"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/scoring"
)

// AnalysisPlan is the full workflow input. Everything the workflow needs is
// carried in the plan so that replay stays deterministic: no config reads,
// no registry lookups inside workflow code.
type AnalysisPlan struct {
	Request models.AnalysisRequest `json:"request"`

	// Specs lists every agent in canonical section order; Order is the
	// narrative section order derived from it.
	Specs []agents.Spec `json:"specs"`

	Weights scoring.Weights `json:"weights"`
	Penalty scoring.Penalty `json:"penalty"`

	// GlobalDeadline bounds the whole fan-out phase. Agents still pending
	// when it fires are substituted synthetically.
	GlobalDeadline time.Duration `json:"global_deadline"`

	// WebhookURL receives the completion event; empty disables dispatch.
	WebhookURL string `json:"webhook_url"`
}

// PlanTemplate is the request-independent part of a plan, built once at
// startup from config and registry and stamped per request.
type PlanTemplate struct {
	Specs          []agents.Spec
	Weights        scoring.Weights
	Penalty        scoring.Penalty
	GlobalDeadline time.Duration
	WebhookURL     string
}

// For stamps the template into a plan for one request.
func (t PlanTemplate) For(req models.AnalysisRequest) AnalysisPlan {
	return AnalysisPlan{
		Request:        req,
		Specs:          t.Specs,
		Weights:        t.Weights,
		Penalty:        t.Penalty,
		GlobalDeadline: t.GlobalDeadline,
		WebhookURL:     t.WebhookURL,
	}
}

// Validate checks the template against a placeholder request so graph and
// weight problems surface at startup, not per request.
func (t PlanTemplate) Validate() error {
	return t.For(models.AnalysisRequest{Subject: "probe", Context: "probe"}).Validate()
}

// Order returns the section order the narrative and assembler use.
func (p AnalysisPlan) Order() []string {
	order := make([]string, 0, len(p.Specs))
	for _, s := range p.Specs {
		order = append(order, s.Name)
	}
	return order
}

// Validate enforces the startup graph invariants: every dependency names a
// known agent, the graph is acyclic, the weight table sums to 1.0, and
// every weighted section has an agent producing it. A plan failing
// validation never starts a workflow.
func (p AnalysisPlan) Validate() error {
	if err := p.Request.Validate(); err != nil {
		return err
	}
	if len(p.Specs) == 0 {
		return fmt.Errorf("plan: no agents")
	}
	if err := scoring.ValidateWeights(p.Weights); err != nil {
		return fmt.Errorf("plan: %w", err)
	}
	if p.GlobalDeadline <= 0 {
		return fmt.Errorf("plan: global deadline must be positive")
	}

	known := make(map[string]agents.Spec, len(p.Specs))
	for _, s := range p.Specs {
		if _, dup := known[s.Name]; dup {
			return fmt.Errorf("plan: duplicate agent %q", s.Name)
		}
		known[s.Name] = s
	}
	for _, s := range p.Specs {
		for _, dep := range s.DependsOn {
			if _, ok := known[dep]; !ok {
				return fmt.Errorf("plan: agent %q depends on unknown agent %q", s.Name, dep)
			}
		}
	}
	if err := checkAcyclic(p.Specs); err != nil {
		return err
	}
	for section := range p.Weights {
		if _, ok := known[section]; !ok {
			return fmt.Errorf("plan: weight table names section %q with no producing agent", section)
		}
	}
	return nil
}

// checkAcyclic runs Kahn's algorithm over the dependency graph.
func checkAcyclic(specs []agents.Spec) error {
	indegree := make(map[string]int, len(specs))
	dependents := make(map[string][]string, len(specs))
	for _, s := range specs {
		indegree[s.Name] += 0
		for _, dep := range s.DependsOn {
			indegree[s.Name]++
			dependents[dep] = append(dependents[dep], s.Name)
		}
	}

	queue := make([]string, 0, len(specs))
	for _, s := range specs {
		if indegree[s.Name] == 0 {
			queue = append(queue, s.Name)
		}
	}

	visited := 0
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		visited++
		for _, next := range dependents[name] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if visited != len(specs) {
		return fmt.Errorf("plan: dependency cycle among agents")
	}
	return nil
}
