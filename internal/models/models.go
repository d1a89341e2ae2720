package models

import (
	"fmt"
	"time"
)

// Provenance marks whether a section was produced from a live data source
// or substituted by the fallback synthesizer.
type Provenance string

const (
	ProvenanceLive      Provenance = "live"
	ProvenanceSynthetic Provenance = "synthetic"
)

// AnalysisRequest identifies one orchestration run. Immutable once created.
type AnalysisRequest struct {
	RequestID string `json:"request_id"`
	Subject   string `json:"subject"` // drug / molecule name
	Context   string `json:"context"` // indication qualifier
}

// SectionResult is the output of exactly one agent invocation.
// Confidence is always populated, payload always conforms to the section's
// declared schema, regardless of provenance.
type SectionResult struct {
	Section    string     `json:"section"`
	Confidence float64    `json:"confidence"` // [0,1]
	Payload    Payload    `json:"payload"`
	Narrative  string     `json:"narrative"`
	Citations  []string   `json:"citations"`
	Provenance Provenance `json:"provenance"`
}

// CompositeScore is the single weighted aggregate feasibility number.
type CompositeScore struct {
	Score     float64            `json:"score"` // clamped to [0,100]
	Breakdown map[string]float64 `json:"breakdown"`
	Penalty   float64            `json:"penalty"`
}

// AnalysisResult is the complete response handed to the caller. Every
// requested section is present, even under total upstream failure.
type AnalysisResult struct {
	RequestID string                   `json:"request_id"`
	Subject   string                   `json:"subject"`
	Context   string                   `json:"context"`
	Timestamp time.Time                `json:"timestamp"`
	Sections  map[string]SectionResult `json:"sections"`
	Composite CompositeScore           `json:"composite_score"`
	Narrative string                   `json:"narrative"`
}

// AvgConfidence returns the mean section confidence rounded to two decimals.
func (r AnalysisResult) AvgConfidence() float64 {
	if len(r.Sections) == 0 {
		return 0
	}
	var sum float64
	for _, s := range r.Sections {
		sum += s.Confidence
	}
	avg := sum / float64(len(r.Sections))
	return float64(int(avg*100+0.5)) / 100
}

// WebhookEvent is the completion notification sent to the automation
// endpoint. Ephemeral: at-most-once delivery, never persisted here.
type WebhookEvent struct {
	EventType      string    `json:"event_type"`
	Subject        string    `json:"subject"`
	Context        string    `json:"context"`
	CompositeScore float64   `json:"composite_score"`
	AvgConfidence  float64   `json:"avg_confidence"`
	Timestamp      time.Time `json:"timestamp"`
	Status         string    `json:"status"`
}

// EventAnalysisCompleted is the single event type emitted by this core.
const EventAnalysisCompleted = "analysis.completed"

// NewCompletionEvent snapshots the key result fields into a WebhookEvent.
func NewCompletionEvent(res AnalysisResult) WebhookEvent {
	return WebhookEvent{
		EventType:      EventAnalysisCompleted,
		Subject:        res.Subject,
		Context:        res.Context,
		CompositeScore: res.Composite.Score,
		AvgConfidence:  res.AvgConfidence(),
		Timestamp:      res.Timestamp,
		Status:         "completed",
	}
}

// Validate checks the request boundary contract.
func (r AnalysisRequest) Validate() error {
	if r.Subject == "" {
		return fmt.Errorf("analysis request: subject is required")
	}
	if r.Context == "" {
		return fmt.Errorf("analysis request: context is required")
	}
	return nil
}
