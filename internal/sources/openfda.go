package sources

import (
	"context"
	"fmt"
	"net/url"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
)

type faersResponse struct {
	Results []struct {
		Term  string `json:"term"`
		Count int    `json:"count"`
	} `json:"results"`
}

// AdverseEventSummary is the FAERS aggregation a safety analysis consumes.
type AdverseEventSummary struct {
	TotalReports int
	SeriousCount int
	TopEvents    []models.AdverseEvent
}

// FetchAdverseEvents aggregates FAERS reaction counts for the subject.
func (c *Client) FetchAdverseEvents(ctx context.Context, subject string) (*AdverseEventSummary, error) {
	q := url.Values{}
	q.Set("search", fmt.Sprintf(`patient.drug.medicinalproduct:%q`, subject))
	q.Set("count", "patient.reaction.reactionmeddrapt.exact")
	q.Set("limit", "12")

	var resp faersResponse
	if err := c.getJSON(ctx, "open_fda", c.endpoints.OpenFDA, "/drug/event.json", q, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("open_fda: %w: empty FAERS aggregation", ErrMalformed)
	}

	summary := &AdverseEventSummary{}
	for _, r := range resp.Results {
		if r.Term == "" || r.Count < 0 {
			return nil, fmt.Errorf("open_fda: %w: aggregation row missing term or count", ErrMalformed)
		}
		summary.TotalReports += r.Count
		summary.TopEvents = append(summary.TopEvents, models.AdverseEvent{Term: r.Term, Reports: r.Count})
	}

	// Serious-outcome subset, best effort within the same budget.
	sq := url.Values{}
	sq.Set("search", fmt.Sprintf(`patient.drug.medicinalproduct:%q AND serious:1`, subject))
	sq.Set("count", "patient.reaction.reactionmeddrapt.exact")
	sq.Set("limit", "5")
	var serious faersResponse
	if err := c.getJSON(ctx, "open_fda", c.endpoints.OpenFDA, "/drug/event.json", sq, &serious); err == nil {
		for _, r := range serious.Results {
			summary.SeriousCount += r.Count
		}
	}
	return summary, nil
}

type ndcResponse struct {
	Results []struct {
		BrandName    string `json:"brand_name"`
		LabelerName  string `json:"labeler_name"`
		MarketStatus string `json:"marketing_category"`
	} `json:"results"`
}

// MarketPresence lists labelers currently marketing products for the
// subject, a proxy for the competitive landscape.
func (c *Client) MarketPresence(ctx context.Context, subject string) ([]string, error) {
	q := url.Values{}
	q.Set("search", fmt.Sprintf(`generic_name:%q`, subject))
	q.Set("limit", "20")

	var resp ndcResponse
	if err := c.getJSON(ctx, "open_fda", c.endpoints.OpenFDA, "/drug/ndc.json", q, &resp); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var labelers []string
	for _, r := range resp.Results {
		if r.LabelerName == "" || seen[r.LabelerName] {
			continue
		}
		seen[r.LabelerName] = true
		labelers = append(labelers, r.LabelerName)
	}
	if len(labelers) == 0 {
		return nil, fmt.Errorf("open_fda: %w: NDC results carried no labeler names", ErrMalformed)
	}
	return labelers, nil
}
