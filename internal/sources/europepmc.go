package sources

import (
	"context"
	"fmt"
	"net/url"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
)

type pmcResponse struct {
	ResultList *struct {
		Result []pmcResult `json:"result"`
	} `json:"resultList"`
	HitCount int `json:"hitCount"`
}

type pmcResult struct {
	Title        string `json:"title"`
	AuthorString string `json:"authorString"`
	JournalTitle string `json:"journalTitle"`
	PubYear      string `json:"pubYear"`
}

// FetchLiterature searches Europe PMC for publications linking the subject
// and context. Returns up to ten publications plus the total hit count.
func (c *Client) FetchLiterature(ctx context.Context, subject, context_ string) ([]models.PublicationRecord, int, error) {
	q := url.Values{}
	q.Set("query", fmt.Sprintf("%q AND %q", subject, context_))
	q.Set("format", "json")
	q.Set("pageSize", "10")
	q.Set("resultType", "core")

	var resp pmcResponse
	if err := c.getJSON(ctx, "europe_pmc", c.endpoints.EuropePMC, "/search", q, &resp); err != nil {
		return nil, 0, err
	}
	if resp.ResultList == nil {
		return nil, 0, fmt.Errorf("europe_pmc: %w: missing resultList", ErrMalformed)
	}

	pubs := make([]models.PublicationRecord, 0, len(resp.ResultList.Result))
	for _, r := range resp.ResultList.Result {
		pubs = append(pubs, models.PublicationRecord{
			Title:   r.Title,
			Journal: r.JournalTitle,
			Year:    r.PubYear,
			Authors: r.AuthorString,
		})
	}
	return pubs, resp.HitCount, nil
}
