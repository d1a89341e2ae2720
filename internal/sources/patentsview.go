package sources

import (
	"context"
	"fmt"
	"net/url"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
)

type patentsResponse struct {
	Patents []patentRecord `json:"patents"`
	Total   int            `json:"total_hits"`
}

type patentRecord struct {
	PatentID    string `json:"patent_id"`
	PatentTitle string `json:"patent_title"`
	PatentDate  string `json:"patent_date"`
	Assignees   []struct {
		Organization string `json:"assignee_organization"`
	} `json:"assignees"`
}

// FetchPatents queries PatentsView for granted patents mentioning the
// subject. Returns the matched records and the total hit count.
func (c *Client) FetchPatents(ctx context.Context, subject string) ([]models.PatentRecord, int, error) {
	q := url.Values{}
	q.Set("q", fmt.Sprintf(`{"_text_any":{"patent_title":%q}}`, subject))
	q.Set("f", `["patent_id","patent_title","patent_date","assignees.assignee_organization"]`)
	q.Set("o", `{"size":25}`)

	var resp patentsResponse
	if err := c.getJSON(ctx, "patents_view", c.endpoints.PatentsView, "/patent/", q, &resp); err != nil {
		return nil, 0, err
	}

	patents := make([]models.PatentRecord, 0, len(resp.Patents))
	for _, p := range resp.Patents {
		if p.PatentID == "" {
			return nil, 0, fmt.Errorf("patents_view: %w: patent without id", ErrMalformed)
		}
		assignee := "Unassigned"
		if len(p.Assignees) > 0 && p.Assignees[0].Organization != "" {
			assignee = p.Assignees[0].Organization
		}
		patents = append(patents, models.PatentRecord{
			Number:   p.PatentID,
			Title:    p.PatentTitle,
			Assignee: assignee,
			Expiry:   p.PatentDate,
		})
	}
	return patents, resp.Total, nil
}
