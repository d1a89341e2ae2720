package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
)

// ClinicalTrials.gov API v2 study shapes, trimmed to the fields we read.
type ctgovResponse struct {
	Studies []ctgovStudy `json:"studies"`
}

type ctgovStudy struct {
	ProtocolSection struct {
		IdentificationModule struct {
			NCTID      string `json:"nctId"`
			BriefTitle string `json:"briefTitle"`
		} `json:"identificationModule"`
		StatusModule struct {
			OverallStatus  string `json:"overallStatus"`
			EnrollmentInfo struct {
				Count int `json:"count"`
			} `json:"enrollmentInfo"`
			StartDateStruct struct {
				Date string `json:"date"`
			} `json:"startDateStruct"`
		} `json:"statusModule"`
		DesignModule struct {
			Phases []string `json:"phases"`
		} `json:"designModule"`
	} `json:"protocolSection"`
}

// FetchTrials queries registered studies for the subject and context terms.
// An empty slice means the registry had no matching studies.
func (c *Client) FetchTrials(ctx context.Context, subject, context_ string) ([]models.TrialRecord, error) {
	q := url.Values{}
	q.Set("query.term", subject+" AND "+context_)
	q.Set("format", "json")
	q.Set("pageSize", "50")
	q.Set("fields", "NCTId,BriefTitle,OverallStatus,Phase,EnrollmentCount,StartDate")

	var resp ctgovResponse
	if err := c.getJSON(ctx, "clinical_trials", c.endpoints.ClinicalTrials, "/studies", q, &resp); err != nil {
		return nil, err
	}

	trials := make([]models.TrialRecord, 0, len(resp.Studies))
	for _, s := range resp.Studies {
		p := s.ProtocolSection
		if p.StatusModule.EnrollmentInfo.Count <= 0 {
			continue
		}
		phase := strings.Join(p.DesignModule.Phases, ", ")
		if phase == "" {
			phase = "N/A"
		}
		title := p.IdentificationModule.BriefTitle
		if len(title) > 80 {
			title = title[:80]
		}
		trials = append(trials, models.TrialRecord{
			ID:         p.IdentificationModule.NCTID,
			Title:      title,
			Phase:      phase,
			Status:     p.StatusModule.OverallStatus,
			Enrollment: p.StatusModule.EnrollmentInfo.Count,
			Started:    p.StatusModule.StartDateStruct.Date,
		})
	}
	if len(resp.Studies) > 0 && len(trials) == 0 {
		return nil, fmt.Errorf("clinical_trials: %w: no study carried an enrollment count", ErrMalformed)
	}
	return trials, nil
}
