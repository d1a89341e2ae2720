// Package sources holds the typed HTTP clients for the external data
// registries the remote agents consult: ClinicalTrials.gov, Europe PMC,
// PatentsView and openFDA. Each call is context-bounded and rate-limited
// per source; a response that does not decode into the declared shape is
// reported as ErrMalformed so the caller can classify it as a schema
// mismatch rather than a transport failure.
package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"go.uber.org/zap"
)

// ErrMalformed marks a payload that arrived but did not conform to the
// source's documented schema.
var ErrMalformed = errors.New("malformed source payload")

// Endpoints configures the upstream base URLs. Tests point these at
// httptest servers.
type Endpoints struct {
	ClinicalTrials string `mapstructure:"clinical_trials"`
	EuropePMC      string `mapstructure:"europe_pmc"`
	PatentsView    string `mapstructure:"patents_view"`
	OpenFDA        string `mapstructure:"open_fda"`
}

// DefaultEndpoints returns the production registry URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		ClinicalTrials: "https://clinicaltrials.gov/api/v2",
		EuropePMC:      "https://www.ebi.ac.uk/europepmc/webservices/rest",
		PatentsView:    "https://search.patentsview.org/api/v1",
		OpenFDA:        "https://api.fda.gov",
	}
}

// Client is the shared transport for all source calls.
type Client struct {
	http      *http.Client
	endpoints Endpoints
	logger    *zap.Logger

	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
}

// NewClient builds a source client. perSourceRPM maps a source key
// (clinical_trials, europe_pmc, patents_view, open_fda) to its requests
// per minute budget; zero disables limiting for that source.
func NewClient(endpoints Endpoints, perSourceRPM map[string]int, logger *zap.Logger) *Client {
	c := &Client{
		http:      &http.Client{Timeout: 15 * time.Second},
		endpoints: endpoints,
		logger:    logger,
		limiters:  make(map[string]*rate.Limiter),
	}
	c.SetRateLimits(perSourceRPM)
	return c
}

// SetRateLimits replaces the per-source limiters. Safe for concurrent use;
// the config watcher calls this on rate-limit reload.
func (c *Client) SetRateLimits(perSourceRPM map[string]int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limiters = make(map[string]*rate.Limiter, len(perSourceRPM))
	for source, rpm := range perSourceRPM {
		if rpm <= 0 {
			continue
		}
		c.limiters[source] = rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm)
	}
}

func (c *Client) wait(ctx context.Context, source string) error {
	c.mu.RLock()
	lim := c.limiters[source]
	c.mu.RUnlock()
	if lim == nil {
		return nil
	}
	return lim.Wait(ctx)
}

// getJSON performs a rate-limited GET and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, source, base, path string, query url.Values, out interface{}) error {
	if err := c.wait(ctx, source); err != nil {
		return fmt.Errorf("%s rate wait: %w", source, err)
	}

	u := base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%s request: %w", source, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s call: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned %d: %s", source, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s decode: %w: %v", source, ErrMalformed, err)
	}
	return nil
}
