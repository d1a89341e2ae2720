// Package webhook posts completion events to the configured endpoint.
// Delivery is fire-and-forget from the caller's point of view: failures are
// logged and counted, never propagated into the analysis result.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
)

// Dispatcher delivers completion events over HTTP POST.
type Dispatcher struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewDispatcher builds a dispatcher for the given endpoint. An empty URL
// yields a disabled dispatcher whose Dispatch is a logged no-op.
func NewDispatcher(url string, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Enabled reports whether an endpoint is configured.
func (d *Dispatcher) Enabled() bool { return d.url != "" }

// Dispatch POSTs the event as JSON. A non-2xx response is an error so the
// caller can count it, but callers never fail an analysis over it.
func (d *Dispatcher) Dispatch(ctx context.Context, event models.WebhookEvent) error {
	if !d.Enabled() {
		d.logger.Debug("webhook disabled, dropping event",
			zap.String("event", event.EventType),
			zap.String("subject", event.Subject))
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal webhook event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned %d", resp.StatusCode)
	}

	d.logger.Info("webhook delivered",
		zap.String("event", event.EventType),
		zap.String("subject", event.Subject),
		zap.Int("status", resp.StatusCode))
	return nil
}
