package publishers

import (
	"context"
	"fmt"
	"strings"

	"github.com/samvad-hq/jsonfetch/pkg/httpclient"
)

// Event metadata sent as webhook headers.
const (
	headerEventID     = "X-Event-ID"
	headerEventAction = "X-Event-Action"
)

type webhookPublisher struct {
	id     string
	cfg    HTTPConfig
	client httpclient.Client
	log    Logger
}

func newHTTPPublisher(_ context.Context, cfg Config, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q has no http block", cfg.ID)
	}
	return &webhookPublisher{
		id:     cfg.ID,
		cfg:    *cfg.HTTP,
		client: httpclient.NewRestyClient(httpclient.Options{Timeout: cfg.HTTP.timeout()}),
		log:    orNop(log),
	}, nil
}

func (p *webhookPublisher) ID() string   { return p.id }
func (p *webhookPublisher) Type() string { return TypeHTTP }

func (p *webhookPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := evt.payload()
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	headers := map[string]string{
		"Content-Type":    "application/json",
		headerEventID:     evt.ID,
		headerEventAction: evt.Action,
	}
	for k, v := range p.cfg.Headers {
		headers[k] = v
	}

	resp, err := p.client.Do(ctx, httpclient.Request{
		Method:  p.cfg.Method,
		URL:     p.cfg.URL,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	if !resp.IsSuccess() {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		p.log.WarnObj("webhook rejected event", "publisher_error", map[string]any{
			"publisher_id": p.id,
			"event_id":     evt.ID,
			"status":       resp.StatusCode(),
		})
		return fmt.Errorf("webhook responded %d: %s", resp.StatusCode(), snippet)
	}
	p.log.DebugObj("event sent to webhook", "publisher_delivery", map[string]any{
		"publisher_id": p.id,
		"event_id":     evt.ID,
		"status":       resp.StatusCode(),
	})
	return nil
}
