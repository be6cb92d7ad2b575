package sensor

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// WebhookPublisher POSTs state changes as JSON to a configured URL. Delivery
// is best effort: failures are logged and never interrupt the update pass.
type WebhookPublisher struct {
	url     string
	client  *http.Client
	log     *zap.Logger
	timeout time.Duration
}

func NewWebhookPublisher(url string, client *http.Client, log *zap.Logger) *WebhookPublisher {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookPublisher{
		url:     url,
		client:  client,
		log:     log,
		timeout: 5 * time.Second,
	}
}

func (p *WebhookPublisher) Publish(ctx context.Context, st State) {
	body, err := json.Marshal(st)
	if err != nil {
		p.log.Error("webhook: encode state", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		p.log.Error("webhook: build request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Error("webhook: deliver state change", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		p.log.Error("webhook: remote rejected state change",
			zap.Int("status", resp.StatusCode),
			zap.String("sensor", st.Name),
		)
	}
}
