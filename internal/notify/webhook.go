package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/sjson"

	"github.com/compresr/pool-watcher/internal/alerts"
	"github.com/compresr/pool-watcher/internal/monitoring"
)

// maxDrainBytes bounds how much of a response body is read before closing.
const maxDrainBytes = 64 << 10

// RequestSigner signs an outgoing webhook request.
type RequestSigner interface {
	SignRequest(ctx context.Context, req *http.Request, body []byte) error
}

// Webhook posts alerts as {"text": "..."} to a chat webhook.
type Webhook struct {
	cfg     Config
	client  *http.Client
	signer  RequestSigner
	flagger *monitoring.Flagger
}

// WebhookOption configures a Webhook.
type WebhookOption func(*Webhook)

// WithHTTPClient replaces the default client. The configured timeout is
// still enforced per request through the context.
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(w *Webhook) {
		if c != nil {
			w.client = c
		}
	}
}

// WithSigner signs every request before it is sent.
func WithSigner(s RequestSigner) WebhookOption {
	return func(w *Webhook) { w.signer = s }
}

// WithFlagger reports delivery outcomes to f.
func WithFlagger(f *monitoring.Flagger) WebhookOption {
	return func(w *Webhook) {
		if f != nil {
			w.flagger = f
		}
	}
}

// NewWebhook creates a webhook notifier.
func NewWebhook(cfg Config, opts ...WebhookOption) *Webhook {
	w := &Webhook{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.timeout()},
		flagger: monitoring.NewFlagger(nil, nil),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Notify delivers the alert once. It is a no-op without a destination and
// never reports failure to the caller.
func (w *Webhook) Notify(alert alerts.Alert) {
	if !w.cfg.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.timeout())
	defer cancel()

	status, err := w.Send(ctx, alert)
	if err != nil {
		w.flagger.FlagNotifyFailure(alert.ID, alert.Rule, err)
		return
	}
	w.flagger.FlagNotifySent(alert.ID, alert.Rule, status)
}

// Send performs a single delivery attempt and returns the response status.
// Non-2xx responses are errors.
func (w *Webhook) Send(ctx context.Context, alert alerts.Alert) (int, error) {
	body, err := w.Body(alert)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if w.signer != nil {
		if err := w.signer.SignRequest(ctx, req, body); err != nil {
			return 0, err
		}
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

// Body renders the JSON payload for alert.
func (w *Webhook) Body(alert alerts.Alert) ([]byte, error) {
	text := alert.Message
	if w.cfg.Prefix != "" {
		text = w.cfg.Prefix + " | " + alert.Message
	}
	body, err := sjson.SetBytes([]byte(`{}`), "text", text)
	if err != nil {
		return nil, fmt.Errorf("encode webhook body: %w", err)
	}
	return body, nil
}
