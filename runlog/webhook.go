package runlog

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Event is the payload posted to a webhook endpoint.
type Event struct {
	Type      string  `json:"type"` // "run.completed" or "run.failed"
	Timestamp int64   `json:"timestamp"`
	Data      *Record `json:"data"`
}

// WebhookRecorder posts run records to an HTTP endpoint, signed with
// HMAC-SHA256 when a secret is configured.
// Header: X-ScraperLab-Signature: sha256=<hex>
type WebhookRecorder struct {
	URL    string
	Secret string

	// Client is overridable for tests; nil uses a 10s-timeout default.
	Client *http.Client
}

// retryDelays gives a delivery up to three retries after the first
// attempt. Delays mirror the increasing-backoff schedule used by the
// rest of our outbound calls.
var retryDelays = []time.Duration{0, 1 * time.Second, 5 * time.Second, 30 * time.Second}

// Record delivers asynchronously so the extraction path never waits on
// a slow endpoint.
func (w *WebhookRecorder) Record(_ context.Context, rec *Record) {
	event := &Event{
		Type:      "run.completed",
		Timestamp: time.Now().Unix(),
		Data:      rec,
	}
	if !rec.Success {
		event.Type = "run.failed"
	}
	go w.deliverWithRetry(event)
}

func (w *WebhookRecorder) deliverWithRetry(event *Event) {
	for attempt, delay := range retryDelays {
		if delay > 0 {
			time.Sleep(delay)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := w.deliver(ctx, event)
		cancel()
		if err == nil {
			slog.Debug("run webhook delivered",
				"url", w.URL, "event", event.Type, "attempt", attempt+1)
			return
		}
		slog.Warn("run webhook delivery failed",
			"url", w.URL, "event", event.Type, "attempt", attempt+1, "error", err)
	}
	slog.Error("run webhook delivery exhausted all retries",
		"url", w.URL, "event", event.Type)
}

func (w *WebhookRecorder) deliver(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ScraperLab-Webhook/1.0")

	if w.Secret != "" {
		mac := hmac.New(sha256.New, []byte(w.Secret))
		mac.Write(body)
		req.Header.Set("X-ScraperLab-Signature", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	}

	client := w.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
