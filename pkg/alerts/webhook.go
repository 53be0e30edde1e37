package alerts

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Delivery headers set on every webhook request.
const (
	HeaderSignature = "X-Signature-256"
	HeaderDelivery  = "X-Airwatch-Delivery"
	HeaderEvent     = "X-Airwatch-Event"
)

// WebhookNotifier posts alert events as JSON to an arbitrary endpoint.
type WebhookNotifier struct {
	url    string
	secret string
	client *http.Client
}

// NewWebhookNotifier creates a generic webhook notifier.
// If secret is non-empty, request bodies are signed with HMAC-SHA256.
func NewWebhookNotifier(url, secret string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WebhookNotifier) Name() string { return "webhook" }

func (w *WebhookNotifier) Send(ctx context.Context, alert Alert) error {
	event := webhookEvent{
		ID:         uuid.NewString(),
		Event:      "aircraft_" + string(alert.Kind),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		ObservedAt: alert.Timestamp.UTC().Format(time.RFC3339),
		TrackURL:   TrackURL(alert.ICAO),
		Alert:      alert,
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal webhook event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "airwatch/1.0")
	req.Header.Set(HeaderDelivery, event.ID)
	req.Header.Set(HeaderEvent, event.Event)
	if w.secret != "" {
		req.Header.Set(HeaderSignature, "sha256="+sign(body, []byte(w.secret)))
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook event %s: %w", event.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d for event %s", resp.StatusCode, event.ID)
	}
	return nil
}

type webhookEvent struct {
	ID         string `json:"id"`
	Event      string `json:"event"`
	Timestamp  string `json:"timestamp"`
	ObservedAt string `json:"observed_at"`
	TrackURL   string `json:"track_url"`
	Alert      Alert  `json:"alert"`
}

func sign(body, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
