package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	ActionCountryAdded   = "Country Added"
	ActionCountryDeleted = "Country Deleted"
)

// Notifier delivers an out-of-band event after a country is created or deleted.
type Notifier interface {
	Notify(ctx context.Context, action, details string) error
}

type Nop struct{}

func (Nop) Notify(context.Context, string, string) error { return nil }

// Logger writes events to the application log instead of a remote endpoint.
type Logger struct {
	Log *zap.SugaredLogger
}

func (l Logger) Notify(_ context.Context, action, details string) error {
	l.Log.Infow("country event", "action", action, "details", details)
	return nil
}

type Event struct {
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

// Webhook posts events as JSON to a function endpoint.
type Webhook struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
	now     func() time.Time
}

func NewWebhook(url string, timeout time.Duration) *Webhook {
	return &Webhook{
		URL:     url,
		Client:  &http.Client{},
		Timeout: timeout,
		now:     time.Now,
	}
}

func (w *Webhook) Notify(ctx context.Context, action, details string) error {
	now := time.Now
	if w.now != nil {
		now = w.now
	}
	body, err := json.Marshal(Event{Action: action, Details: details, Timestamp: now().UTC()})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	if w.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("post event: unexpected status %s", resp.Status)
	}
	return nil
}
