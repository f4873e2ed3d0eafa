package alerts

import (
	"context"
	"fmt"
	"time"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Notifier delivers alert notifications to an external sink.
type Notifier interface {
	Notify(alert models.Alert) error
}

// NoopNotifier is used when no webhook is configured.
type NoopNotifier struct{}

// Notify does nothing and returns nil.
func (NoopNotifier) Notify(models.Alert) error { return nil }

// WebhookNotifier POSTs alert payloads to a configured webhook URL,
// throttled by a rate limiter and retried on transient failures.
type WebhookNotifier struct {
	client  *resty.Client
	url     string
	logger  *zap.Logger
	limiter *rate.Limiter
}

// NewWebhookNotifier creates a notifier for the configured webhook.
func NewWebhookNotifier(cfg config.Alerts, logger *zap.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		client:  resty.New().SetTimeout(10 * time.Second),
		url:     cfg.WebhookURL,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst),
	}
}

// Notify posts the alert as JSON. Server errors are retried with a
// short backoff; client errors are not.
func (n *WebhookNotifier) Notify(alert models.Alert) error {
	ctx := context.Background()
	const maxRetries = 3

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if err := n.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}

		resp, err := n.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(alert).
			Post(n.url)
		if err != nil {
			lastErr = err
		} else if resp.StatusCode() >= 500 || resp.StatusCode() == 429 {
			lastErr = fmt.Errorf("webhook returned status %d", resp.StatusCode())
		} else if resp.IsError() {
			return fmt.Errorf("webhook rejected alert: status %d", resp.StatusCode())
		} else {
			return nil
		}

		n.logger.Warn("Webhook delivery failed, retrying",
			zap.Int("attempt", i+1),
			zap.Error(lastErr))
		time.Sleep(time.Duration(i+1) * 500 * time.Millisecond)
	}
	return fmt.Errorf("webhook delivery failed after %d attempts: %w", maxRetries, lastErr)
}
