package alerts

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func webhookConfig(url string) config.Alerts {
	return config.Alerts{
		WebhookURL:     url,
		RateLimit:      100,
		RateLimitBurst: 10,
	}
}

func TestWebhookNotifierDelivers(t *testing.T) {
	var received models.Alert
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	n := NewWebhookNotifier(webhookConfig(ts.URL), zap.NewNop())
	err := n.Notify(models.Alert{ID: 7, Level: models.LevelCritical, Message: "Bot disconnected"})
	require.NoError(t, err)

	assert.Equal(t, uint(7), received.ID)
	assert.Equal(t, "Bot disconnected", received.Message)
}

func TestWebhookNotifierRetriesServerErrors(t *testing.T) {
	var attempts int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	n := NewWebhookNotifier(webhookConfig(ts.URL), zap.NewNop())
	err := n.Notify(models.Alert{Level: models.LevelCritical, Message: "flaky sink"})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestWebhookNotifierDoesNotRetryClientErrors(t *testing.T) {
	var attempts int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	n := NewWebhookNotifier(webhookConfig(ts.URL), zap.NewNop())
	err := n.Notify(models.Alert{Level: models.LevelCritical, Message: "rejected"})
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}
