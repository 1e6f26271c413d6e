package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foostrack/foostrack/internal/platform/logging"
	"github.com/foostrack/foostrack/internal/platform/resilience"
	"github.com/foostrack/foostrack/internal/usecase"
)

func testEvent() usecase.MatchRecordedEvent {
	return usecase.MatchRecordedEvent{
		MatchID:      "mt-1001",
		WinnerTeamID: "tm-alphas",
		LoserTeamID:  "tm-bravos",
		IsShutout:    true,
		PlayedAt:     time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
		PlayerDeltas: map[string]int{"pl-ada": 25, "pl-cam": -25},
	}
}

func newTestNotifier(url string, circuit resilience.CircuitBreakerConfig) *WebhookNotifier {
	return NewWebhookNotifier(WebhookNotifierConfig{
		URL:            url,
		Secret:         "hook-secret",
		Timeout:        2 * time.Second,
		CircuitBreaker: circuit,
	}, logging.NewNop())
}

func TestMatchRecordedDeliversPayload(t *testing.T) {
	var gotBody []byte
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Webhook-Token")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL, resilience.CircuitBreakerConfig{Enabled: false})
	require.NoError(t, n.MatchRecorded(context.Background(), testEvent()))

	assert.Equal(t, "hook-secret", gotToken)

	var payload matchRecordedPayload
	require.NoError(t, sonic.Unmarshal(gotBody, &payload))
	assert.Equal(t, "match.recorded", payload.Event)
	assert.Equal(t, "mt-1001", payload.MatchID)
	assert.Equal(t, 25, payload.PlayerDeltas["pl-ada"])
	assert.True(t, payload.IsShutout)
}

func TestMatchRecordedNonRetryableStatusFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL, resilience.CircuitBreakerConfig{Enabled: false})
	err := n.MatchRecorded(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=400")
	assert.NotErrorIs(t, err, errWebhookTransient)
}

func TestMatchRecordedServerErrorsOpenCircuit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	for i := 0; i < 2; i++ {
		err := n.MatchRecorded(context.Background(), testEvent())
		require.Error(t, err)
		assert.ErrorIs(t, err, errWebhookTransient)
	}

	// Threshold reached: the breaker now rejects without calling out.
	err := n.MatchRecorded(context.Background(), testEvent())
	require.Error(t, err)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
}

func TestMatchRecordedRejectsBadURL(t *testing.T) {
	n := newTestNotifier("ftp://hooks.example.com", resilience.CircuitBreakerConfig{Enabled: false})
	err := n.MatchRecorded(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scheme")
}

func TestValidateHTTPBaseURL(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"valid https", "https://hooks.example.com/foostrack/", "https://hooks.example.com/foostrack", false},
		{"valid http", "http://localhost:9090", "http://localhost:9090", false},
		{"empty", "  ", "", true},
		{"no host", "https://", "", true},
		{"bad scheme", "ws://hooks.example.com", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := validateHTTPBaseURL(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBuildPayloadPreviewTruncates(t *testing.T) {
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'x'
	}

	got := buildPayloadPreview(string(long), 10)
	assert.Equal(t, "xxxxxxxxxx...(truncated)", got)

	short := buildPayloadPreview("short", 10)
	assert.Equal(t, "short", short)
}
