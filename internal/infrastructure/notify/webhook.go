package notify

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/foostrack/foostrack/internal/platform/logging"
	"github.com/foostrack/foostrack/internal/platform/resilience"
	"github.com/foostrack/foostrack/internal/usecase"
)

var errWebhookTransient = crerr.New("webhook transient failure")

type WebhookNotifierConfig struct {
	URL            string
	Secret         string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// WebhookNotifier posts recorded matches to a configured endpoint, typically
// a chat integration. Delivery is best effort; the caller treats errors as
// log-only.
type WebhookNotifier struct {
	client         *fasthttp.Client
	url            string
	secret         string
	timeout        time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewWebhookNotifier(cfg WebhookNotifierConfig, logger *logging.Logger) *WebhookNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &WebhookNotifier{
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		url:            strings.TrimSpace(cfg.URL),
		secret:         strings.TrimSpace(cfg.Secret),
		timeout:        timeout,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type matchRecordedPayload struct {
	Event        string         `json:"event"`
	MatchID      string         `json:"match_id"`
	WinnerTeamID string         `json:"winner_team_id"`
	LoserTeamID  string         `json:"loser_team_id"`
	IsShutout    bool           `json:"is_shutout"`
	PlayedAt     time.Time      `json:"played_at"`
	PlayerDeltas map[string]int `json:"player_deltas"`
}

func (n *WebhookNotifier) MatchRecorded(ctx context.Context, event usecase.MatchRecordedEvent) error {
	if n.circuitEnabled {
		if err := n.breaker.Allow(); err != nil {
			n.logger.WarnContext(ctx, "webhook circuit breaker rejected request", "state", n.breaker.State())
			return fmt.Errorf("webhook endpoint is temporarily unavailable: %w", err)
		}
	}

	endpoint, err := validateHTTPBaseURL(n.url)
	if err != nil {
		return crerr.Wrap(err, "invalid WEBHOOK_URL")
	}

	body, err := sonic.Marshal(matchRecordedPayload{
		Event:        "match.recorded",
		MatchID:      event.MatchID,
		WinnerTeamID: event.WinnerTeamID,
		LoserTeamID:  event.LoserTeamID,
		IsShutout:    event.IsShutout,
		PlayedAt:     event.PlayedAt,
		PlayerDeltas: event.PlayerDeltas,
	})
	if err != nil {
		return crerr.Wrap(err, "marshal webhook payload")
	}
	preview := buildPayloadPreview(string(body), 4096)

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("webhook.url", endpoint),
			attribute.String("webhook.match_id", event.MatchID),
			attribute.String("webhook.request_body", preview),
		)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if n.secret != "" {
		req.Header.Set("X-Webhook-Token", n.secret)
	}
	req.SetBody(body)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.client.DoTimeout(req, resp, n.timeout); err != nil {
		callErr := fmt.Errorf("%w: post match webhook url=%s: %v", errWebhookTransient, endpoint, err)
		n.recordCircuitResult(callErr)
		return callErr
	}

	status := resp.StatusCode()
	if status/100 != 2 {
		respBody := strings.TrimSpace(buildPayloadPreview(string(resp.Body()), 4096))
		if isRetryableStatus(status) {
			callErr := fmt.Errorf("%w: post match webhook status=%d url=%s body=%s",
				errWebhookTransient, status, endpoint, respBody)
			n.recordCircuitResult(callErr)
			return callErr
		}
		callErr := fmt.Errorf("post match webhook status=%d url=%s body=%s", status, endpoint, respBody)
		n.recordCircuitResult(callErr)
		return callErr
	}

	n.logger.InfoContext(ctx, "match webhook delivered", "match_id", event.MatchID, "status", status)
	n.recordCircuitResult(nil)
	return nil
}

func (n *WebhookNotifier) recordCircuitResult(err error) {
	if !n.circuitEnabled || n.breaker == nil {
		return
	}
	if err == nil {
		n.breaker.ReportSuccess()
		return
	}
	if stderrors.Is(err, errWebhookTransient) {
		n.breaker.ReportFailure()
		return
	}
	n.breaker.ReportSuccess()
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == fasthttp.StatusRequestTimeout ||
		statusCode == fasthttp.StatusTooManyRequests ||
		statusCode >= fasthttp.StatusInternalServerError
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

func buildPayloadPreview(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(value[:max])
	_, _ = buf.WriteString("...(truncated)")
	return buf.String()
}
