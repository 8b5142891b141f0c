package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"text/template"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mfreeman451/routeradar/pkg/config"
	"github.com/mfreeman451/routeradar/pkg/logger"
	"github.com/mfreeman451/routeradar/pkg/models"
	"golang.org/x/time/rate"
)

// WebhookPayload is the default JSON body posted for an alert.
type WebhookPayload struct {
	Level     models.Severity `json:"level"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Timestamp string          `json:"timestamp"`
	UserID    int64           `json:"user_id"`
	DeviceID  int64           `json:"device_id"`
	Details   map[string]any  `json:"details,omitempty"`
}

// admittedAlerts is how many recently rate-limited alert ids are
// remembered so their remaining recipients pass the limiter.
const admittedAlerts = 256

// WebhookNotifier posts alerts to an HTTP endpoint. The rate limit counts
// alerts, not deliveries: once an alert is admitted every recipient of it
// gets the webhook.
type WebhookNotifier struct {
	config     config.WebhookConfig
	client     *http.Client
	limiter    *rate.Limiter
	limitMu    sync.Mutex
	admitted   *lru.Cache[int64, struct{}]
	tmpl       *template.Template
	bufferPool *sync.Pool
	log        logger.Logger
}

// NewWebhookNotifier builds a notifier. A configured template is parsed
// up front so a broken template fails at startup.
func NewWebhookNotifier(cfg config.WebhookConfig, log logger.Logger) (*WebhookNotifier, error) {
	w := &WebhookNotifier{
		config: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
		log: log,
	}

	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}

		admitted, err := lru.New[int64, struct{}](admittedAlerts)
		if err != nil {
			return nil, err
		}

		w.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
		w.admitted = admitted
	}

	if cfg.Template != "" {
		tmpl, err := template.New("webhook").Funcs(w.templateFuncs()).Parse(cfg.Template)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errTemplateParse, err)
		}

		w.tmpl = tmpl
	}

	return w, nil
}

func (w *WebhookNotifier) IsEnabled() bool {
	return w.config.Enabled
}

func (w *WebhookNotifier) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"json": func(v interface{}) (string, error) {
			b, err := json.Marshal(v)
			if err != nil {
				return "", fmt.Errorf("JSON marshaling failed: %w", err)
			}

			return string(b), nil
		},
	}
}

func (w *WebhookNotifier) Deliver(ctx context.Context, userID int64, alert *models.Alert) error {
	if !w.IsEnabled() {
		return ErrWebhookDisabled
	}

	if !w.allow(alert.ID) {
		w.log.Warn().Int64("alert_id", alert.ID).Msg("Webhook delivery rate limited, skipping")

		return ErrWebhookRateLimited
	}

	payload, err := w.preparePayload(userID, alert)
	if err != nil {
		return fmt.Errorf("failed to prepare payload: %w", err)
	}

	return w.sendRequest(ctx, payload)
}

// allow takes a limiter token the first time an alert is seen. Alerts
// without an id are limited per delivery.
func (w *WebhookNotifier) allow(alertID int64) bool {
	if w.limiter == nil {
		return true
	}

	w.limitMu.Lock()
	defer w.limitMu.Unlock()

	if alertID != 0 && w.admitted.Contains(alertID) {
		return true
	}

	if !w.limiter.Allow() {
		return false
	}

	if alertID != 0 {
		w.admitted.Add(alertID, struct{}{})
	}

	return true
}

func title(kind models.AlertKind) string {
	switch kind {
	case models.KindDeviceUnreachable:
		return "Device Unreachable"
	case models.KindInterfaceDown:
		return "Interface Down"
	case models.KindTrafficLow:
		return "Traffic Below Threshold"
	default:
		return string(kind)
	}
}

func newPayload(userID int64, alert *models.Alert) *WebhookPayload {
	ts := alert.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	p := &WebhookPayload{
		Level:     alert.Severity,
		Title:     title(alert.Kind),
		Message:   alert.Message,
		Timestamp: ts.UTC().Format(time.RFC3339),
		UserID:    userID,
		DeviceID:  alert.DeviceID,
		Details: map[string]any{
			"alert_id":      alert.ID,
			"condition_key": alert.ConditionKey,
		},
	}

	if alert.InterfaceName != "" {
		p.Details["interface"] = alert.InterfaceName
	}

	if alert.Kind == models.KindTrafficLow {
		p.Details["current_bps"] = alert.CurrentTrafficBps
		p.Details["threshold_bps"] = alert.ThresholdBps
	}

	return p
}

func (w *WebhookNotifier) preparePayload(userID int64, alert *models.Alert) ([]byte, error) {
	payload := newPayload(userID, alert)

	if w.tmpl == nil {
		return json.Marshal(payload)
	}

	buf := w.bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer w.bufferPool.Put(buf)

	if err := w.tmpl.Execute(buf, map[string]interface{}{
		"alert":   payload,
		"raw":     alert,
		"user_id": userID,
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", errTemplateExecution, err)
	}

	if !json.Valid(buf.Bytes()) {
		return nil, errInvalidJSON
	}

	return append([]byte(nil), buf.Bytes()...), nil
}

func (w *WebhookNotifier) sendRequest(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	w.setHeaders(req)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}

	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			w.log.Debug().Err(err).Msg("Failed to close webhook response body")
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return fmt.Errorf("%w: status=%d body=%s", errWebhookStatus, resp.StatusCode, string(errBody))
	}

	return nil
}

func (w *WebhookNotifier) setHeaders(req *http.Request) {
	hasContentType := false

	for _, header := range w.config.Headers {
		if strings.EqualFold(header.Key, "content-type") {
			hasContentType = true
		}

		req.Header.Set(header.Key, header.Value)
	}

	if !hasContentType {
		req.Header.Set("Content-Type", "application/json")
	}
}
