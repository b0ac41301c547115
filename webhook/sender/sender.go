package sender

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go2gg/edge/webhook"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultTimeout bounds one delivery when none is configured
const DefaultTimeout = 10 * time.Second

// responseReadLimit caps how much of a response body is read; 1000 characters of UTF-8 fit in it
const responseReadLimit = 4 * webhook.ResponseLimit

/* HTTP implements webhook.Sender
 * Every request carries an explicit timeout so a hanging endpoint cannot stall a fan-out.
 */
type HTTP struct {
	client  *http.Client
	timeout time.Duration
}

// New creates a sender with the given per-delivery timeout. Requests are traced through otelhttp.
func New(timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTP{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		timeout: timeout,
	}
}

// NewWithClient wraps an existing client; used by tests
func NewWithClient(client *http.Client, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTP{client: client, timeout: timeout}
}

// Send POSTs the request. 2xx is success; anything else, including network errors, is failure.
func (h *HTTP) Send(ctx context.Context, r webhook.Request) webhook.Outcome {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(r.Body))
	if err != nil {
		return webhook.Outcome{
			Response: err.Error(),
			Err:      fmt.Errorf("creating request: %w", err),
			Duration: time.Since(start),
		}
	}
	for key, value := range r.Headers {
		req.Header.Set(key, value)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return webhook.Outcome{
			Response: err.Error(),
			Err:      fmt.Errorf("sending request: %w", err),
			Duration: time.Since(start),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseReadLimit))
	duration := time.Since(start)
	if err != nil {
		body = []byte("failed to read response body")
	}

	return webhook.Outcome{
		StatusCode: resp.StatusCode,
		Response:   webhook.Truncate(string(body), webhook.ResponseLimit),
		Duration:   duration,
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 300,
	}
}
