package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go2gg/edge/ratelimit"
)

/* Client implements ratelimit.Limiter against a counter service speaking the check protocol:
 *   GET  {base}/v1/ratelimit/{key}/check?limit=<int>&window=<seconds> -> {"allowed","remaining","resetAt"}
 *   POST {base}/v1/ratelimit/{key}/reset                              -> 204
 * The counter service owns the per-key serialization.
 */

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a remote limiter client. A nil httpClient gets a 2s timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Check asks the counter service for a decision
func (c *Client) Check(ctx context.Context, key string, policy ratelimit.Policy) (ratelimit.Result, error) {
	if err := policy.Validate(); err != nil {
		return ratelimit.Result{}, err
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(policy.Limit))
	q.Set("window", strconv.Itoa(policy.WindowSeconds()))
	endpoint := fmt.Sprintf("%s/v1/ratelimit/%s/check?%s", c.baseURL, url.PathEscape(key), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ratelimit.Result{}, fmt.Errorf("creating check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ratelimit.Result{}, fmt.Errorf("calling counter service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return ratelimit.Result{}, fmt.Errorf("counter service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result ratelimit.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return ratelimit.Result{}, fmt.Errorf("decoding check response: %w", err)
	}
	result.Limit = policy.Limit
	return result, nil
}

// Reset clears the window on the counter service
func (c *Client) Reset(ctx context.Context, key string) error {
	endpoint := fmt.Sprintf("%s/v1/ratelimit/%s/reset", c.baseURL, url.PathEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating reset request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling counter service: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("counter service returned %d on reset", resp.StatusCode)
	}
	return nil
}
