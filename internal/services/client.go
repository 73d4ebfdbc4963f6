package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/weicopy/cli/internal/shared"
)

// Client performs authenticated HTTP requests against the WeiCopy server.
// All requests pass through a shared rate limiter so that polling, uploads
// and downloads stay within the configured request rate.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	creds      Credentials
	logger     *log.Logger
}

// NewClient creates a Client for the server at baseURL. A nil httpClient
// falls back to a default with a 30 second timeout; requestsPerSecond <= 0
// disables rate limiting.
func NewClient(baseURL string, httpClient *http.Client, creds Credentials, requestsPerSecond float64, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
		creds:      creds,
		logger:     logger,
	}
}

// doRequest sends one request. The bearer token is read from the session
// store at call time so a login or logout mid-run takes effect on the next
// request. A 401 clears the stored credential and maps to
// [shared.ErrUnauthorized].
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token, ok := c.creds.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		if clearErr := c.creds.Clear(); clearErr != nil {
			c.logger.Warn("failed to clear rejected session", "err", clearErr)
		}
		return nil, fmt.Errorf("%s %s: %w", method, path, shared.ErrUnauthorized)
	}

	return resp, nil
}

// decodeJSON reads and decodes a response body into out, mapping error
// statuses to the shared sentinel errors.
func decodeJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// checkStatus maps non-2xx statuses to sentinel errors, consuming a short
// prefix of the body for the message.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg := readErrorMessage(resp.Body)
	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrNotFound, msg)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", shared.ErrValidation, msg)
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return fmt.Errorf("%w: %s", shared.ErrServiceUnavailable, msg)
	default:
		return fmt.Errorf("%w: status %d: %s", shared.ErrFetchFailed, resp.StatusCode, msg)
	}
}

// readErrorMessage extracts the server's error string from a failed
// response. The server wraps errors as {"error": "..."}; anything else is
// returned verbatim, truncated.
func readErrorMessage(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 1024))
	if err != nil || len(body) == 0 {
		return "no error detail"
	}

	var wrapped struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Error != "" {
		return wrapped.Error
	}
	return string(body)
}
