package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/servicetoken"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sys/unix"
)

const DefaultTimeout time.Duration = 10 * time.Second

// APIError is returned when an upstream service answers with a non successful status
// code. The upstream messages are kept as they were sent.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []string
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}

	return fmt.Sprintf("%s (status %d): %s", e.Message, e.StatusCode, strings.Join(e.Errors, "; "))
}

// Client performs authenticated JSON requests against one upstream service. Transport
// failures are wrapped with the sentinel passed to New so that callers can tell an
// unreachable service from a service that rejected the request.
type Client struct {
	baseURL     string
	tokens      servicetoken.TokenSource
	httpClient  http.Client
	timeout     time.Duration
	unavailable error
}

func New(baseURL string, tokens servicetoken.TokenSource, timeout time.Duration, unavailable error) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		tokens:  tokens,
		httpClient: http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout:     timeout,
		unavailable: unavailable,
	}
}

// Do sends body (if not nil) as JSON and decodes a successful response into result (if
// not nil). A fresh token is requested for every call, and the token exchange counts
// against the same timeout as the request itself.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, result any) (int, error) {
	log := logging.GetFromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return 0, c.classify(err)
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u = u + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return 0, fmt.Errorf("failed to create http request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return 0, c.classify(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, c.classify(err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := newAPIError(resp.StatusCode, respBody)
		log.Warn().Int("status", resp.StatusCode).Str("method", method).Str("path", path).Msg(apiErr.Message)
		return resp.StatusCode, apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err = json.Unmarshal(respBody, result); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to unmarshal response body: %w", err)
		}
	}

	return resp.StatusCode, nil
}

func (c *Client) classify(err error) error {
	if IsConnectionError(err) {
		return fmt.Errorf("%w: %w", c.unavailable, err)
	}
	return err
}

// IsConnectionError reports whether err was caused by a refused, reset or aborted
// connection or by a timeout.
func IsConnectionError(err error) bool {
	if errors.Is(err, unix.ECONNREFUSED) || errors.Is(err, unix.ECONNRESET) || errors.Is(err, unix.ECONNABORTED) {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

type errorBody struct {
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Errors  []json.RawMessage `json:"errors"`
}

func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Message:    http.StatusText(statusCode),
		Errors:     []string{},
	}

	eb := errorBody{}
	if err := json.Unmarshal(body, &eb); err != nil {
		if text := strings.TrimSpace(string(body)); text != "" {
			apiErr.Errors = append(apiErr.Errors, text)
		}
		return apiErr
	}

	if eb.Message != "" {
		apiErr.Message = eb.Message
	} else if eb.Error != "" {
		apiErr.Message = eb.Error
	}

	for _, raw := range eb.Errors {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			apiErr.Errors = append(apiErr.Errors, s)
		} else {
			apiErr.Errors = append(apiErr.Errors, string(raw))
		}
	}

	return apiErr
}
