package resolver

import (
	"bytes"
	"context"
	"delivery-marketplace/internal/marketerrors"
	"delivery-marketplace/internal/operation"
	"delivery-marketplace/utils"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxBodySize caps how much of a response body is read
const maxBodySize = 4 << 20

//go:generate mockgen -source=transport.go -destination=mock_transport.go -package=resolver

// Transport sends one request to one route
type Transport interface {
	Do(ctx context.Context, method, path, token string, body any) (operation.Response, error)
}

// HTTPTransport is a Transport over net/http talking JSON to the backend
type HTTPTransport struct {
	baseURL *url.URL
	client  *http.Client
}

// NewHTTPTransport creates a transport rooted at baseURL. Paths are resolved
// relative to it, so baseURL should end with a slash.
func NewHTTPTransport(baseURL string, timeout time.Duration) (*HTTPTransport, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("transport: parse base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("transport: base url %q: unsupported scheme %q", baseURL, u.Scheme)
	}

	return &HTTPTransport{
		baseURL: u,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Do sends the request and classifies the outcome. Non-2xx answers become
// *marketerrors.APIError with the body kept verbatim.
func (t *HTTPTransport) Do(ctx context.Context, method, path, token string, body any) (operation.Response, error) {
	target, err := t.baseURL.Parse(path)
	if err != nil {
		return operation.Response{}, fmt.Errorf("transport: resolve %q: %w", path, err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return operation.Response{}, fmt.Errorf("transport: encode body for %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return operation.Response{}, fmt.Errorf("transport: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(utils.RequestIDHeader, utils.GenerateID())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return operation.Response{}, classify(ctx, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return operation.Response{}, fmt.Errorf("transport: read %s %s: %w", method, path, err)
	}

	utils.Debug("transport: response", map[string]any{
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode,
		"request_id": req.Header.Get(utils.RequestIDHeader),
		"latency":    time.Since(start).String(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return operation.Response{}, &marketerrors.APIError{
			Status: resp.StatusCode,
			Body:   data,
			Kind:   marketerrors.KindForStatus(resp.StatusCode),
		}
	}
	return operation.Response{Status: resp.StatusCode, Data: data}, nil
}

// classify turns a client error into cancellation, timeout or unreachable
func classify(ctx context.Context, method, path string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("transport: %s %s: %w", method, path, ctxErr)
	}
	// no connection was ever made, even if the dial itself timed out
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return fmt.Errorf("transport: %s %s: %v: %w", method, path, err, marketerrors.ErrNetworkUnreachable)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("transport: %s %s: %v: %w", method, path, err, marketerrors.ErrTimeout)
	}
	return fmt.Errorf("transport: %s %s: %v: %w", method, path, err, marketerrors.ErrNetworkUnreachable)
}
