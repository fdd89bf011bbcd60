package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/hiroki-koketsu/kanban-board/internal/store")

// maxErrorBody bounds how much of a failed response is kept in a StatusError.
const maxErrorBody = 512

// HTTPClient addresses documents as {base}/{path}.json.
type HTTPClient struct {
	base    string
	http    *http.Client
	timeout time.Duration
}

// NewHTTPClient creates a client for the store at baseURL. Each request is
// bounded by timeout; zero disables the bound.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		base:    strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		timeout: timeout,
	}
}

func (c *HTTPClient) url(path string) string {
	return c.base + "/" + CleanPath(path) + ".json"
}

// Read fetches the document at path.
func (c *HTTPClient) Read(ctx context.Context, path string) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if IsNull(body) {
		return nil, nil
	}
	return body, nil
}

// Replace PUTs data as the document at path.
func (c *HTTPClient) Replace(ctx context.Context, path string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	_, err = c.do(ctx, http.MethodPut, path, payload)
	return err
}

// Delete removes the document at path.
func (c *HTTPClient) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil)
	return err
}

// Append POSTs data as a new child of path.
func (c *HTTPClient) Append(ctx context.Context, path string, data any) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return "", err
	}
	var resp struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode append response: %w", err)
	}
	return resp.Name, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "store."+method,
		trace.WithAttributes(
			attribute.String("store.path", CleanPath(path)),
		),
	)
	defer span.End()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, CleanPath(path), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: reading response: %w", ErrUnavailable, err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		err := &StatusError{Method: method, Path: CleanPath(path), Code: resp.StatusCode, Body: string(data)}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return data, nil
}
