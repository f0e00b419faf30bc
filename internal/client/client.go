// Package client talks to a Kaizoku server over its tRPC HTTP interface.
//
// Only the three read-only procedures the dashboard polls are covered:
//   - manga.history: recently completed chapter downloads
//   - manga.activity: job counts per queue state
//   - library.query: the library record, null until setup finished
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kaizoku-dev/kzk/internal/buildinfo"
	"github.com/kaizoku-dev/kzk/internal/observability"
)

const (
	// DefaultTimeout bounds a single procedure call.
	DefaultTimeout = 15 * time.Second

	// maxBodyBytes caps how much of a response is read.
	maxBodyBytes = 4 << 20

	procHistory  = "manga.history"
	procActivity = "manga.activity"
	procLibrary  = "library.query"
)

// Client is the Kaizoku API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	tracer     trace.Tracer
}

// New creates a client for the server at baseURL. token may be empty.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tracer: observability.Tracer("kzk.client"),
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the server base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HasToken reports whether requests carry a bearer token.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// History returns the latest downloads in the order the server sent them.
func (c *Client) History(ctx context.Context) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	if err := c.query(ctx, procHistory, &entries); err != nil {
		return nil, err
	}

	if entries == nil {
		entries = []HistoryEntry{}
	}

	return entries, nil
}

// Activity returns the current job counts.
func (c *Client) Activity(ctx context.Context) (*ActivitySummary, error) {
	var raw json.RawMessage
	if err := c.query(ctx, procActivity, &raw); err != nil {
		return nil, err
	}

	summary, err := ValidateActivity(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", procActivity, err)
	}

	return summary, nil
}

// Library returns the library record, or nil when the server has none yet.
func (c *Client) Library(ctx context.Context) (*Library, error) {
	var raw json.RawMessage
	if err := c.query(ctx, procLibrary, &raw); err != nil {
		return nil, err
	}

	if isNull(raw) {
		return nil, nil //nolint:nilnil // a missing library is a valid answer
	}

	lib := &Library{}
	if err := json.Unmarshal(raw, lib); err != nil {
		return nil, fmt.Errorf("%s: decode library: %w", procLibrary, err)
	}

	return lib, nil
}

// QueueURL returns the queue dashboard URL for queue filtered by status.
func (c *Client) QueueURL(queue, status string) string {
	u := c.baseURL + "/bull/queues/queue/" + neturl.PathEscape(queue)
	if status == "" {
		return u
	}

	return u + "?status=" + neturl.QueryEscape(status)
}

// CoverURL resolves a manga cover reference against the server. Absolute
// URLs are returned unchanged and an empty cover stays empty.
func (c *Client) CoverURL(cover string) string {
	cover = strings.TrimSpace(cover)
	if cover == "" {
		return ""
	}

	if u, err := neturl.Parse(cover); err == nil && u.IsAbs() {
		return cover
	}

	return c.baseURL + "/" + strings.TrimLeft(cover, "/")
}

func (c *Client) query(ctx context.Context, procedure string, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "kzk.client."+procedure,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("rpc.method", procedure)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		span.End()
	}()

	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL+"/api/trpc/"+procedure)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", procedure, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", procedure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if rpcErr := decodeError(procedure, resp.StatusCode, body); rpcErr != nil {
			return rpcErr
		}

		return unexpectedStatus(procedure, resp.StatusCode, body)
	}

	data, err := decodeResult(body)
	if err != nil {
		if rpcErr := decodeError(procedure, resp.StatusCode, body); rpcErr != nil {
			return rpcErr
		}

		return fmt.Errorf("%s: %w", procedure, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode payload: %w", procedure, err)
	}

	return nil
}

func (c *Client) newRequest(ctx context.Context, method, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	return req, nil
}

// RPCError is an error envelope returned by a tRPC procedure.
type RPCError struct {
	Procedure  string
	Code       string
	HTTPStatus int
	Message    string
}

func (e *RPCError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.HTTPStatus)
	}

	if e.Code != "" {
		return fmt.Sprintf("%s failed with status %d (%s): %s", e.Procedure, e.HTTPStatus, e.Code, msg)
	}

	return fmt.Sprintf("%s failed with status %d: %s", e.Procedure, e.HTTPStatus, msg)
}

// IsUnauthorized reports whether err is an authentication or permission failure.
func IsUnauthorized(err error) bool {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr.HTTPStatus == http.StatusUnauthorized || rpcErr.HTTPStatus == http.StatusForbidden ||
			rpcErr.Code == "UNAUTHORIZED" || rpcErr.Code == "FORBIDDEN"
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden
	}

	return false
}

// StatusError is a non-2xx response without a tRPC error envelope.
type StatusError struct {
	Procedure  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s failed with status %d", e.Procedure, e.StatusCode)
	}

	return fmt.Sprintf("%s failed with status %d: %s", e.Procedure, e.StatusCode, e.Body)
}

func unexpectedStatus(procedure string, statusCode int, body []byte) error {
	const maxShown = 200

	text := strings.TrimSpace(string(body))
	if len(text) > maxShown {
		text = text[:maxShown] + "..."
	}

	return &StatusError{Procedure: procedure, StatusCode: statusCode, Body: text}
}

type resultEnvelope struct {
	Result *struct {
		Data json.RawMessage `json:"data"`
	} `json:"result"`
}

type errorBody struct {
	Message string `json:"message"`
	Data    struct {
		Code       string `json:"code"`
		HTTPStatus int    `json:"httpStatus"`
	} `json:"data"`
}

type errorEnvelope struct {
	Error *struct {
		errorBody
		JSON *errorBody `json:"json"`
	} `json:"error"`
}

// decodeResult extracts the payload from {"result":{"data":...}}, unwrapping
// the superjson {"json":...,"meta":...} form when present.
func decodeResult(body []byte) (json.RawMessage, error) {
	var env resultEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	if env.Result == nil {
		return nil, fmt.Errorf("response has no result")
	}

	data := env.Result.Data
	if len(data) == 0 {
		return json.RawMessage("null"), nil
	}

	return unwrapSuperJSON(data), nil
}

func unwrapSuperJSON(data json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return data
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return data
	}

	inner, ok := fields["json"]
	if !ok {
		return data
	}

	for key := range fields {
		if key != "json" && key != "meta" {
			return data
		}
	}

	return inner
}

func decodeError(procedure string, statusCode int, body []byte) *RPCError {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Error == nil {
		return nil
	}

	eb := env.Error.errorBody
	if env.Error.JSON != nil {
		eb = *env.Error.JSON
	}

	status := eb.Data.HTTPStatus
	if status == 0 {
		status = statusCode
	}

	return &RPCError{
		Procedure:  procedure,
		Code:       eb.Data.Code,
		HTTPStatus: status,
		Message:    eb.Message,
	}
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
