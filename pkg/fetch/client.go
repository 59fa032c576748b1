package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/domkit/internal/errors"
)

// Usage errors returned by Request.
var (
	ErrConflictingBody = stderrors.New("fetch: both JSON payload and form data given")
	ErrEncodePayload   = stderrors.New("fetch: payload could not be encoded")
	ErrEncodeForm      = stderrors.New("fetch: form could not be encoded")
	ErrInvalidURL      = stderrors.New("fetch: invalid request URL")
)

// RequestIDHeader carries a per-request UUID unless the caller sets it.
const RequestIDHeader = "X-Request-ID"

// maxProblemBody bounds how much of a failure body is read.
const maxProblemBody = 1 << 20

const defaultTracerName = "domkit/fetch"

// Client issues requests. The zero value is not usable; call New.
type Client struct {
	http       *http.Client
	logger     *slog.Logger
	baseURL    *url.URL
	headers    http.Header
	tracer     trace.Tracer
	tracerName string
	metrics    *metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBaseURL resolves relative endpoints against base. An unparseable
// base is ignored.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base == "" {
			return
		}
		u, err := url.Parse(base)
		if err != nil {
			c.logger.Warn("ignoring invalid base URL", "base", base, "error", err)
			return
		}
		c.baseURL = u
	}
}

// WithHeader adds a header sent with every request. Content-Type is
// always chosen by the body encoder and cannot be set here.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if http.CanonicalHeaderKey(key) == "Content-Type" {
			return
		}
		c.headers.Add(key, value)
	}
}

// WithMetrics records request counts and durations on reg.
func WithMetrics(reg prometheus.Registerer, opts ...MetricsOption) Option {
	return func(c *Client) {
		if reg == nil {
			return
		}
		config := defaultMetricsConfig()
		for _, opt := range opts {
			opt(&config)
		}
		c.metrics = newMetrics(reg, config)
	}
}

// WithTracerName sets the name of the OpenTelemetry tracer.
func WithTracerName(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.tracerName = name
		}
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		http:       &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
		headers:    make(http.Header),
		tracerName: defaultTracerName,
	}
	for _, opt := range opts {
		opt(c)
	}
	// The tracer is resolved from the global provider.
	c.tracer = otel.Tracer(c.tracerName)
	return c
}

// Request sends a request to endpoint. An empty method means GET. At most
// one of payload and form may be given. A typed nil payload, such as a
// nil pointer or map, counts as no payload.
//
// The returned error is non-nil only for usage errors; the Response is
// then nil. Every HTTP or network failure is returned as a Response whose
// OK is false and whose JSON decodes to a Problem.
func (c *Client) Request(ctx context.Context, endpoint, method string, payload any, form *Form) (Response, error) {
	if isNil(payload) {
		payload = nil
	}
	if payload != nil && form != nil {
		return nil, errors.New("E020").Wrap(ErrConflictingBody)
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case payload != nil:
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.New("E021").Wrap(fmt.Errorf("%w: %w", ErrEncodePayload, err))
		}
		body, contentType = bytes.NewReader(data), "application/json"
	case form != nil:
		buf, ct, err := form.encode()
		if err != nil {
			return nil, errors.New("E022").Wrap(fmt.Errorf("%w: %w", ErrEncodeForm, err))
		}
		body, contentType = buf, ct
	}

	target, err := c.resolve(endpoint)
	if err != nil {
		return nil, errors.New("E023").
			WithDetail(fmt.Sprintf("endpoint %q", endpoint)).
			Wrap(fmt.Errorf("%w: %w", ErrInvalidURL, err))
	}

	ctx, span := c.tracer.Start(ctx, "HTTP "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", target),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, errors.New("E023").Wrap(fmt.Errorf("%w: %w", ErrInvalidURL, err))
	}
	for k, vs := range c.headers {
		req.Header[k] = append([]string(nil), vs...)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		c.logger.Error("request failed",
			"method", method,
			"url", target,
			"request_id", req.Header.Get(RequestIDHeader),
			"error", err,
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "network error")
		c.metrics.observe(method, OutcomeNetwork, elapsed)
		return NewProblemResponse(NetworkProblem()), nil
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.metrics.observe(method, OutcomeSuccess, elapsed)
		return &httpResponse{resp: resp}, nil
	}

	defer resp.Body.Close()
	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxProblemBody))
	if readErr != nil {
		c.logger.Debug("failure body read incomplete", "url", target, "error", readErr)
	}
	problem := ParseProblem(resp.StatusCode, data)

	c.logger.Debug("request returned problem",
		"method", method,
		"url", target,
		"status", problem.Status,
		"detail", problem.Detail,
	)
	span.SetStatus(codes.Error, problem.Detail)
	c.metrics.observe(method, OutcomeProblem, elapsed)
	return NewProblemResponse(problem), nil
}

// Get is shorthand for a GET request without a body.
func (c *Client) Get(ctx context.Context, endpoint string) (Response, error) {
	return c.Request(ctx, endpoint, http.MethodGet, nil, nil)
}

// PostJSON is shorthand for a POST with a JSON payload.
func (c *Client) PostJSON(ctx context.Context, endpoint string, payload any) (Response, error) {
	return c.Request(ctx, endpoint, http.MethodPost, payload, nil)
}

// PostForm is shorthand for a POST with multipart form data.
func (c *Client) PostForm(ctx context.Context, endpoint string, form *Form) (Response, error) {
	return c.Request(ctx, endpoint, http.MethodPost, nil, form)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func (c *Client) resolve(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	if c.baseURL != nil && !u.IsAbs() {
		u = c.baseURL.ResolveReference(u)
	}
	if !u.IsAbs() {
		return "", fmt.Errorf("%q is not an absolute URL", u.String())
	}
	return u.String(), nil
}
