// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ManuGH/vssplay/internal/domain/session/ports"
	"github.com/ManuGH/vssplay/internal/log"
	"github.com/ManuGH/vssplay/internal/metrics"
	"github.com/ManuGH/vssplay/internal/resilience"
	"github.com/ManuGH/vssplay/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultRate      = 20
	defaultBurst     = 40
	defaultThreshold = 5
	defaultReset     = 30 * time.Second
	maxErrorBody     = 512
	maxFrameBytes    = 8 << 20
)

// Options configures the HTTP gateway.
type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration

	RatePerSecond float64
	Burst         int

	BreakerThreshold int
	BreakerReset     time.Duration

	UserAgent string
	// Transport is wrapped with otelhttp. Nil uses http.DefaultTransport.
	Transport http.RoundTripper
}

func normalizeOptions(o Options) Options {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.RatePerSecond <= 0 {
		o.RatePerSecond = defaultRate
	}
	if o.Burst <= 0 {
		o.Burst = defaultBurst
	}
	if o.BreakerThreshold <= 0 {
		o.BreakerThreshold = defaultThreshold
	}
	if o.BreakerReset <= 0 {
		o.BreakerReset = defaultReset
	}
	if strings.TrimSpace(o.UserAgent) == "" {
		o.UserAgent = "vssplay"
	}
	if o.Transport == nil {
		o.Transport = http.DefaultTransport
	}
	return o
}

// Client talks JSON to the VSS service. It implements ports.Gateway,
// ports.HeartbeatSender and ports.TokenRefresher.
type Client struct {
	base      *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	breaker   *resilience.CircuitBreaker
	tracer    trace.Tracer
	userAgent string
	logger    zerolog.Logger

	mu    sync.RWMutex
	token string
}

func New(opts Options) (*Client, error) {
	o := normalizeOptions(opts)
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(o.BaseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", o.BaseURL)
	}

	return &Client{
		base: base,
		http: &http.Client{
			Timeout:   o.Timeout,
			Transport: otelhttp.NewTransport(o.Transport),
		},
		limiter:   rate.NewLimiter(rate.Limit(o.RatePerSecond), o.Burst),
		breaker:   resilience.NewCircuitBreaker("gateway", o.BreakerThreshold, o.BreakerReset),
		tracer:    telemetry.Tracer("vssplay/gateway"),
		userAgent: o.UserAgent,
		logger:    log.WithComponent("gateway").With().Str(log.FieldBaseURL, base.String()).Logger(),
		token:     o.Token,
	}, nil
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(tok string) {
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
}

// BreakerState reports the side-request circuit breaker state.
func (c *Client) BreakerState() resilience.State { return c.breaker.State() }

type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   interface{}
	// side requests go through the circuit breaker.
	side  bool
	attrs []attribute.KeyValue
}

// do executes one call and returns the raw response body.
func (c *Client) do(ctx context.Context, cl call) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "gateway."+cl.op, trace.WithAttributes(cl.attrs...))
	defer span.End()

	start := time.Now()
	var body []byte
	run := func(ctx context.Context) error {
		var err error
		body, err = c.roundTrip(ctx, cl)
		return err
	}

	var err error
	if cl.side {
		err = c.breaker.Execute(ctx, run)
	} else {
		err = run(ctx)
	}

	metrics.GatewayRequestSeconds.WithLabelValues(cl.op).Observe(time.Since(start).Seconds())
	metrics.GatewayRequestsTotal.WithLabelValues(cl.op, outcome(err)).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome(err))
		logger := log.WithContext(ctx, c.logger)
		logger.Debug().Err(err).Str(log.FieldOperation, cl.op).Msg("gateway call failed")
		return nil, err
	}
	return body, nil
}

func (c *Client) roundTrip(ctx context.Context, cl call) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if cerr := ctx.Err(); cerr != nil && !errors.Is(cerr, context.DeadlineExceeded) {
			return nil, cerr
		}
		return nil, &Error{Sentinel: ports.ErrTimeout, Operation: cl.op, Err: err}
	}

	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + cl.path
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	var reader io.Reader
	if cl.body != nil {
		raw, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("gateway: %s: encode request: %w", cl.op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("gateway: %s: build request: %w", cl.op, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, image/jpeg")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(ctx, cl.op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &Error{
			Sentinel:  sentinelForStatus(resp.StatusCode),
			Operation: cl.op,
			Status:    resp.StatusCode,
			Body:      strings.TrimSpace(string(snippet)),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxFrameBytes+1))
	if err != nil {
		return nil, transportError(ctx, cl.op, err)
	}
	if len(raw) > maxFrameBytes {
		return nil, &Error{
			Sentinel:  ports.ErrBadResponse,
			Operation: cl.op,
			Status:    resp.StatusCode,
			Err:       fmt.Errorf("body exceeds %d bytes", maxFrameBytes),
		}
	}
	return raw, nil
}

// getJSON runs cl and decodes the body into v.
func (c *Client) getJSON(ctx context.Context, cl call, v interface{}) error {
	raw, err := c.do(ctx, cl)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &Error{Sentinel: ports.ErrBadResponse, Operation: cl.op, Err: err}
	}
	return nil
}
