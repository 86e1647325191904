// Package client talks to the storefront HTTP API: the catalog feed and
// order submission.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/checkout"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/wire"
)

// Compile-time check ensuring Client can submit checkout drafts.
var _ checkout.Submitter = (*Client)(nil)

// maxBodySize bounds the size of a response body the client will read.
const maxBodySize = 8 << 20

// Error is a non-2xx API response.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Message)
}

// Config holds non-dependency configuration for the Client.
type Config struct {
	// BaseURL is the API root, e.g. https://larek-api.nomoreparties.co/api/weblarek.
	BaseURL string
	// ImageBaseURL is prepended to relative product image paths.
	// When empty, image paths are returned as served by the API.
	ImageBaseURL string
	// Timeout bounds every request. Zero means no timeout.
	Timeout time.Duration
}

// Option configures a Client.
type Option func(*options)

type options struct {
	transport http.RoundTripper
	tp        trace.TracerProvider
	mp        metric.MeterProvider
}

// WithTransport overrides the base HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithTracerProvider traces outgoing requests with the given provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tp = tp }
}

// WithMeterProvider records outgoing request metrics with the given provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.mp = mp }
}

// Client is the storefront API client.
type Client struct {
	baseURL      string
	imageBaseURL string
	http         *http.Client
}

// New creates a Client for cfg.BaseURL.
func New(cfg Config, opts ...Option) (*Client, error) {
	if _, err := url.Parse(cfg.BaseURL); err != nil || cfg.BaseURL == "" {
		return nil, errors.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	o := options{transport: http.DefaultTransport}
	for _, opt := range opts {
		opt(&o)
	}

	var otelOpts []otelhttp.Option
	if o.tp != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(o.tp))
	}
	if o.mp != nil {
		otelOpts = append(otelOpts, otelhttp.WithMeterProvider(o.mp))
	}

	return &Client{
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		imageBaseURL: cfg.ImageBaseURL,
		http: &http.Client{
			Transport: otelhttp.NewTransport(o.transport, otelOpts...),
			Timeout:   cfg.Timeout,
		},
	}, nil
}

// ListProducts fetches the whole catalog.
func (c *Client) ListProducts(ctx context.Context) ([]product.Product, error) {
	body, err := c.do(ctx, http.MethodGet, "/product", nil)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	list, err := wire.DecodeProductList(jx.DecodeBytes(body))
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	if list.Total != len(list.Items) {
		zctx.From(ctx).Warn("Catalog total differs from item count",
			zap.Int("total", list.Total),
			zap.Int("items", len(list.Items)),
		)
	}

	for i := range list.Items {
		list.Items[i] = c.withImageBase(list.Items[i])
	}
	return list.Items, nil
}

// GetProduct fetches a single product. It returns product.ErrNotFound when the
// API answers 404.
func (c *Client) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	body, err := c.do(ctx, http.MethodGet, "/product/"+url.PathEscape(id), nil)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %s", id)
	}

	p, err := wire.DecodeProduct(jx.DecodeBytes(body))
	if err != nil {
		return nil, errors.Wrapf(err, "get product %s", id)
	}
	p = c.withImageBase(p)
	return &p, nil
}

// PlaceOrder submits an order and returns the server confirmation.
func (c *Client) PlaceOrder(ctx context.Context, req order.Request) (*order.Confirmation, error) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	wire.EncodeOrderRequest(e, req)

	body, err := c.do(ctx, http.MethodPost, "/order", e.Bytes())
	if err != nil {
		return nil, errors.Wrap(err, "place order")
	}

	conf, err := wire.DecodeConfirmation(jx.DecodeBytes(body))
	if err != nil {
		return nil, errors.Wrap(err, "place order")
	}
	return &conf, nil
}

func (c *Client) withImageBase(p product.Product) product.Product {
	if c.imageBaseURL != "" && p.Image != "" {
		p.Image = c.imageBaseURL + p.Image
	}
	return p
}

// do performs a request and returns the body of a 2xx response. Other
// statuses are returned as *Error carrying the API error message.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.New().String()
	req.Header.Set("X-Request-ID", reqID)

	lg := zctx.From(ctx).With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", reqID),
	)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "send request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	lg.Debug("API call",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		if msg, err := wire.DecodeError(jx.DecodeBytes(body)); err == nil {
			apiErr.Message = msg
		}
		return nil, apiErr
	}
	return body, nil
}
