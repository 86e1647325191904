// Package server implements the storefront HTTP API used for local
// development and end-to-end tests of the storefront client.
package server

import (
	"context"
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/wire"
)

// maxRequestBody bounds POST /order bodies.
const maxRequestBody = 1 << 20

// OrderPlacer validates and stores orders.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req order.Request) (*order.Confirmation, error)
}

var _ OrderPlacer = (*order.Service)(nil)

// Handler serves the catalog and order endpoints.
type Handler struct {
	products product.Repository
	orders   OrderPlacer
	mux      *http.ServeMux
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(products product.Repository, orders OrderPlacer) *Handler {
	h := &Handler{
		products: products,
		orders:   orders,
		mux:      http.NewServeMux(),
	}
	h.mux.HandleFunc("GET /product", h.listProducts)
	h.mux.HandleFunc("GET /product/{id}", h.getProduct)
	h.mux.HandleFunc("POST /order", h.placeOrder)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Options configures the traced API handler.
type Options struct {
	// Prefix is the path the API is mounted on, e.g. /api/weblarek.
	Prefix         string
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Mount registers h under opts.Prefix on mux, instrumented with otelhttp.
func Mount(mux *http.ServeMux, h *Handler, opts Options) {
	var otelOpts []otelhttp.Option
	if opts.TracerProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(opts.TracerProvider))
	}
	if opts.MeterProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithMeterProvider(opts.MeterProvider))
	}
	traced := otelhttp.NewHandler(http.StripPrefix(opts.Prefix, h), "storefront-api", otelOpts...)
	mux.Handle(opts.Prefix+"/", traced)
}

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	wire.EncodeError(e, msg)
	writeJSON(w, status, e)
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("Request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
