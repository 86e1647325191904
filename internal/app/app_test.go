package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap/zaptest"

	"github.com/xenking/storefront/internal/client"
	"github.com/xenking/storefront/internal/storage/memory"
	"github.com/xenking/storefront/pkg/health"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	catalog, err := loadCatalog("")
	require.NoError(t, err)

	hs := health.New()
	hs.SetReady(true)

	cfg := ServerConfig{Prefix: "/api/weblarek", CORSOrigins: []string{"*"}}
	h := newHandler(zaptest.NewLogger(t), cfg,
		memory.NewProductRepository(catalog), memory.NewOrderRepository(), hs,
		tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider())

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestHandler_Probes(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/livez", "/readyz"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"), path)
	}
}

func TestHandler_API(t *testing.T) {
	srv := newTestServer(t)

	api, err := client.New(client.Config{BaseURL: srv.URL + "/api/weblarek"})
	require.NoError(t, err)

	items, err := api.ListProducts(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, items)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/weblarek/product", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://storefront.example")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestLoadCatalog_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"total":1,"items":[{"id":"a","title":"Widget","price":5}]}`), 0o600))

	items, err := loadCatalog(path)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Widget", items[0].Title)

	_, err = loadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
