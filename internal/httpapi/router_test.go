package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idrisgemas/gemlookup/internal/lookup"
	"github.com/idrisgemas/gemlookup/internal/media"
	"github.com/idrisgemas/gemlookup/internal/metrics"
	"github.com/idrisgemas/gemlookup/internal/sheet"
)

const inventory = "LOTE,Gema,Peso\n2976,Zafiro,3.2\nA B,Rubí,1.0\n"

func newTestRouter(t *testing.T, load sheet.LoadFunc, opts Options) http.Handler {
	t.Helper()
	if load == nil {
		load = func(ctx context.Context) (*sheet.Dataset, error) {
			return sheet.Parse(inventory), nil
		}
	}
	svc := lookup.NewService(sheet.NewCache(load), media.NewResolver("/media", nil), nil, lookup.Options{})
	return NewRouter(svc, opts)
}

func doGet(t *testing.T, h http.Handler, target string, headers map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	}
	return rec, body
}

func TestHealth(t *testing.T) {
	rec, body := doGet(t, newTestRouter(t, nil, Options{}), "/api/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, ServiceName, body["service"])
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestSearchFound(t *testing.T) {
	rec, body := doGet(t, newTestRouter(t, nil, Options{}), "/api/gems/2976", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "2976", body["reference"])

	record := body["record"].(map[string]interface{})
	assert.Equal(t, "Zafiro", record["Gema"])

	m := body["media"].(map[string]interface{})
	assert.Equal(t, "/media/2976.mp4", m["videoUrl"])
}

func TestSearchEscapedReference(t *testing.T) {
	rec, body := doGet(t, newTestRouter(t, nil, Options{}), "/api/gems/a%20b", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a b", body["reference"])
}

func TestSearchQueryParam(t *testing.T) {
	h := newTestRouter(t, nil, Options{})

	rec, _ := doGet(t, h, "/api/gems?reference=2976", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body := doGet(t, h, "/api/gems", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, lookup.ErrEmptyReference.Error(), body["error"])
}

func TestSearchBlankReference(t *testing.T) {
	rec, _ := doGet(t, newTestRouter(t, nil, Options{}), "/api/gems/%20%20", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchNotFound(t *testing.T) {
	rec, body := doGet(t, newTestRouter(t, nil, Options{}), "/api/gems/9999", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, body["error"], "9999")
}

func TestSearchConnectionError(t *testing.T) {
	load := func(ctx context.Context) (*sheet.Dataset, error) {
		return nil, &sheet.ConnectionError{StatusCode: 500, Status: "500 Internal Server Error"}
	}
	rec, body := doGet(t, newTestRouter(t, load, Options{}), "/api/gems/2976", nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "database connection error (status: 500)", body["error"])
}

func TestMediaEndpoint(t *testing.T) {
	rec, body := doGet(t, newTestRouter(t, nil, Options{}), "/api/gems/2976/media", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	m := body["media"].(map[string]interface{})
	assert.Regexp(t, `^/media/2976\.jpg\?t=\d+$`, m["imageUrl"])
	_, hasRecord := body["record"]
	assert.False(t, hasRecord)
}

func TestUnknownRoute(t *testing.T) {
	rec, body := doGet(t, newTestRouter(t, nil, Options{}), "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", body["error"])
}

func TestOriginVerify(t *testing.T) {
	h := newTestRouter(t, nil, Options{OriginVerifySecret: "s3cret"})

	rec, body := doGet(t, h, "/api/gems/2976", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", body["error"])

	rec, _ = doGet(t, h, "/api/gems/2976", map[string]string{"x-origin-verify": "s3cret"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doGet(t, h, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS(t *testing.T) {
	h := newTestRouter(t, nil, Options{AllowLocalhostCORS: true})

	req := httptest.NewRequest(http.MethodOptions, "/api/gems/2976", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDPropagated(t *testing.T) {
	rec, _ := doGet(t, newTestRouter(t, nil, Options{}), "/api/health", map[string]string{RequestIDHeader: "req-42"})
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
}

func TestMetricsUseRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	h := newTestRouter(t, nil, Options{Metrics: metrics.NewEmitter(&buf)})

	rec, _ := doGet(t, h, "/api/gems/9999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc), buf.String())
	assert.Equal(t, "/api/gems/{reference}", doc["Endpoint"])
	assert.Equal(t, float64(http.StatusNotFound), doc["statusCode"])
}
