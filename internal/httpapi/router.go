// Package httpapi exposes the gemstone lookup as a JSON HTTP API. The same
// handler serves the local web binary and the Lambda behind API Gateway.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"

	"github.com/idrisgemas/gemlookup/internal/lookup"
	"github.com/idrisgemas/gemlookup/internal/metrics"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "gemlookup"

// Searcher runs lookups. *lookup.Service satisfies it.
type Searcher interface {
	Search(ctx context.Context, reference string) (*lookup.Result, error)
	ResolveMedia(ctx context.Context, reference string) (*lookup.Result, error)
}

// Options configures the router.
type Options struct {
	// OriginVerifySecret, when set, must match the x-origin-verify header
	// on every request. CloudFront injects it for the Lambda deployment.
	OriginVerifySecret string

	// AllowLocalhostCORS echoes CORS headers for localhost origins.
	AllowLocalhostCORS bool

	// Metrics receives one EMF record per request. Nil discards them.
	Metrics *metrics.Emitter
}

type server struct {
	svc  Searcher
	opts Options
}

// NewRouter builds the API handler.
func NewRouter(svc Searcher, opts Options) http.Handler {
	s := &server{svc: svc, opts: opts}

	r := chi.NewRouter()
	r.Use(withRequestID)
	r.Use(middleware.Recoverer)
	r.Use(withLogging)
	if opts.AllowLocalhostCORS {
		r.Use(withCORS)
	}
	r.Use(withOriginVerify(opts.OriginVerifySecret))
	r.Use(withMetrics(opts.Metrics))
	r.Use(func(next http.Handler) http.Handler { return gzhttp.GzipHandler(next) })

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/gems", s.handleSearchQuery)
	r.Get("/api/gems/{reference}", s.handleSearch)
	r.Get("/api/gems/{reference}/media", s.handleMedia)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
