package httpapi

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/idrisgemas/gemlookup/internal/lookup"
	"github.com/idrisgemas/gemlookup/internal/sheet"
)

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": ServiceName,
	})
}

// GET /api/gems/{reference}
func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Search(r.Context(), referenceParam(r))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GET /api/gems?reference=...
func (s *server) handleSearchQuery(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Search(r.Context(), r.URL.Query().Get("reference"))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GET /api/gems/{reference}/media
func (s *server) handleMedia(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.ResolveMedia(r.Context(), referenceParam(r))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"reference": result.Reference,
		"media":     result.Media,
	})
}

// referenceParam returns the decoded {reference} path segment.
func referenceParam(r *http.Request) string {
	raw := chi.URLParam(r, "reference")
	if ref, err := url.PathUnescape(raw); err == nil {
		return ref
	}
	return raw
}

// writeLookupError maps lookup failures to status codes. Connection errors
// surface their status detail; anything unexpected is logged and hidden.
func writeLookupError(w http.ResponseWriter, err error) {
	var connErr *sheet.ConnectionError
	switch {
	case errors.Is(err, lookup.ErrEmptyReference):
		httpError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, sheet.ErrNotFound):
		httpError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &connErr):
		httpError(w, http.StatusBadGateway, connErr.Error())
	default:
		httpError(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}
