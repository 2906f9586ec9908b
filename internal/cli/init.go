// Package cli holds the setup and output helpers shared by the command-line
// binaries.
package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/idrisgemas/gemlookup/internal/auth"
	"github.com/idrisgemas/gemlookup/internal/config"
	"github.com/idrisgemas/gemlookup/internal/description"
	"github.com/idrisgemas/gemlookup/internal/lookup"
	"github.com/idrisgemas/gemlookup/internal/media"
	"github.com/idrisgemas/gemlookup/internal/metrics"
	"github.com/idrisgemas/gemlookup/internal/sheet"
)

// Setup collects what BuildService needs.
type Setup struct {
	Config *config.Config
	APIKey string

	// Signer presigns media URLs. Leave nil to serve from Config.MediaBase.
	Signer media.Signer

	SkipDescription   bool
	GenerationTimeout time.Duration
	Metrics           *metrics.Emitter
}

// Service bundles the lookup service with the cache behind it.
type Service struct {
	*lookup.Service
	Cache *sheet.Cache
}

// BuildService wires the sheet source, cache, media resolver, and generator
// into a lookup service.
func BuildService(ctx context.Context, s Setup) (*Service, error) {
	cfg := s.Config
	source := sheet.NewHTTPSource(cfg.SheetURL, &http.Client{Timeout: cfg.HTTPTimeout})
	cache := sheet.NewCache(source.Load)
	resolver := media.NewResolver(cfg.MediaBase, s.Signer)

	var gen description.Generator
	if !s.SkipDescription {
		var err error
		gen, err = description.NewFromKey(ctx, s.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
	}

	svc := lookup.NewService(cache, resolver, gen, lookup.Options{
		SkipDescription:   s.SkipDescription,
		GenerationTimeout: s.GenerationTimeout,
		Metrics:           s.Metrics,
	})
	return &Service{Service: svc, Cache: cache}, nil
}

// ResolveAPIKey returns the configured Gemini key, or "" when none is
// configured. A missing key is not fatal: searches still return records and
// media, with the spec sheet flagged as needing configuration.
func ResolveAPIKey() string {
	key, err := auth.GetAPIKey()
	if err != nil {
		var valErr *auth.ValidationError
		if errors.As(err, &valErr) && valErr.Type == auth.ErrTypeNoKey {
			log.Warn().Msg("No Gemini API key configured, spec sheets disabled")
			return ""
		}
		log.Warn().Err(err).Msg("Failed to read Gemini API key, spec sheets disabled")
		return ""
	}
	return key
}
