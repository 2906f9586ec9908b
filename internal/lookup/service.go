// Package lookup runs a gemstone search: load the dataset, find the record for
// a reference, resolve its media, and generate its spec sheet.
//
// Load and match failures abort the search with no partial result. Media is
// always resolved for a matched record. A failed spec sheet is replaced by a
// placeholder and never fails the search.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/idrisgemas/gemlookup/internal/description"
	"github.com/idrisgemas/gemlookup/internal/media"
	"github.com/idrisgemas/gemlookup/internal/metrics"
	"github.com/idrisgemas/gemlookup/internal/sheet"
)

const (
	// UnavailablePlaceholder replaces the spec sheet when generation fails.
	UnavailablePlaceholder = "Fiche technique indisponible momentanément."

	// ConfigurationRequiredMessage is shown alongside the placeholder when
	// the failure was a credential problem.
	ConfigurationRequiredMessage = "Configuration API requise"

	// DefaultGenerationTimeout bounds one spec sheet call.
	DefaultGenerationTimeout = 60 * time.Second
)

// ErrEmptyReference is returned for a blank reference.
var ErrEmptyReference = errors.New("reference is required")

// DatasetLoader supplies the dataset. *sheet.Cache satisfies it.
type DatasetLoader interface {
	Load(ctx context.Context) (*sheet.Dataset, error)
}

// MediaResolver computes media for a record. *media.Resolver satisfies it.
type MediaResolver interface {
	Resolve(ctx context.Context, rec sheet.Record, reference string) (media.Media, error)
}

// Result is a successful search.
type Result struct {
	Reference string       `json:"reference"`
	Record    sheet.Record `json:"record"`
	Media     media.Media  `json:"media"`

	Description           string                 `json:"description,omitempty"`
	SpecSheet             *description.SpecSheet `json:"specSheet,omitempty"`
	DescriptionError      string                 `json:"descriptionError,omitempty"`
	ConfigurationRequired bool                   `json:"configurationRequired,omitempty"`
}

// Options tunes a Service.
type Options struct {
	// SkipDescription disables spec sheet generation entirely.
	SkipDescription bool

	// GenerationTimeout bounds one spec sheet call. Zero means
	// DefaultGenerationTimeout.
	GenerationTimeout time.Duration

	// Metrics receives one EMF record per search. Nil discards them.
	Metrics *metrics.Emitter
}

// Service runs searches. It is safe for concurrent use when its collaborators
// are.
type Service struct {
	loader    DatasetLoader
	resolver  MediaResolver
	generator description.Generator
	opts      Options
}

// NewService wires a Service. generator may be nil, which behaves like
// Options.SkipDescription.
func NewService(loader DatasetLoader, resolver MediaResolver, generator description.Generator, opts Options) *Service {
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = DefaultGenerationTimeout
	}
	return &Service{
		loader:    loader,
		resolver:  resolver,
		generator: generator,
		opts:      opts,
	}
}

// Search looks up reference and returns the record, its media, and its spec
// sheet. Errors are ErrEmptyReference, a *sheet.ConnectionError, a
// *sheet.NotFoundError, or a media signing failure.
func (s *Service) Search(ctx context.Context, reference string) (*Result, error) {
	return s.run(ctx, "search", reference, !s.opts.SkipDescription && s.generator != nil)
}

// ResolveMedia is Search without the spec sheet.
func (s *Service) ResolveMedia(ctx context.Context, reference string) (*Result, error) {
	return s.run(ctx, "media", reference, false)
}

func (s *Service) run(ctx context.Context, operation, reference string, describe bool) (*Result, error) {
	start := time.Now()
	rec := s.opts.Metrics.New().
		Dimension("Operation", operation).
		Property("reference", reference)

	result, err := s.search(ctx, reference, describe)

	outcome := outcomeOf(err)
	rec.Dimension("Outcome", outcome).
		Metric("SearchLatencyMs", float64(time.Since(start).Milliseconds()), metrics.UnitMilliseconds).
		Count("SearchCount")
	if result != nil && result.DescriptionError != "" {
		rec.Count("DescriptionFailure")
	}
	rec.Flush()

	event := log.Info()
	if err != nil && outcome != "not_found" && outcome != "invalid" {
		event = log.Error().Err(err)
	}
	event.
		Str("operation", operation).
		Str("reference", reference).
		Str("outcome", outcome).
		Dur("duration", time.Since(start)).
		Msg("Lookup finished")

	return result, err
}

func (s *Service) search(ctx context.Context, reference string, describe bool) (*Result, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, ErrEmptyReference
	}

	ds, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	match, err := sheet.FindByReference(ds, reference)
	if err != nil {
		return nil, err
	}

	m, err := s.resolver.Resolve(ctx, match, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media: %w", err)
	}

	result := &Result{
		Reference: strings.TrimSpace(reference),
		Record:    match,
		Media:     m,
	}
	if describe {
		s.describe(ctx, match, result)
	}
	return result, nil
}

// describe fills the spec sheet fields. It never fails the search.
func (s *Service) describe(ctx context.Context, rec sheet.Record, result *Result) {
	genCtx, cancel := context.WithTimeout(ctx, s.opts.GenerationTimeout)
	defer cancel()

	text, err := s.generator.Generate(genCtx, rec)
	if err != nil {
		result.Description = UnavailablePlaceholder
		result.DescriptionError = err.Error()
		result.ConfigurationRequired = description.IsConfigurationError(err)
		log.Warn().
			Err(err).
			Str("reference", result.Reference).
			Bool("configuration_required", result.ConfigurationRequired).
			Msg("Spec sheet unavailable")
		return
	}

	spec := description.ParseSpecSheet(text)
	result.Description = text
	result.SpecSheet = &spec
}

func outcomeOf(err error) string {
	var connErr *sheet.ConnectionError
	switch {
	case err == nil:
		return "found"
	case errors.Is(err, ErrEmptyReference):
		return "invalid"
	case errors.Is(err, sheet.ErrNotFound):
		return "not_found"
	case errors.As(err, &connErr):
		return "connection_error"
	default:
		return "error"
	}
}
