// Package description asks a generative model to format a gemstone record as
// a short technical spec sheet.
package description

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/idrisgemas/gemlookup/internal/assets"
	"github.com/idrisgemas/gemlookup/internal/sheet"
)

// Placeholder is returned when the model answers with no text.
const Placeholder = "Fiche non disponible."

// Generator turns a record into spec sheet text.
type Generator interface {
	Generate(ctx context.Context, rec sheet.Record) (string, error)
}

// contentGenerator is the subset of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator generates spec sheets with the Gemini API.
type GeminiGenerator struct {
	models contentGenerator
	Model  string
}

// NewGeminiClient creates a Gemini API client for apiKey.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// NewGeminiGenerator wraps client. An empty model means GetModelName().
func NewGeminiGenerator(client *genai.Client, model string) *GeminiGenerator {
	if model == "" {
		model = GetModelName()
	}
	return &GeminiGenerator{models: client.Models, Model: model}
}

// NewFromKey builds a Gemini generator for apiKey. With a blank key it returns
// a generator that fails every call with a ConfigurationError and never
// contacts the API.
func NewFromKey(ctx context.Context, apiKey, model string) (Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		log.Warn().Msg("Gemini API key not configured, descriptions disabled")
		return Unconfigured{}, nil
	}
	client, err := NewGeminiClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return NewGeminiGenerator(client, model), nil
}

// Generate implements Generator.
func (g *GeminiGenerator) Generate(ctx context.Context, rec sheet.Record) (string, error) {
	payload, err := RecordPayload(rec)
	if err != nil {
		return "", &GenerationError{Err: err}
	}
	prompt := assets.RenderSpecSheetPrompt(payload)

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.1),
		TopK:        genai.Ptr[float32](1),
		TopP:        genai.Ptr[float32](0.1),
	}

	log.Debug().
		Str("model", g.Model).
		Int("prompt_length", len(prompt)).
		Msg("Starting Gemini API call for spec sheet")

	callStart := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.Model, genai.Text(prompt), config)
	duration := time.Since(callStart)
	if err != nil {
		log.Error().Err(err).Dur("duration", duration).Msg("Failed to generate spec sheet from Gemini")
		return "", classify(err)
	}

	text := ""
	if resp != nil {
		text = strings.TrimSpace(resp.Text())
	}

	log.Debug().
		Int("response_length", len(text)).
		Dur("duration", duration).
		Msg("Gemini API response received for spec sheet")

	if text == "" {
		return Placeholder, nil
	}
	return text, nil
}

// RecordPayload renders rec as indented JSON in column order, the form the
// prompt embeds.
func RecordPayload(rec sheet.Record) (string, error) {
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode record: %w", err)
	}
	return string(b), nil
}

// Unconfigured is the Generator used when no credential is available.
type Unconfigured struct{}

// Generate always fails with a ConfigurationError.
func (Unconfigured) Generate(ctx context.Context, rec sheet.Record) (string, error) {
	return "", &ConfigurationError{
		Message: "Set GEMINI_API_KEY to enable spec sheets",
		Err:     ErrMissingAPIKey,
	}
}
