package cli

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/idrisgemas/gemlookup/internal/auth"
	"github.com/idrisgemas/gemlookup/internal/description"
	"github.com/idrisgemas/gemlookup/internal/metrics"
)

// ValidateKey checks apiKey against the Gemini API with a minimal call.
func ValidateKey(ctx context.Context, apiKey, model string, emitter *metrics.Emitter) error {
	if apiKey == "" {
		return &auth.ValidationError{Type: auth.ErrTypeNoKey, Message: "no API key configured", Err: auth.ErrNoAPIKey}
	}
	client, err := description.NewGeminiClient(ctx, apiKey)
	if err != nil {
		return err
	}
	return auth.ValidateAPIKey(ctx, client, model, emitter)
}

// HandleValidationError processes auth.ValidationError and exits with appropriate messaging.
func HandleValidationError(err error) {
	var validationErr *auth.ValidationError
	if errors.As(err, &validationErr) {
		switch validationErr.Type {
		case auth.ErrTypeNoKey:
			log.Fatal().Msg("No API key configured. Set GEMINI_API_KEY or store it in ~/.gemlookup/credentials.gpg")
		case auth.ErrTypeInvalidKey:
			log.Fatal().Err(err).Msg("Invalid API key. Please check your API key and try again")
		case auth.ErrTypeNetworkError:
			log.Fatal().Err(err).Msg("Network error. Please check your internet connection")
		case auth.ErrTypeQuotaExceeded:
			log.Fatal().Err(err).Msg("API quota exceeded. Please try again later or check your usage limits")
		default:
			log.Fatal().Err(err).Msg("API key validation failed")
		}
	} else {
		log.Fatal().Err(err).Msg("unexpected error during API key validation")
	}
	os.Exit(1)
}
