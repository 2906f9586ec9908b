package description

import (
	"errors"
	"strings"

	"github.com/idrisgemas/gemlookup/internal/auth"
)

// ErrMissingAPIKey is returned when no Gemini credential is configured.
var ErrMissingAPIKey = errors.New("gemini api key is not configured")

// GenerationError reports that the description service failed. Callers
// recover by showing a placeholder.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "description generation failed: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ConfigurationError is a GenerationError caused by a missing or rejected
// credential. The user has to fix configuration before retrying helps.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// As lets errors.As match a ConfigurationError as a *GenerationError, so
// callers handling generation failures also see credential problems.
func (e *ConfigurationError) As(target any) bool {
	if t, ok := target.(**GenerationError); ok {
		*t = &GenerationError{Err: e}
		return true
	}
	return false
}

// configMarkers identify credential problems in error text from providers
// that do not return typed errors.
var configMarkers = []string{"api key", "api_key", "apikey", "clé api"}

// IsConfigurationError reports whether err is a credential problem, either a
// *ConfigurationError in the chain or an error whose message names the API
// key.
func IsConfigurationError(err error) bool {
	if err == nil {
		return false
	}
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range configMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// classify wraps a Gemini call failure as a ConfigurationError when the
// credential was rejected and as a GenerationError otherwise.
func classify(err error) error {
	valErr := auth.ClassifyError(err)
	if valErr.Type == auth.ErrTypeInvalidKey {
		return &ConfigurationError{Message: valErr.Message, Err: err}
	}
	return &GenerationError{Err: err}
}
