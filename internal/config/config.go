// Package config resolves runtime settings from the environment, after
// loading a .env file when one is present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/idrisgemas/gemlookup/internal/description"
	"github.com/idrisgemas/gemlookup/internal/media"
	"github.com/idrisgemas/gemlookup/internal/sheet"
)

// Environment variable names.
const (
	EnvSheetURL      = "GEMLOOKUP_SHEET_URL"
	EnvMediaBase     = "GEMLOOKUP_MEDIA_BASE"
	EnvHTTPTimeout   = "GEMLOOKUP_HTTP_TIMEOUT"
	EnvListenAddr    = "GEMLOOKUP_ADDR"
	EnvModel         = "GEMINI_MODEL"
	EnvMediaBucket   = "MEDIA_BUCKET_NAME"
	EnvMediaPrefix   = "MEDIA_KEY_PREFIX"
	EnvOriginSecret  = "ORIGIN_VERIFY_SECRET"
	EnvSSMAPIKey     = "SSM_API_KEY_PARAM"
	DefaultSSMAPIKey = "/gemlookup/prod/gemini-api-key"
)

// DefaultListenAddr is where gem-web listens unless told otherwise.
const DefaultListenAddr = "127.0.0.1:8080"

// Config holds every non-secret setting. The Gemini API key is resolved
// separately by the auth package.
type Config struct {
	SheetURL    string
	MediaBase   string
	Model       string
	HTTPTimeout time.Duration
	ListenAddr  string

	MediaBucket string
	MediaPrefix string

	OriginVerifySecret string
	SSMAPIKeyParam     string
}

// LoadDotEnv loads path (default ".env") into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("file", path).Msg("No .env file found, using system environment variables")
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	log.Debug().Str("file", path).Msg("Loaded environment from file")
	return nil
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	timeout, err := durationOrDefault(EnvHTTPTimeout, sheet.DefaultHTTPTimeout)
	if err != nil {
		return nil, err
	}

	return &Config{
		SheetURL:           EnvOrDefault(EnvSheetURL, sheet.DefaultSheetURL),
		MediaBase:          EnvOrDefault(EnvMediaBase, media.DefaultBase),
		Model:              EnvOrDefault(EnvModel, description.DefaultModelName),
		HTTPTimeout:        timeout,
		ListenAddr:         EnvOrDefault(EnvListenAddr, DefaultListenAddr),
		MediaBucket:        os.Getenv(EnvMediaBucket),
		MediaPrefix:        os.Getenv(EnvMediaPrefix),
		OriginVerifySecret: os.Getenv(EnvOriginSecret),
		SSMAPIKeyParam:     EnvOrDefault(EnvSSMAPIKey, DefaultSSMAPIKey),
	}, nil
}

// EnvOrDefault returns the trimmed value of the named environment variable,
// or defaultVal if the variable is blank or unset.
func EnvOrDefault(envVar, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
		return v
	}
	return defaultVal
}

func durationOrDefault(envVar string, defaultVal time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(envVar))
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envVar, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", envVar, v)
	}
	return d, nil
}
