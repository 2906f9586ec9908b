package logging

import (
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StartupLogger collects service identity, configuration, resources, and
// feature flags, then emits a single structured zerolog event summarising
// how the process was configured.
type StartupLogger struct {
	name         string
	commitHash   string
	buildTime    string
	initDuration time.Duration

	sources   map[string]string
	s3Buckets map[string]string
	ssmParams map[string]string
	features  map[string]bool
	config    map[string]string
}

// NewStartupLogger creates a StartupLogger for the given binary name
// (e.g. "gem-web", "gem-lambda").
func NewStartupLogger(name string) *StartupLogger {
	return &StartupLogger{
		name:      name,
		sources:   make(map[string]string),
		s3Buckets: make(map[string]string),
		ssmParams: make(map[string]string),
		features:  make(map[string]bool),
		config:    make(map[string]string),
	}
}

// CommitHash sets the git commit hash baked into the binary at build time.
func (s *StartupLogger) CommitHash(hash string) *StartupLogger {
	s.commitHash = hash
	return s
}

// BuildTime sets the UTC build timestamp baked into the binary at build time.
func (s *StartupLogger) BuildTime(t string) *StartupLogger {
	s.buildTime = t
	return s
}

// Source registers an upstream data source such as the spreadsheet URL.
func (s *StartupLogger) Source(label, url string) *StartupLogger {
	s.sources[label] = url
	return s
}

// S3Bucket registers an S3 bucket used by this process.
func (s *StartupLogger) S3Bucket(label, name string) *StartupLogger {
	s.s3Buckets[label] = name
	return s
}

// SSMParam registers an SSM parameter path loaded by this process.
// Only the path is logged, never the value.
func (s *StartupLogger) SSMParam(label, path string) *StartupLogger {
	s.ssmParams[label] = path
	return s
}

// Feature registers a boolean feature flag (e.g. "descriptions", "originVerify").
func (s *StartupLogger) Feature(name string, enabled bool) *StartupLogger {
	s.features[name] = enabled
	return s
}

// Config registers a non-sensitive configuration key-value pair.
func (s *StartupLogger) Config(key, value string) *StartupLogger {
	s.config[key] = value
	return s
}

// InitDuration records how long startup took.
func (s *StartupLogger) InitDuration(d time.Duration) *StartupLogger {
	s.initDuration = d
	return s
}

// Log emits a single structured INFO log event with all collected information.
func (s *StartupLogger) Log() {
	evt := log.Info()

	service := zerolog.Dict().
		Str("name", s.name).
		Str("goVersion", runtime.Version()).
		Str("arch", runtime.GOARCH).
		Str("logLevel", os.Getenv(LevelEnvVar))

	if fn := os.Getenv("AWS_LAMBDA_FUNCTION_NAME"); fn != "" {
		service = service.
			Str("functionName", fn).
			Str("version", os.Getenv("AWS_LAMBDA_FUNCTION_VERSION")).
			Str("region", os.Getenv("AWS_REGION")).
			Str("memoryMB", os.Getenv("AWS_LAMBDA_FUNCTION_MEMORY_SIZE"))
	}
	if s.commitHash != "" {
		service = service.Str("commitHash", s.commitHash)
	}
	if s.buildTime != "" {
		service = service.Str("buildTime", s.buildTime)
	}

	evt = evt.Dict("service", service)

	// Resources; only non-empty maps are attached.
	resources := zerolog.Dict()
	hasResources := false

	if len(s.sources) > 0 {
		resources = resources.Dict("sources", dictFromMap(s.sources))
		hasResources = true
	}
	if len(s.s3Buckets) > 0 {
		resources = resources.Dict("s3Buckets", dictFromMap(s.s3Buckets))
		hasResources = true
	}
	if len(s.ssmParams) > 0 {
		resources = resources.Dict("ssmParams", dictFromMap(s.ssmParams))
		hasResources = true
	}

	if hasResources {
		evt = evt.Dict("resources", resources)
	}

	if len(s.features) > 0 {
		d := zerolog.Dict()
		for k, v := range s.features {
			d = d.Bool(k, v)
		}
		evt = evt.Dict("features", d)
	}

	if len(s.config) > 0 {
		evt = evt.Dict("config", dictFromMap(s.config))
	}

	if s.initDuration > 0 {
		evt = evt.Dur("initDuration", s.initDuration)
	}

	evt.Msg("Startup complete")
}

// dictFromMap converts a map[string]string into a zerolog.Event (Dict).
func dictFromMap(m map[string]string) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range m {
		d = d.Str(k, v)
	}
	return d
}
