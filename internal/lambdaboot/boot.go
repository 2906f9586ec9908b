// Package lambdaboot provides the Lambda cold-start bootstrap: AWS config,
// the Gemini key from SSM, the optional S3 media signer, and startup logging.
package lambdaboot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/idrisgemas/gemlookup/internal/logging"
	"github.com/idrisgemas/gemlookup/internal/media"
)

// AWSClients holds the core AWS SDK clients used at cold start.
type AWSClients struct {
	Config aws.Config
	SSM    *ssm.Client
}

// InitAWS loads the default AWS config and returns it along with common clients.
func InitAWS(ctx context.Context) (AWSClients, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return AWSClients{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return AWSClients{
		Config: cfg,
		SSM:    ssm.NewFromConfig(cfg),
	}, nil
}

// InitMediaSigner returns an S3 presigner for bucket, or nil when bucket is
// empty and media is served from a static base path instead.
func InitMediaSigner(cfg aws.Config, bucket, prefix string) *media.S3Presigner {
	if bucket == "" {
		log.Debug().Msg("Media bucket not set, serving media from base path")
		return nil
	}
	client := s3.NewFromConfig(cfg)
	return media.NewS3Presigner(s3.NewPresignClient(client), bucket, prefix)
}

type parameterAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// LoadGeminiKey returns existingKey when it is set, otherwise the decrypted
// value of paramName from SSM Parameter Store.
func LoadGeminiKey(ctx context.Context, client parameterAPI, paramName, existingKey string) (string, error) {
	if existingKey != "" {
		return existingKey, nil
	}
	ssmStart := time.Now()
	result, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &paramName,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to read API key from SSM parameter %s: %w", paramName, err)
	}
	if result.Parameter == nil || result.Parameter.Value == nil {
		return "", fmt.Errorf("SSM parameter %s has no value", paramName)
	}
	log.Debug().Str("param", paramName).Dur("elapsed", time.Since(ssmStart)).Msg("Gemini API key loaded from SSM")
	return strings.TrimSpace(*result.Parameter.Value), nil
}

// StartupLog is a convenience wrapper for the startup logger.
func StartupLog(name string, initStart time.Time) *logging.StartupLogger {
	return logging.NewStartupLogger(name).InitDuration(time.Since(initStart))
}
