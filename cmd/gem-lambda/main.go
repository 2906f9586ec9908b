// Package main provides the Lambda entry point for the gemstone lookup API.
//
// It serves the same router as gem-web behind API Gateway (HTTP API, payload
// v2). The Gemini key comes from GEMINI_API_KEY (or its API_KEY and
// VITE_API_KEY fallbacks) or SSM Parameter Store, and media URLs are
// presigned against S3 when MEDIA_BUCKET_NAME is set.
//
// Endpoints:
//
//	GET /api/health                  health check (no origin check)
//	GET /api/gems?reference=...      search by query parameter
//	GET /api/gems/{reference}        record, media, and spec sheet
//	GET /api/gems/{reference}/media  record and media only
package main

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/idrisgemas/gemlookup/internal/auth"
	"github.com/idrisgemas/gemlookup/internal/cli"
	"github.com/idrisgemas/gemlookup/internal/config"
	"github.com/idrisgemas/gemlookup/internal/httpapi"
	"github.com/idrisgemas/gemlookup/internal/lambdaboot"
	"github.com/idrisgemas/gemlookup/internal/logging"
	"github.com/idrisgemas/gemlookup/internal/metrics"
)

// handler is built once at cold start and reused across invocations, so the
// dataset cache lives for the lifetime of the execution environment.
var handler *httpadapter.HandlerAdapterV2

func init() {
	initStart := time.Now()
	logging.Init()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	aws, err := lambdaboot.InitAWS(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize AWS")
	}

	envKey, _ := auth.KeyFromEnv()
	apiKey, err := lambdaboot.LoadGeminiKey(ctx, aws.SSM, cfg.SSMAPIKeyParam, envKey)
	if err != nil {
		// Lookups still work without a key; spec sheets report configuration required.
		log.Error().Err(err).Msg("Gemini API key unavailable, spec sheets disabled")
		apiKey = ""
	}

	setup := cli.Setup{
		Config:  cfg,
		APIKey:  apiKey,
		Metrics: metrics.Stdout(),
	}
	if signer := lambdaboot.InitMediaSigner(aws.Config, cfg.MediaBucket, cfg.MediaPrefix); signer != nil {
		setup.Signer = signer
	}

	svc, err := cli.BuildService(ctx, setup)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize lookup")
	}

	if cfg.OriginVerifySecret == "" {
		log.Warn().Msg("ORIGIN_VERIFY_SECRET not set, origin verification disabled")
	}
	router := httpapi.NewRouter(svc, httpapi.Options{
		OriginVerifySecret: cfg.OriginVerifySecret,
		Metrics:            setup.Metrics,
	})
	handler = httpadapter.NewV2(router)

	lambdaboot.StartupLog("gem-lambda", initStart).
		CommitHash(commitHash).
		BuildTime(buildTime).
		Source("sheet", cfg.SheetURL).
		S3Bucket("media", cfg.MediaBucket).
		SSMParam("geminiApiKey", cfg.SSMAPIKeyParam).
		Feature("descriptions", apiKey != "").
		Feature("originVerify", cfg.OriginVerifySecret != "").
		Feature("signedMedia", setup.Signer != nil).
		Config("model", cfg.Model).
		Config("mediaBase", cfg.MediaBase).
		Log()
}

func main() {
	lambda.Start(handler.ProxyWithContext)
}
