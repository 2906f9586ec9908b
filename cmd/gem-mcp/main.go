package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/idrisgemas/gemlookup/internal/cli"
	"github.com/idrisgemas/gemlookup/internal/config"
	"github.com/idrisgemas/gemlookup/internal/httpapi"
	"github.com/idrisgemas/gemlookup/internal/logging"
)

// CLI flags
var (
	modelFlag         string
	envFileFlag       string
	noDescriptionFlag bool
	verboseFlag       bool
)

var rootCmd = &cobra.Command{
	Use:   "gem-mcp",
	Short: "MCP server exposing gemstone lookups over stdio",
	Long: `gem-mcp runs a Model Context Protocol server on stdin/stdout with two
tools: lookup_gemstone and gemstone_media. Logs go to stderr.

Examples:
  gem-mcp
  gem-mcp --no-description`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Gemini model to use")
	rootCmd.Flags().StringVar(&envFileFlag, "env-file", ".env", "Environment file to load before reading configuration")
	rootCmd.Flags().BoolVar(&noDescriptionFlag, "no-description", false, "Skip spec sheet generation")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	initStart := time.Now()
	logging.InitWithWriter(os.Stderr)
	if verboseFlag {
		logging.SetVerbose()
	}

	if err := config.LoadDotEnv(envFileFlag); err != nil {
		log.Fatal().Err(err).Msg("Failed to load environment file")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var apiKey string
	if !noDescriptionFlag {
		apiKey = cli.ResolveAPIKey()
	}
	svc, err := cli.BuildService(ctx, cli.Setup{
		Config:          cfg,
		APIKey:          apiKey,
		SkipDescription: noDescriptionFlag,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize lookup")
	}

	server := newServer(svc)

	logging.NewStartupLogger("gem-mcp").
		CommitHash(commitHash).
		BuildTime(buildTime).
		InitDuration(time.Since(initStart)).
		Source("sheet", cfg.SheetURL).
		Feature("descriptions", apiKey != "").
		Config("model", cfg.Model).
		Config("mediaBase", cfg.MediaBase).
		Log()

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("MCP server failed")
	}
}

func newServer(svc httpapi.Searcher) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    httpapi.ServiceName,
		Version: commitHash,
	}, nil)
	registerTools(server, svc)
	return server
}
