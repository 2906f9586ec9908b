package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/idrisgemas/gemlookup/internal/cli"
	"github.com/idrisgemas/gemlookup/internal/config"
	"github.com/idrisgemas/gemlookup/internal/logging"
	"github.com/idrisgemas/gemlookup/internal/lookup"
	"github.com/idrisgemas/gemlookup/internal/sheet"
)

// CLI flags
var (
	modelFlag         string
	mediaBaseFlag     string
	sheetURLFlag      string
	envFileFlag       string
	httpTimeoutFlag   time.Duration
	genTimeoutFlag    time.Duration
	noDescriptionFlag bool
	mediaOnlyFlag     bool
	jsonFlag          bool
	checkKeyFlag      bool
	verboseFlag       bool
)

var rootCmd = &cobra.Command{
	Use:   "gem-lookup [reference]",
	Short: "Look up a gemstone by reference",
	Long: `gem-lookup finds a gemstone in the published inventory sheet by its
reference, prints its record and media URLs, and asks Gemini for a
spec sheet.

Examples:
  gem-lookup 2976
  gem-lookup 2976 --json
  gem-lookup 2976 --no-description
  gem-lookup --check-key
  gem-lookup  # Interactive mode - prompts for a reference`,
	Args: cobra.MaximumNArgs(1),
	Run:  runMain,
}

func init() {
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Gemini model to use (default from GEMINI_MODEL or gemini-2.5-flash)")
	rootCmd.Flags().StringVar(&mediaBaseFlag, "media-base", "", "Base path or URL for media files (default from GEMLOOKUP_MEDIA_BASE or /media)")
	rootCmd.Flags().StringVar(&sheetURLFlag, "sheet-url", "", "Published CSV URL of the inventory sheet")
	rootCmd.Flags().StringVar(&envFileFlag, "env-file", ".env", "Environment file to load before reading configuration")
	rootCmd.Flags().DurationVar(&httpTimeoutFlag, "http-timeout", 0, "Timeout for fetching the sheet")
	rootCmd.Flags().DurationVar(&genTimeoutFlag, "generation-timeout", lookup.DefaultGenerationTimeout, "Timeout for spec sheet generation")
	rootCmd.Flags().BoolVar(&noDescriptionFlag, "no-description", false, "Skip spec sheet generation")
	rootCmd.Flags().BoolVar(&mediaOnlyFlag, "media-only", false, "Only resolve media URLs")
	rootCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the result as JSON")
	rootCmd.Flags().BoolVar(&checkKeyFlag, "check-key", false, "Validate the Gemini API key and exit")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) {
	logging.Init()
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
	applyFlags(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Debug().
		Str("commit", commitHash).
		Str("built", buildTime).
		Str("model", cfg.Model).
		Str("sheet", cfg.SheetURL).
		Msg("gem-lookup starting")

	skipDescription := noDescriptionFlag || mediaOnlyFlag
	var apiKey string
	if checkKeyFlag || !skipDescription {
		apiKey = cli.ResolveAPIKey()
	}

	if checkKeyFlag {
		if err := cli.ValidateKey(ctx, apiKey, cfg.Model, nil); err != nil {
			cli.HandleValidationError(err)
		}
		log.Info().Str("model", cfg.Model).Msg("API key validation complete")
		return
	}

	reference := ""
	if len(args) > 0 {
		reference = args[0]
	} else {
		reference, err = cli.PromptForReference(os.Stdin, os.Stderr)
		if err != nil {
			log.Fatal().Err(err).Msg("No reference given")
		}
	}

	svc, err := cli.BuildService(ctx, cli.Setup{
		Config:            cfg,
		APIKey:            apiKey,
		SkipDescription:   skipDescription,
		GenerationTimeout: genTimeoutFlag,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize lookup")
	}

	var res *lookup.Result
	if mediaOnlyFlag {
		res, err = svc.ResolveMedia(ctx, reference)
	} else {
		res, err = svc.Search(ctx, reference)
	}
	if err != nil {
		exitForLookupError(err, reference)
	}

	if jsonFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(res); err != nil {
			log.Fatal().Err(err).Msg("Failed to encode result")
		}
		return
	}
	cli.FormatResult(os.Stdout, res)
}

func applyFlags(cfg *config.Config) {
	if modelFlag != "" {
		cfg.Model = modelFlag
	}
	if mediaBaseFlag != "" {
		cfg.MediaBase = mediaBaseFlag
	}
	if sheetURLFlag != "" {
		cfg.SheetURL = sheetURLFlag
	}
	if httpTimeoutFlag > 0 {
		cfg.HTTPTimeout = httpTimeoutFlag
	}
}

func exitForLookupError(err error, reference string) {
	var connErr *sheet.ConnectionError
	switch {
	case errors.Is(err, lookup.ErrEmptyReference):
		log.Error().Msg("A reference is required")
		os.Exit(2)
	case errors.Is(err, sheet.ErrNotFound):
		log.Error().Str("reference", reference).Msg("No gemstone found with this reference")
		os.Exit(3)
	case errors.As(err, &connErr):
		log.Error().Err(err).Msg("Could not reach the inventory sheet")
		os.Exit(4)
	default:
		log.Fatal().Err(err).Msg("Lookup failed")
	}
}
