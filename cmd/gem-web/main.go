package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/idrisgemas/gemlookup/internal/cli"
	"github.com/idrisgemas/gemlookup/internal/config"
	"github.com/idrisgemas/gemlookup/internal/httpapi"
	"github.com/idrisgemas/gemlookup/internal/logging"
	"github.com/idrisgemas/gemlookup/internal/metrics"
)

// CLI flags
var (
	addrFlag     string
	portFlag     int
	refreshFlag  time.Duration
	modelFlag    string
	envFileFlag  string
	validateFlag bool
	noCORSFlag   bool
	emitEMFFlag  bool
	verboseFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "gem-web",
	Short: "Local HTTP API for gemstone lookups",
	Long: `gem-web serves the gemstone lookup as a JSON API on a local port.

Endpoints:
  GET /api/health
  GET /api/gems?reference=2976
  GET /api/gems/{reference}
  GET /api/gems/{reference}/media

Examples:
  gem-web
  gem-web --port 9090
  gem-web --addr 0.0.0.0:8080 --validate-key`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().StringVar(&addrFlag, "addr", "", "Listen address (default from GEMLOOKUP_ADDR or 127.0.0.1:8080)")
	rootCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on, overriding the port in --addr")
	rootCmd.Flags().DurationVar(&refreshFlag, "refresh-interval", 0, "Reload the inventory sheet this often (0 = load once)")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Gemini model to use")
	rootCmd.Flags().StringVar(&envFileFlag, "env-file", ".env", "Environment file to load before reading configuration")
	rootCmd.Flags().BoolVar(&validateFlag, "validate-key", false, "Validate the Gemini API key at startup")
	rootCmd.Flags().BoolVar(&noCORSFlag, "no-cors", false, "Disable CORS headers for localhost origins")
	rootCmd.Flags().BoolVar(&emitEMFFlag, "emf", false, "Write EMF metrics to stdout")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	initStart := time.Now()
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
	if modelFlag != "" {
		cfg.Model = modelFlag
	}
	addr, err := listenAddr(cfg.ListenAddr)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid listen address")
	}

	ctx := context.Background()
	apiKey := cli.ResolveAPIKey()
	if validateFlag && apiKey != "" {
		if err := cli.ValidateKey(ctx, apiKey, cfg.Model, nil); err != nil {
			cli.HandleValidationError(err)
		}
		log.Info().Msg("API key validated")
	}

	var emitter *metrics.Emitter
	if emitEMFFlag {
		emitter = metrics.Stdout()
	}

	svc, err := cli.BuildService(ctx, cli.Setup{
		Config:  cfg,
		APIKey:  apiKey,
		Metrics: emitter,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize lookup")
	}

	handler := httpapi.NewRouter(svc, httpapi.Options{
		OriginVerifySecret: cfg.OriginVerifySecret,
		AllowLocalhostCORS: !noCORSFlag,
		Metrics:            emitter,
	})

	refreshCtx, stopRefresh := context.WithCancel(ctx)
	defer stopRefresh()
	go svc.Cache.ExpireEvery(refreshCtx, refreshFlag)

	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("Shutdown did not complete cleanly")
		}
	}()

	logging.NewStartupLogger("gem-web").
		CommitHash(commitHash).
		BuildTime(buildTime).
		InitDuration(time.Since(initStart)).
		Source("sheet", cfg.SheetURL).
		Feature("descriptions", apiKey != "").
		Feature("originVerify", cfg.OriginVerifySecret != "").
		Feature("cors", !noCORSFlag).
		Feature("emf", emitEMFFlag).
		Config("addr", addr).
		Config("refreshInterval", refreshFlag.String()).
		Config("model", cfg.Model).
		Config("mediaBase", cfg.MediaBase).
		Log()

	fmt.Printf("\n  Gem lookup API: http://%s/api/health\n\n", addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// listenAddr applies --addr and --port on top of the configured address.
func listenAddr(configured string) (string, error) {
	addr := configured
	if addrFlag != "" {
		addr = addrFlag
	}
	if portFlag == 0 {
		return addr, nil
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", addr, err)
	}
	return net.JoinHostPort(host, strconv.Itoa(portFlag)), nil
}
