// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fractalqualia/video-downloader-api/internal/classify"
	"github.com/fractalqualia/video-downloader-api/internal/collect"
	"github.com/fractalqualia/video-downloader-api/internal/config"
	"github.com/fractalqualia/video-downloader-api/internal/history"
	"github.com/fractalqualia/video-downloader-api/internal/httputil"
	"github.com/fractalqualia/video-downloader-api/internal/pipeline"
	"github.com/fractalqualia/video-downloader-api/internal/remux"
	"github.com/fractalqualia/video-downloader-api/internal/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagConfig    string
	flagHost      string
	flagPort      int
	flagChrome    string
	flagFFmpeg    string
	flagNoHistory bool
	flagDebug     bool
)

// cfg holds the loaded configuration (merged: defaults < config file < env < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "vidgrab",
	Short: "Extract and download HLS streams from web pages",
	Long: `Vidgrab runs an HTTP service that turns a web page embedding an HLS
player into a downloadable MP4: it renders the page in a headless browser,
picks the master playlist among the observed manifests, and remuxes the
stream with ffmpeg.`,
	PersistentPreRunE: loadConfig,
	RunE:              serveRun,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&flagHost, "host", "", "Address to bind to")
	rootCmd.PersistentFlags().IntVarP(&flagPort, "port", "p", 0, "Port to listen on")
	rootCmd.PersistentFlags().StringVar(&flagChrome, "chrome", "", "Path to the browser binary")
	rootCmd.PersistentFlags().StringVar(&flagFFmpeg, "ffmpeg", "", "Path to the ffmpeg binary")
	rootCmd.PersistentFlags().BoolVar(&flagNoHistory, "no-history", false, "Disable the download history log")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < env < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if flagConfig != "" {
		cfg, err = config.LoadFrom(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file and env values
	if flagHost != "" {
		cfg.Host = flagHost
	}
	if flagPort != 0 {
		cfg.Port = flagPort
	}
	if flagChrome != "" {
		cfg.ChromePath = flagChrome
	}
	if flagFFmpeg != "" {
		cfg.FFmpegPath = flagFFmpeg
	}
	if flagNoHistory {
		cfg.History = false
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	return nil
}

// serveRun is the default command: run the HTTP service.
func serveRun(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	client := httputil.NewClient(cfg.FetchTimeout.Std())

	var fallback *collect.StaticScanner
	if cfg.StaticFallback {
		fallback = collect.NewStaticScanner(client, logger)
	}
	collector := collect.NewBrowser(collect.Config{
		ChromePath:   cfg.ChromePath,
		NavTimeout:   cfg.NavTimeout.Std(),
		SettleWindow: cfg.SettleWindow.Std(),
	}, fallback, logger)

	remuxer := remux.New(cfg.FFmpegPath, cfg.RemuxTimeout.Std(), logger)
	if !remuxer.Available() {
		logger.Warn("ffmpeg not found, downloads will fail until it is installed")
	}

	var histLog *history.Log
	if cfg.History {
		path, err := config.HistoryPath()
		if err != nil {
			return fmt.Errorf("resolving history path: %w", err)
		}
		histLog = history.NewLog(path)
	}

	srv := server.New(server.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		ShutdownTimeout: 15 * time.Second,
	}, server.Deps{
		Pipeline: &pipeline.Pipeline{
			Collector:  collector,
			Classifier: classify.New(client, logger),
			Remuxer:    remuxer,
			Logger:     logger,
		},
		TempRoot: cfg.TempRoot(),
		History:  histLog,
		FFmpegOK: remuxer.Available,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	}
}
