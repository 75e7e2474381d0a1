package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ironsheep/caption-art/internal/adapter"
	"github.com/ironsheep/caption-art/internal/config"
	"github.com/ironsheep/caption-art/internal/dispatch"
	"github.com/ironsheep/caption-art/internal/export"
	"github.com/ironsheep/caption-art/internal/logger"
	"github.com/ironsheep/caption-art/internal/scaler"
	"github.com/ironsheep/caption-art/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configFile := pflag.String("config", "", "Path to a YAML config file")
	envPath := pflag.String("env", "", "Path to a .env file")
	showVersion := pflag.BoolP("version", "v", false, "Print version information")
	showHelp := pflag.BoolP("help", "h", false, "Print this help message")
	pflag.Parse()

	if *showVersion {
		fmt.Printf("caption-art %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}
	if *showHelp {
		fmt.Println("caption-art - MCP server for captioned photo exports")
		fmt.Println()
		fmt.Println("Usage: caption-art [options]")
		fmt.Println()
		fmt.Println("Options:")
		pflag.PrintDefaults()
		fmt.Println()
		fmt.Println("Environment variables:")
		fmt.Println("  CAPTION_ART_DEBUG=true              Enable debug logging")
		fmt.Println("  CAPTION_ART_EXPORT_OUTPUT_DIR=dir   Where exports are saved")
		fmt.Println()
		fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
		return
	}

	cfg, err := config.Load(*configFile, *envPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(logger.Config{Debug: cfg.Debug}); err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Caption art server starting",
		zap.String("version", Version),
		zap.String("buildTime", BuildTime),
		zap.String("gitCommit", GitCommit),
		zap.String("outputDir", cfg.Export.OutputDir),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error(fmt.Errorf("server error: %w", err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	clock := adapter.NewClock()

	worker := scaler.NewWorkerScaler(cfg.Export.WorkerConcurrency)
	defer worker.Close()

	dispatchCfg := dispatch.DefaultConfig()
	dispatchCfg.ReleaseDelay = cfg.Export.ReleaseDelay
	dispatchCfg.RetryInterval = 50 * time.Millisecond

	host := dispatch.NewFileHost(adapter.NewFileSystem(), cfg.Export.OutputDir)
	dispatcher := dispatch.NewDispatcher(host, clock, dispatchCfg)
	defer dispatcher.Wait()

	exporter := export.New(export.Settings{
		StageDelay: cfg.Export.StageDelay,
		TestMode:   cfg.Export.TestMode,
		CacheTTL:   cfg.Export.CacheTTL,
		MaxPixels:  cfg.Export.MaxPixels,
	}, scaler.NewAdaptive(worker, cfg.Export.LargeImagePixels), dispatcher, clock)

	srv := server.New(server.Options{
		Exporter: exporter,
		Defaults: cfg.Defaults,
		CellSize: cfg.Placement.CellSize,
		Version:  Version,

		LargeImagePixels: cfg.Export.LargeImagePixels,
	})
	return srv.Run(ctx)
}
