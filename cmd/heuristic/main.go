package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/caio-sobreiro/bidsheuristic/config"
)

func main() {
	configPath := flag.String("config", "", "Path to a JSON config file (optional)")
	project := flag.String("project", "", "Flywheel project label, e.g. PNC_LG_810336")
	dicomDir := flag.String("dicom", "", "Directory of DICOM files for one session")
	apiURL := flag.String("api-url", "", "Flywheel API base URL (derived from a site-qualified key when empty)")
	apiKey := flag.String("api-key", "", "Flywheel API key (default $"+config.EnvAPIKey+")")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	noIndex := flag.Bool("no-index", false, "Skip the session index; no data service calls")
	flag.Parse()

	cfg := config.Defaults()
	if *configPath != "" {
		fileCfg, err := config.LoadJSON(*configPath, nil)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		cfg = config.Merge(cfg, fileCfg)
	}
	cfg = config.Merge(cfg, config.EnvOverlay(os.Environ()))
	cfg = config.Merge(cfg, config.Config{
		Project:   *project,
		DICOMDir:  *dicomDir,
		APIURL:    *apiURL,
		APIKey:    *apiKey,
		LogLevel:  *logLevel,
		SkipIndex: *noIndex,
	})
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With("run_id", uuid.NewString())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, cfg, logger, os.Stdout, newFlywheelService)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		logger.Info("Run interrupted", "reason", err.Error())
		os.Exit(1)
	default:
		logger.Error("Curation run failed", "project", cfg.Project, "error", err)
		os.Exit(1)
	}
}
