package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"newshub/internal/app"
	"newshub/internal/config"
	"newshub/internal/logging"
)

func main() {
	var (
		serve    = flag.Bool("serve", false, "keep running and ingest on the configured interval")
		backfill = flag.Int("backfill", 0, "translate up to N stored untranslated articles instead of ingesting")
	)
	flag.Parse()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	switch {
	case *backfill > 0:
		result, err := application.Ingestor().TranslateExisting(ctx, *backfill)
		if err != nil {
			logger.Error("backfill failed", "error", err)
			os.Exit(1)
		}
		logger.Info("backfill finished",
			"scanned", result.Scanned,
			"translated", result.Translated,
			"failed", result.Failed)

	case *serve:
		if err := application.RunForever(ctx); err != nil {
			logger.Error("scheduler stopped", "error", err)
			os.Exit(1)
		}

	default:
		result, err := application.RunOnce(ctx)
		if err != nil {
			logger.Error("ingestion failed", "error", err)
			os.Exit(1)
		}
		logger.Info("ingestion finished",
			"fetched", result.Fetched,
			"persisted", result.Persisted,
			"skipped", result.Skipped)
	}
}
