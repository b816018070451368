// Package main provides the habitcal HTTP server.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raphaelgruber/habitcal/internal/assistant"
	"github.com/raphaelgruber/habitcal/internal/clock"
	"github.com/raphaelgruber/habitcal/internal/config"
	"github.com/raphaelgruber/habitcal/internal/db"
	"github.com/raphaelgruber/habitcal/internal/llm"
	"github.com/raphaelgruber/habitcal/internal/metrics"
	"github.com/raphaelgruber/habitcal/internal/server"
	"github.com/raphaelgruber/habitcal/internal/service"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	wipeDB := flag.Bool("wipe", false, "wipe all data from database on startup (testing only)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Setup logger (dual output: stderr text + file JSON)
	logger, cleanup := config.SetupLogger(cfg)
	defer func() { _ = cleanup() }()

	logger.Info("habitcal-server starting",
		"version", version,
		"addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"llm_provider", cfg.LLMProvider,
	)

	clk := clock.System{}

	store, err := db.NewClient(cfg.DBPath, clk, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		logger.Info("closing database")
		_ = store.Close()
	}()

	if *wipeDB || os.Getenv("HABITCAL_WIPE_DB") == "true" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := store.WipeData(ctx)
		cancel()
		if err != nil {
			logger.Error("failed to wipe database", "error", err)
			os.Exit(1)
		}
		logger.Warn("database wiped")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	model, err := llm.NewModel(ctx, cfg)
	cancel()
	if err != nil {
		logger.Error("failed to create LLM model", "error", err)
		os.Exit(1)
	}
	if model == nil {
		logger.Warn("generative assistant disabled, canned responses only")
	}

	collector := metrics.NewCollector()
	habits := service.NewHabits(store, clk, logger, collector)

	// A nil *llm.Model must stay a nil interface for the assistant.
	var gen assistant.Generator
	if model != nil {
		gen = model
	}
	assist := assistant.New(store, gen, clk, logger, collector)

	srv := server.New(cfg.ListenAddr, habits, assist, collector, logger, cfg.HistoryLimit)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("received shutdown signal", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
