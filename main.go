package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"airbnb-dashboard/config"
	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
	"airbnb-dashboard/snapshot"
	"airbnb-dashboard/storage"
	"airbnb-dashboard/utils"
	"airbnb-dashboard/web"
)

func main() {
	logger := utils.NewLogger()
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration: %v", err)
		os.Exit(1)
	}
	level, err := utils.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warn("%v, using info", err)
	}
	logger.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== Airbnb Data Dashboard starting ===")
	logger.Info("Config — source: %s | addr: %s | cheapest: %d | bins: %d",
		cfg.DataSource, cfg.HTTPAddr, cfg.CheapestLimit, cfg.HistogramBins)

	src, closeSrc, err := openSource(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open listing source: %v", err)
		os.Exit(1)
	}
	defer closeSrc()

	loader := services.NewLoader(logger)
	ds, err := loader.Load(ctx, src)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrDataFormat):
			logger.Error("Listing data is malformed: %v", err)
		default:
			logger.Error("Failed to load listings: %v", err)
		}
		os.Exit(1)
	}

	insightSvc := services.NewInsightService(logger, cfg.CheapestLimit, cfg.HistogramBins)
	insightSvc.Print(insightSvc.Generate(ds.Listings()))

	srv, err := web.NewServer(ds, insightSvc, logger, web.NewMetrics(), web.Options{
		Title:                cfg.DashboardTitle,
		CheapestLimit:        cfg.CheapestLimit,
		HistogramBins:        cfg.HistogramBins,
		MarkerPriceThreshold: cfg.MarkerPriceThreshold,
	})
	if err != nil {
		logger.Error("Failed to build dashboard: %v", err)
		os.Exit(1)
	}

	if len(os.Args) > 1 && os.Args[1] == "snapshot" {
		if err := runSnapshots(ctx, cfg, logger, srv, ds); err != nil {
			logger.Error("Snapshot batch failed: %v", err)
			os.Exit(1)
		}
		return
	}

	if err := serve(ctx, cfg, logger, srv); err != nil {
		logger.Error("HTTP server failed: %v", err)
		os.Exit(1)
	}
}

func openSource(ctx context.Context, cfg *config.Config, logger *utils.Logger) (storage.ListingSource, func(), error) {
	if cfg.DataSource == "postgres" {
		pg, err := storage.NewPostgresSource(ctx, cfg.DSN(), cfg.PostgresTable, &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		})
		if err != nil {
			logger.Error("Make sure PostgreSQL is running: docker compose up -d")
			return nil, nil, err
		}
		return pg, func() { _ = pg.Close() }, nil
	}
	return storage.NewCSVSource(cfg.CSVPath, cfg.Delimiter()), func() {}, nil
}

func serve(ctx context.Context, cfg *config.Config, logger *utils.Logger, srv *web.Server) error {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("[http] Dashboard listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("[http] Shutting down (timeout %v)", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func runSnapshots(ctx context.Context, cfg *config.Config, logger *utils.Logger, srv *web.Server, ds *models.Dataset) error {
	presets, err := snapshot.LoadPresets(cfg.SnapshotPresets)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	httpServer := &http.Server{Handler: srv.Routes(), ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = httpServer.Serve(ln) }()
	defer httpServer.Close()

	browser, err := snapshot.NewBrowser(ctx, cfg.ChromeBin, logger)
	if err != nil {
		return err
	}
	defer browser.Close()

	runner := snapshot.NewRunner(browser, logger, snapshot.Options{
		OutDir:      cfg.SnapshotDir,
		Concurrency: cfg.SnapshotConcurrency,
		RateLimitMs: cfg.RateLimitMs,
		MaxRetries:  cfg.MaxRetries,
	})
	results, err := runner.Run(ctx, "http://"+ln.Addr().String(), ds, presets)
	for _, r := range results {
		fmt.Printf("  %-28s %5d listings → %s\n", r.Preset, r.Listings, r.PNGPath)
	}
	fmt.Printf("\n  Done. %d/%d snapshots written to %s\n\n", len(results), len(presets), cfg.SnapshotDir)
	return err
}
