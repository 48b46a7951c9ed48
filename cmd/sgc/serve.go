package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sgcpro/sgc/internal/automation"
	"github.com/sgcpro/sgc/internal/billing"
	"github.com/sgcpro/sgc/internal/blob"
	"github.com/sgcpro/sgc/internal/config"
	"github.com/sgcpro/sgc/internal/events"
	"github.com/sgcpro/sgc/internal/jobs"
	"github.com/sgcpro/sgc/internal/locale"
	"github.com/sgcpro/sgc/internal/metrics"
	"github.com/sgcpro/sgc/internal/quote"
	"github.com/sgcpro/sgc/internal/server"
	"github.com/sgcpro/sgc/internal/sheets"
	"github.com/sgcpro/sgc/internal/store/postgres"
	sgcsync "github.com/sgcpro/sgc/internal/sync"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the SGC HTTP server",
	GroupID: "system",
	// Override PersistentPreRunE so we don't build an API client.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		ctx := context.Background()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		loc := locale.Location(cfg.Timezone)

		chart := billing.DefaultChart()
		if cfg.ChartOfAccounts != "" {
			if chart, err = billing.LoadChart(cfg.ChartOfAccounts); err != nil {
				return err
			}
			logger.Info("chart of accounts loaded", "path", cfg.ChartOfAccounts)
		}

		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}

		// Event bus: NATS when configured, otherwise in-process.
		var (
			publisher  events.Publisher
			subscriber events.Subscriber
		)
		if cfg.NATSURL != "" {
			bus, err := events.NewNATSBus(cfg.NATSURL)
			if err != nil {
				store.Close()
				return err
			}
			publisher, subscriber = bus, bus
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			bus := events.NewLocalBus(0)
			publisher, subscriber = bus, bus
			logger.Info("events on in-process bus (SGC_NATS_URL not set)")
		}

		// Document storage.
		var docs blob.Store
		if cfg.StorageBucket != "" {
			s3, err := blob.NewS3(ctx, cfg.StorageBucket, cfg.SyncS3Region, cfg.SyncS3Endpoint)
			if err != nil {
				publisher.Close()
				store.Close()
				return err
			}
			docs = s3
			logger.Info("document storage on S3", "bucket", cfg.StorageBucket)
		} else {
			docs = blob.NewMemory()
			logger.Warn("document storage in memory (SGC_STORAGE_BUCKET not set)")
		}

		// Quote extraction.
		var quotes *quote.Service
		if cfg.GeminiAPIKey != "" {
			g, err := quote.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
			if err != nil {
				logger.Error("failed to create Gemini client", "err", err)
			} else {
				quotes = &quote.Service{Store: store, Extractor: g, Logger: logger}
				logger.Info("quote extraction enabled", "model", cfg.GeminiModel)
			}
		}

		// Batch jobs.
		runner := &jobs.Runner{
			Store:        store,
			Consolidator: &metrics.Consolidator{Store: store, Logger: logger},
			Publisher:    publisher,
			Logger:       logger,
		}
		if cfg.SheetsEnabled() {
			creds, err := sheets.LoadCredentials(cfg.SheetsCredentials)
			if err == nil {
				var sc *sheets.Client
				if sc, err = sheets.New(ctx, creds); err == nil {
					runner.Syncer = &metrics.Syncer{
						Store:         store,
						Sheets:        sc,
						SpreadsheetID: cfg.SheetsSpreadsheetID,
						SheetName:     cfg.SheetsName,
						Logger:        logger,
					}
					logger.Info("sheets sync enabled", "spreadsheet", cfg.SheetsSpreadsheetID)
				}
			}
			if err != nil {
				logger.Error("sheets sync disabled", "err", err)
			}
		}
		cronJobs, err := jobs.NewScheduler(runner, jobs.Schedule{
			Consolidate: config.CronSpec(cfg.ConsolidateCron),
			SheetsSync:  config.CronSpec(cfg.SheetsCron),
			Location:    loc,
		})
		if err != nil {
			publisher.Close()
			store.Close()
			return err
		}
		cronJobs.Start()
		logger.Info("job scheduler started", "entries", cronJobs.Entries())

		// Backups.
		var backups *sgcsync.Scheduler
		if cfg.SyncS3Bucket != "" {
			bs, err := blob.NewS3(ctx, cfg.SyncS3Bucket, cfg.SyncS3Region, cfg.SyncS3Endpoint)
			if err != nil {
				logger.Error("failed to create S3 backup destination", "err", err)
			} else {
				dests := []sgcsync.Destination{sgcsync.NewBlobDestination(bs, cfg.SyncS3Key)}
				backups = sgcsync.NewScheduler(store, dests, cfg.SyncInterval, logger)
				if cfg.SyncInterval > 0 {
					backups.Start()
					logger.Info("backup scheduler started", "interval", cfg.SyncInterval, "bucket", cfg.SyncS3Bucket)
				}
			}
		}

		// Automation subscriber.
		autoCtx, autoCancel := context.WithCancel(ctx)
		autoDone := make(chan struct{})
		go func() {
			defer close(autoDone)
			if err := automation.NewHandler(store, publisher, logger).StartSubscriber(autoCtx, subscriber); err != nil {
				logger.Error("automation subscriber error", "err", err)
			}
		}()

		opts := server.Options{
			Blobs:    docs,
			Quotes:   quotes,
			Jobs:     runner,
			Chart:    chart,
			Location: loc,
			Logger:   logger,
		}
		if backups != nil {
			opts.Backups = backups
		}
		srv := server.New(store, publisher, opts)
		httpServer := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           srv.NewHTTPHandler(server.AuthConfig{Token: cfg.AuthToken, JWTSecret: cfg.JWTSecret}),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		if cfg.AuthToken == "" && cfg.JWTSecret == "" {
			logger.Warn("authentication disabled (set SGC_AUTH_TOKEN or SGC_JWT_SECRET)")
		}
		logger.Info("sgc server started", "http_addr", cfg.HTTPAddr, "timezone", loc.String())

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		autoCancel()
		<-autoDone
		logger.Info("automation subscriber stopped")

		cronJobs.Stop()
		logger.Info("job scheduler stopped")

		if backups != nil && cfg.SyncInterval > 0 {
			backups.Stop()
			logger.Info("backup scheduler stopped")
		}

		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := subscriber.Close(); err != nil {
			logger.Error("error closing subscriber", "err", err)
		}
		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := store.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}
