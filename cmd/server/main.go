package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/parkos/parklot/internal/config"
	"github.com/parkos/parklot/internal/metrics"
	"github.com/parkos/parklot/internal/repository/postgres"
	"github.com/parkos/parklot/internal/repository/sheets"
	"github.com/parkos/parklot/internal/scheduler"
	"github.com/parkos/parklot/internal/server/handlers"
	"github.com/parkos/parklot/internal/server/router"
	authsvc "github.com/parkos/parklot/internal/service/auth"
	entriessvc "github.com/parkos/parklot/internal/service/entries"
	reportssvc "github.com/parkos/parklot/internal/service/reports"
	shiftssvc "github.com/parkos/parklot/internal/service/shifts"
	"github.com/parkos/parklot/pkg/clients/notify"
	"github.com/parkos/parklot/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	location, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.String("timezone", cfg.Reporting.Timezone), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := postgres.Open(ctx, cfg.Database.DSN, baseLogger.Named("repo.postgres"))
	if err != nil {
		baseLogger.Fatal("failed to init postgres store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			baseLogger.Error("failed to close postgres connection", zap.Error(err))
		}
	}()

	var sheetsRepo reportssvc.SheetWriter
	if cfg.SheetsEnabled() {
		repo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetsRepo = repo
	} else {
		baseLogger.Warn("sheets export disabled, reports stay local only")
	}

	var notifyClient notify.Client
	if cfg.NotifyEnabled() {
		notifyClient = notify.NewClient(cfg.Notify)
		baseLogger.Info("webhook alerts enabled")
	} else {
		baseLogger.Warn("alert webhook missing, discrepancy and overstay alerts disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	authSvc := authsvc.NewService(store, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, baseLogger.Named("svc.auth"))
	if err := authSvc.EnsureBootstrapAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		baseLogger.Fatal("failed to bootstrap admin", zap.Error(err))
	}

	entriesSvc := entriessvc.NewService(store, cfg.Tariff.OverstayHours, cfg.Tariff.PenaltyMultiplier, baseLogger.Named("svc.entries"))
	shiftsSvc := shiftssvc.NewService(store, notifyClient, baseLogger.Named("svc.shifts"))
	reportsSvc := reportssvc.NewService(store, sheetsRepo, location, baseLogger.Named("svc.reports"))

	engine := router.New(router.Handlers{
		Auth:    handlers.NewAuthHandler(authSvc, baseLogger.Named("handlers.auth")),
		Entries: handlers.NewEntriesHandler(entriesSvc, appMetrics, baseLogger.Named("handlers.entries")),
		Shifts:  handlers.NewShiftsHandler(shiftsSvc, appMetrics, baseLogger.Named("handlers.shifts")),
		Ledgers: handlers.NewLedgersHandler(shiftsSvc, baseLogger.Named("handlers.ledgers")),
		Reports: handlers.NewReportsHandler(reportsSvc, baseLogger.Named("handlers.reports")),
		Rates:   handlers.NewRatesHandler(store, baseLogger.Named("handlers.rates")),
	}, authSvc, appMetrics, registry, baseLogger.Named("router"))

	sched := scheduler.New(cfg.Reporting, entriesSvc, reportsSvc, notifyClient, appMetrics, location, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
