package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/mamadbah2/biomethane/internal/config"
	"github.com/mamadbah2/biomethane/internal/observability"
	"github.com/mamadbah2/biomethane/internal/repository/mongodb"
	"github.com/mamadbah2/biomethane/internal/repository/sheets"
	"github.com/mamadbah2/biomethane/internal/scheduler"
	"github.com/mamadbah2/biomethane/internal/server/handlers"
	"github.com/mamadbah2/biomethane/internal/server/router"
	evaluationsvc "github.com/mamadbah2/biomethane/internal/service/evaluation"
	"github.com/mamadbah2/biomethane/internal/service/inventory"
	reportingsvc "github.com/mamadbah2/biomethane/internal/service/reporting"
	"github.com/mamadbah2/biomethane/pkg/clients/market"
	"github.com/mamadbah2/biomethane/pkg/clients/webhook"
	"github.com/mamadbah2/biomethane/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	scenario, err := config.LoadScenario(cfg.Model.ScenarioFile)
	if err != nil {
		baseLogger.Fatal("failed to load base scenario", zap.Error(err))
	}

	collector, err := observability.NewModelCollector(nil)
	if err != nil {
		baseLogger.Fatal("failed to register metrics", zap.Error(err))
	}

	var catalog evaluationsvc.Catalog = evaluationsvc.NewStaticCatalog(evaluationsvc.DefaultProfiles)

	if cfg.MongoDB.Enabled() {
		connectCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		mongoRepo, err := mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			cancel()
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		added, err := evaluationsvc.SeedCatalog(connectCtx, mongoRepo, evaluationsvc.DefaultProfiles)
		cancel()
		if err != nil {
			baseLogger.Fatal("failed to seed feedstock catalog", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		catalog = mongoRepo
		baseLogger.Info("mongodb feedstock catalog enabled", zap.Int("seeded_profiles", added))
	}

	evaluationSvc := evaluationsvc.NewService(catalog, collector, evaluationsvc.Settings{
		HorizonYears:    cfg.Model.ProjectionYears,
		Levels:          cfg.Model.SensitivityLevels,
		Drivers:         cfg.Model.SensitivityDrivers,
		CO2Policy:       cfg.Model.CO2Policy,
		CO2FlatFraction: cfg.Model.CO2FlatFraction,
	}, baseLogger.Named("svc.evaluation"))

	modelHandler := handlers.NewModelHandler(evaluationSvc, catalog, scenario, baseLogger.Named("handlers.model"))
	engine := router.New(modelHandler, collector, baseLogger.Named("router"))

	if cfg.Notify.WebhookURL != "" {
		var source inventory.Source
		if cfg.Sheets.Enabled() {
			sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
			if err != nil {
				baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
			}
			source = inventory.NewSheetSource(sheetsRepo, cfg.Sheets.InventoryRange, baseLogger.Named("svc.inventory"))
			baseLogger.Info("google sheets inventory enabled")
		}

		var prices reportingsvc.PriceSource
		if cfg.Market.FeedURL != "" {
			prices = market.NewClient(cfg.Market)
			baseLogger.Info("market price feed enabled")
		}

		reportingSvc := reportingsvc.NewService(scenario, source, prices, evaluationSvc, baseLogger.Named("svc.reporting"))
		sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, webhook.NewClient(cfg.Notify), baseLogger.Named("scheduler"))
		if err != nil {
			baseLogger.Fatal("failed to init scheduler", zap.Error(err))
		}
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	} else {
		baseLogger.Warn("notify webhook missing, scheduled snapshots disabled")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
