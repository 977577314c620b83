// Package main is the entry point for the ledger service: a small HTTP API
// that tracks brokers, strategies, trade records and cash flows in a local
// SQLite database.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/ledger/internal/config"
	"github.com/aristath/ledger/internal/database"
	"github.com/aristath/ledger/internal/modules/brokers"
	brokerhandlers "github.com/aristath/ledger/internal/modules/brokers/handlers"
	"github.com/aristath/ledger/internal/modules/cashflows"
	cashflowhandlers "github.com/aristath/ledger/internal/modules/cashflows/handlers"
	"github.com/aristath/ledger/internal/modules/strategies"
	strategyhandlers "github.com/aristath/ledger/internal/modules/strategies/handlers"
	"github.com/aristath/ledger/internal/modules/trades"
	tradehandlers "github.com/aristath/ledger/internal/modules/trades/handlers"
	"github.com/aristath/ledger/internal/reliability"
	"github.com/aristath/ledger/internal/scheduler"
	"github.com/aristath/ledger/internal/server"
	"github.com/aristath/ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting ledger service")

	db, err := database.New(database.Config{Path: cfg.DatabasePath, Name: "ledger"})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate ledger database")
	}

	// Repositories
	brokerRepo := brokers.NewRepository(db.Conn(), log)
	strategyRepo := strategies.NewRepository(db.Conn(), log)
	tradeRepo := trades.NewRepository(db.Conn(), log)
	cashFlowRepo := cashflows.NewRepository(db.Conn(), log)

	// Services. The broker service consults the trade and cash-flow
	// repositories so a referenced broker cannot be deleted.
	brokerService := brokers.NewService(brokerRepo,
		[]brokers.ReferenceCounter{tradeRepo, cashFlowRepo}, log)
	strategyService := strategies.NewService(strategyRepo, log)
	tradeService := trades.NewService(tradeRepo, brokerRepo, strategyRepo, log)
	cashFlowService := cashflows.NewService(cashFlowRepo, brokerRepo, log)

	// Background jobs
	sched := scheduler.New(log)
	if !cfg.BackupsDisabled {
		backup := reliability.NewBackupService(db, cfg.BackupDir, cfg.BackupKeep, log)
		if err := sched.AddJob(cfg.BackupSchedule, backup); err != nil {
			log.Fatal().Err(err).Msg("Failed to register backup job")
		}
	}
	maintenance := reliability.NewMaintenanceJob(db, log)
	if err := sched.AddJob(cfg.MaintSchedule, maintenance); err != nil {
		log.Fatal().Err(err).Msg("Failed to register maintenance job")
	}
	sched.Start()

	srv := server.New(server.Config{
		Log:       log,
		DB:        db,
		Cfg:       cfg,
		Scheduler: sched,
		Modules: []server.RouteRegistrar{
			brokerhandlers.NewHandler(brokerService, log),
			strategyhandlers.NewHandler(strategyService, log),
			tradehandlers.NewHandler(tradeService, log),
			cashflowhandlers.NewHandler(cashFlowService, log),
		},
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Server stopped unexpectedly")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
	sched.Stop()

	log.Info().Msg("Ledger service stopped")
}
