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

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/vintrade/db"
	"github.com/joseph-ayodele/vintrade/internal/common"
	"github.com/joseph-ayodele/vintrade/internal/decode"
	"github.com/joseph-ayodele/vintrade/internal/export"
	"github.com/joseph-ayodele/vintrade/internal/repository"
	"github.com/joseph-ayodele/vintrade/internal/server"
	"github.com/joseph-ayodele/vintrade/internal/vehicle"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbh, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer dbh.Close(logger)

	if err := dbh.HealthCheck(ctx, 3*time.Second, logger); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}

	// sqlite has no external migration step; apply the schema on boot.
	if cfg.Database.Driver == "sqlite" {
		if err := db.Apply(ctx, dbh.SQL); err != nil {
			logger.Error("applying schema", "error", err)
			os.Exit(1)
		}
		logger.Info("schema applied")
	}

	vehicles := repository.NewVehicleRepository(dbh, logger)
	partners := repository.NewPartnerRepository(dbh, logger)
	wallets := repository.NewWalletRepository(dbh, logger)
	invoices := repository.NewInvoiceRepository(dbh, logger)

	decoder := decode.NewClient(logger,
		decode.WithBaseURL(cfg.Decode.BaseURL),
		decode.WithTimeout(cfg.Decode.Timeout))

	vehicleSvc := vehicle.NewService(vehicles, partners, wallets, invoices, decoder, cfg.Decode.AutoDecode, logger)
	exportSvc := export.NewService(partners, invoices, wallets, logger)

	srv := server.New(server.Config{
		Addr:     cfg.Server.Addr,
		Vehicles: vehicleSvc,
		Partners: partners,
		Wallets:  wallets,
		Invoices: invoices,
		Export:   exportSvc,
		DB:       dbh,
		Logger:   logger,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Error("server failed", "error", err)
		os.Exit(1)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}
