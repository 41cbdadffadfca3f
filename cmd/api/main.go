package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/clerk/internal/app"
	"github.com/MrJamesThe3rd/clerk/internal/config"
	clerkHttp "github.com/MrJamesThe3rd/clerk/internal/http"
	catalogHandler "github.com/MrJamesThe3rd/clerk/internal/http/catalog"
	checkoutHandler "github.com/MrJamesThe3rd/clerk/internal/http/checkout"
	exportHandler "github.com/MrJamesThe3rd/clerk/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/clerk/internal/http/importcsv"
	inventoryHandler "github.com/MrJamesThe3rd/clerk/internal/http/inventory"
	reportHandler "github.com/MrJamesThe3rd/clerk/internal/http/report"
	txHandler "github.com/MrJamesThe3rd/clerk/internal/http/transaction"
	"github.com/MrJamesThe3rd/clerk/internal/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logger())
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to build services", zap.Error(err))
	}
	defer services.Close()

	router := clerkHttp.New(clerkHttp.Handlers{
		Catalog:      catalogHandler.NewHandler(services.Catalog, log),
		Import:       importHandler.NewHandler(services.Parser, services.Catalog, log),
		Inventory:    inventoryHandler.NewHandler(services.Checker, log),
		Checkout:     checkoutHandler.NewHandler(services.Sessions, services.Receipt, log),
		Transactions: txHandler.NewHandler(services.Transactions, services.Receipt, log),
		Reports:      reportHandler.NewHandler(services.Reports, log),
		Export:       exportHandler.NewHandler(services.Export, services.Location, log),
	}, clerkHttp.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server",
			zap.String("app", cfg.App.Name),
			zap.String("addr", srv.Addr),
			zap.String("backend", cfg.Store.Backend),
			zap.String("timezone", services.Location.String()),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}

	log.Info("server stopped")
}
