// Package app wires the services shared by the API server and the terminal UI.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/clerk/internal/catalog"
	"github.com/MrJamesThe3rd/clerk/internal/catalog/importer"
	"github.com/MrJamesThe3rd/clerk/internal/catalog/seed"
	catalogStore "github.com/MrJamesThe3rd/clerk/internal/catalog/store"
	"github.com/MrJamesThe3rd/clerk/internal/checkout"
	"github.com/MrJamesThe3rd/clerk/internal/config"
	"github.com/MrJamesThe3rd/clerk/internal/database"
	"github.com/MrJamesThe3rd/clerk/internal/export"
	"github.com/MrJamesThe3rd/clerk/internal/inventory"
	"github.com/MrJamesThe3rd/clerk/internal/receipt"
	"github.com/MrJamesThe3rd/clerk/internal/report"
	"github.com/MrJamesThe3rd/clerk/internal/transaction"
	txStore "github.com/MrJamesThe3rd/clerk/internal/transaction/store"
)

type App struct {
	Catalog      *catalog.Service
	Transactions *transaction.Service
	Checker      *inventory.Checker
	Engine       *checkout.Engine
	Sessions     *checkout.Sessions
	Reports      *report.Service
	Export       *export.Service
	Parser       *importer.Parser
	Receipt      receipt.Store
	Location     *time.Location
	TaxRate      decimal.Decimal

	refreshPrice bool
	db           *sql.DB
}

// New builds every service on the backend selected by cfg.Store.Backend.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	rate, err := cfg.TaxRate()
	if err != nil {
		return nil, err
	}

	a := &App{
		Location:     loc,
		TaxRate:      rate,
		Receipt:      cfg.ReceiptStore(loc),
		Parser:       importer.NewParser(),
		refreshPrice: cfg.Checkout.RefreshPriceOnAdd,
	}

	var (
		products catalog.Repository
		ledger   transaction.Repository
	)

	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := database.New(ctx, cfg.ConnectionString())
		if err != nil {
			return nil, err
		}

		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}

		a.db = db
		products = catalogStore.NewPostgres(db)
		ledger = txStore.NewPostgres(db)

		log.Info("using postgres store", zap.String("host", cfg.DB.Host), zap.String("db_name", cfg.DB.Name))
	default:
		seeded, err := seed.Products()
		if err != nil {
			return nil, fmt.Errorf("loading seed catalog: %w", err)
		}

		memLedger := txStore.NewMemory()

		var sales int
		if cfg.Store.SeedSales {
			txs, err := seed.Transactions(time.Now())
			if err != nil {
				return nil, fmt.Errorf("loading seed sales: %w", err)
			}

			for _, tx := range txs {
				if err := memLedger.AppendTransaction(ctx, tx); err != nil {
					return nil, fmt.Errorf("seeding sale %s: %w", tx.ID, err)
				}
			}

			sales = len(txs)
		}

		products = catalogStore.NewMemory(seeded)
		ledger = memLedger

		log.Info("using in-memory store", zap.Int("products", len(seeded)), zap.Int("sales", sales))
	}

	a.Catalog = catalog.NewService(products)
	a.Transactions = transaction.NewService(ledger)
	a.Checker = inventory.NewChecker(a.Catalog, cfg.Checkout.LookupTimeout)
	a.Engine = checkout.NewEngine(a.Catalog, a.Transactions, checkout.Config{
		TaxRate:         rate,
		UserID:          cfg.Checkout.OperatorID,
		CashierName:     cfg.Checkout.CashierName,
		PaymentMethod:   cfg.Checkout.PaymentMethod,
		FinalizeTimeout: cfg.Checkout.FinalizeTimeout,
	})
	a.Sessions = checkout.NewSessions(a.NewSession)
	a.Reports = report.NewService(a.Transactions, loc)
	a.Export = export.NewService(a.Transactions, a.Receipt)

	return a, nil
}

// NewSession starts an empty checkout with the configured cart options.
func (a *App) NewSession() *checkout.Session {
	return checkout.NewSession(a.Engine, a.Checker, checkout.WithRefreshPrice(a.refreshPrice))
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}

	return a.db.Close()
}
