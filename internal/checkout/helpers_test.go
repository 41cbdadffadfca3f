package checkout_test

import (
	"context"
	"testing"
	"time"

	"github.com/MrJamesThe3rd/clerk/internal/catalog"
	catalogstore "github.com/MrJamesThe3rd/clerk/internal/catalog/store"
	"github.com/MrJamesThe3rd/clerk/internal/checkout"
	"github.com/MrJamesThe3rd/clerk/internal/inventory"
	"github.com/MrJamesThe3rd/clerk/internal/transaction"
	txstore "github.com/MrJamesThe3rd/clerk/internal/transaction/store"
)

var engineConfig = checkout.Config{
	TaxRate:         checkout.DefaultTaxRate,
	UserID:          "cashier_001",
	CashierName:     "Cashier 1",
	PaymentMethod:   "mock",
	FinalizeTimeout: time.Second,
}

type fixture struct {
	products *catalogstore.Memory
	ledger   *txstore.Memory
	txs      *transaction.Service
	engine   *checkout.Engine
	checker  *inventory.Checker
}

func newFixture(t *testing.T, products ...*catalog.Product) *fixture {
	t.Helper()

	f := &fixture{
		products: catalogstore.NewMemory(products),
		ledger:   txstore.NewMemory(),
	}

	catalogSvc := catalog.NewService(f.products)
	f.txs = transaction.NewService(f.ledger)
	f.engine = checkout.NewEngine(catalogSvc, f.txs, engineConfig)
	f.checker = inventory.NewChecker(catalogSvc, time.Second)

	return f
}

func (f *fixture) session(opts ...checkout.CartOption) *checkout.Session {
	return checkout.NewSession(f.engine, f.checker, opts...)
}

func (f *fixture) recorded(t *testing.T) []*transaction.Transaction {
	t.Helper()

	txs, err := f.ledger.ListTransactions(context.Background(), transaction.ListFilter{})
	if err != nil {
		t.Fatalf("listing transactions: %v", err)
	}

	return txs
}

type getterFunc func(ctx context.Context, sku string) (*catalog.Product, error)

func (g getterFunc) Get(ctx context.Context, sku string) (*catalog.Product, error) {
	return g(ctx, sku)
}

type recorderFunc func(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error)

func (r recorderFunc) Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	return r(ctx, params)
}
