package checkout_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/clerk/internal/catalog"
	"github.com/MrJamesThe3rd/clerk/internal/checkout"
	"github.com/MrJamesThe3rd/clerk/internal/inventory"
	"github.com/MrJamesThe3rd/clerk/internal/transaction"
)

func TestSession_Lifecycle(t *testing.T) {
	f := newFixture(t, product("A", 500), product("B", 1000))
	s := f.session()
	ctx := context.Background()

	assert.Equal(t, checkout.StateIdle, s.State())
	assert.Equal(t, checkout.Status{Kind: checkout.StatusIdle}, s.Status())

	_, err := s.Add(ctx, "A", 2)
	require.NoError(t, err)
	assert.Equal(t, checkout.StateBuilding, s.State())
	assert.Equal(t, checkout.Status{Kind: checkout.StatusSuccess, Message: "Item added to cart"}, s.Status())

	_, err = s.Add(ctx, "B", 1)
	require.NoError(t, err)
	assert.Equal(t, checkout.Totals{Subtotal: 2000, Tax: 160, Total: 2160}, s.Totals())

	tx, err := s.CompleteSale(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2160), tx.Total)

	assert.Equal(t, checkout.StateIdle, s.State())
	assert.Empty(t, s.Items())
	assert.Equal(t, checkout.StatusSuccess, s.Status().Kind)
	assert.Len(t, f.recorded(t), 1)
}

func TestSession_AddInsufficientStock(t *testing.T) {
	p := product("X", 500)
	p.StockQuantity = 3

	f := newFixture(t, p)
	s := f.session()

	_, err := s.Add(context.Background(), "X", 5)

	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 3, stockErr.Available)
	assert.Equal(t, checkout.Status{Kind: checkout.StatusError, Message: "Insufficient stock. Available: 3"}, s.Status())
	assert.Equal(t, checkout.StateIdle, s.State())
	assert.Empty(t, s.Items())
}

func TestSession_AddUnknownProduct(t *testing.T) {
	f := newFixture(t)
	s := f.session()

	_, err := s.Add(context.Background(), "NOPE", 1)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Equal(t, "Product not found", s.Status().Message)
}

func TestSession_AddInvalidQuantity(t *testing.T) {
	f := newFixture(t, product("A", 500))

	_, err := f.session().Add(context.Background(), "A", 0)
	assert.ErrorIs(t, err, checkout.ErrInvalidQuantity)
}

func TestSession_RemovingLastItemReturnsToIdle(t *testing.T) {
	f := newFixture(t, product("A", 500))
	s := f.session()

	_, err := s.Add(context.Background(), "A", 1)
	require.NoError(t, err)

	require.NoError(t, s.UpdateQuantity("A", 0))
	assert.Equal(t, checkout.StateIdle, s.State())

	_, err = s.Add(context.Background(), "A", 1)
	require.NoError(t, err)

	require.NoError(t, s.Remove("A"))
	assert.Equal(t, checkout.StateIdle, s.State())
}

func TestSession_Clear(t *testing.T) {
	f := newFixture(t, product("A", 500))
	s := f.session()

	_, err := s.Add(context.Background(), "A", 1)
	require.NoError(t, err)

	require.NoError(t, s.Clear())
	assert.Equal(t, checkout.StateIdle, s.State())
	assert.Empty(t, s.Items())
	assert.Equal(t, checkout.Status{Kind: checkout.StatusIdle}, s.Status())
}

func TestSession_CompleteSaleEmpty(t *testing.T) {
	f := newFixture(t)
	s := f.session()

	_, err := s.CompleteSale(context.Background())
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
	assert.Equal(t, checkout.StatusError, s.Status().Kind)
	assert.Empty(t, f.recorded(t))
}

func TestSession_FailedSaleKeepsCart(t *testing.T) {
	products := map[string]*catalog.Product{"A": product("A", 500)}

	getter := getterFunc(func(_ context.Context, sku string) (*catalog.Product, error) {
		if p, ok := products[sku]; ok {
			return p, nil
		}

		return nil, catalog.ErrNotFound
	})

	f := newFixture(t)
	engine := checkout.NewEngine(getter, f.txs, engineConfig)
	s := checkout.NewSession(engine, inventory.NewChecker(getter, time.Second))

	_, err := s.Add(context.Background(), "A", 2)
	require.NoError(t, err)

	delete(products, "A")

	_, err = s.CompleteSale(context.Background())
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	assert.Equal(t, checkout.StateBuilding, s.State())
	assert.Equal(t, []checkout.Item{{SKU: "A", Name: "Product A", Quantity: 2, UnitPrice: 500}}, s.Items())
	assert.Equal(t, checkout.Status{Kind: checkout.StatusError, Message: "Product A is no longer available"}, s.Status())
	assert.Empty(t, f.recorded(t))
}

func TestSession_BusyWhileFinalizing(t *testing.T) {
	f := newFixture(t, product("A", 500))

	entered := make(chan struct{})
	release := make(chan struct{})

	recorder := recorderFunc(func(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
		close(entered)
		<-release

		return f.txs.Create(ctx, params)
	})

	engine := checkout.NewEngine(catalog.NewService(f.products), recorder, engineConfig)
	s := checkout.NewSession(engine, f.checker)

	_, err := s.Add(context.Background(), "A", 1)
	require.NoError(t, err)

	done := make(chan error, 1)

	go func() {
		_, err := s.CompleteSale(context.Background())
		done <- err
	}()

	<-entered

	assert.Equal(t, checkout.StateFinalizing, s.State())
	assert.Equal(t, checkout.Status{Kind: checkout.StatusProcessing, Message: "Processing transaction..."}, s.Status())

	_, err = s.Add(context.Background(), "A", 1)
	assert.ErrorIs(t, err, checkout.ErrSessionBusy)
	assert.ErrorIs(t, s.UpdateQuantity("A", 3), checkout.ErrSessionBusy)
	assert.ErrorIs(t, s.Remove("A"), checkout.ErrSessionBusy)
	assert.ErrorIs(t, s.Clear(), checkout.ErrSessionBusy)

	_, err = s.CompleteSale(context.Background())
	assert.ErrorIs(t, err, checkout.ErrSessionBusy)

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, checkout.StateIdle, s.State())
	assert.Len(t, f.recorded(t), 1)
}

func TestSessions_Get(t *testing.T) {
	f := newFixture(t, product("A", 500))
	created := 0

	reg := checkout.NewSessions(func() *checkout.Session {
		created++
		return f.session()
	})

	a := reg.Get("till-1")
	assert.Same(t, a, reg.Get("till-1"))
	assert.NotSame(t, a, reg.Get("till-2"))
	assert.Equal(t, 2, created)

	_, err := a.Add(context.Background(), "A", 1)
	require.NoError(t, err)
	assert.Empty(t, reg.Get("till-2").Items(), "sessions must not share carts")
}
