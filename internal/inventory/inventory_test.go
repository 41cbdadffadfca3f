package inventory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/clerk/internal/catalog"
	"github.com/MrJamesThe3rd/clerk/internal/catalog/store"
	"github.com/MrJamesThe3rd/clerk/internal/inventory"
)

func newChecker() *inventory.Checker {
	repo := store.NewMemory([]*catalog.Product{
		{SKU: "X", Name: "Lantern", Price: 339, StockQuantity: 3},
		{SKU: "Y", Name: "Mug Cosy", Price: 165, StockQuantity: 0},
	})

	return inventory.NewChecker(catalog.NewService(repo), time.Second)
}

func TestChecker_CheckAvailability(t *testing.T) {
	type args struct {
		sku      string
		quantity int
	}

	type testCase struct {
		name          string
		args          args
		wantAvailable bool
		wantProduct   bool
		wantErr       error
	}

	tests := []testCase{
		{name: "InStock", args: args{"X", 3}, wantAvailable: true, wantProduct: true},
		{name: "InsufficientStock", args: args{"X", 5}, wantAvailable: false, wantProduct: true},
		{name: "OutOfStock", args: args{"Y", 1}, wantAvailable: false, wantProduct: true},
		{name: "UnknownSKU", args: args{"Z", 1}, wantAvailable: false, wantProduct: false},
		{name: "ZeroQuantity", args: args{"X", 0}, wantErr: inventory.ErrInvalidQuantity},
		{name: "NegativeQuantity", args: args{"X", -1}, wantErr: inventory.ErrInvalidQuantity},
		{name: "EmptySKU", args: args{"", 1}, wantErr: inventory.ErrInvalidSKU},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newChecker().CheckAvailability(context.Background(), tt.args.sku, tt.args.quantity)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantAvailable, got.Available)
			assert.Equal(t, tt.wantProduct, got.Product != nil)
		})
	}
}

func TestChecker_InsufficientStockReportsProduct(t *testing.T) {
	got, err := newChecker().CheckAvailability(context.Background(), "X", 5)
	require.NoError(t, err)

	assert.False(t, got.Available)
	require.NotNil(t, got.Product)
	assert.Equal(t, 3, got.Product.StockQuantity)

	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, got.Err(), &stockErr)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)
}

func TestAvailability_Err(t *testing.T) {
	ctx := context.Background()
	c := newChecker()

	ok, err := c.CheckAvailability(ctx, "X", 1)
	require.NoError(t, err)
	assert.NoError(t, ok.Err())

	missing, err := c.CheckAvailability(ctx, "Z", 1)
	require.NoError(t, err)
	assert.ErrorIs(t, missing.Err(), catalog.ErrNotFound)
}

type fakeGetter struct {
	get func(ctx context.Context, sku string) (*catalog.Product, error)
}

func (f fakeGetter) Get(ctx context.Context, sku string) (*catalog.Product, error) {
	return f.get(ctx, sku)
}

func TestChecker_LookupFailure(t *testing.T) {
	boom := fakeGetter{get: func(context.Context, string) (*catalog.Product, error) {
		return nil, fmt.Errorf("%w: connection refused", catalog.ErrLookupFailed)
	}}

	_, err := inventory.NewChecker(boom, time.Second).CheckAvailability(context.Background(), "X", 1)
	assert.ErrorIs(t, err, catalog.ErrLookupFailed)
	assert.NotErrorIs(t, err, inventory.ErrTimeout)
}

func TestChecker_Timeout(t *testing.T) {
	slow := fakeGetter{get: func(ctx context.Context, _ string) (*catalog.Product, error) {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %w", catalog.ErrLookupFailed, ctx.Err())
	}}

	_, err := inventory.NewChecker(slow, 10*time.Millisecond).CheckAvailability(context.Background(), "X", 1)
	assert.ErrorIs(t, err, inventory.ErrTimeout)
}

func TestChecker_LateAnswerIsKept(t *testing.T) {
	late := fakeGetter{get: func(ctx context.Context, sku string) (*catalog.Product, error) {
		<-ctx.Done()
		return &catalog.Product{SKU: sku, Name: "Lantern", StockQuantity: 3}, nil
	}}

	got, err := inventory.NewChecker(late, 10*time.Millisecond).CheckAvailability(context.Background(), "X", 2)
	require.NoError(t, err)
	assert.True(t, got.Available)
	require.NotNil(t, got.Product)
	assert.Equal(t, 3, got.Product.StockQuantity)
}

func TestChecker_NoSideEffects(t *testing.T) {
	c := newChecker()
	ctx := context.Background()

	for range 3 {
		got, err := c.CheckAvailability(ctx, "X", 2)
		require.NoError(t, err)
		assert.Equal(t, 3, got.Product.StockQuantity)
	}
}
