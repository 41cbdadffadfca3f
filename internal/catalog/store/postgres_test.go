package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/clerk/internal/catalog"
	"github.com/MrJamesThe3rd/clerk/internal/catalog/store"
	"github.com/MrJamesThe3rd/clerk/internal/database"
)

func TestPostgres_UpsertGetSearch(t *testing.T) {
	url := os.Getenv(database.TestURLEnv)
	if url == "" {
		t.Skipf("%s not set", database.TestURLEnv)
	}

	ctx := context.Background()

	db, err := database.New(ctx, url)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, database.Migrate(ctx, db))

	pg := store.NewPostgres(db)

	sku := "T-" + uuid.NewString()[:8]
	p := &catalog.Product{SKU: sku, Name: "Test Lantern " + sku, Category: "Lighting", Price: 339, StockQuantity: 3, Unit: "each", IsActive: true}

	require.NoError(t, pg.UpsertProducts(ctx, []*catalog.Product{p}))

	got, err := pg.GetProduct(ctx, sku)
	require.NoError(t, err)
	assert.Equal(t, int64(339), got.Price)
	assert.Equal(t, 3, got.StockQuantity)

	p.Price = 349
	require.NoError(t, pg.UpsertProducts(ctx, []*catalog.Product{p}))

	got, err = pg.GetProduct(ctx, sku)
	require.NoError(t, err)
	assert.Equal(t, int64(349), got.Price)

	found, err := pg.SearchProducts(ctx, sku)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, sku, found[0].SKU)

	_, err = pg.GetProduct(ctx, "missing-"+sku)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}
