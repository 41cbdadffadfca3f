package catalog_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/clerk/internal/catalog"
	"github.com/MrJamesThe3rd/clerk/internal/catalog/store"
	handler "github.com/MrJamesThe3rd/clerk/internal/http/catalog"
)

func newServer() *httptest.Server {
	svc := catalog.NewService(store.NewMemory([]*catalog.Product{
		{SKU: "85123A", Name: "White Hanging Heart T-Light Holder", Category: "Home Decor", Price: 295, StockQuantity: 10, ReorderThreshold: 2},
		{SKU: "22960", Name: "Jam Making Set With Jars", Category: "Kitchen", Price: 425, StockQuantity: 1, ReorderThreshold: 2},
	}))

	r := chi.NewRouter()
	r.Route("/products", handler.NewHandler(svc, zap.NewNop()).Routes)

	return httptest.NewServer(r)
}

func TestHandler_List(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "All", query: "", want: []string{"85123A", "22960"}},
		{name: "Search", query: "?q=kitchen", want: []string{"22960"}},
		{name: "NoMatch", query: "?q=lantern", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := http.Get(srv.URL + "/products" + tt.query)
			require.NoError(t, err)
			defer res.Body.Close()

			require.Equal(t, http.StatusOK, res.StatusCode)

			var body []struct {
				SKU string `json:"sku"`
			}
			require.NoError(t, json.NewDecoder(res.Body).Decode(&body))

			skus := []string{}
			for _, p := range body {
				skus = append(skus, p.SKU)
			}

			assert.Equal(t, tt.want, skus)
		})
	}
}

func TestHandler_Get(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	res, err := http.Get(srv.URL + "/products/22960")
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		SKU      string `json:"sku"`
		Price    int64  `json:"price"`
		LowStock bool   `json:"low_stock"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "22960", body.SKU)
	assert.Equal(t, int64(425), body.Price)
	assert.True(t, body.LowStock)

	missing, err := http.Get(srv.URL + "/products/nope")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}
