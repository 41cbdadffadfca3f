package checkout_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/clerk/internal/catalog"
	catalogstore "github.com/MrJamesThe3rd/clerk/internal/catalog/store"
	"github.com/MrJamesThe3rd/clerk/internal/checkout"
	handler "github.com/MrJamesThe3rd/clerk/internal/http/checkout"
	"github.com/MrJamesThe3rd/clerk/internal/inventory"
	"github.com/MrJamesThe3rd/clerk/internal/receipt"
	"github.com/MrJamesThe3rd/clerk/internal/transaction"
	txstore "github.com/MrJamesThe3rd/clerk/internal/transaction/store"
)

type env struct {
	srv  *httptest.Server
	txs  *transaction.Service
	gone map[string]bool
}

type getterFunc func(ctx context.Context, sku string) (*catalog.Product, error)

func (g getterFunc) Get(ctx context.Context, sku string) (*catalog.Product, error) {
	return g(ctx, sku)
}

func newEnv(t *testing.T) *env {
	t.Helper()

	e := &env{gone: make(map[string]bool)}

	catalogSvc := catalog.NewService(catalogstore.NewMemory([]*catalog.Product{
		{SKU: "A", Name: "Mug", Price: 500, StockQuantity: 10},
		{SKU: "B", Name: "Teapot", Price: 1000, StockQuantity: 1},
	}))
	e.txs = transaction.NewService(txstore.NewMemory())

	// Finalize sees products marked gone as deleted from the catalog.
	lookup := getterFunc(func(ctx context.Context, sku string) (*catalog.Product, error) {
		if e.gone[sku] {
			return nil, catalog.ErrNotFound
		}

		return catalogSvc.Get(ctx, sku)
	})

	engine := checkout.NewEngine(lookup, e.txs, checkout.Config{
		TaxRate:         checkout.DefaultTaxRate,
		UserID:          "cashier_001",
		CashierName:     "Cashier 1",
		PaymentMethod:   "mock",
		FinalizeTimeout: time.Second,
	})
	checker := inventory.NewChecker(catalogSvc, time.Second)

	sessions := checkout.NewSessions(func() *checkout.Session {
		return checkout.NewSession(engine, checker)
	})

	r := chi.NewRouter()
	r.Route("/sessions", handler.NewHandler(sessions, receipt.DefaultStore(), zap.NewNop()).Routes)

	e.srv = httptest.NewServer(r)
	t.Cleanup(e.srv.Close)

	return e
}

type cart struct {
	Items []struct {
		SKU       string `json:"sku"`
		Quantity  int    `json:"quantity"`
		UnitPrice int64  `json:"unit_price"`
		LineTotal int64  `json:"line_total"`
	} `json:"items"`
	Subtotal int64  `json:"subtotal"`
	Tax      int64  `json:"tax"`
	Total    int64  `json:"total"`
	State    string `json:"state"`
	Status   struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"status"`
}

func (e *env) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, e.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var raw json.RawMessage
	_ = json.NewDecoder(res.Body).Decode(&raw)

	return res, raw
}

func decodeCart(t *testing.T, raw []byte) cart {
	t.Helper()

	var c cart
	require.NoError(t, json.Unmarshal(raw, &c))

	return c
}

func TestCheckout_FullSale(t *testing.T) {
	e := newEnv(t)

	res, raw := e.do(t, http.MethodPost, "/sessions/till-1/cart/items", `{"sku":"A","quantity":2}`)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, "building", decodeCart(t, raw).State)

	res, raw = e.do(t, http.MethodPost, "/sessions/till-1/cart/items", `{"sku":"B"}`)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	c := decodeCart(t, raw)
	assert.Equal(t, int64(2000), c.Subtotal)
	assert.Equal(t, int64(160), c.Tax)
	assert.Equal(t, int64(2160), c.Total)
	assert.Equal(t, "Item added to cart", c.Status.Message)

	res, raw = e.do(t, http.MethodPost, "/sessions/till-1/checkout", "")
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var out struct {
		Transaction transaction.Transaction `json:"transaction"`
		Receipt     string                  `json:"receipt"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, int64(2160), out.Transaction.Total)
	assert.Contains(t, out.Receipt, out.Transaction.ID)

	stored, err := e.txs.Get(context.Background(), out.Transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2160), stored.Total)

	res, raw = e.do(t, http.MethodGet, "/sessions/till-1/cart", "")
	require.Equal(t, http.StatusOK, res.StatusCode)

	c = decodeCart(t, raw)
	assert.Empty(t, c.Items)
	assert.Equal(t, "idle", c.State)
	assert.Equal(t, "Transaction completed!", c.Status.Message)
}

func TestCheckout_Errors(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		check      func(t *testing.T, raw []byte)
	}{
		{
			name:       "InsufficientStock",
			method:     http.MethodPost,
			path:       "/sessions/err/cart/items",
			body:       `{"sku":"B","quantity":5}`,
			wantStatus: http.StatusConflict,
			check: func(t *testing.T, raw []byte) {
				assert.JSONEq(t, `{"error":"insufficient stock for B: requested 5, available 1","sku":"B","available":1}`, string(raw))
			},
		},
		{name: "UnknownProduct", method: http.MethodPost, path: "/sessions/err/cart/items", body: `{"sku":"Z"}`, wantStatus: http.StatusNotFound},
		{name: "ZeroQuantity", method: http.MethodPost, path: "/sessions/err/cart/items", body: `{"sku":"A","quantity":0}`, wantStatus: http.StatusBadRequest},
		{name: "MissingSKU", method: http.MethodPost, path: "/sessions/err/cart/items", body: `{"quantity":1}`, wantStatus: http.StatusBadRequest},
		{name: "BadJSON", method: http.MethodPost, path: "/sessions/err/cart/items", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "EmptyCart", method: http.MethodPost, path: "/sessions/empty/checkout", wantStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, raw := e.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, res.StatusCode)

			if tt.check != nil {
				tt.check(t, raw)
			}
		})
	}
}

func TestCheckout_UpdateAndRemove(t *testing.T) {
	e := newEnv(t)

	e.do(t, http.MethodPost, "/sessions/t/cart/items", `{"sku":"A","quantity":2}`)
	e.do(t, http.MethodPost, "/sessions/t/cart/items", `{"sku":"B","quantity":1}`)

	res, raw := e.do(t, http.MethodPatch, "/sessions/t/cart/items/A", `{"quantity":5}`)
	require.Equal(t, http.StatusOK, res.StatusCode)

	c := decodeCart(t, raw)
	require.Len(t, c.Items, 2)
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.Equal(t, int64(2500), c.Items[0].LineTotal)

	res, raw = e.do(t, http.MethodPatch, "/sessions/t/cart/items/A", `{"quantity":0}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Len(t, decodeCart(t, raw).Items, 1)

	res, raw = e.do(t, http.MethodDelete, "/sessions/t/cart/items/B", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "idle", decodeCart(t, raw).State)
}

func TestCheckout_ProductRemovedBeforeSale(t *testing.T) {
	e := newEnv(t)

	e.do(t, http.MethodPost, "/sessions/t/cart/items", `{"sku":"A","quantity":1}`)

	e.gone["A"] = true

	res, raw := e.do(t, http.MethodPost, "/sessions/t/checkout", "")
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Contains(t, string(raw), `"sku":"A"`)

	res, raw = e.do(t, http.MethodGet, "/sessions/t/cart", "")
	require.Equal(t, http.StatusOK, res.StatusCode)

	c := decodeCart(t, raw)
	assert.Len(t, c.Items, 1)
	assert.Equal(t, "building", c.State)
	assert.Equal(t, "Product A is no longer available", c.Status.Message)
}
