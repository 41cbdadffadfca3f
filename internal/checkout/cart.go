// Package checkout turns catalog products into a cart and a cart into a
// recorded sale.
package checkout

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/clerk/internal/catalog"
)

// DefaultTaxRate is the 8% sales tax the configuration defaults to.
var DefaultTaxRate = decimal.RequireFromString("0.08")

// Item is one cart line. UnitPrice and Name are captured when the SKU is
// first added.
type Item struct {
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

func (i Item) LineTotal() int64 {
	return int64(i.Quantity) * i.UnitPrice
}

// Totals are in cents.
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// ComputeTotals sums line totals and applies rate, rounding the tax half-up to
// the nearest cent.
func ComputeTotals(items []Item, rate decimal.Decimal) Totals {
	var subtotal int64
	for _, it := range items {
		subtotal += it.LineTotal()
	}

	tax := decimal.NewFromInt(subtotal).Mul(rate).Round(0).IntPart()

	return Totals{Subtotal: subtotal, Tax: tax, Total: subtotal + tax}
}

// Cart holds at most one line per SKU, in insertion order. It is not safe for
// concurrent use; Session serialises access.
type Cart struct {
	items        []Item
	refreshPrice bool
}

type CartOption func(*Cart)

// WithRefreshPrice makes repeat adds of a SKU take the newer price and name
// instead of keeping the ones captured first.
func WithRefreshPrice(refresh bool) CartOption {
	return func(c *Cart) { c.refreshPrice = refresh }
}

func NewCart(opts ...CartOption) *Cart {
	c := &Cart{}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Cart) index(sku string) int {
	return slices.IndexFunc(c.items, func(it Item) bool { return it.SKU == sku })
}

// AddItem adds quantity units of p, merging with an existing line for the same SKU.
func (c *Cart) AddItem(p *catalog.Product, quantity int) (Item, error) {
	if quantity < 1 {
		return Item{}, ErrInvalidQuantity
	}

	i := c.index(p.SKU)
	if i < 0 {
		c.items = append(c.items, Item{SKU: p.SKU, Name: p.Name, Quantity: quantity, UnitPrice: p.Price})
		return c.items[len(c.items)-1], nil
	}

	c.items[i].Quantity += quantity
	if c.refreshPrice {
		c.items[i].UnitPrice = p.Price
		c.items[i].Name = p.Name
	}

	return c.items[i], nil
}

func (c *Cart) RemoveItem(sku string) {
	if i := c.index(sku); i >= 0 {
		c.items = slices.Delete(c.items, i, i+1)
	}
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero or
// less removes it. Unknown SKUs are ignored.
func (c *Cart) UpdateQuantity(sku string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(sku)
		return
	}

	if i := c.index(sku); i >= 0 {
		c.items[i].Quantity = quantity
	}
}

func (c *Cart) Items() []Item {
	return slices.Clone(c.items)
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) Clear() {
	c.items = nil
}

func (c *Cart) Totals(rate decimal.Decimal) Totals {
	return ComputeTotals(c.items, rate)
}
