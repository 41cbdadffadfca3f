// Package inventory answers whether a product can be sold in a given quantity.
// It reads stock levels only; nothing is reserved or decremented.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/clerk/internal/catalog"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidSKU      = errors.New("sku is required")
	ErrTimeout         = errors.New("inventory check timed out")
)

// InsufficientStockError reports a request for more units than are in stock.
type InsufficientStockError struct {
	SKU       string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.SKU, e.Requested, e.Available)
}

// Availability is the result of a stock check. Product is nil when the SKU is
// unknown.
type Availability struct {
	SKU       string
	Requested int
	Available bool
	Product   *catalog.Product
}

// Err maps the result onto the error taxonomy: nil when the quantity can be
// sold, catalog.ErrNotFound for an unknown SKU and *InsufficientStockError
// otherwise.
func (a Availability) Err() error {
	switch {
	case a.Available:
		return nil
	case a.Product == nil:
		return fmt.Errorf("%s: %w", a.SKU, catalog.ErrNotFound)
	default:
		return &InsufficientStockError{SKU: a.SKU, Requested: a.Requested, Available: a.Product.StockQuantity}
	}
}

// ProductGetter is implemented by *catalog.Service.
type ProductGetter interface {
	Get(ctx context.Context, sku string) (*catalog.Product, error)
}

type Checker struct {
	products ProductGetter
	timeout  time.Duration
}

// NewChecker returns a Checker. A zero timeout leaves the caller's deadline
// as the only bound.
func NewChecker(products ProductGetter, timeout time.Duration) *Checker {
	return &Checker{products: products, timeout: timeout}
}

func (c *Checker) CheckAvailability(ctx context.Context, sku string, quantity int) (Availability, error) {
	if sku == "" {
		return Availability{}, ErrInvalidSKU
	}

	if quantity < 1 {
		return Availability{}, ErrInvalidQuantity
	}

	res := Availability{SKU: sku, Requested: quantity}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)

		defer cancel()
	}

	p, err := c.products.Get(ctx, sku)
	if err != nil {
		// A product that arrives after the deadline is still a valid answer.
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Availability{}, fmt.Errorf("%w: checking %s", ErrTimeout, sku)
		}

		if errors.Is(err, catalog.ErrNotFound) {
			return res, nil
		}

		return Availability{}, fmt.Errorf("checking availability of %s: %w", sku, err)
	}

	res.Product = p
	res.Available = p.StockQuantity >= quantity

	return res, nil
}
