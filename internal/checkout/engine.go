package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/clerk/internal/catalog"
	"github.com/MrJamesThe3rd/clerk/internal/transaction"
)

// ProductGetter is implemented by *catalog.Service.
type ProductGetter interface {
	Get(ctx context.Context, sku string) (*catalog.Product, error)
}

// Recorder is implemented by *transaction.Service.
type Recorder interface {
	Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error)
}

type Config struct {
	TaxRate         decimal.Decimal
	UserID          string
	CashierName     string
	PaymentMethod   string
	FinalizeTimeout time.Duration
}

type Engine struct {
	products ProductGetter
	recorder Recorder
	cfg      Config
}

// NewEngine applies cfg.TaxRate as given; a zero rate means no tax.
func NewEngine(products ProductGetter, recorder Recorder, cfg Config) *Engine {
	return &Engine{products: products, recorder: recorder, cfg: cfg}
}

func (e *Engine) TaxRate() decimal.Decimal {
	return e.cfg.TaxRate
}

func (e *Engine) ComputeTotals(items []Item) Totals {
	return ComputeTotals(items, e.cfg.TaxRate)
}

// Finalize records items as a completed sale. Every SKU is looked up again
// and nothing is written unless all of them resolve. Totals are recomputed
// from the items. The caller's cart is left untouched.
func (e *Engine) Finalize(ctx context.Context, items []Item) (*transaction.Transaction, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	if e.cfg.FinalizeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.FinalizeTimeout)

		defer cancel()
	}

	lines := make([]transaction.Item, 0, len(items))

	for _, it := range items {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%s: %w", it.SKU, ErrInvalidQuantity)
		}

		if _, err := e.products.Get(ctx, it.SKU); err != nil {
			if timedOut(ctx, err) {
				return nil, fmt.Errorf("%w: looking up %s", ErrTimeout, it.SKU)
			}

			if errors.Is(err, catalog.ErrNotFound) {
				return nil, &ProductNotFoundError{SKU: it.SKU}
			}

			return nil, fmt.Errorf("finalizing sale: %w", err)
		}

		lines = append(lines, transaction.Item{
			SKU:       it.SKU,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal(),
		})
	}

	totals := e.ComputeTotals(items)

	tx, err := e.recorder.Create(ctx, transaction.CreateParams{
		UserID:        e.cfg.UserID,
		CashierName:   e.cfg.CashierName,
		Items:         lines,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Total:         totals.Total,
		PaymentMethod: e.cfg.PaymentMethod,
	})
	if err != nil {
		if timedOut(ctx, err) {
			return nil, fmt.Errorf("%w: recording sale", ErrTimeout)
		}

		return nil, fmt.Errorf("finalizing sale: %w", err)
	}

	return tx, nil
}

func timedOut(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
}
