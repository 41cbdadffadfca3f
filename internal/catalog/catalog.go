package catalog

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no product has the requested SKU.
	ErrNotFound = errors.New("product not found")
	// ErrLookupFailed wraps failures of the underlying product store.
	ErrLookupFailed = errors.New("product lookup failed")
)

// Product is a catalog entry. Prices are in cents.
type Product struct {
	SKU              string    `db:"sku" json:"sku"`
	Name             string    `db:"name" json:"name"`
	Description      string    `db:"description" json:"description,omitempty"`
	Category         string    `db:"category" json:"category"`
	Price            int64     `db:"price" json:"price"`
	Cost             int64     `db:"cost" json:"cost"`
	StockQuantity    int       `db:"stock_quantity" json:"stock_quantity"`
	ReorderThreshold int       `db:"reorder_threshold" json:"reorder_threshold"`
	Unit             string    `db:"unit" json:"unit"`
	SupplierName     string    `db:"supplier_name" json:"supplier_name,omitempty"`
	SupplierContact  string    `db:"supplier_contact" json:"supplier_contact,omitempty"`
	ImageURL         string    `db:"image_url" json:"image_url,omitempty"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// LowStock reports whether the stock level is at or below the reorder threshold.
func (p Product) LowStock() bool {
	return p.StockQuantity <= p.ReorderThreshold
}
