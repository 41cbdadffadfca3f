package transaction

import (
	"errors"
	"slices"
	"strings"
	"time"
)

// Status represents the lifecycle state of a sale.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

// IDPrefix starts every transaction identifier.
const IDPrefix = "TXN-"

var (
	ErrNotFound            = errors.New("transaction not found")
	ErrIdentifierCollision = errors.New("transaction id already exists")
)

// Item is a frozen line of a sale. Amounts are in cents.
type Item struct {
	SKU             string `json:"sku"`
	Name            string `json:"name"`
	Quantity        int    `json:"quantity"`
	UnitPrice       int64  `json:"unit_price"`
	LineTotal       int64  `json:"line_total"`
	DiscountApplied int64  `json:"discount_applied"`
}

// Transaction is an immutable record of a completed sale.
type Transaction struct {
	ID            string    `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
	UserID        string    `json:"user_id"`
	CashierName   string    `json:"cashier_name"`
	Items         []Item    `json:"items"`
	Subtotal      int64     `json:"subtotal"`
	Tax           int64     `json:"tax"`
	DiscountTotal int64     `json:"discount_total"`
	Total         int64     `json:"total"`
	PaymentMethod string    `json:"payment_method"`
	Status        Status    `json:"status"`
}

// Clone returns a deep copy.
func (t *Transaction) Clone() *Transaction {
	cp := *t
	cp.Items = slices.Clone(t.Items)

	return &cp
}

// ItemCount is the number of units sold.
func (t *Transaction) ItemCount() int {
	n := 0
	for _, it := range t.Items {
		n += it.Quantity
	}

	return n
}

// Matches reports whether the ID or any item name or SKU contains query.
// query must already be lower-cased.
func (t *Transaction) Matches(query string) bool {
	if strings.Contains(strings.ToLower(t.ID), query) {
		return true
	}

	for _, it := range t.Items {
		if strings.Contains(strings.ToLower(it.Name), query) || strings.Contains(strings.ToLower(it.SKU), query) {
			return true
		}
	}

	return false
}

// SortNewestFirst orders by timestamp descending, breaking ties by ID descending.
func SortNewestFirst(txs []*Transaction) {
	slices.SortStableFunc(txs, func(a, b *Transaction) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}

		return strings.Compare(b.ID, a.ID)
	})
}
