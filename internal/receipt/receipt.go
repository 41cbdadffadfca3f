// Package receipt renders sales as fixed-width text receipts.
package receipt

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MrJamesThe3rd/clerk/internal/format"
	"github.com/MrJamesThe3rd/clerk/internal/transaction"
)

// Width is the number of columns on a printed receipt.
const Width = 42

const ellipsis = "..."

// Store is the business printed at the top of every receipt.
type Store struct {
	Header   string
	Name     string
	Address  []string
	Phone    string
	Footer   string
	Location *time.Location
}

func DefaultStore() Store {
	return Store{
		Header:   "AGENTIC RETAIL OS",
		Name:     "Demo Store",
		Address:  []string{"123 Main Street", "City, State 12345"},
		Phone:    "123-456-7890",
		Footer:   "Thank you for your business!",
		Location: time.UTC,
	}
}

// Filename is the name a receipt is saved under.
func Filename(tx *transaction.Transaction) string {
	return "receipt-" + tx.ID + ".txt"
}

func Render(w io.Writer, tx *transaction.Transaction, store Store) error {
	loc := store.Location
	if loc == nil {
		loc = time.UTC
	}

	var b strings.Builder

	rule := strings.Repeat("-", Width) + "\n"

	for _, l := range append([]string{store.Header, store.Name}, store.Address...) {
		if l != "" {
			b.WriteString(center(l))
		}
	}

	if store.Phone != "" {
		b.WriteString(center("Phone: " + store.Phone))
	}

	b.WriteString(rule)

	at := tx.Timestamp.In(loc)
	fmt.Fprintf(&b, "Transaction ID: %s\n", tx.ID)
	fmt.Fprintf(&b, "Date: %s\n", format.Date(at))
	fmt.Fprintf(&b, "Time: %s\n", format.Time(at))

	if tx.CashierName != "" {
		fmt.Fprintf(&b, "Cashier: %s\n", tx.CashierName)
	}

	b.WriteString(rule)

	for _, it := range tx.Items {
		b.WriteString(itemLine(it))
		fmt.Fprintf(&b, "  SKU: %s  @ %s\n", it.SKU, format.Price(it.UnitPrice))
	}

	b.WriteString(rule)
	b.WriteString(columns("Subtotal:", format.Price(tx.Subtotal)))

	if tx.DiscountTotal != 0 {
		b.WriteString(columns("Discount:", format.Price(-tx.DiscountTotal)))
	}

	b.WriteString(columns("Tax:", format.Price(tx.Tax)))
	b.WriteString(columns("TOTAL:", format.Price(tx.Total)))

	if tx.PaymentMethod != "" {
		b.WriteString(columns("Payment:", tx.PaymentMethod))
	}

	b.WriteString(rule)

	if store.Footer != "" {
		b.WriteString(center(store.Footer))
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing receipt %s: %w", tx.ID, err)
	}

	return nil
}

// itemLine prints "2x Name" with the line total right-aligned, shortening the
// name so the line fits.
func itemLine(it transaction.Item) string {
	left := fmt.Sprintf("%dx ", it.Quantity)
	right := format.Price(it.LineTotal)

	room := Width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right) - 1

	return columns(left+truncate(it.Name, room), right)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	if n <= len(ellipsis) {
		return string([]rune(s)[:max(n, 0)])
	}

	return string([]rune(s)[:n-len(ellipsis)]) + ellipsis
}

func columns(left, right string) string {
	gap := Width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)

	return left + strings.Repeat(" ", max(gap, 1)) + right + "\n"
}

func center(s string) string {
	pad := (Width - utf8.RuneCountInString(s)) / 2

	return strings.Repeat(" ", max(pad, 0)) + s + "\n"
}
