// Package report aggregates recorded sales into daily summaries.
package report

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/clerk/internal/transaction"
)

// TopItemsLimit caps the best-seller list.
const TopItemsLimit = 5

type TopItem struct {
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	QuantitySold int    `json:"quantity_sold"`
	Revenue      int64  `json:"revenue"`
}

type DailySummary struct {
	Date                    string    `json:"date"`
	TotalRevenue            int64     `json:"total_revenue"`
	TransactionCount        int       `json:"transaction_count"`
	AverageTransactionValue int64     `json:"average_transaction_value"`
	TopSellingItems         []TopItem `json:"top_selling_items"`
}

// Lister is implemented by *transaction.Service.
type Lister interface {
	List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type Service struct {
	txs Lister
	loc *time.Location
}

// NewService reports on calendar days in loc. A nil loc means UTC.
func NewService(txs Lister, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}

	return &Service{txs: txs, loc: loc}
}

func (s *Service) Location() *time.Location {
	return s.loc
}

// ParseDate reads a YYYY-MM-DD date as midnight in the service location.
func (s *Service) ParseDate(v string) (time.Time, error) {
	d, err := time.ParseInLocation(time.DateOnly, v, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", v, err)
	}

	return d, nil
}

// DayBounds returns the half-open range covering the calendar day of t.
func (s *Service) DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.In(s.loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, s.loc)

	return start, start.AddDate(0, 0, 1)
}

func (s *Service) DailySummary(ctx context.Context, date time.Time) (*DailySummary, error) {
	start, end := s.DayBounds(date)

	txs, err := s.txs.List(ctx, transaction.ListFilter{Start: &start, End: &end})
	if err != nil {
		return nil, fmt.Errorf("building daily summary: %w", err)
	}

	summary := Summarize(start.Format(time.DateOnly), txs)

	return &summary, nil
}

// Summarize aggregates completed transactions. Items tied on quantity keep the
// order in which their SKU was first seen.
func Summarize(date string, txs []*transaction.Transaction) DailySummary {
	summary := DailySummary{Date: date, TopSellingItems: []TopItem{}}

	var items []TopItem

	index := make(map[string]int)

	for _, tx := range txs {
		if tx.Status != transaction.StatusCompleted {
			continue
		}

		summary.TotalRevenue += tx.Total
		summary.TransactionCount++

		for _, it := range tx.Items {
			i, ok := index[it.SKU]
			if !ok {
				i = len(items)
				index[it.SKU] = i
				items = append(items, TopItem{SKU: it.SKU, Name: it.Name})
			}

			items[i].QuantitySold += it.Quantity
			items[i].Revenue += it.LineTotal
		}
	}

	if summary.TransactionCount > 0 {
		summary.AverageTransactionValue = decimal.NewFromInt(summary.TotalRevenue).
			Div(decimal.NewFromInt(int64(summary.TransactionCount))).
			Round(0).
			IntPart()
	}

	slices.SortStableFunc(items, func(a, b TopItem) int {
		return b.QuantitySold - a.QuantitySold
	})

	if len(items) > TopItemsLimit {
		items = items[:TopItemsLimit]
	}

	summary.TopSellingItems = append(summary.TopSellingItems, items...)

	return summary
}
