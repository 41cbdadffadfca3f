// Package seed provides the demo catalog and sales history loaded by the
// in-memory stores.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/clerk/internal/catalog"
	"github.com/MrJamesThe3rd/clerk/internal/transaction"
)

var (
	//go:embed products.json
	productsJSON []byte
	//go:embed transactions.json
	transactionsJSON []byte
)

// Products decodes the embedded fixture. Each call returns fresh values.
func Products() ([]*catalog.Product, error) {
	var products []*catalog.Product
	if err := json.Unmarshal(productsJSON, &products); err != nil {
		return nil, fmt.Errorf("decoding product fixture: %w", err)
	}

	return products, nil
}

// Transactions decodes the embedded sales history and moves it in time so the
// latest sale happened an hour before now. Gaps between sales are preserved.
func Transactions(now time.Time) ([]*transaction.Transaction, error) {
	var txs []*transaction.Transaction
	if err := json.Unmarshal(transactionsJSON, &txs); err != nil {
		return nil, fmt.Errorf("decoding transaction fixture: %w", err)
	}

	if len(txs) == 0 {
		return txs, nil
	}

	latest := txs[0].Timestamp
	for _, tx := range txs[1:] {
		if tx.Timestamp.After(latest) {
			latest = tx.Timestamp
		}
	}

	shift := now.Add(-time.Hour).Sub(latest)

	for _, tx := range txs {
		tx.Timestamp = tx.Timestamp.Add(shift).UTC().Truncate(time.Microsecond)
	}

	return txs, nil
}
