package view

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MrJamesThe3rd/clerk/internal/receipt"
	"github.com/MrJamesThe3rd/clerk/internal/transaction"
)

func renderReceipt(tx *transaction.Transaction, store receipt.Store) string {
	var b strings.Builder
	if err := receipt.Render(&b, tx, store); err != nil {
		return errorStyle.Render(fmt.Sprintf("Error rendering receipt: %v", err))
	}

	return b.String()
}

// saveReceipt writes tx's receipt into dir and returns the file path.
func saveReceipt(dir string, tx *transaction.Transaction, store receipt.Store) (string, error) {
	path := filepath.Join(dir, receipt.Filename(tx))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating receipt file: %w", err)
	}
	defer f.Close()

	if err := receipt.Render(f, tx, store); err != nil {
		return "", err
	}

	return path, f.Close()
}
