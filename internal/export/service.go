package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/clerk/internal/format"
	"github.com/MrJamesThe3rd/clerk/internal/receipt"
	"github.com/MrJamesThe3rd/clerk/internal/transaction"
)

// SummaryFile is the name of the summary written next to the receipts.
const SummaryFile = "summary.txt"

type Item struct {
	Transaction *transaction.Transaction
	FilePath    string
}

// Lister is implemented by *transaction.Service.
type Lister interface {
	List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type Service struct {
	transactions Lister
	store        receipt.Store
}

func NewService(transactions Lister, store receipt.Store) *Service {
	return &Service{
		transactions: transactions,
		store:        store,
	}
}

// Export writes one receipt file per transaction in filter to outputDir.
func (s *Service) Export(ctx context.Context, filter transaction.ListFilter, outputDir string) ([]Item, error) {
	txs, err := s.transactions.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	items := make([]Item, 0, len(txs))

	for _, tx := range txs {
		path := filepath.Join(outputDir, receipt.Filename(tx))
		if err := s.writeReceipt(path, tx); err != nil {
			return nil, err
		}

		items = append(items, Item{Transaction: tx, FilePath: path})
	}

	return items, nil
}

func (s *Service) writeReceipt(path string, tx *transaction.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating receipt file: %w", err)
	}
	defer f.Close()

	if err := receipt.Render(f, tx, s.store); err != nil {
		return fmt.Errorf("rendering receipt %s: %w", tx.ID, err)
	}

	return f.Close()
}

// GenerateSummary lists every exported sale on its own line.
func (s *Service) GenerateSummary(items []Item) string {
	var sb strings.Builder

	sb.WriteString("Sales export:\n\n")

	var total int64

	for _, item := range items {
		tx := item.Transaction
		total += tx.Total

		fileName := filepath.Base(item.FilePath)
		if item.FilePath == "" {
			fileName = "N/A"
		}

		fmt.Fprintf(&sb, "* %s | %s | %d items | %s | %s\n",
			format.DateTime(tx.Timestamp.In(s.location())),
			tx.ID,
			tx.ItemCount(),
			format.Price(tx.Total),
			fileName,
		)
	}

	fmt.Fprintf(&sb, "\n%d transactions, %s total\n", len(items), format.Price(total))

	return sb.String()
}

func (s *Service) location() *time.Location {
	if s.store.Location == nil {
		return time.UTC
	}

	return s.store.Location
}

// WriteZip streams the receipts in items plus the summary as a zip archive.
func (s *Service) WriteZip(w io.Writer, items []Item) error {
	zw := zip.NewWriter(w)

	for _, item := range items {
		if err := addFile(zw, item.FilePath); err != nil {
			return err
		}
	}

	sf, err := zw.Create(SummaryFile)
	if err != nil {
		return fmt.Errorf("adding summary: %w", err)
	}

	if _, err := io.WriteString(sf, s.GenerateSummary(items)); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing zip: %w", err)
	}

	return nil
}

func addFile(zw *zip.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	zf, err := zw.Create(filepath.Base(path))
	if err != nil {
		return fmt.Errorf("adding %s: %w", path, err)
	}

	if _, err := io.Copy(zf, f); err != nil {
		return fmt.Errorf("copying %s: %w", path, err)
	}

	return nil
}
