// Package importer reads product CSV files into catalog products.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/MrJamesThe3rd/clerk/internal/catalog"
	enc "github.com/MrJamesThe3rd/clerk/internal/encoding"
)

const defaultUnit = "each"

// Parser reads product CSV files. It auto-detects the charset, the delimiter
// and which known layout is being used by matching column headers against
// profiles.
type Parser struct {
	now func() time.Time
}

func NewParser() *Parser {
	return &Parser{now: time.Now}
}

func (p *Parser) Parse(r io.Reader) ([]*catalog.Product, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = enc.DetectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("no matching product format found: expected sku, name, category and price columns")
	}

	return p.parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
}

// colIndex maps normalised column names to their index in the row.
type colIndex map[string]int

func normaliseHeader(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := normaliseHeader(cell); name != "" {
				if _, dup := cols[name]; !dup {
					cols[name] = i
				}
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows converts data rows into products. The first row for a SKU wins.
// firstRow is the 0-based index of rows[0] in the file, for error messages.
func (p *Parser) parseRows(prof *Profile, cols colIndex, rows [][]string, firstRow int) ([]*catalog.Product, error) {
	now := p.now().UTC()
	title := cases.Title(language.English)

	seen := make(map[string]struct{})

	var products []*catalog.Product

	for i, row := range rows {
		rowNum := firstRow + i + 1 // 1-based

		if blankRow(row) {
			continue
		}

		sku := cellValue(row, cols[prof.SKUCol])
		if sku == "" {
			return nil, fmt.Errorf("row %d: missing sku", rowNum)
		}

		if prof.Skip != nil && prof.Skip(sku) {
			continue
		}

		if _, dup := seen[sku]; dup {
			continue
		}

		name := strings.Join(strings.Fields(cellValue(row, cols[prof.NameCol])), " ")
		if name == "" {
			return nil, fmt.Errorf("row %d: missing name", rowNum)
		}

		if prof.TitleCase {
			name = title.String(name)
		}

		price, err := parsePrice(cellValue(row, cols[prof.PriceCol]), prof.PriceUnit)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		if price == 0 && prof.Skip != nil {
			continue
		}

		category := inferCategory(name)
		if prof.CategoryCol != "" {
			if c := cellValue(row, cols[prof.CategoryCol]); c != "" {
				category = c
			}
		}

		product := &catalog.Product{
			SKU:       sku,
			Name:      name,
			Category:  category,
			Price:     price,
			Unit:      defaultUnit,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := applyOptional(product, prof, cols, row); err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		seen[sku] = struct{}{}
		products = append(products, product)
	}

	return products, nil
}

func applyOptional(product *catalog.Product, prof *Profile, cols colIndex, row []string) error {
	for col, f := range prof.Optional {
		idx, ok := cols[col]
		if !ok {
			continue
		}

		v := cellValue(row, idx)
		if v == "" {
			continue
		}

		var err error

		switch f {
		case fieldDescription:
			product.Description = v
		case fieldCost:
			product.Cost, err = parsePrice(v, prof.PriceUnit)
		case fieldStock:
			product.StockQuantity, err = parseCount(col, v)
		case fieldReorder:
			product.ReorderThreshold, err = parseCount(col, v)
		case fieldUnit:
			product.Unit = v
		case fieldSupplierName:
			product.SupplierName = v
		case fieldSupplierContact:
			product.SupplierContact = v
		case fieldImageURL:
			product.ImageURL = v
		case fieldActive:
			product.IsActive, err = strconv.ParseBool(v)
			if err != nil {
				err = fmt.Errorf("invalid %s %q", col, v)
			}
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func parseCount(col, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", col, s)
	}

	return n, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
