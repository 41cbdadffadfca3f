package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/MrJamesThe3rd/clerk/internal/catalog"
)

var _ catalog.Repository = (*Postgres)(nil)

type Postgres struct {
	db *sqlx.DB
}

// NewPostgres wraps a *sql.DB opened with the pgx stdlib driver.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: sqlx.NewDb(db, "pgx")}
}

const selectProductColumns = `
	sku, name, description, category, price, cost, stock_quantity, reorder_threshold,
	unit, supplier_name, supplier_contact, image_url, is_active, created_at, updated_at
`

func (s *Postgres) ListProducts(ctx context.Context) ([]*catalog.Product, error) {
	var products []*catalog.Product

	query := `SELECT ` + selectProductColumns + ` FROM products ORDER BY name ASC, sku ASC`
	if err := s.db.SelectContext(ctx, &products, query); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	return products, nil
}

func (s *Postgres) GetProduct(ctx context.Context, sku string) (*catalog.Product, error) {
	var p catalog.Product

	query := `SELECT ` + selectProductColumns + ` FROM products WHERE sku = $1`
	if err := s.db.GetContext(ctx, &p, query, sku); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}

		return nil, fmt.Errorf("getting product: %w", err)
	}

	return &p, nil
}

func (s *Postgres) SearchProducts(ctx context.Context, query string) ([]*catalog.Product, error) {
	var products []*catalog.Product

	q := `SELECT ` + selectProductColumns + ` FROM products
		WHERE name ILIKE $1 OR sku ILIKE $1 OR category ILIKE $1
		ORDER BY name ASC, sku ASC`
	if err := s.db.SelectContext(ctx, &products, q, "%"+query+"%"); err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}

	return products, nil
}

// UpsertProducts writes all products in one database transaction.
func (s *Postgres) UpsertProducts(ctx context.Context, products []*catalog.Product) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO products (
			sku, name, description, category, price, cost, stock_quantity, reorder_threshold,
			unit, supplier_name, supplier_contact, image_url, is_active, created_at, updated_at
		)
		VALUES (
			:sku, :name, :description, :category, :price, :cost, :stock_quantity, :reorder_threshold,
			:unit, :supplier_name, :supplier_contact, :image_url, :is_active, NOW(), NOW()
		)
		ON CONFLICT (sku) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			price = EXCLUDED.price,
			cost = EXCLUDED.cost,
			stock_quantity = EXCLUDED.stock_quantity,
			reorder_threshold = EXCLUDED.reorder_threshold,
			unit = EXCLUDED.unit,
			supplier_name = EXCLUDED.supplier_name,
			supplier_contact = EXCLUDED.supplier_contact,
			image_url = EXCLUDED.image_url,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
	`

	for _, p := range products {
		if _, err := tx.NamedExecContext(ctx, query, p); err != nil {
			return fmt.Errorf("upserting product %s: %w", p.SKU, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
