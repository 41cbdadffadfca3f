package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/clerk/internal/transaction"
)

var _ transaction.Repository = (*Postgres)(nil)

const uniqueViolation = "23505"

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// AppendTransaction writes the header and all items in one database transaction.
func (s *Postgres) AppendTransaction(ctx context.Context, tx *transaction.Transaction) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	headerQuery := `
		INSERT INTO transactions (id, occurred_at, user_id, cashier_name, subtotal, tax, discount_total, total, payment_method, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = dbTx.ExecContext(ctx, headerQuery,
		tx.ID,
		tx.Timestamp,
		tx.UserID,
		tx.CashierName,
		tx.Subtotal,
		tx.Tax,
		tx.DiscountTotal,
		tx.Total,
		tx.PaymentMethod,
		tx.Status,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return transaction.ErrIdentifierCollision
		}

		return fmt.Errorf("inserting transaction: %w", err)
	}

	itemQuery := `
		INSERT INTO transaction_items (transaction_id, position, sku, name, quantity, unit_price, line_total, discount_applied)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for i, it := range tx.Items {
		_, err := dbTx.ExecContext(ctx, itemQuery,
			tx.ID, i, it.SKU, it.Name, it.Quantity, it.UnitPrice, it.LineTotal, it.DiscountApplied,
		)
		if err != nil {
			return fmt.Errorf("inserting item %s: %w", it.SKU, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const selectTransactionColumns = `
	t.id, t.occurred_at, t.user_id, t.cashier_name, t.subtotal, t.tax, t.discount_total, t.total,
	t.payment_method, t.status,
	i.sku, i.name, i.quantity, i.unit_price, i.line_total, i.discount_applied
`

func (s *Postgres) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		LEFT JOIN transaction_items i ON i.transaction_id = t.id
		WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Start != nil {
		query += fmt.Sprintf(" AND t.occurred_at >= $%d", argIdx)

		args = append(args, *filter.Start)
		argIdx++
	}

	if filter.End != nil {
		query += fmt.Sprintf(" AND t.occurred_at < $%d", argIdx)

		args = append(args, *filter.End)
	}

	query += " ORDER BY t.occurred_at DESC, t.id DESC, i.position ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	txs, err := scanTransactions(rows)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	return txs, nil
}

func (s *Postgres) GetTransaction(ctx context.Context, id string) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		LEFT JOIN transaction_items i ON i.transaction_id = t.id
		WHERE t.id = $1
		ORDER BY i.position ASC`

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("getting transaction: %w", err)
	}
	defer rows.Close()

	txs, err := scanTransactions(rows)
	if err != nil {
		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	if len(txs) == 0 {
		return nil, transaction.ErrNotFound
	}

	return txs[0], nil
}

// scanTransactions folds joined header/item rows into transactions. Rows for
// the same transaction must be adjacent.
func scanTransactions(rows *sql.Rows) ([]*transaction.Transaction, error) {
	var txs []*transaction.Transaction

	var cur *transaction.Transaction

	for rows.Next() {
		var (
			tx     transaction.Transaction
			status string

			sku, name                             sql.NullString
			quantity                              sql.NullInt64
			unitPrice, lineTotal, discountApplied sql.NullInt64
		)

		if err := rows.Scan(
			&tx.ID, &tx.Timestamp, &tx.UserID, &tx.CashierName, &tx.Subtotal, &tx.Tax, &tx.DiscountTotal, &tx.Total,
			&tx.PaymentMethod, &status,
			&sku, &name, &quantity, &unitPrice, &lineTotal, &discountApplied,
		); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		if cur == nil || cur.ID != tx.ID {
			tx.Status = transaction.Status(status)
			tx.Timestamp = tx.Timestamp.UTC()
			cur = &tx
			txs = append(txs, cur)
		}

		if sku.Valid {
			cur.Items = append(cur.Items, transaction.Item{
				SKU:             sku.String,
				Name:            name.String,
				Quantity:        int(quantity.Int64),
				UnitPrice:       unitPrice.Int64,
				LineTotal:       lineTotal.Int64,
				DiscountApplied: discountApplied.Int64,
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return txs, nil
}
