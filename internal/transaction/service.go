package transaction

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	// AppendTransaction stores tx. It returns ErrIdentifierCollision when the
	// ID is already taken and must not store anything in that case.
	AppendTransaction(ctx context.Context, tx *Transaction) error
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	GetTransaction(ctx context.Context, id string) (*Transaction, error)
}

// ListFilter restricts a listing to the half-open range [Start, End).
type ListFilter struct {
	Start *time.Time
	End   *time.Time
}

func (f ListFilter) Contains(t time.Time) bool {
	if f.Start != nil && t.Before(*f.Start) {
		return false
	}

	if f.End != nil && !t.Before(*f.End) {
		return false
	}

	return true
}

type CreateParams struct {
	UserID        string
	CashierName   string
	Items         []Item
	Subtotal      int64
	Tax           int64
	DiscountTotal int64
	Total         int64
	PaymentMethod string
}

const maxCreateAttempts = 5

type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() (string, error)
}

type Option func(*Service)

// WithClock replaces time.Now as the source of transaction timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces NewID.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *Service) { s.newID = gen }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now, newID: NewID}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NewID returns a time-ordered identifier such as TXN-01927d3c-....
func NewID() (string, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating id: %w", err)
	}

	return IDPrefix + u.String(), nil
}

// Create assigns an ID and timestamp and appends the record with status
// completed. A colliding ID is regenerated a bounded number of times.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	tx := &Transaction{
		UserID:        params.UserID,
		CashierName:   params.CashierName,
		Items:         slices.Clone(params.Items),
		Subtotal:      params.Subtotal,
		Tax:           params.Tax,
		DiscountTotal: params.DiscountTotal,
		Total:         params.Total,
		PaymentMethod: params.PaymentMethod,
		Status:        StatusCompleted,
	}

	for range maxCreateAttempts {
		id, err := s.newID()
		if err != nil {
			return nil, fmt.Errorf("creating transaction: %w", err)
		}

		tx.ID = id
		// Postgres keeps microseconds; truncating keeps stored and returned records equal.
		tx.Timestamp = s.now().UTC().Truncate(time.Microsecond)

		err = s.repo.AppendTransaction(ctx, tx)
		if errors.Is(err, ErrIdentifierCollision) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("creating transaction: %w", err)
		}

		return tx.Clone(), nil
	}

	return nil, fmt.Errorf("creating transaction after %d attempts: %w", maxCreateAttempts, ErrIdentifierCollision)
}

// List returns transactions newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	txs, err := s.repo.ListTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	SortNewestFirst(txs)

	return txs, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}

		return nil, fmt.Errorf("getting transaction %s: %w", id, err)
	}

	return tx, nil
}

// Search matches query case-insensitively against the transaction ID and the
// name and SKU of every item. A blank query returns everything in filter.
func (s *Service) Search(ctx context.Context, query string, filter ListFilter) ([]*Transaction, error) {
	txs, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return txs, nil
	}

	return slices.DeleteFunc(txs, func(tx *Transaction) bool {
		return !tx.Matches(query)
	}), nil
}
