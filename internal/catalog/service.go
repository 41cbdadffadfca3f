package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=catalog
type Repository interface {
	ListProducts(ctx context.Context) ([]*Product, error)
	GetProduct(ctx context.Context, sku string) (*Product, error)
	SearchProducts(ctx context.Context, query string) ([]*Product, error)
	UpsertProducts(ctx context.Context, products []*Product) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]*Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing products: %w", ErrLookupFailed, err)
	}

	return products, nil
}

// Get returns the product with the given SKU. A missing product is reported as
// ErrNotFound; any other store failure is wrapped with ErrLookupFailed.
func (s *Service) Get(ctx context.Context, sku string) (*Product, error) {
	p, err := s.repo.GetProduct(ctx, sku)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: getting product %s: %w", ErrLookupFailed, sku, err)
	}

	return p, nil
}

// Search matches the query case-insensitively against name, SKU and category.
// A blank query returns the whole catalog.
func (s *Service) Search(ctx context.Context, query string) ([]*Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx)
	}

	products, err := s.repo.SearchProducts(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: searching products: %w", ErrLookupFailed, err)
	}

	return products, nil
}

// Import inserts new products and replaces existing ones with the same SKU.
func (s *Service) Import(ctx context.Context, products []*Product) error {
	if len(products) == 0 {
		return nil
	}

	for _, p := range products {
		if strings.TrimSpace(p.SKU) == "" {
			return fmt.Errorf("importing products: product %q has no sku", p.Name)
		}
	}

	if err := s.repo.UpsertProducts(ctx, products); err != nil {
		return fmt.Errorf("importing products: %w", err)
	}

	return nil
}

// Conflict pairs an imported row with the catalog entry it would replace.
type Conflict struct {
	Incoming *Product `json:"incoming"`
	Existing *Product `json:"existing"`
}

// ImportPlan splits parsed rows into new SKUs and SKUs already in the catalog.
type ImportPlan struct {
	New       []*Product `json:"new"`
	Conflicts []Conflict `json:"conflicts"`
}

// Plan looks up every incoming SKU without writing anything.
func (s *Service) Plan(ctx context.Context, products []*Product) (*ImportPlan, error) {
	plan := &ImportPlan{
		New:       make([]*Product, 0, len(products)),
		Conflicts: make([]Conflict, 0),
	}

	for _, p := range products {
		existing, err := s.Get(ctx, p.SKU)
		if errors.Is(err, ErrNotFound) {
			plan.New = append(plan.New, p)
			continue
		}

		if err != nil {
			return nil, err
		}

		plan.Conflicts = append(plan.Conflicts, Conflict{Incoming: p, Existing: existing})
	}

	return plan, nil
}

// Matches reports whether p matches query the way SearchProducts does.
// query must already be lower-cased.
func Matches(p *Product, query string) bool {
	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.SKU), query) ||
		strings.Contains(strings.ToLower(p.Category), query)
}
