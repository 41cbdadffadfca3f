package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/MrJamesThe3rd/clerk/internal/catalog"
)

var _ catalog.Repository = (*Memory)(nil)

// Memory is a catalog held in process memory. It is safe for concurrent use
// and never hands out pointers to its own records.
type Memory struct {
	mu       sync.RWMutex
	products map[string]*catalog.Product
	order    []string
}

func NewMemory(products []*catalog.Product) *Memory {
	m := &Memory{products: make(map[string]*catalog.Product, len(products))}

	for _, p := range products {
		m.put(p)
	}

	return m
}

func (m *Memory) put(p *catalog.Product) {
	if _, ok := m.products[p.SKU]; !ok {
		m.order = append(m.order, p.SKU)
	}

	cp := *p
	m.products[p.SKU] = &cp
}

func (m *Memory) ListProducts(_ context.Context) ([]*catalog.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*catalog.Product, 0, len(m.order))
	for _, sku := range m.order {
		cp := *m.products[sku]
		out = append(out, &cp)
	}

	return out, nil
}

func (m *Memory) GetProduct(_ context.Context, sku string) (*catalog.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[sku]
	if !ok {
		return nil, catalog.ErrNotFound
	}

	cp := *p

	return &cp, nil
}

func (m *Memory) SearchProducts(ctx context.Context, query string) ([]*catalog.Product, error) {
	all, err := m.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)

	return slices.DeleteFunc(all, func(p *catalog.Product) bool {
		return !catalog.Matches(p, query)
	}), nil
}

func (m *Memory) UpsertProducts(_ context.Context, products []*catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range products {
		m.put(p)
	}

	return nil
}
