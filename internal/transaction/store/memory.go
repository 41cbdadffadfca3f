package store

import (
	"context"
	"sync"

	"github.com/MrJamesThe3rd/clerk/internal/transaction"
)

var _ transaction.Repository = (*Memory)(nil)

// Memory is an append-only transaction log held in process memory.
type Memory struct {
	mu   sync.RWMutex
	byID map[string]*transaction.Transaction
	log  []*transaction.Transaction
}

func NewMemory() *Memory {
	return &Memory{byID: make(map[string]*transaction.Transaction)}
}

func (m *Memory) AppendTransaction(_ context.Context, tx *transaction.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[tx.ID]; ok {
		return transaction.ErrIdentifierCollision
	}

	cp := tx.Clone()
	m.byID[tx.ID] = cp
	m.log = append(m.log, cp)

	return nil
}

func (m *Memory) ListTransactions(_ context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*transaction.Transaction

	for _, tx := range m.log {
		if !filter.Contains(tx.Timestamp) {
			continue
		}

		out = append(out, tx.Clone())
	}

	transaction.SortNewestFirst(out)

	return out, nil
}

func (m *Memory) GetTransaction(_ context.Context, id string) (*transaction.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tx, ok := m.byID[id]
	if !ok {
		return nil, transaction.ErrNotFound
	}

	return tx.Clone(), nil
}
