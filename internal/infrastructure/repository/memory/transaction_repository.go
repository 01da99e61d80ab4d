package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/terravilla/marketplace/internal/core/domain"
)

type TransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]domain.Transaction
}

func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{
		transactions: make(map[string]domain.Transaction),
	}
}

func (r *TransactionRepository) Create(_ context.Context, tx *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.transactions[tx.ID]; exists {
		return domain.WrapError(domain.ErrConflict, "create transaction",
			fmt.Errorf("transaction already exists: %s", tx.ID))
	}
	r.transactions[tx.ID] = *tx
	return nil
}

func (r *TransactionRepository) GetByID(_ context.Context, id string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tx, ok := r.transactions[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get transaction", fmt.Errorf("transaction: %s", id))
	}
	copyTx := tx
	return &copyTx, nil
}

func (r *TransactionRepository) Update(_ context.Context, tx *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transactions[tx.ID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "update transaction", fmt.Errorf("transaction: %s", tx.ID))
	}
	r.transactions[tx.ID] = *tx
	return nil
}
