package storage

import (
	"context"
	"sync"

	appErrors "github.com/finledger/finance_ledger/customErrors"
	"github.com/finledger/finance_ledger/internal/ledger"
)

// InMemoryStorage keeps transactions in insertion order. Used by tests
// and as a storage backend when no database is around.
type InMemoryStorage struct {
	mu           sync.RWMutex
	transactions []ledger.Transaction
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{}
}

func (inMem *InMemoryStorage) GetStorageType() string {
	return "inmemory"
}

func (inMem *InMemoryStorage) SaveTransaction(ctx context.Context, t ledger.Transaction) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	inMem.transactions = append(inMem.transactions, t)
	return nil
}

func (inMem *InMemoryStorage) GetAllTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	result := make([]ledger.Transaction, len(inMem.transactions))
	copy(result, inMem.transactions)
	return result, nil
}

func (inMem *InMemoryStorage) GetTransactionById(ctx context.Context, id string) (ledger.Transaction, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	for _, transaction := range inMem.transactions {
		if transaction.ID == id {
			return transaction, nil
		}
	}
	return ledger.Transaction{}, appErrors.ErrorResponse{
		Code:    appErrors.ErrNotFound,
		Message: "Transaction not found",
	}
}

func (inMem *InMemoryStorage) UpdateTransaction(ctx context.Context, id string, fields ledger.UpdateTransactionFields) (ledger.Transaction, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for i, transaction := range inMem.transactions {
		if transaction.ID != id {
			continue
		}
		if fields.Date != nil {
			transaction.Date = *fields.Date
		}
		if fields.Time != nil {
			transaction.Time = *fields.Time
		}
		if fields.Title != nil {
			transaction.Title = *fields.Title
		}
		if fields.Amount != nil {
			transaction.Amount = *fields.Amount
		}
		if fields.Category != nil {
			transaction.Category = *fields.Category
		}
		if fields.Notes != nil {
			transaction.Notes = *fields.Notes
		}
		inMem.transactions[i] = transaction
		return transaction, nil
	}
	return ledger.Transaction{}, appErrors.ErrorResponse{
		Code:    appErrors.ErrNotFound,
		Message: "Transaction not found",
	}
}

func (inMem *InMemoryStorage) DeleteTransaction(ctx context.Context, id string) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for i, transaction := range inMem.transactions {
		if transaction.ID == id {
			inMem.transactions = append(inMem.transactions[:i], inMem.transactions[i+1:]...)
			return nil
		}
	}
	return appErrors.ErrorResponse{
		Code:    appErrors.ErrNotFound,
		Message: "Transaction not found",
	}
}

func (inMem *InMemoryStorage) GetTransactionsByCategories(ctx context.Context, categories []string) ([]ledger.Transaction, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	allowed := make(map[string]bool, len(categories))
	for _, category := range categories {
		allowed[category] = true
	}

	var result []ledger.Transaction
	for _, transaction := range inMem.transactions {
		if allowed[transaction.Category] {
			result = append(result, transaction)
		}
	}
	return result, nil
}
