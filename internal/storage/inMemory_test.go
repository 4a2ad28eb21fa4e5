package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	appErrors "github.com/finledger/finance_ledger/customErrors"
	"github.com/finledger/finance_ledger/internal/ledger"
	"github.com/stretchr/testify/require"
)

func sampleTransaction(id, category string, amount float64) ledger.Transaction {
	return ledger.Transaction{
		ID:       id,
		Date:     time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Time:     "9:00:00 AM",
		Title:    "sample",
		Amount:   amount,
		Category: category,
	}
}

func TestInMemoryCRUD(t *testing.T) {
	store := NewInMemoryStorage()
	ctx := context.Background()

	require.NoError(t, store.SaveTransaction(ctx, sampleTransaction("t-1", "Food", 12.5)))
	require.NoError(t, store.SaveTransaction(ctx, sampleTransaction("t-2", "Salary", 1000)))

	all, err := store.GetAllTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Natural storage order is insertion order.
	require.Equal(t, "t-1", all[0].ID)
	require.Equal(t, "t-2", all[1].ID)

	got, err := store.GetTransactionById(ctx, "t-1")
	require.NoError(t, err)
	require.Equal(t, 12.5, got.Amount)

	newTitle := "renamed"
	updated, err := store.UpdateTransaction(ctx, "t-1", ledger.UpdateTransactionFields{Title: &newTitle})
	require.NoError(t, err)
	require.Equal(t, "renamed", updated.Title)
	require.Equal(t, 12.5, updated.Amount)

	require.NoError(t, store.DeleteTransaction(ctx, "t-1"))
	all, err = store.GetAllTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestInMemoryNotFound(t *testing.T) {
	store := NewInMemoryStorage()
	ctx := context.Background()

	assertNotFound := func(err error) {
		t.Helper()
		var appErr appErrors.ErrorResponse
		require.True(t, errors.As(err, &appErr), "expected an ErrorResponse, got %v", err)
		require.Equal(t, appErrors.ErrNotFound, appErr.Code)
	}

	_, err := store.GetTransactionById(ctx, "missing")
	assertNotFound(err)

	_, err = store.UpdateTransaction(ctx, "missing", ledger.UpdateTransactionFields{})
	assertNotFound(err)

	assertNotFound(store.DeleteTransaction(ctx, "missing"))
}

func TestInMemoryGetByCategories(t *testing.T) {
	store := NewInMemoryStorage()
	ctx := context.Background()

	require.NoError(t, store.SaveTransaction(ctx, sampleTransaction("t-1", "Food", 10)))
	require.NoError(t, store.SaveTransaction(ctx, sampleTransaction("t-2", "Pets", 75)))
	require.NoError(t, store.SaveTransaction(ctx, sampleTransaction("t-3", "Food", 5)))

	matched, err := store.GetTransactionsByCategories(ctx, []string{"Food", "Housing"})
	require.NoError(t, err)
	require.Len(t, matched, 2)
	require.Equal(t, "t-1", matched[0].ID)
	require.Equal(t, "t-3", matched[1].ID)

	empty, err := store.GetTransactionsByCategories(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}
