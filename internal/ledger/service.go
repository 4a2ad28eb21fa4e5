package ledger

import (
	"context"
	"fmt"
	"time"

	appErrors "github.com/finledger/finance_ledger/customErrors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	createDateLayout = "2006-01-02" // YYYY-MM-DD
	updateDateLayout = "01/02/2006" // MM/DD/YYYY, kept for compatibility with existing clients
	clockTimeLayout  = "3:04:05 PM"

	MAX_TITLE_LENGTH    = 255
	MAX_CATEGORY_LENGTH = 255
	MAX_NOTES_LENGTH    = 1000
)

// Category sets are closed and hardcoded. "Other" is a member of both,
// so such a transaction shows up in both summaries.
var (
	expenseCategories = []string{"Food", "Housing", "Utilities", "Other"}
	incomeCategories  = []string{"Salary", "Freelance", "Investment", "Other"}
)

// Clock supplies the wall-clock time used for the default transaction
// time string, injected so Create stays deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type Ledger struct {
	storage     Storage
	clock       Clock
	StorageType string
}

func NewLedger(s Storage, c Clock) Ledger {
	return Ledger{
		storage:     s,
		clock:       c,
		StorageType: s.GetStorageType(),
	}
}

type Storage interface {
	SaveTransaction(ctx context.Context, t Transaction) error
	GetAllTransactions(ctx context.Context) ([]Transaction, error)
	GetTransactionById(ctx context.Context, id string) (Transaction, error)
	UpdateTransaction(ctx context.Context, id string, fields UpdateTransactionFields) (Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	GetTransactionsByCategories(ctx context.Context, categories []string) ([]Transaction, error)
	GetStorageType() string
}

// normalizeDate parses a date string with the given layout as UTC and
// truncates it to the start of the day, so transactions entered on the
// same calendar day always group identically.
func normalizeDate(value string, layout string) (time.Time, error) {
	parsed, err := time.ParseInLocation(layout, value, time.UTC)
	if err != nil {
		return time.Time{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: fmt.Sprintf("invalid date: %q, expected format: %s", value, layout),
		}
	}
	year, month, day := parsed.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}

func (l *Ledger) SaveTransaction(ctx context.Context, req CreateTransactionRequest) (Transaction, error) {
	if req.Date == "" {
		return Transaction{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: "date is required",
		}
	}
	if req.Title == "" {
		return Transaction{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: "title is required",
		}
	}
	if req.Amount == nil {
		return Transaction{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: "amount is required",
		}
	}
	if req.Category == "" {
		return Transaction{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: "category is required",
		}
	}
	if len(req.Title) > MAX_TITLE_LENGTH {
		return Transaction{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: fmt.Sprintf("title so long, maximum allowed length is: %d", MAX_TITLE_LENGTH),
		}
	}
	if len(req.Category) > MAX_CATEGORY_LENGTH {
		return Transaction{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: fmt.Sprintf("category so long, maximum allowed length is: %d", MAX_CATEGORY_LENGTH),
		}
	}
	if len(req.Notes) > MAX_NOTES_LENGTH {
		return Transaction{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: fmt.Sprintf("notes so long, maximum allowed length is: %d", MAX_NOTES_LENGTH),
		}
	}

	date, err := normalizeDate(req.Date, createDateLayout)
	if err != nil {
		return Transaction{}, err
	}

	clockTime := req.Time
	if clockTime == "" {
		clockTime = l.clock.Now().Format(clockTimeLayout)
	}

	t := Transaction{
		ID:       uuid.New().String(),
		Date:     date,
		Time:     clockTime,
		Title:    req.Title,
		Amount:   *req.Amount,
		Category: req.Category,
		Notes:    req.Notes,
	}

	if err := l.storage.SaveTransaction(ctx, t); err != nil {
		return Transaction{}, fmt.Errorf("failed to save transaction: %w", err)
	}
	return t, nil
}

func (l *Ledger) GetAllTransactions(ctx context.Context) ([]Transaction, error) {
	ts, err := l.storage.GetAllTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	return ts, nil
}

func (l *Ledger) GetTransactionById(ctx context.Context, id string) (Transaction, error) {
	t, err := l.storage.GetTransactionById(ctx, id)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get transaction by id: %w", err)
	}
	return t, nil
}

func (l *Ledger) UpdateTransaction(ctx context.Context, id string, req UpdateTransactionRequest) (Transaction, error) {
	if id == "" {
		return Transaction{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: "transaction id is required",
		}
	}
	if req.Title != nil && len(*req.Title) > MAX_TITLE_LENGTH {
		return Transaction{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: fmt.Sprintf("title so long, maximum allowed length is: %d", MAX_TITLE_LENGTH),
		}
	}
	if req.Category != nil && len(*req.Category) > MAX_CATEGORY_LENGTH {
		return Transaction{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: fmt.Sprintf("category so long, maximum allowed length is: %d", MAX_CATEGORY_LENGTH),
		}
	}
	if req.Notes != nil && len(*req.Notes) > MAX_NOTES_LENGTH {
		return Transaction{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: fmt.Sprintf("notes so long, maximum allowed length is: %d", MAX_NOTES_LENGTH),
		}
	}

	fields := UpdateTransactionFields{
		Time:     req.Time,
		Title:    req.Title,
		Amount:   req.Amount,
		Category: req.Category,
		Notes:    req.Notes,
	}

	if req.Date != nil {
		date, err := normalizeDate(*req.Date, updateDateLayout)
		if err != nil {
			return Transaction{}, err
		}
		fields.Date = &date
	}

	t, err := l.storage.UpdateTransaction(ctx, id, fields)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to update transaction: %w", err)
	}
	return t, nil
}

func (l *Ledger) DeleteTransaction(ctx context.Context, id string) error {
	if id == "" {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: "transaction id is required",
		}
	}
	if err := l.storage.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

func (l *Ledger) ExpenseSummary(ctx context.Context) (Summary, error) {
	ts, err := l.storage.GetTransactionsByCategories(ctx, expenseCategories)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to get expense transactions: %w", err)
	}
	return summarize(ts), nil
}

func (l *Ledger) IncomeSummary(ctx context.Context) (Summary, error) {
	ts, err := l.storage.GetTransactionsByCategories(ctx, incomeCategories)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to get income transactions: %w", err)
	}
	return summarize(ts), nil
}

// summarize groups transactions by category in first-seen order and sums
// the amounts. Summation runs on decimals so repeated float additions do
// not drift. Categories without transactions never appear.
func summarize(ts []Transaction) Summary {
	totals := make(map[string]decimal.Decimal, len(ts))
	var order []string

	for _, t := range ts {
		if _, seen := totals[t.Category]; !seen {
			order = append(order, t.Category)
		}
		totals[t.Category] = totals[t.Category].Add(decimal.NewFromFloat(t.Amount))
	}

	summary := Summary{
		Labels: make([]string, 0, len(order)),
		Values: make([]float64, 0, len(order)),
	}
	for _, category := range order {
		total, _ := totals[category].Float64()
		summary.Labels = append(summary.Labels, category)
		summary.Values = append(summary.Values, total)
	}
	return summary
}
