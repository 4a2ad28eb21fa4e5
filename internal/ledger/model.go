package ledger

import (
	"time"
)

// REQUESTS START:
type CreateTransactionRequest struct {
	Date     string
	Time     string
	Title    string
	Amount   *float64
	Category string
	Notes    string
}

// UpdateTransactionRequest carries only the fields the caller supplied.
// A nil pointer means the field was absent and the stored value is kept.
type UpdateTransactionRequest struct {
	Date     *string
	Time     *string
	Title    *string
	Amount   *float64
	Category *string
	Notes    *string
}

// REQUESTS END:

// MODELS:

type Transaction struct {
	ID       string
	Date     time.Time // always UTC midnight
	Time     string
	Title    string
	Amount   float64
	Category string
	Notes    string
}

// UpdateTransactionFields is the normalized form handed to storage:
// the date string has already been parsed and truncated.
type UpdateTransactionFields struct {
	Date     *time.Time
	Time     *string
	Title    *string
	Amount   *float64
	Category *string
	Notes    *string
}

// RESPONSES:

// Summary is a chart-ready projection: labels[i] and values[i] always
// refer to the same category.
type Summary struct {
	Labels []string
	Values []float64
}
