package api

import (
	"errors"
	"time"

	appErrors "github.com/finledger/finance_ledger/customErrors"
	"github.com/finledger/finance_ledger/internal/ledger"
)

// REQUESTS START:
type CreateTransactionRequest struct {
	Date     string   `json:"date"` // YYYY-MM-DD
	Time     string   `json:"time"`
	Title    string   `json:"title"`
	Amount   *float64 `json:"amount"`
	Category string   `json:"category"`
	Notes    string   `json:"notes"`
}

// UpdateTransactionRequest uses pointers so an absent field leaves the
// stored value untouched while a present-but-empty one overwrites it.
type UpdateTransactionRequest struct {
	Date     *string  `json:"date"` // MM/DD/YYYY
	Time     *string  `json:"time"`
	Title    *string  `json:"title"`
	Amount   *float64 `json:"amount"`
	Category *string  `json:"category"`
	Notes    *string  `json:"notes"`
}

//REQUESTS END:

//RESPONSES:

type TransactionItem struct {
	ID       string    `json:"id"`
	Date     time.Time `json:"date"` // RFC3339 instant at UTC midnight
	Time     string    `json:"time"`
	Title    string    `json:"title"`
	Amount   float64   `json:"amount"`
	Category string    `json:"category"`
	Notes    string    `json:"notes,omitempty"`
}

type SummaryResponse struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func httpStatusFromError(err error) int {
	var appErr appErrors.ErrorResponse
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case appErrors.ErrNotFound:
			return 404 // not found
		case appErrors.ErrInvalidInput:
			return 400 // bad request
		}
	}
	return 500 //internal error
}

func TransactionToHttp(transaction ledger.Transaction) TransactionItem {
	return TransactionItem{
		ID:       transaction.ID,
		Date:     transaction.Date,
		Time:     transaction.Time,
		Title:    transaction.Title,
		Amount:   transaction.Amount,
		Category: transaction.Category,
		Notes:    transaction.Notes,
	}
}

func SummaryToHttp(summary ledger.Summary) SummaryResponse {
	resp := SummaryResponse{
		Labels: summary.Labels,
		Values: summary.Values,
	}
	// Charts expect arrays, not null.
	if resp.Labels == nil {
		resp.Labels = []string{}
	}
	if resp.Values == nil {
		resp.Values = []float64{}
	}
	return resp
}
