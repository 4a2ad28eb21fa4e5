package api

import (
	"net/http"

	"github.com/0xcafe-io/iz"
)

// NewRouter registers every route exactly once so main and the tests
// share the same surface.
func NewRouter(api *Api) *http.ServeMux {
	mux := http.NewServeMux()

	// TRANSACTION ENDPOINTS.
	mux.HandleFunc("POST /transactions", iz.Bind(api.SaveTransactionHandler))          // Create Transaction
	mux.HandleFunc("GET /transactions", iz.Bind(api.ListTransactionsHandler))          // Get All Transactions
	mux.HandleFunc("GET /transactions/{id}", iz.Bind(api.GetTransactionByIdHandler))   // Get Transaction by ID
	mux.HandleFunc("PUT /transactions/{id}", iz.Bind(api.UpdateTransactionHandler))    // Update Transaction
	mux.HandleFunc("DELETE /transactions/{id}", iz.Bind(api.DeleteTransactionHandler)) // Delete Transaction

	// SUMMARY ENDPOINTS.
	mux.HandleFunc("GET /expenses", iz.Bind(api.ExpenseSummaryHandler)) // Expense totals per category
	mux.HandleFunc("GET /income", iz.Bind(api.IncomeSummaryHandler))    // Income totals per category

	mux.HandleFunc("GET /healthz", iz.Bind(api.HealthHandler))

	return mux
}
