package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/finledger/finance_ledger/internal/ledger"
	"github.com/finledger/finance_ledger/internal/storage"
	"github.com/finledger/finance_ledger/logging"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	now time.Time
}

func (c testClock) Now() time.Time { return c.now }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logging.Logger = logrus.New()

	store := storage.NewInMemoryStorage()
	lg := ledger.NewLedger(store, testClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)})
	ts := httptest.NewServer(NewRouter(NewApi(&lg)))
	t.Cleanup(ts.Close)
	return ts
}

// doJSON sends a JSON request, checks the status code and decodes the
// response body into out when given.
func doJSON(t *testing.T, method, url string, body any, wantCode int, out any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantCode, resp.StatusCode)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
}

func TestTransactionLifecycle(t *testing.T) {
	ts := newTestServer(t)

	var created TransactionItem
	doJSON(t, "POST", ts.URL+"/transactions", map[string]any{
		"date":     "2024-01-15",
		"title":    "Groceries",
		"amount":   42.5,
		"category": "Food",
		"notes":    "weekly run",
	}, 201, &created)

	require.NotEmpty(t, created.ID)
	require.True(t, created.Date.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)), "got date %v", created.Date)
	require.Equal(t, "9:00:00 AM", created.Time) // defaulted from the injected clock
	require.Equal(t, 42.5, created.Amount)

	var listed []TransactionItem
	doJSON(t, "GET", ts.URL+"/transactions", nil, 200, &listed)
	require.Len(t, listed, 1)
	require.Equal(t, created.ID, listed[0].ID)

	var fetched TransactionItem
	doJSON(t, "GET", ts.URL+"/transactions/"+created.ID, nil, 200, &fetched)
	require.Equal(t, "Groceries", fetched.Title)

	var updated TransactionItem
	doJSON(t, "PUT", ts.URL+"/transactions/"+created.ID, map[string]any{
		"date":  "01/20/2024",
		"title": "Groceries and snacks",
	}, 200, &updated)
	require.True(t, updated.Date.Equal(time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)), "got date %v", updated.Date)
	require.Equal(t, "Groceries and snacks", updated.Title)
	// Fields absent from the update body stay untouched.
	require.Equal(t, 42.5, updated.Amount)
	require.Equal(t, "weekly run", updated.Notes)

	var deleted MessageResponse
	doJSON(t, "DELETE", ts.URL+"/transactions/"+created.ID, nil, 200, &deleted)
	require.NotEmpty(t, deleted.Message)

	doJSON(t, "GET", ts.URL+"/transactions/"+created.ID, nil, 404, nil)
}

func TestCreateValidationFailures(t *testing.T) {
	ts := newTestServer(t)

	// Missing title.
	doJSON(t, "POST", ts.URL+"/transactions", map[string]any{
		"date":     "2024-01-15",
		"amount":   10,
		"category": "Food",
	}, 400, nil)

	// Create only accepts YYYY-MM-DD.
	doJSON(t, "POST", ts.URL+"/transactions", map[string]any{
		"date":     "01/15/2024",
		"title":    "Rent",
		"amount":   900,
		"category": "Housing",
	}, 400, nil)

	// Nothing was stored.
	var listed []TransactionItem
	doJSON(t, "GET", ts.URL+"/transactions", nil, 200, &listed)
	require.Empty(t, listed)
}

func TestUpdateAndDeleteMissing(t *testing.T) {
	ts := newTestServer(t)

	doJSON(t, "PUT", ts.URL+"/transactions/no-such-id", map[string]any{
		"title": "x",
	}, 404, nil)
	doJSON(t, "DELETE", ts.URL+"/transactions/no-such-id", nil, 404, nil)

	// Bad date on update is a client error, not a not-found.
	var created TransactionItem
	doJSON(t, "POST", ts.URL+"/transactions", map[string]any{
		"date":     "2024-01-15",
		"title":    "Internet",
		"amount":   60,
		"category": "Utilities",
	}, 201, &created)
	doJSON(t, "PUT", ts.URL+"/transactions/"+created.ID, map[string]any{
		"date": "2024-01-20",
	}, 400, nil)
}

func TestSummaryEndpoints(t *testing.T) {
	ts := newTestServer(t)

	seed := []map[string]any{
		{"date": "2024-01-01", "title": "Groceries", "amount": 10, "category": "Food"},
		{"date": "2024-01-02", "title": "Takeout", "amount": 5, "category": "Food"},
		{"date": "2024-01-03", "title": "Paycheck", "amount": 100, "category": "Salary"},
		{"date": "2024-01-04", "title": "Misc", "amount": 20, "category": "Other"},
		{"date": "2024-01-05", "title": "Vet", "amount": 75, "category": "Pets"},
	}
	for _, body := range seed {
		doJSON(t, "POST", ts.URL+"/transactions", body, 201, nil)
	}

	var expenses SummaryResponse
	doJSON(t, "GET", ts.URL+"/expenses", nil, 200, &expenses)
	require.Equal(t, []string{"Food", "Other"}, expenses.Labels)
	require.Equal(t, []float64{15, 20}, expenses.Values)

	// "Other" is in both category sets, so it shows up here too.
	var income SummaryResponse
	doJSON(t, "GET", ts.URL+"/income", nil, 200, &income)
	require.Equal(t, []string{"Salary", "Other"}, income.Labels)
	require.Equal(t, []float64{100, 20}, income.Values)
}

func TestSummaryEmptyIsArraysNotNull(t *testing.T) {
	ts := newTestServer(t)

	var summary SummaryResponse
	doJSON(t, "GET", ts.URL+"/expenses", nil, 200, &summary)

	// Decoding JSON null would leave these nil; [] decodes to empty slices.
	require.NotNil(t, summary.Labels)
	require.NotNil(t, summary.Values)
	require.Empty(t, summary.Labels)
	require.Empty(t, summary.Values)
}
