package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

func newTestServer() *Server {
	st := store.NewMemory()
	transactions := services.NewTransactionService(st, nil)
	users := services.NewUserService(st)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	logger := log.New(log.Config{
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})
	return NewServer(":0", transactions, users, tokens, logger)
}

func do(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

func registerUser(t *testing.T, s *Server, email string) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Test User", "email": email, "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer()

	rec := do(t, s, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ada", "email": "Ada@Example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Token string   `json:"token"`
		User  userView `json:"user"`
	}
	decodeBody(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ada@example.com", resp.User.Email)

	rec = do(t, s, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Other", "email": "ada@example.com", "password": "secret2",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer()

	rec := do(t, s, http.MethodGet, "/api/transactions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "no token")

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	req.Header.Set("Authorization", "Token abc")
	rw := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rw, req)
	assert.Equal(t, http.StatusUnauthorized, rw.Code)

	rec = do(t, s, http.MethodGet, "/api/transactions", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTransactionCRUD(t *testing.T) {
	s := newTestServer()
	token := registerUser(t, s, "crud@example.com")

	rec := do(t, s, http.MethodPost, "/api/transactions", token, map[string]any{
		"amount":        45.5,
		"type":          "expense",
		"category":      "Food",
		"description":   "LUNCH at cafe",
		"date":          "2026-03-10",
		"paymentMethod": "credit card",
		"tags":          []string{"work"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created transactionView
	decodeBody(t, rec, &created)
	assert.Equal(t, core.Money{Millis: 45500}, created.Amount)
	assert.Equal(t, "Expense", created.Type)
	assert.Equal(t, "Food", created.Category)
	assert.Equal(t, "Lunch At Cafe", created.Description)
	assert.Equal(t, "Credit Card", created.PaymentMethod)
	assert.Equal(t, "2026-03-10", created.Date)

	rec = do(t, s, http.MethodGet, "/api/transactions/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodPut, "/api/transactions/"+created.ID, token, map[string]any{
		"amount": 50,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated transactionView
	decodeBody(t, rec, &updated)
	assert.Equal(t, core.Money{Millis: 50000}, updated.Amount)
	assert.Equal(t, "Lunch At Cafe", updated.Description)

	rec = do(t, s, http.MethodDelete, "/api/transactions/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Transaction deleted successfully")

	rec = do(t, s, http.MethodGet, "/api/transactions/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransactionValidation(t *testing.T) {
	s := newTestServer()
	token := registerUser(t, s, "validation@example.com")

	// Unknown body fields are rejected.
	rec := do(t, s, http.MethodPost, "/api/transactions", token, map[string]any{
		"amount": 10, "type": "expense", "category": "food",
		"description": "x", "bogus": true,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Cross-type category mismatch.
	rec = do(t, s, http.MethodPost, "/api/transactions", token, map[string]any{
		"amount": 10, "type": "income", "category": "food", "description": "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Non-positive amount.
	rec = do(t, s, http.MethodPost, "/api/transactions", token, map[string]any{
		"amount": -5, "type": "expense", "category": "food", "description": "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOwnerIsolation(t *testing.T) {
	s := newTestServer()
	alice := registerUser(t, s, "alice@example.com")
	bob := registerUser(t, s, "bob@example.com")

	rec := do(t, s, http.MethodPost, "/api/transactions", alice, map[string]any{
		"amount": 10, "type": "expense", "category": "food", "description": "lunch",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created transactionView
	decodeBody(t, rec, &created)

	rec = do(t, s, http.MethodGet, "/api/transactions/"+created.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/transactions/"+created.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAndSummary(t *testing.T) {
	s := newTestServer()
	token := registerUser(t, s, "list@example.com")

	seed := []map[string]any{
		{"amount": 3000.1, "type": "income", "category": "salary", "description": "pay", "date": "2026-01-15"},
		{"amount": 1000.05, "type": "expense", "category": "housing", "description": "rent", "date": "2026-01-20"},
		{"amount": 0.5, "type": "expense", "category": "food", "description": "snack", "date": "2026-02-01"},
	}
	for _, body := range seed {
		rec := do(t, s, http.MethodPost, "/api/transactions", token, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := do(t, s, http.MethodGet, "/api/transactions?type=Expense", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Transactions []transactionView `json:"transactions"`
		Pagination   paginationView    `json:"pagination"`
	}
	decodeBody(t, rec, &list)
	assert.Len(t, list.Transactions, 2)
	assert.Equal(t, int64(2), list.Pagination.Total)
	assert.Equal(t, 1, list.Pagination.Page)
	// Newest first.
	assert.Equal(t, "2026-02-01", list.Transactions[0].Date)

	// The exact summary pattern must not be captured by the {id} route.
	rec = do(t, s, http.MethodGet, "/api/transactions/summary/stats?startDate=2026-01-01&endDate=2026-01-31", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sum summaryView
	decodeBody(t, rec, &sum)
	assert.Equal(t, core.Money{Millis: 3000100}, sum.TotalIncome)
	assert.Equal(t, core.Money{Millis: 1000050}, sum.TotalExpense)
	assert.Equal(t, core.Money{Millis: 2000050}, sum.Balance)
	assert.Equal(t, int64(2), sum.TransactionCount)

	rec = do(t, s, http.MethodGet, "/api/transactions?startDate=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileLifecycle(t *testing.T) {
	s := newTestServer()
	token := registerUser(t, s, "profile@example.com")

	rec := do(t, s, http.MethodGet, "/api/user/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile userView
	decodeBody(t, rec, &profile)
	assert.Equal(t, "profile@example.com", profile.Email)

	rec = do(t, s, http.MethodPut, "/api/user/profile", token, map[string]any{
		"name": "Renamed",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &profile)
	assert.Equal(t, "Renamed", profile.Name)

	// Password change requires the current password.
	rec = do(t, s, http.MethodPut, "/api/user/profile", token, map[string]any{
		"newPassword": "changed1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPut, "/api/user/profile", token, map[string]any{
		"currentPassword": "secret1", "newPassword": "changed1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "profile@example.com", "password": "changed1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteAccount(t *testing.T) {
	s := newTestServer()
	token := registerUser(t, s, "gone@example.com")

	rec := do(t, s, http.MethodPost, "/api/transactions", token, map[string]any{
		"amount": 10, "type": "expense", "category": "food", "description": "lunch",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/user/account", token, map[string]string{
		"password": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/user/account", token, map[string]string{
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		TransactionsRemoved int64 `json:"transactionsRemoved"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, int64(1), resp.TransactionsRemoved)

	// The token's principal no longer exists.
	rec = do(t, s, http.MethodGet, "/api/user/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer()

	rec := do(t, s, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
