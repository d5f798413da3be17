package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

// transactionView is the wire representation of a transaction. Enum-like
// fields are rendered in display form, the description in proper case,
// and the amount as an exact decimal literal.
type transactionView struct {
	ID            string     `json:"id"`
	Amount        core.Money `json:"amount"`
	Type          string     `json:"type"`
	Category      string     `json:"category"`
	Description   string     `json:"description"`
	Date          string     `json:"date"`
	PaymentMethod string     `json:"paymentMethod"`
	Tags          []string   `json:"tags"`
	CreatedAt     string     `json:"createdAt"`
	UpdatedAt     string     `json:"updatedAt"`
}

func renderTransaction(t *core.Transaction) transactionView {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return transactionView{
		ID:            t.ID,
		Amount:        t.Amount,
		Type:          core.ToDisplayForm(string(t.Type)),
		Category:      core.ToDisplayForm(t.Category),
		Description:   core.ToProperCase(t.Description),
		Date:          t.Date.Format("2006-01-02"),
		PaymentMethod: core.ToDisplayForm(t.PaymentMethod),
		Tags:          tags,
		CreatedAt:     t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:     t.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func renderTransactions(items []core.Transaction) []transactionView {
	views := make([]transactionView, 0, len(items))
	for i := range items {
		views = append(views, renderTransaction(&items[i]))
	}
	return views
}

type paginationView struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func renderPagination(pg services.Pagination) paginationView {
	return paginationView{Page: pg.Page, Limit: pg.Limit, Total: pg.Total, Pages: pg.Pages}
}

type summaryView struct {
	TotalIncome      core.Money `json:"totalIncome"`
	TotalExpense     core.Money `json:"totalExpense"`
	Balance          core.Money `json:"balance"`
	TransactionCount int64      `json:"transactionCount"`
}

func renderSummary(sum core.Summary) summaryView {
	return summaryView{
		TotalIncome:      core.Money{Millis: sum.TotalIncomeMillis},
		TotalExpense:     core.Money{Millis: sum.TotalExpenseMillis},
		Balance:          core.Money{Millis: sum.BalanceMillis},
		TransactionCount: sum.TransactionCount,
	}
}

type userView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

func renderUser(u *core.User) userView {
	return userView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeServerError logs the underlying error and replies with a generic
// message so internals never leak to clients.
func writeServerError(w http.ResponseWriter, r *http.Request, err error) {
	log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
		log.FieldError, err,
		log.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error"})
}

// writeDomainError maps a service error onto the response contract:
// validation problems and conflicts are 400, credential failures 401,
// missing or foreign-owned records 404, everything else a generic 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsValidation(err):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrEmailTaken):
		writeError(w, r, http.StatusBadRequest, "Email already in use")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "Not found")
	default:
		writeServerError(w, r, err)
	}
}
