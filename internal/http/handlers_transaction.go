package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type createTransactionRequest struct {
	Amount        *core.Money `json:"amount"`
	Type          string      `json:"type"`
	Category      string      `json:"category"`
	Description   string      `json:"description"`
	Date          string      `json:"date"`
	PaymentMethod string      `json:"paymentMethod"`
	Tags          []string    `json:"tags"`
}

type updateTransactionRequest struct {
	Amount        *core.Money `json:"amount"`
	Type          *string     `json:"type"`
	Category      *string     `json:"category"`
	Description   *string     `json:"description"`
	Date          *string     `json:"date"`
	PaymentMethod *string     `json:"paymentMethod"`
	Tags          *[]string   `json:"tags"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	principal := principalFrom(r.Context())
	created, err := s.transactions.Create(r.Context(), principal.ID, services.CreateTransactionInput{
		Amount:        req.Amount,
		Type:          req.Type,
		Category:      req.Category,
		Description:   req.Description,
		Date:          date,
		PaymentMethod: req.PaymentMethod,
		Tags:          req.Tags,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, renderTransaction(created))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	principal := principalFrom(r.Context())
	items, pg, err := s.transactions.List(r.Context(), principal.ID, q)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": renderTransactions(items),
		"pagination":   renderPagination(pg),
	})
}

func parseListQuery(r *http.Request) (services.ListQuery, error) {
	var q services.ListQuery
	var err error

	q.Type = r.URL.Query().Get("type")
	q.Category = r.URL.Query().Get("category")
	if q.StartDate, err = parseDateQuery(r, "startDate"); err != nil {
		return q, err
	}
	if q.EndDate, err = parseDateQuery(r, "endDate"); err != nil {
		return q, err
	}
	if q.Page, err = parseIntQuery(r, "page"); err != nil {
		return q, err
	}
	if q.Limit, err = parseIntQuery(r, "limit"); err != nil {
		return q, err
	}
	return q, nil
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r.Context())
	t, err := s.transactions.Get(r.Context(), principal.ID, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, renderTransaction(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req updateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	in := services.UpdateTransactionInput{
		Amount:        req.Amount,
		Type:          req.Type,
		Category:      req.Category,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
		Tags:          req.Tags,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		in.Date = &date
	}

	principal := principalFrom(r.Context())
	updated, err := s.transactions.Update(r.Context(), principal.ID, r.PathValue("id"), in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, renderTransaction(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r.Context())
	if err := s.transactions.Delete(r.Context(), principal.ID, r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Transaction deleted successfully")
}

func (s *Server) handleTransactionSummary(w http.ResponseWriter, r *http.Request) {
	startDate, err := parseDateQuery(r, "startDate")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	endDate, err := parseDateQuery(r, "endDate")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	principal := principalFrom(r.Context())
	sum, err := s.transactions.Summary(r.Context(), principal.ID, startDate, endDate)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, renderSummary(sum))
}
