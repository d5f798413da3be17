// Package services orchestrates the domain operations over the store and
// the optional event queue. Handlers stay thin; every rule about
// validation, normalization, ownership scoping, pagination and
// aggregation lives here.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/metrics"
	"fintrack/internal/store"
)

const (
	// DefaultPageLimit applies when a list request omits the limit.
	DefaultPageLimit = 50
	// MaxPageLimit caps how many records one page may return. Larger
	// requests are clamped, not rejected.
	MaxPageLimit = 500
)

// TransactionService implements the transaction record lifecycle.
type TransactionService struct {
	store  store.Store
	events *amqp.Client
}

// NewTransactionService wires the service. events may be nil, in which
// case mutation events are skipped.
func NewTransactionService(st store.Store, events *amqp.Client) *TransactionService {
	return &TransactionService{store: st, events: events}
}

// CreateTransactionInput carries the create request body. Amount is a
// pointer so that an absent field is distinguishable from zero.
type CreateTransactionInput struct {
	Amount        *core.Money
	Type          string
	Category      string
	Description   string
	Date          time.Time
	PaymentMethod string
	Tags          []string
}

// Create validates, normalizes and persists a new transaction owned by
// ownerID. The date defaults to the current time when omitted.
func (s *TransactionService) Create(ctx context.Context, ownerID string, in CreateTransactionInput) (*core.Transaction, error) {
	if in.Amount == nil || strings.TrimSpace(in.Type) == "" ||
		strings.TrimSpace(in.Category) == "" || strings.TrimSpace(in.Description) == "" {
		return nil, core.Validationf("required fields: amount, type, category, description")
	}

	now := time.Now().UTC()
	date := in.Date
	if date.IsZero() {
		date = now
	}
	t := core.Transaction{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		Amount:        *in.Amount,
		Type:          core.TransactionType(in.Type),
		Category:      in.Category,
		Description:   in.Description,
		Date:          date.UTC(),
		PaymentMethod: in.PaymentMethod,
		Tags:          in.Tags,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	t.NormalizeForStorage()
	if err := t.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateTransaction(ctx, &t); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	metrics.CountTransactionOp("create")
	s.publishEvent(ctx, amqp.ActionCreated, &t)
	return &t, nil
}

// Get fetches one transaction scoped to its owner. A record owned by
// someone else is indistinguishable from a missing one.
func (s *TransactionService) Get(ctx context.Context, ownerID, id string) (*core.Transaction, error) {
	return s.store.GetTransaction(ctx, id, ownerID)
}

// ListQuery is the filter/pagination input for List. Type and Category
// accept display or storage form; dates are inclusive bounds.
type ListQuery struct {
	Type      string
	Category  string
	StartDate time.Time
	EndDate   time.Time
	Page      int
	Limit     int
}

// Pagination describes the returned page.
type Pagination struct {
	Page  int
	Limit int
	Total int64
	Pages int64
}

// buildFilter constructs the store predicate. The owner id always comes
// from the authenticated principal, never from caller input, and the
// enum-like fields are normalized to storage form first.
func buildFilter(ownerID string, q ListQuery) store.TransactionFilter {
	f := store.TransactionFilter{
		OwnerID:   ownerID,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
	}
	if q.Type != "" {
		f.Type = core.ToStorageForm(q.Type)
	}
	if q.Category != "" {
		f.Category = core.ToStorageForm(q.Category)
	}
	return f
}

// List returns one date-descending page of the owner's transactions plus
// pagination metadata. Page and limit default to 1 and DefaultPageLimit;
// the limit is clamped to MaxPageLimit.
func (s *TransactionService) List(ctx context.Context, ownerID string, q ListQuery) ([]core.Transaction, Pagination, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	items, total, err := s.store.FindTransactions(ctx, buildFilter(ownerID, q), store.PageRequest{Page: page, Limit: limit})
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list transactions: %w", err)
	}

	pg := Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: (total + int64(limit) - 1) / int64(limit),
	}
	return items, pg, nil
}

// UpdateTransactionInput is the partial update body: only non-nil fields
// change the stored record.
type UpdateTransactionInput struct {
	Amount        *core.Money
	Type          *string
	Category      *string
	Description   *string
	Date          *time.Time
	PaymentMethod *string
	Tags          *[]string
}

// Update merges the supplied fields onto the stored record, re-runs full
// validation on the merged result and persists it.
func (s *TransactionService) Update(ctx context.Context, ownerID, id string, in UpdateTransactionInput) (*core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if in.Amount != nil {
		t.Amount = *in.Amount
	}
	if in.Type != nil {
		t.Type = core.TransactionType(*in.Type)
	}
	if in.Category != nil {
		t.Category = *in.Category
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Date != nil {
		t.Date = in.Date.UTC()
	}
	if in.PaymentMethod != nil {
		t.PaymentMethod = *in.PaymentMethod
	}
	if in.Tags != nil {
		t.Tags = *in.Tags
	}

	t.NormalizeForStorage()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}

	metrics.CountTransactionOp("update")
	s.publishEvent(ctx, amqp.ActionUpdated, t)
	return t, nil
}

// Delete removes one owner-scoped transaction.
func (s *TransactionService) Delete(ctx context.Context, ownerID, id string) error {
	t, err := s.store.GetTransaction(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, id, ownerID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	metrics.CountTransactionOp("delete")
	s.publishEvent(ctx, amqp.ActionDeleted, t)
	return nil
}

// Summary aggregates the owner's records within the optional inclusive
// date range.
func (s *TransactionService) Summary(ctx context.Context, ownerID string, startDate, endDate time.Time) (core.Summary, error) {
	f := store.TransactionFilter{
		OwnerID:   ownerID,
		StartDate: startDate,
		EndDate:   endDate,
	}
	groups, err := s.store.SummarizeTransactions(ctx, f)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summarize transactions: %w", err)
	}
	return core.SummarizeByType(groups), nil
}

// publishEvent emits a mutation event when a queue is configured. Event
// delivery is best effort: a publish failure is logged, never surfaced.
func (s *TransactionService) publishEvent(ctx context.Context, action string, t *core.Transaction) {
	if s.events == nil {
		return
	}
	event := amqp.NewTransactionEvent(action, t.ID, t.OwnerID, string(t.Type), t.Amount.Millis)
	if err := s.events.PublishTransactionEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"error", err,
			"action", action,
			"transaction_id", t.ID)
	}
}
