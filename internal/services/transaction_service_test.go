package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

func newTransactionService() *TransactionService {
	return NewTransactionService(store.NewMemory(), nil)
}

func money(millis int64) *core.Money {
	return &core.Money{Millis: millis}
}

func TestCreateRejectsMissingRequiredFields(t *testing.T) {
	svc := newTransactionService()
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateTransactionInput
	}{
		{"no amount", CreateTransactionInput{Type: "expense", Category: "food", Description: "lunch"}},
		{"no type", CreateTransactionInput{Amount: money(1000), Category: "food", Description: "lunch"}},
		{"no category", CreateTransactionInput{Amount: money(1000), Type: "expense", Description: "lunch"}},
		{"no description", CreateTransactionInput{Amount: money(1000), Type: "expense", Category: "food"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "owner", tc.in)
			assert.True(t, core.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestCreateNormalizesAndDefaults(t *testing.T) {
	svc := newTransactionService()
	ctx := context.Background()

	before := time.Now().UTC()
	created, err := svc.Create(ctx, "owner", CreateTransactionInput{
		Amount:      money(125500),
		Type:        "Expense",
		Category:    "Food",
		Description: "Lunch at CAFE",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "owner", created.OwnerID)
	assert.Equal(t, core.TypeExpense, created.Type)
	assert.Equal(t, "food", created.Category)
	assert.Equal(t, "lunch at cafe", created.Description)
	assert.Equal(t, core.DefaultPaymentMethod, created.PaymentMethod)
	assert.False(t, created.Date.Before(before), "omitted date should default to now")
	assert.False(t, created.CreatedAt.IsZero())
	assert.False(t, created.UpdatedAt.IsZero())
}

func TestCreateRejectsCrossTypeCategory(t *testing.T) {
	svc := newTransactionService()

	_, err := svc.Create(context.Background(), "owner", CreateTransactionInput{
		Amount:      money(1000),
		Type:        "income",
		Category:    "food",
		Description: "mislabeled",
	})
	assert.True(t, core.IsValidation(err), "expected validation error, got %v", err)
}

func TestGetScopedToOwner(t *testing.T) {
	svc := newTransactionService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", CreateTransactionInput{
		Amount:      money(5000),
		Type:        "income",
		Category:    "salary",
		Description: "pay",
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, "bob", created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := svc.Get(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestListPaginationDefaultsAndClamp(t *testing.T) {
	svc := newTransactionService()
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		_, err := svc.Create(ctx, "owner", CreateTransactionInput{
			Amount:      money(1000),
			Type:        "expense",
			Category:    "food",
			Description: fmt.Sprintf("meal %d", i),
			Date:        base.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}

	items, pg, err := svc.List(ctx, "owner", ListQuery{})
	require.NoError(t, err)
	assert.Len(t, items, 7)
	assert.Equal(t, 1, pg.Page)
	assert.Equal(t, DefaultPageLimit, pg.Limit)
	assert.Equal(t, int64(7), pg.Total)
	assert.Equal(t, int64(1), pg.Pages)

	_, pg, err = svc.List(ctx, "owner", ListQuery{Limit: MaxPageLimit + 1})
	require.NoError(t, err)
	assert.Equal(t, MaxPageLimit, pg.Limit)

	items, pg, err = svc.List(ctx, "owner", ListQuery{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, int64(3), pg.Pages)

	// Newest first: page 2 of 3 holds days 4, 3, 2.
	assert.Equal(t, base.AddDate(0, 0, 3), items[1].Date)
}

func TestListFilterNormalizesEnums(t *testing.T) {
	svc := newTransactionService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "owner", CreateTransactionInput{
		Amount: money(1000), Type: "income", Category: "rental income",
		Description: "flat", Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "owner", CreateTransactionInput{
		Amount: money(2000), Type: "expense", Category: "food",
		Description: "lunch", Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	// Display-form query values must match storage-form records.
	items, pg, err := svc.List(ctx, "owner", ListQuery{Type: "Income", Category: "Rental Income"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "rental-income", items[0].Category)
	assert.Equal(t, int64(1), pg.Total)
}

func TestUpdateMergesPartialFields(t *testing.T) {
	svc := newTransactionService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner", CreateTransactionInput{
		Amount:        money(10000),
		Type:          "expense",
		Category:      "food",
		Description:   "groceries",
		PaymentMethod: "credit card",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "owner", created.ID, UpdateTransactionInput{
		Amount: money(12345),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12345), updated.Amount.Millis)
	assert.Equal(t, "groceries", updated.Description, "unset fields keep their values")
	assert.Equal(t, "credit-card", updated.PaymentMethod)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt) || updated.UpdatedAt.Equal(created.UpdatedAt))
}

func TestUpdateRevalidatesMergedRecord(t *testing.T) {
	svc := newTransactionService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner", CreateTransactionInput{
		Amount:      money(10000),
		Type:        "expense",
		Category:    "food",
		Description: "groceries",
	})
	require.NoError(t, err)

	// Changing only the type makes category invalid for the merged record.
	newType := "income"
	_, err = svc.Update(ctx, "owner", created.ID, UpdateTransactionInput{Type: &newType})
	assert.True(t, core.IsValidation(err), "expected validation error, got %v", err)

	// The stored record is untouched after the rejected update.
	got, err := svc.Get(ctx, "owner", created.ID)
	require.NoError(t, err)
	assert.Equal(t, core.TypeExpense, got.Type)
}

func TestUpdateAndDeleteScopedToOwner(t *testing.T) {
	svc := newTransactionService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", CreateTransactionInput{
		Amount:      money(1000),
		Type:        "expense",
		Category:    "food",
		Description: "lunch",
	})
	require.NoError(t, err)

	desc := "dinner"
	_, err = svc.Update(ctx, "bob", created.ID, UpdateTransactionInput{Description: &desc})
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = svc.Delete(ctx, "bob", created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "alice", created.ID))
	_, err = svc.Get(ctx, "alice", created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSummaryBalancesExactly(t *testing.T) {
	svc := newTransactionService()
	ctx := context.Background()

	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

	_, err := svc.Create(ctx, "owner", CreateTransactionInput{
		Amount: money(3000100), Type: "income", Category: "salary",
		Description: "pay", Date: jan,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "owner", CreateTransactionInput{
		Amount: money(1000050), Type: "expense", Category: "housing",
		Description: "rent", Date: jan,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "owner", CreateTransactionInput{
		Amount: money(500), Type: "expense", Category: "food",
		Description: "snack", Date: feb,
	})
	require.NoError(t, err)

	sum, err := svc.Summary(ctx, "owner", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(3000100), sum.TotalIncomeMillis)
	assert.Equal(t, int64(1000550), sum.TotalExpenseMillis)
	assert.Equal(t, int64(1999550), sum.BalanceMillis)
	assert.Equal(t, int64(3), sum.TransactionCount)

	// Range bounds are inclusive and cut February off.
	sum, err = svc.Summary(ctx, "owner",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(3000100), sum.TotalIncomeMillis)
	assert.Equal(t, int64(1000050), sum.TotalExpenseMillis)
	assert.Equal(t, int64(2), sum.TransactionCount)
}

func TestSummaryEmptyOwnerIsZero(t *testing.T) {
	svc := newTransactionService()

	sum, err := svc.Summary(context.Background(), "nobody", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, core.Summary{}, sum)
	assert.False(t, errors.Is(err, store.ErrNotFound))
}
