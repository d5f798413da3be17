package core

import (
	"testing"
	"time"
)

func validTransaction() Transaction {
	return Transaction{
		ID:            "t1",
		OwnerID:       "u1",
		Amount:        Money{Millis: 1000000},
		Type:          TypeIncome,
		Category:      "salary",
		Description:   "monthly pay",
		Date:          time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		PaymentMethod: "bank-transfer",
	}
}

func TestTransactionValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Transaction)
		ok     bool
	}{
		{"valid income", func(tx *Transaction) {}, true},
		{"valid expense", func(tx *Transaction) {
			tx.Type = TypeExpense
			tx.Category = "food"
		}, true},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, false},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, false},
		{"empty category", func(tx *Transaction) { tx.Category = "" }, false},
		{"unknown category", func(tx *Transaction) { tx.Category = "lottery" }, false},
		{"cross-type category", func(tx *Transaction) { tx.Category = "food" }, false},
		{"empty description", func(tx *Transaction) { tx.Description = "  " }, false},
		{"bad payment method", func(tx *Transaction) { tx.PaymentMethod = "barter" }, false},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTransaction()
			tc.mutate(&tx)
			err := tx.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatal("expected error")
				}
				if !IsValidation(err) {
					t.Fatalf("expected ValidationError, got %T", err)
				}
			}
		})
	}
}

func TestNormalizeForStorage(t *testing.T) {
	tx := Transaction{
		Amount:        Money{Millis: 1000000},
		Type:          "Income",
		Category:      "Salary",
		Description:   "Monthly Pay",
		PaymentMethod: "Bank Transfer",
		Date:          time.Now(),
	}
	tx.NormalizeForStorage()
	if tx.Type != TypeIncome {
		t.Fatalf("type = %q", tx.Type)
	}
	if tx.Category != "salary" {
		t.Fatalf("category = %q", tx.Category)
	}
	if tx.Description != "monthly pay" {
		t.Fatalf("description = %q", tx.Description)
	}
	if tx.PaymentMethod != "bank-transfer" {
		t.Fatalf("payment method = %q", tx.PaymentMethod)
	}
	if err := tx.Validate(); err != nil {
		t.Fatalf("normalized transaction should validate: %v", err)
	}
}

func TestNormalizeDefaultsPaymentMethod(t *testing.T) {
	tx := validTransaction()
	tx.PaymentMethod = ""
	tx.NormalizeForStorage()
	if tx.PaymentMethod != DefaultPaymentMethod {
		t.Fatalf("payment method = %q, want %q", tx.PaymentMethod, DefaultPaymentMethod)
	}
}

func TestCategorySetsDisjoint(t *testing.T) {
	income := CategoriesFor(TypeIncome)
	expense := CategoriesFor(TypeExpense)
	if len(income) != 10 || len(expense) != 10 {
		t.Fatalf("expected 10+10 categories, got %d+%d", len(income), len(expense))
	}
	seen := map[string]bool{}
	for _, c := range income {
		seen[c] = true
	}
	for _, c := range expense {
		if seen[c] {
			t.Fatalf("category %q appears in both sets", c)
		}
	}
}

func TestUserValidate(t *testing.T) {
	u := User{ID: "u1", Name: "Ada", Email: "ada@example.com"}
	if err := u.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u.Email = "Ada@Example.com"
	if err := u.Validate(); err == nil {
		t.Fatal("expected error for non-lowercased email")
	}
	u.Email = "not-an-email"
	if err := u.Validate(); err == nil {
		t.Fatal("expected error for invalid email")
	}
}
