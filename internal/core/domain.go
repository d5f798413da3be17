package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

type (
	TransactionType string

	// Transaction is a single income or expense record. It is owned by
	// exactly one user; ownership never changes after creation.
	Transaction struct {
		ID            string
		OwnerID       string
		Amount        Money
		Type          TransactionType
		Category      string
		Description   string
		Date          time.Time
		PaymentMethod string
		Tags          []string
		CreatedAt     time.Time
		UpdatedAt     time.Time
	}

	// User is an account holder. Email is unique and lowercased at rest.
	User struct {
		ID           string
		Name         string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}
)

// ValidationError marks a client mistake: a missing required field or a
// value outside its enum. Handlers report it as a 400, never a 500.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	ErrInvalidAmount    = &ValidationError{Msg: "invalid amount"}
	ErrEmptyDescription = &ValidationError{Msg: "empty description"}
)

// Category sets are fixed and disjoint between the two transaction types.
// Storage-form tokens only.
var (
	incomeCategories = []string{
		"salary", "freelance", "investment", "business", "gift",
		"bonus", "rental-income", "dividend", "refund", "other-income",
	}
	expenseCategories = []string{
		"food", "transportation", "housing", "utilities", "healthcare",
		"entertainment", "shopping", "education", "travel", "other-expense",
	}
	paymentMethods = []string{
		"cash", "credit-card", "debit-card", "bank-transfer",
		"digital-wallet", "check",
	}
)

// DefaultPaymentMethod is applied when a create request omits the field.
const DefaultPaymentMethod = "cash"

// CategoriesFor returns the category set for a transaction type, in
// storage form. Unknown types yield nil.
func CategoriesFor(t TransactionType) []string {
	switch t {
	case TypeIncome:
		return incomeCategories
	case TypeExpense:
		return expenseCategories
	}
	return nil
}

// PaymentMethods returns the valid payment method tokens.
func PaymentMethods() []string { return paymentMethods }

func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Validate checks a fully populated transaction in storage form.
// The category must belong to the set matching the transaction type;
// cross-type mixes such as type=income category=food are rejected here
// rather than left to storage enum membership.
func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return Validationf("invalid type %q: must be income or expense", t.Type)
	}
	if strings.TrimSpace(t.Category) == "" {
		return Validationf("category is required")
	}
	if !contains(CategoriesFor(t.Type), t.Category) {
		return Validationf("invalid category %q for type %q", t.Category, t.Type)
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return Validationf("description too long (max 200 characters)")
	}
	if !contains(paymentMethods, t.PaymentMethod) {
		return Validationf("invalid payment method %q", t.PaymentMethod)
	}
	if t.Date.IsZero() {
		return Validationf("date cannot be zero")
	}
	return nil
}

// NormalizeForStorage rewrites the enum-like fields into storage form:
// type, category and payment method become lowercase-hyphenated tokens and
// the description is lowercased. An absent payment method defaults to cash.
func (t *Transaction) NormalizeForStorage() {
	t.Type = TransactionType(ToStorageForm(string(t.Type)))
	t.Category = ToStorageForm(t.Category)
	t.Description = strings.ToLower(strings.TrimSpace(t.Description))
	if strings.TrimSpace(t.PaymentMethod) == "" {
		t.PaymentMethod = DefaultPaymentMethod
	} else {
		t.PaymentMethod = ToStorageForm(t.PaymentMethod)
	}
	for i, tag := range t.Tags {
		t.Tags[i] = strings.TrimSpace(tag)
	}
}

// Validate checks user fields after normalization.
func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return Validationf("name is required")
	}
	if !strings.Contains(u.Email, "@") {
		return Validationf("invalid email address")
	}
	if u.Email != strings.ToLower(u.Email) {
		return Validationf("email must be lowercased before persistence")
	}
	return nil
}
