// Package store defines the document-store contract the services run
// against, plus the backends that implement it (memory, elasticsearch,
// sqlite). The predicate model mirrors a document database: absent filter
// fields mean "no constraint", and every transaction predicate carries the
// owner id as its authorization boundary.
package store

import (
	"context"
	"errors"
	"time"

	"fintrack/internal/core"
)

var (
	// ErrNotFound covers both a missing record and a record owned by a
	// different user. Callers must not be able to tell the two apart.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken is returned when a user insert or email change would
	// collide with an existing account.
	ErrEmailTaken = errors.New("email already in use")
)

// TransactionFilter is the predicate for transaction queries. OwnerID is
// mandatory; the remaining fields are constraints only when non-zero.
// Type and Category must already be in storage form.
type TransactionFilter struct {
	OwnerID   string
	Type      string
	Category  string
	StartDate time.Time // inclusive lower bound on Date
	EndDate   time.Time // inclusive upper bound on Date
}

// Matches reports whether a transaction satisfies the predicate. Backends
// without native query support (the memory store) evaluate it directly;
// the others translate the same semantics into their query language.
func (f TransactionFilter) Matches(t *core.Transaction) bool {
	if t.OwnerID != f.OwnerID {
		return false
	}
	if f.Type != "" && string(t.Type) != f.Type {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if !f.StartDate.IsZero() && t.Date.Before(f.StartDate) {
		return false
	}
	if !f.EndDate.IsZero() && t.Date.After(f.EndDate) {
		return false
	}
	return true
}

// PageRequest selects one page of a date-descending result set.
// Both fields are expected to be >= 1; the services clamp them.
type PageRequest struct {
	Page  int
	Limit int
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TransactionStore is the per-collection contract for transactions.
// Every method that addresses a single record is scoped by (id, ownerID)
// and returns ErrNotFound when no record matches both.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t *core.Transaction) error
	GetTransaction(ctx context.Context, id, ownerID string) (*core.Transaction, error)
	// FindTransactions returns one page ordered by date descending plus
	// the total count of records matching the filter.
	FindTransactions(ctx context.Context, f TransactionFilter, p PageRequest) ([]core.Transaction, int64, error)
	// UpdateTransaction replaces the stored record matching
	// (t.ID, t.OwnerID) with t.
	UpdateTransaction(ctx context.Context, t *core.Transaction) error
	DeleteTransaction(ctx context.Context, id, ownerID string) error
	// DeleteOwnerTransactions removes every transaction of one owner and
	// returns the number deleted. Used by account deletion.
	DeleteOwnerTransactions(ctx context.Context, ownerID string) (int64, error)
	// SummarizeTransactions groups matching records by type, summing
	// amounts and counting records per group.
	SummarizeTransactions(ctx context.Context, f TransactionFilter) ([]core.TypeAggregate, error)
}

// UserStore is the per-collection contract for users.
type UserStore interface {
	CreateUser(ctx context.Context, u *core.User) error
	GetUserByID(ctx context.Context, id string) (*core.User, error)
	GetUserByEmail(ctx context.Context, email string) (*core.User, error)
	UpdateUser(ctx context.Context, u *core.User) error
	DeleteUser(ctx context.Context, id string) error
}

// Store is the full backend surface handed to the services. It is
// explicitly constructed at process start and closed at shutdown; nothing
// references it as an ambient singleton.
type Store interface {
	TransactionStore
	UserStore
	Close() error
}
