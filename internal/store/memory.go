package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"fintrack/internal/core"
)

// Memory is an in-process Store. It is the default backend for local
// development and the test double for the service and handler tests; it
// implements the exact predicate, ordering and aggregation semantics the
// other backends translate into their query languages.
type Memory struct {
	mu           sync.RWMutex
	transactions map[string]core.Transaction
	users        map[string]core.User
	emailIndex   map[string]string // lowercased email -> user id
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		transactions: make(map[string]core.Transaction),
		users:        make(map[string]core.User),
		emailIndex:   make(map[string]string),
	}
}

func (m *Memory) Close() error { return nil }

func (m *Memory) CreateTransaction(ctx context.Context, t *core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[t.ID] = cloneTransaction(t)
	return nil
}

func (m *Memory) GetTransaction(ctx context.Context, id, ownerID string) (*core.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.transactions[id]
	if !ok || t.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	out := cloneTransaction(&t)
	return &out, nil
}

func (m *Memory) FindTransactions(ctx context.Context, f TransactionFilter, p PageRequest) ([]core.Transaction, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []core.Transaction
	for _, t := range m.transactions {
		if f.Matches(&t) {
			matched = append(matched, cloneTransaction(&t))
		}
	}
	// Date descending; id as tiebreak so pages are deterministic.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		return matched[i].ID < matched[j].ID
	})

	total := int64(len(matched))
	start := p.Offset()
	if start >= len(matched) {
		return []core.Transaction{}, total, nil
	}
	end := start + p.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *Memory) UpdateTransaction(ctx context.Context, t *core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.transactions[t.ID]
	if !ok || existing.OwnerID != t.OwnerID {
		return ErrNotFound
	}
	m.transactions[t.ID] = cloneTransaction(t)
	return nil
}

func (m *Memory) DeleteTransaction(ctx context.Context, id, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok || t.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(m.transactions, id)
	return nil
}

func (m *Memory) DeleteOwnerTransactions(ctx context.Context, ownerID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, t := range m.transactions {
		if t.OwnerID == ownerID {
			delete(m.transactions, id)
			n++
		}
	}
	return n, nil
}

func (m *Memory) SummarizeTransactions(ctx context.Context, f TransactionFilter) ([]core.TypeAggregate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byType := map[core.TransactionType]*core.TypeAggregate{}
	for _, t := range m.transactions {
		if !f.Matches(&t) {
			continue
		}
		agg, ok := byType[t.Type]
		if !ok {
			agg = &core.TypeAggregate{Type: t.Type}
			byType[t.Type] = agg
		}
		agg.TotalMillis += t.Amount.Millis
		agg.Count++
	}
	groups := make([]core.TypeAggregate, 0, len(byType))
	for _, agg := range byType {
		groups = append(groups, *agg)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Type < groups[j].Type })
	return groups, nil
}

func (m *Memory) CreateUser(ctx context.Context, u *core.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.emailIndex[strings.ToLower(u.Email)]; taken {
		return ErrEmailTaken
	}
	m.users[u.ID] = *u
	m.emailIndex[strings.ToLower(u.Email)] = u.ID
	return nil
}

func (m *Memory) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := u
	return &out, nil
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.emailIndex[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	u := m.users[id]
	return &u, nil
}

func (m *Memory) UpdateUser(ctx context.Context, u *core.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	if other, taken := m.emailIndex[strings.ToLower(u.Email)]; taken && other != u.ID {
		return ErrEmailTaken
	}
	delete(m.emailIndex, strings.ToLower(existing.Email))
	m.users[u.ID] = *u
	m.emailIndex[strings.ToLower(u.Email)] = u.ID
	return nil
}

func (m *Memory) DeleteUser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.emailIndex, strings.ToLower(u.Email))
	delete(m.users, id)
	return nil
}

func cloneTransaction(t *core.Transaction) core.Transaction {
	out := *t
	if t.Tags != nil {
		out.Tags = append([]string(nil), t.Tags...)
	}
	return out
}
