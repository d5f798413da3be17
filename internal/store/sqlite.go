package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"fintrack/internal/core"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// SQLite is the Store backed by a local sqlite database. It exists for
// single-node deployments that want durability without a search cluster;
// the predicate contract is translated into WHERE clauses.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at dbPath and runs
// the embedded migrations.
func NewSQLite(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// filterConds translates a TransactionFilter into squirrel conditions.
func filterConds(f TransactionFilter) sq.And {
	conds := sq.And{sq.Eq{"owner_id": f.OwnerID}}
	if f.Type != "" {
		conds = append(conds, sq.Eq{"type": f.Type})
	}
	if f.Category != "" {
		conds = append(conds, sq.Eq{"category": f.Category})
	}
	if !f.StartDate.IsZero() {
		conds = append(conds, sq.GtOrEq{"date_ms": f.StartDate.UnixMilli()})
	}
	if !f.EndDate.IsZero() {
		conds = append(conds, sq.LtOrEq{"date_ms": f.EndDate.UnixMilli()})
	}
	return conds
}

var transactionColumns = []string{
	"id", "owner_id", "amount_millis", "type", "category", "description",
	"date_ms", "payment_method", "tags", "created_at", "updated_at",
}

func (s *SQLite) CreateTransaction(ctx context.Context, t *core.Transaction) error {
	tags, err := json.Marshal(t.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	query, args, err := qb.Insert("transactions").
		Columns(transactionColumns...).
		Values(t.ID, t.OwnerID, t.Amount.Millis, string(t.Type), t.Category,
			t.Description, t.Date.UnixMilli(), t.PaymentMethod, string(tags),
			t.CreatedAt.UnixMilli(), t.UpdatedAt.UnixMilli()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *SQLite) scanTransaction(row sq.RowScanner) (*core.Transaction, error) {
	var t core.Transaction
	var typ, tags string
	var dateMs, createdMs, updatedMs int64
	err := row.Scan(&t.ID, &t.OwnerID, &t.Amount.Millis, &typ, &t.Category,
		&t.Description, &dateMs, &t.PaymentMethod, &tags, &createdMs, &updatedMs)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	t.Type = core.TransactionType(typ)
	t.Date = time.UnixMilli(dateMs).UTC()
	t.CreatedAt = time.UnixMilli(createdMs).UTC()
	t.UpdatedAt = time.UnixMilli(updatedMs).UTC()
	if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	return &t, nil
}

func (s *SQLite) GetTransaction(ctx context.Context, id, ownerID string) (*core.Transaction, error) {
	query, args, err := qb.Select(transactionColumns...).
		From("transactions").
		Where(sq.Eq{"id": id, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	return s.scanTransaction(s.db.QueryRowContext(ctx, query, args...))
}

func (s *SQLite) FindTransactions(ctx context.Context, f TransactionFilter, p PageRequest) ([]core.Transaction, int64, error) {
	countQuery, countArgs, err := qb.Select("COUNT(*)").
		From("transactions").
		Where(filterConds(f)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	query, args, err := qb.Select(transactionColumns...).
		From("transactions").
		Where(filterConds(f)).
		OrderBy("date_ms DESC", "id DESC").
		Limit(uint64(p.Limit)).
		Offset(uint64(p.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build select: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	items := []core.Transaction{}
	for rows.Next() {
		t, err := s.scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transactions: %w", err)
	}
	return items, total, nil
}

func (s *SQLite) UpdateTransaction(ctx context.Context, t *core.Transaction) error {
	tags, err := json.Marshal(t.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	query, args, err := qb.Update("transactions").
		Set("amount_millis", t.Amount.Millis).
		Set("type", string(t.Type)).
		Set("category", t.Category).
		Set("description", t.Description).
		Set("date_ms", t.Date.UnixMilli()).
		Set("payment_method", t.PaymentMethod).
		Set("tags", string(tags)).
		Set("updated_at", t.UpdatedAt.UnixMilli()).
		Where(sq.Eq{"id": t.ID, "owner_id": t.OwnerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) DeleteTransaction(ctx context.Context, id, ownerID string) error {
	query, args, err := qb.Delete("transactions").
		Where(sq.Eq{"id": id, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) DeleteOwnerTransactions(ctx context.Context, ownerID string) (int64, error) {
	query, args, err := qb.Delete("transactions").
		Where(sq.Eq{"owner_id": ownerID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete owner transactions: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLite) SummarizeTransactions(ctx context.Context, f TransactionFilter) ([]core.TypeAggregate, error) {
	query, args, err := qb.Select("type", "SUM(amount_millis)", "COUNT(*)").
		From("transactions").
		Where(filterConds(f)).
		GroupBy("type").
		OrderBy("type").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build summary: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	var groups []core.TypeAggregate
	for rows.Next() {
		var g core.TypeAggregate
		var typ string
		if err := rows.Scan(&typ, &g.TotalMillis, &g.Count); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		g.Type = core.TransactionType(typ)
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary rows: %w", err)
	}
	return groups, nil
}

var userColumns = []string{"id", "name", "email", "password_hash", "created_at", "updated_at"}

func (s *SQLite) CreateUser(ctx context.Context, u *core.User) error {
	if existing, err := s.GetUserByEmail(ctx, u.Email); err != nil && err != ErrNotFound {
		return err
	} else if existing != nil {
		return ErrEmailTaken
	}
	query, args, err := qb.Insert("users").
		Columns(userColumns...).
		Values(u.ID, u.Name, u.Email, u.PasswordHash,
			u.CreatedAt.UnixMilli(), u.UpdatedAt.UnixMilli()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLite) scanUser(row sq.RowScanner) (*core.User, error) {
	var u core.User
	var createdMs, updatedMs int64
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &createdMs, &updatedMs)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.CreatedAt = time.UnixMilli(createdMs).UTC()
	u.UpdatedAt = time.UnixMilli(updatedMs).UTC()
	return &u, nil
}

func (s *SQLite) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	query, args, err := qb.Select(userColumns...).
		From("users").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	return s.scanUser(s.db.QueryRowContext(ctx, query, args...))
}

func (s *SQLite) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	query, args, err := qb.Select(userColumns...).
		From("users").
		Where(sq.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	return s.scanUser(s.db.QueryRowContext(ctx, query, args...))
}

func (s *SQLite) UpdateUser(ctx context.Context, u *core.User) error {
	if other, err := s.GetUserByEmail(ctx, u.Email); err != nil && err != ErrNotFound {
		return err
	} else if other != nil && other.ID != u.ID {
		return ErrEmailTaken
	}
	query, args, err := qb.Update("users").
		Set("name", u.Name).
		Set("email", u.Email).
		Set("password_hash", u.PasswordHash).
		Set("updated_at", u.UpdatedAt.UnixMilli()).
		Where(sq.Eq{"id": u.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) DeleteUser(ctx context.Context, id string) error {
	query, args, err := qb.Delete("users").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
