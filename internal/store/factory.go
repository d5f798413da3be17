package store

import (
	"context"
	"fmt"
	"log/slog"
)

// BackendType selects which Store implementation backs the API.
type BackendType string

const (
	MemoryBackend  BackendType = "memory"
	ElasticBackend BackendType = "elastic"
	SQLiteBackend  BackendType = "sqlite"
)

func (bt BackendType) String() string { return string(bt) }

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, ElasticBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// BackendTypeStrings returns the valid backend names for error messages.
func BackendTypeStrings() []string {
	return []string{MemoryBackend.String(), ElasticBackend.String(), SQLiteBackend.String()}
}

// BackendConfig holds what each backend needs to come up.
type BackendConfig struct {
	Type BackendType

	// sqlite
	SQLiteDBPath string

	// elastic
	ElasticAddresses []string
}

// NewStore constructs the configured backend. The returned Store is owned
// by the caller: opened here, closed at shutdown.
func NewStore(ctx context.Context, cfg BackendConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Type {
	case MemoryBackend:
		logger.Info("Initialized memory backend")
		return NewMemory(), nil
	case ElasticBackend:
		st, err := NewElastic(ctx, cfg.ElasticAddresses...)
		if err != nil {
			return nil, fmt.Errorf("initialize elasticsearch backend: %w", err)
		}
		logger.Info("Initialized elasticsearch backend", "addresses", cfg.ElasticAddresses)
		return st, nil
	case SQLiteBackend:
		if cfg.SQLiteDBPath == "" {
			return nil, fmt.Errorf("sqlite backend requires a database path")
		}
		st, err := NewSQLite(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		logger.Info("Initialized sqlite backend", "db_path", cfg.SQLiteDBPath)
		return st, nil
	default:
		return nil, fmt.Errorf("invalid backend type %q: must be one of %v", cfg.Type, BackendTypeStrings())
	}
}
