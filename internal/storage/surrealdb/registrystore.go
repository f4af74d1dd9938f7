package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"

	"github.com/jyang/sectorwatch/internal/common"
	"github.com/jyang/sectorwatch/internal/interfaces"
	"github.com/jyang/sectorwatch/internal/models"
)

// RegistryStore implements interfaces.SymbolRegistryStore using SurrealDB.
type RegistryStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewRegistryStore creates a new RegistryStore.
func NewRegistryStore(db *surrealdb.DB, logger *common.Logger) *RegistryStore {
	return &RegistryStore{db: db, logger: logger}
}

// ReplaceAll swaps the registry contents wholesale. Delete and insert run
// in one request so readers never see a half-replaced registry; stale
// entries for delisted instruments drop out with the old contents.
func (s *RegistryStore) ReplaceAll(ctx context.Context, entries []models.SymbolInfo) error {
	now := time.Now()
	for i := range entries {
		entries[i].LastUpdated = now
	}

	sql := "DELETE symbol_registry; INSERT INTO symbol_registry $entries;"
	vars := map[string]any{"entries": entries}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[any](ctx, s.db, sql, vars)
		if err == nil {
			s.logger.Debug().Int("entries", len(entries)).Msg("Symbol registry replaced")
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to replace symbol registry after retries: %w", lastErr)
}

func (s *RegistryStore) GetByName(ctx context.Context, name string) (*models.SymbolInfo, error) {
	sql := "SELECT * FROM symbol_registry WHERE name = $name LIMIT 1"
	vars := map[string]any{"name": name}

	results, err := surrealdb.Query[[]models.SymbolInfo](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to look up symbol by name: %w", err)
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return &(*results)[0].Result[0], nil
	}
	return nil, nil
}

func (s *RegistryStore) Search(ctx context.Context, nameFragment string, limit int) ([]models.SymbolInfo, error) {
	if limit <= 0 {
		limit = 10
	}

	sql := fmt.Sprintf("SELECT * FROM symbol_registry WHERE string::contains(name, $fragment) ORDER BY name ASC LIMIT %d", limit)
	vars := map[string]any{"fragment": nameFragment}

	results, err := surrealdb.Query[[]models.SymbolInfo](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to search symbol registry: %w", err)
	}

	if results != nil && len(*results) > 0 {
		return (*results)[0].Result, nil
	}
	return nil, nil
}

func (s *RegistryStore) Count(ctx context.Context) (int, error) {
	type countRow struct {
		Count int `json:"count"`
	}

	sql := "SELECT count() FROM symbol_registry GROUP ALL"
	results, err := surrealdb.Query[[]countRow](ctx, s.db, sql, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count symbol registry: %w", err)
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return (*results)[0].Result[0].Count, nil
	}
	return 0, nil
}

// Compile-time check
var _ interfaces.SymbolRegistryStore = (*RegistryStore)(nil)
