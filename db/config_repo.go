package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tfkr-ae/pinpoint/domain"
)

var _ domain.ConfigRepository = (*Repository)(nil)

// GetConfig implements the domain.ConfigRepository interface.
// It retrieves the configuration for a call key from the 'log_configs'
// table, where it is stored as a JSON string, and unmarshals it into a
// raw mapping. A missing key returns nil with a nil error, which the
// engine treats as "no configuration" rather than a failure.
func (repo *Repository) GetConfig(key string) (map[string]any, error) {
	var configString string
	query := `SELECT config FROM log_configs WHERE key = ?`
	err := repo.dbConn.Get(&configString, query, key)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting config for key %q: %w", key, err)
	}

	var raw map[string]any
	err = json.Unmarshal([]byte(configString), &raw)

	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config JSON for key %q: %w", key, err)
	}

	return raw, nil
}

// SetConfig implements the domain.ConfigRepository interface.
// It marshals the raw mapping into a JSON string and inserts or
// replaces the row for the call key.
func (repo *Repository) SetConfig(key string, config map[string]any) error {
	marshalledConfig, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config for key %q: %w", key, err)
	}

	query := `INSERT INTO log_configs (key, config) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET config = excluded.config, updated_at = CURRENT_TIMESTAMP`
	_, err = repo.dbConn.Exec(query, key, marshalledConfig)

	if err != nil {
		return fmt.Errorf("failed to upsert config for key %q: %w", key, err)
	}

	return nil
}

// DeleteConfig implements the domain.ConfigRepository interface.
func (repo *Repository) DeleteConfig(key string) error {
	query := `DELETE FROM log_configs WHERE key = ?`
	_, err := repo.dbConn.Exec(query, key)

	if err != nil {
		return fmt.Errorf("failed to delete config for key %q: %w", key, err)
	}

	return nil
}

// ListKeys implements the domain.ConfigRepository interface.
func (repo *Repository) ListKeys() ([]string, error) {
	var keys []string
	query := `SELECT key FROM log_configs ORDER BY key`
	err := repo.dbConn.Select(&keys, query)

	if err != nil {
		return nil, fmt.Errorf("listing config keys: %w", err)
	}

	return keys, nil
}

// Fetcher adapts the repository into the engine's fetch collaborator
// shape. The context is accepted for interface symmetry; the underlying
// sqlite read does not block on I/O long enough to warrant plumbing it
// further.
func (repo *Repository) Fetcher() func(ctx context.Context, key string) (map[string]any, error) {
	return func(ctx context.Context, key string) (map[string]any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return repo.GetConfig(key)
	}
}
