package storage

import (
	"context"
	"fmt"

	"github.com/fasion-image-generator-project/FashionFusion/internal/infra"
	"github.com/fasion-image-generator-project/FashionFusion/internal/sqlinline"
)

// DefaultNamespace separates studio rows from anything else sharing the table.
const DefaultNamespace = "default"

// PostgresStore keeps values in the studio_kv table through the marker-checked
// SQL runner.
type PostgresStore struct {
	sql       infra.SQLExecutor
	namespace string
}

func NewPostgresStore(sql infra.SQLExecutor, namespace string) *PostgresStore {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &PostgresStore{sql: sql, namespace: namespace}
}

// EnsureSchema creates the backing table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.sql.Exec(ctx, sqlinline.QEnsureKVTable); err != nil {
		return fmt.Errorf("storage: ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.sql.QueryRow(ctx, sqlinline.QSelectKV, s.namespace, key).Scan(&value)
	if infra.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: select %s: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.sql.Exec(ctx, sqlinline.QUpsertKV, s.namespace, key, value); err != nil {
		return fmt.Errorf("storage: upsert %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.sql.Exec(ctx, sqlinline.QDeleteKV, s.namespace, key); err != nil {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}

var _ KV = (*PostgresStore)(nil)
