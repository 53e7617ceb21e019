package infra

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPool struct {
	sql  string
	args []any
}

func (p *recordingPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.sql, p.args = sql, args
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (p *recordingPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	p.sql, p.args = sql, args
	return errorRow{err: pgx.ErrNoRows}
}

func (p *recordingPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func TestSQLRunnerStripsMarker(t *testing.T) {
	pool := &recordingPool{}
	runner := NewSQLRunner(pool, zerolog.Nop())

	_, err := runner.Exec(context.Background(), "--sql 0f6a3f0e-3a55-4a43-9d42-5c1b8f5f4a10\nselect 1", 7)
	require.NoError(t, err)
	assert.Equal(t, "select 1", pool.sql)
	assert.Equal(t, []any{7}, pool.args)
}

func TestSQLRunnerRejectsUnmarkedQuery(t *testing.T) {
	pool := &recordingPool{}
	runner := NewSQLRunner(pool, zerolog.Nop())

	_, err := runner.Exec(context.Background(), "select 1")
	assert.ErrorIs(t, err, ErrSQLMarker)
	assert.Empty(t, pool.sql)

	var dest string
	err = runner.QueryRow(context.Background(), "select 1").Scan(&dest)
	assert.ErrorIs(t, err, ErrSQLMarker)
}

func TestSQLRunnerPassesNoRows(t *testing.T) {
	runner := NewSQLRunner(&recordingPool{}, zerolog.Nop())
	var dest string
	err := runner.QueryRow(context.Background(), "--sql 0f6a3f0e-3a55-4a43-9d42-5c1b8f5f4a10\nselect 1").Scan(&dest)
	assert.True(t, IsNoRows(err))
}

func TestSplitMarkerKeepsMultilineStatement(t *testing.T) {
	marker, stmt, err := splitMarker("\n  --sql 0f6a3f0e-3a55-4a43-9d42-5c1b8f5f4a10\nSELECT value\nFROM studio_kv\n")
	require.NoError(t, err)
	assert.Equal(t, "0f6a3f0e-3a55-4a43-9d42-5c1b8f5f4a10", marker)
	assert.Equal(t, "SELECT value\nFROM studio_kv", stmt)

	_, _, err = splitMarker("--sql not-a-uuid\nSELECT 1")
	assert.ErrorIs(t, err, ErrSQLMarker)
}
