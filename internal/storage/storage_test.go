package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fasion-image-generator-project/FashionFusion/internal/domain"
	"github.com/fasion-image-generator-project/FashionFusion/internal/infra"
	"github.com/fasion-image-generator-project/FashionFusion/internal/sqlinline"
)

// fakeRedis answers the subset of commands RedisStore issues.
type fakeRedis struct {
	data   map[string]string
	setErr error
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

// stubExecutor emulates the studio_kv table.
type stubExecutor struct {
	rows map[string][]byte
	err  error
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	if s.err != nil {
		return pgconn.CommandTag{}, s.err
	}
	switch query {
	case sqlinline.QEnsureKVTable:
	case sqlinline.QUpsertKV:
		s.rows[args[0].(string)+"/"+args[1].(string)] = args[2].([]byte)
	case sqlinline.QDeleteKV:
		delete(s.rows, args[0].(string)+"/"+args[1].(string))
	default:
		return pgconn.CommandTag{}, errors.New("unexpected query")
	}
	return pgconn.NewCommandTag("OK"), nil
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	if query != sqlinline.QSelectKV {
		return stubRow{err: errors.New("unexpected query")}
	}
	v, ok := s.rows[args[0].(string)+"/"+args[1].(string)]
	if !ok {
		return stubRow{err: pgx.ErrNoRows}
	}
	return stubRow{value: v}
}

func (s *stubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

type stubRow struct {
	value []byte
	err   error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.value
	return nil
}

func backends(t *testing.T) map[string]KV {
	t.Helper()
	file, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return map[string]KV{
		"file":     file,
		"memory":   NewMemoryStore(),
		"redis":    NewRedisStore(&fakeRedis{data: map[string]string{}}, ""),
		"postgres": NewPostgresStore(&stubExecutor{rows: map[string][]byte{}}, ""),
	}
}

func TestBackendsRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := kv.Get(ctx, KeyTheme)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, kv.Set(ctx, KeyTheme, []byte("dark")))
			require.NoError(t, kv.Set(ctx, KeyTheme, []byte("light")))
			got, err := kv.Get(ctx, KeyTheme)
			require.NoError(t, err)
			assert.Equal(t, "light", string(got))

			require.NoError(t, kv.Delete(ctx, KeyTheme))
			require.NoError(t, kv.Delete(ctx, KeyTheme))
			_, err = kv.Get(ctx, KeyTheme)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(filepath.Join(dir, "data"))
	require.NoError(t, err)

	assert.Error(t, store.Set(context.Background(), "../escape", []byte("x")))
	assert.Error(t, store.Set(context.Background(), "  ", []byte("x")))

	require.NoError(t, store.Set(context.Background(), "/nested/../theme", []byte("dark")))
	data, err := os.ReadFile(filepath.Join(dir, "data", "theme.json"))
	require.NoError(t, err)
	assert.Equal(t, "dark", string(data))
}

func TestRedisStorePrefixesKeys(t *testing.T) {
	fake := &fakeRedis{data: map[string]string{}}
	store := NewRedisStore(fake, "")
	require.NoError(t, store.Set(context.Background(), KeyHistory, []byte("[]")))
	assert.Contains(t, fake.data, DefaultRedisPrefix+KeyHistory)

	fake.setErr = errors.New("READONLY")
	err := store.Set(context.Background(), KeyHistory, []byte("[]"))
	assert.ErrorContains(t, err, "READONLY")
}

func TestPostgresStoreThroughRunner(t *testing.T) {
	exec := &stubExecutor{rows: map[string][]byte{}}
	store := NewPostgresStore(exec, "tenant")
	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, store.Set(context.Background(), KeyTheme, []byte("dark")))
	assert.Contains(t, exec.rows, "tenant/"+KeyTheme)

	exec.err = errors.New("connection reset")
	assert.ErrorContains(t, store.Set(context.Background(), KeyTheme, []byte("x")), "connection reset")
}

func TestOpenMemoryDriver(t *testing.T) {
	kv, closeFn, err := Open(context.Background(), &infra.Config{StoreDriver: infra.StoreDriverMemory}, nil)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &MemoryStore{}, kv)

	_, _, err = Open(context.Background(), &infra.Config{StoreDriver: "cassandra"}, nil)
	assert.Error(t, err)
}

func TestAdapterHistory(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryStore()
	a := NewAdapter(kv)

	entries, err := a.LoadHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	entry := domain.NewHistoryEntry(now, "linen shirt", "cycle-gan", domain.ParseImagePayload("aW5p"), domain.ParseImagePayload("/img/final.png"))
	require.NoError(t, a.SaveHistory(ctx, []domain.HistoryEntry{entry}))

	raw, err := kv.Get(ctx, KeyHistory)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1709285400000,"prompt":"linen shirt","model":"cycle-gan",
		"initialImage":"data:image/png;base64,aW5p","finalImage":"/img/final.png",
		"timestamp":"2024. 3. 1. 09:30:00"}]`, string(raw))

	loaded, err := a.LoadHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.HistoryEntry{entry}, loaded)

	require.NoError(t, kv.Set(ctx, KeyHistory, []byte("{not json")))
	_, err = a.LoadHistory(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestAdapterThemeAndPresets(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter(NewMemoryStore())

	theme, err := a.LoadTheme(ctx)
	require.NoError(t, err)
	assert.Empty(t, theme)
	require.NoError(t, a.SaveTheme(ctx, "dark"))
	theme, err = a.LoadTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dark", theme)

	presets, err := a.LoadPresets(ctx)
	require.NoError(t, err)
	assert.Empty(t, presets)
	mine := map[string]domain.StyleParams{"Mine": {Truncation: 0.2, Noise: 0.3, Strength: 0.4}}
	require.NoError(t, a.SavePresets(ctx, mine))
	presets, err = a.LoadPresets(ctx)
	require.NoError(t, err)
	assert.Equal(t, mine, presets)
}
