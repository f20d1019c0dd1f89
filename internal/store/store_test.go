package store_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/airdraw/internal/dag"
	"github.com/kode4food/airdraw/internal/store"
	"github.com/kode4food/airdraw/pkg/api"
)

func workflow(t *testing.T, id, description string) *dag.Workflow {
	t.Helper()
	w, err := dag.NormalizeJSON([]byte(fmt.Sprintf(`{
		"dagConfig": {"dag_id": %q, "description": %q},
		"tasks": [{"id": "n1", "taskName": "t1", "type": "BashOperator"}]
	}`, id, description)))
	require.NoError(t, err)
	return w
}

func fileURL(dir string) string {
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(dir),
		RawQuery: "create_dir=1&metadata=skip",
	}
	return u.String()
}

func newRedisStore(t *testing.T) (*store.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	s := store.NewRedisStoreWithClient(
		redis.NewClient(&redis.Options{Addr: server.Addr()}), "airdraw",
	)
	t.Cleanup(func() { _ = s.Close() })
	return s, server
}

func testStore(t *testing.T, s store.Store) {
	ctx := context.Background()

	t.Run("load_missing", func(t *testing.T) {
		_, err := s.Load(ctx, "absent")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("save_and_load", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, workflow(t, "etl", "first")))

		doc, err := s.Load(ctx, "etl")
		require.NoError(t, err)
		assert.Contains(t, string(doc), `"description": "first"`)
	})

	t.Run("second_save_overwrites", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, workflow(t, "etl", "first")))
		require.NoError(t, s.Save(ctx, workflow(t, "etl", "second")))

		doc, err := s.Load(ctx, "etl")
		require.NoError(t, err)
		assert.Contains(t, string(doc), `"description": "second"`)
		assert.NotContains(t, string(doc), "first")
	})

	t.Run("invalid_id", func(t *testing.T) {
		w := workflow(t, "ok", "")
		w.ID = "../escape"
		assert.ErrorIs(t, s.Save(ctx, w), api.ErrInvalidDAGID)

		_, err := s.Load(ctx, "..")
		assert.ErrorIs(t, err, api.ErrInvalidDAGID)
	})

	t.Run("concurrent_saves", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := range 10 {
			wg.Go(func() {
				desc := fmt.Sprintf("writer-%d", i)
				assert.NoError(t, s.Save(ctx, workflow(t, "busy", desc)))
			})
		}
		wg.Wait()

		doc, err := s.Load(ctx, "busy")
		require.NoError(t, err)
		w, err := dag.NormalizeJSON(doc)
		require.NoError(t, err)
		assert.Equal(t, api.DAGID("busy"), w.ID)
	})
}

func TestBlobStoreMemory(t *testing.T) {
	s, err := store.NewBlobStore(context.Background(), "mem://")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	testStore(t, s)
}

func TestBlobStoreFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".airdraw", "dags")
	s, err := store.Open(context.Background(), fileURL(dir), "airdraw")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	testStore(t, s)

	require.NoError(t, s.Save(context.Background(), workflow(t, "on_disk", "")))
	data, err := os.ReadFile(filepath.Join(dir, "on_disk.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "{\n    \"dag_id\": \"on_disk\",\n")

	_, err = os.Stat(filepath.Join(dir, "on_disk.json.attrs"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRedisStore(t *testing.T) {
	s, server := newRedisStore(t)
	testStore(t, s)

	doc, err := server.Get("airdraw:dag:etl")
	require.NoError(t, err)
	assert.Contains(t, doc, `"dag_id": "etl"`)
}

func TestRedisStoreUnreachable(t *testing.T) {
	s, server := newRedisStore(t)
	server.Close()

	err := s.Save(context.Background(), workflow(t, "etl", ""))
	assert.ErrorIs(t, err, store.ErrStoreFailed)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("redis", func(t *testing.T) {
		server, err := miniredis.Run()
		require.NoError(t, err)
		defer server.Close()

		s, err := store.Open(ctx, "redis://"+server.Addr()+"/0", "p")
		require.NoError(t, err)
		defer func() { _ = s.Close() }()
		assert.IsType(t, &store.RedisStore{}, s)

		require.NoError(t, s.Save(ctx, workflow(t, "etl", "")))
		assert.True(t, server.Exists("p:dag:etl"))
	})

	t.Run("memory", func(t *testing.T) {
		s, err := store.Open(ctx, "mem://", "")
		require.NoError(t, err)
		defer func() { _ = s.Close() }()
		assert.IsType(t, &store.BlobStore{}, s)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := store.Open(ctx, "ftp://example.com/dags", "")
		assert.ErrorIs(t, err, store.ErrUnsupportedURL)

		_, err = store.Open(ctx, "no scheme", "")
		assert.ErrorIs(t, err, store.ErrUnsupportedURL)
	})
}

func TestUnavailable(t *testing.T) {
	reason := errors.New("AIRFLOW_HOME is not set")
	s := &store.Unavailable{Err: reason}

	assert.ErrorIs(t, s.Save(context.Background(), workflow(t, "etl", "")), reason)
	_, err := s.Load(context.Background(), "etl")
	assert.ErrorIs(t, err, reason)
	assert.NoError(t, s.Close())
}
