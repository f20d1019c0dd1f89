package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kode4food/airdraw/internal/dag"
	"github.com/kode4food/airdraw/internal/util"
	"github.com/kode4food/airdraw/pkg/api"
)

// RedisStore keeps each workflow document as a string value under
// <prefix>:dag:<dag_id>
type RedisStore struct {
	client *redis.Client
	locks  *util.KeyedMutex[api.DAGID]
	prefix string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to the Redis server at redisURL
func NewRedisStore(redisURL, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedURL, err)
	}
	return NewRedisStoreWithClient(redis.NewClient(opts), prefix), nil
}

// NewRedisStoreWithClient wraps an existing client. The store takes
// ownership of the client and closes it on Close
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		locks:  util.NewKeyedMutex[api.DAGID](),
		prefix: prefix,
	}
}

// Save writes the workflow document, replacing any earlier document with
// the same id
func (s *RedisStore) Save(ctx context.Context, w *dag.Workflow) error {
	doc, err := Encode(w)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(w.ID)
	defer unlock()

	if err := s.client.Set(ctx, s.keyFor(w.ID), doc, 0).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}
	return nil
}

// Load returns the stored document for id
func (s *RedisStore) Load(ctx context.Context, id api.DAGID) ([]byte, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.keyFor(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}
	return data, nil
}

// Close closes the Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) keyFor(id api.DAGID) string {
	if s.prefix == "" {
		return "dag:" + string(id)
	}
	return s.prefix + ":dag:" + string(id)
}
