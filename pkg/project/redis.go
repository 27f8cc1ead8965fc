package project

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/bteditor/pkg/errors"
)

// DefaultRedisPrefix is prepended to every key a RedisStore writes.
const DefaultRedisPrefix = "bteditor:project:"

// RedisStore stores each project as a JSON string and keeps the names in a
// sorted set scored by save time.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

// WithTTL expires saved projects after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = ttl }
}

// NewRedisStore connects to the Redis server at addr.
func NewRedisStore(addr, password string, db int, opts ...RedisOption) *RedisStore {
	return NewRedisStoreFromClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: DefaultRedisPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(name string) string { return s.prefix + name }

func (s *RedisStore) indexKey() string { return s.prefix + "index" }

func (s *RedisStore) Save(ctx context.Context, p *Project) (err error) {
	defer track(ctx, "redis", "save", time.Now(), &err)
	if err := errors.ValidateProjectName(p.Name); err != nil {
		return err
	}

	data, err := Marshal(p)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(p.Name), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), redis.Z{
		Score:  float64(p.SavedAt.Unix()),
		Member: p.Name,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save project to redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, name string) (p *Project, err error) {
	defer track(ctx, "redis", "load", time.Now(), &err)
	if err := errors.ValidateProjectName(name); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load project from redis: %w", err)
	}
	return Unmarshal(data)
}

func (s *RedisStore) Delete(ctx context.Context, name string) (err error) {
	defer track(ctx, "redis", "delete", time.Now(), &err)
	if err := errors.ValidateProjectName(name); err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(name))
	pipe.ZRem(ctx, s.indexKey(), name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete project from redis: %w", err)
	}
	return nil
}

// List returns the indexed names whose key still exists, dropping index
// entries of projects that expired.
func (s *RedisStore) List(ctx context.Context) (names []string, err error) {
	defer track(ctx, "redis", "list", time.Now(), &err)

	indexed, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	var stale []any
	for _, name := range indexed {
		n, err := s.client.Exists(ctx, s.key(name)).Result()
		if err != nil {
			return nil, fmt.Errorf("check project %s: %w", name, err)
		}
		if n == 0 {
			stale = append(stale, name)
			continue
		}
		names = append(names, name)
	}
	if len(stale) > 0 {
		if err := s.client.ZRem(ctx, s.indexKey(), stale...).Err(); err != nil {
			return nil, fmt.Errorf("prune project index: %w", err)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
