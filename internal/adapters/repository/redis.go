package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/okian/touchline/pkg/metrics"
)

const pingTimeout = 5 * time.Second

// RedisStore keeps matches in Redis: one string key per match plus a sorted
// set indexing ids by parse time.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to redisURL and checks the connection.
func NewRedisStore(redisURL string, opts ...Option) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisStoreFromClient(client, opts...), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client redis.UniversalClient, opts ...Option) *RedisStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisStore{client: client, ttl: o.ttl, prefix: o.keyPrefix}
}

func (s *RedisStore) matchKey(id string) string { return s.prefix + "match:" + id }
func (s *RedisStore) indexKey() string          { return s.prefix + "matches" }

func (s *RedisStore) Put(ctx context.Context, e Entry) error {
	if err := e.validate(); err != nil {
		metrics.RecordStoreError("put")
		return err
	}
	data, err := sonic.Marshal(e)
	if err != nil {
		metrics.RecordStoreError("put")
		return fmt.Errorf("failed to marshal match: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.matchKey(e.ID), data, s.ttl)
		p.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(e.ParsedAt.UnixNano()), Member: e.ID})
		return nil
	})
	if err != nil {
		metrics.RecordStoreError("put")
		return fmt.Errorf("failed to store match: %w", err)
	}
	s.reportCount(ctx)
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (Entry, error) {
	raw, err := s.client.Get(ctx, s.matchKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError("get")
		return Entry{}, fmt.Errorf("failed to get match: %w", err)
	}
	var e Entry
	if err := sonic.Unmarshal(raw, &e); err != nil {
		metrics.RecordStoreError("get")
		return Entry{}, fmt.Errorf("failed to unmarshal match: %w", err)
	}
	return e, nil
}

// List returns the matches in index order and prunes index members whose
// match key expired.
func (s *RedisStore) List(ctx context.Context) ([]Entry, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		metrics.RecordStoreError("list")
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	if len(ids) == 0 {
		return []Entry{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.matchKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		metrics.RecordStoreError("list")
		return nil, fmt.Errorf("failed to load matches: %w", err)
	}

	out := make([]Entry, 0, len(values))
	var stale []any
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var e Entry
		if err := sonic.UnmarshalString(str, &e); err != nil {
			metrics.RecordStoreError("list")
			return nil, fmt.Errorf("failed to unmarshal match %s: %w", ids[i], err)
		}
		out = append(out, e)
	}
	if len(stale) > 0 {
		if err := s.client.ZRem(ctx, s.indexKey(), stale...).Err(); err != nil {
			metrics.RecordStoreError("list")
		}
	}
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		del = p.Del(ctx, s.matchKey(id))
		p.ZRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		metrics.RecordStoreError("delete")
		return fmt.Errorf("failed to delete match: %w", err)
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	s.reportCount(ctx)
	return nil
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, s.indexKey()).Result()
	if err != nil {
		metrics.RecordStoreError("count")
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return int(n), nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) reportCount(ctx context.Context) {
	if n, err := s.Count(ctx); err == nil {
		metrics.UpdateMatchesStored(n)
	}
}
