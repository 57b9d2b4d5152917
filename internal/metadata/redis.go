package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "vlmbench:meta"

// RedisStore keeps each record as a JSON string under <prefix>:<id>:<kind>.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	URL       string
	Password  string
	KeyPrefix string
}

// OpenRedis connects to Redis and verifies the connection.
func OpenRedis(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisStore(rdb, cfg.KeyPrefix), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

// GetSkip loads the skip marker for id.
func (s *RedisStore) GetSkip(ctx context.Context, id string) (SkipMarker, bool, error) {
	var marker SkipMarker
	found, err := s.load(ctx, KindSkip, id, &marker)
	return marker, found, err
}

// GetLabel loads the label record for id.
func (s *RedisStore) GetLabel(ctx context.Context, id string) (LabelRecord, bool, error) {
	var label LabelRecord
	found, err := s.load(ctx, KindLabel, id, &label)
	return label, found, err
}

// GetInfo loads the info record for id.
func (s *RedisStore) GetInfo(ctx context.Context, id string) (InfoRecord, bool, error) {
	var info InfoRecord
	found, err := s.load(ctx, KindInfo, id, &info)
	return info, found, err
}

// Put stores one record.
func (s *RedisStore) Put(ctx context.Context, kind Kind, id string, record any) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", kind, id, err)
	}
	if err := s.rdb.Set(ctx, s.key(kind, id), body, 0).Err(); err != nil {
		return storeError(kind, id, err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) key(kind Kind, id string) string {
	return redisKey(s.prefix, kind, id)
}

func redisKey(prefix string, kind Kind, id string) string {
	return fmt.Sprintf("%s:%s:%s", prefix, id, kind)
}

func (s *RedisStore) load(ctx context.Context, kind Kind, id string, dest any) (bool, error) {
	body, err := s.rdb.Get(ctx, s.key(kind, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, storeError(kind, id, err)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return false, storeError(kind, id, fmt.Errorf("decode: %w", err))
	}
	return true, nil
}
