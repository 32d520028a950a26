// Package cache holds the Redis-backed read cache for products.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Connect opens a Redis client and verifies it with PING.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return rdb, nil
}

// Store is a JSON object store with a fixed key prefix and TTL.
type Store struct {
	rdb    *redis.Client
	locker *redislock.Client
	prefix string
	ttl    time.Duration
	log    *zap.Logger
}

// NewStore wraps rdb. Keys are written as prefix + key.
func NewStore(rdb *redis.Client, prefix string, ttl time.Duration, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		rdb:    rdb,
		locker: redislock.New(rdb),
		prefix: prefix,
		ttl:    ttl,
		log:    log,
	}
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

// GetObject decodes the value at key into dest. It reports false on a miss.
func (s *Store) GetObject(ctx context.Context, key string, dest any) (bool, error) {
	val, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) genKey(k string) string {
	return s.prefix + "gen:" + k
}

// Generation returns the invalidation counter for key. A key never invalidated is at 0.
func (s *Store) Generation(ctx context.Context, key string) (int64, error) {
	n, err := s.rdb.Get(ctx, s.genKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Invalidate deletes key and bumps its generation so fills started earlier are discarded.
func (s *Store) Invalidate(ctx context.Context, key string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, s.genKey(key))
		pipe.Del(ctx, s.key(key))
		return nil
	})
	return err
}

// SetObjectAt stores obj under key only while the key's generation still equals gen.
// It reports false when an invalidation got there first.
func (s *Store) SetObjectAt(ctx context.Context, key string, obj any, gen int64) (bool, error) {
	b, err := json.Marshal(obj)
	if err != nil {
		return false, err
	}
	stored := false
	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, s.genKey(key)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key(key), b, s.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, s.genKey(key))
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return stored, err
}

// Lock obtains a short-lived distributed lock. A lock held elsewhere yields redislock.ErrNotObtained.
func (s *Store) Lock(ctx context.Context, key string, ttl time.Duration) (*redislock.Lock, error) {
	return s.locker.Obtain(ctx, s.key("lock:"+key), ttl, nil)
}
