package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces all keys written by RedisStore.
const DefaultRedisPrefix = "panetree:"

// RedisStore keeps records in Redis so several server instances can share
// workspaces. Each record lives under its own key; a set indexes the names.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore connects to the Redis server at addr and verifies the
// connection with a PING.
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return NewRedisStoreFromClient(client, DefaultRedisPrefix), nil
}

// NewRedisStoreFromClient wraps an existing client. The store takes
// ownership of the client and closes it on Close.
func NewRedisStoreFromClient(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(name string) string { return s.prefix + "workspace:" + name }
func (s *RedisStore) indexKey() string       { return s.prefix + "workspaces" }

func (s *RedisStore) Get(ctx context.Context, name string) (*Record, error) {
	var rec Record
	err := s.client.Get(ctx, s.key(name)).Scan(&rec)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", name, err)
	}
	return &rec, nil
}

// Put writes rec inside a WATCH transaction on the record key, so two
// writers racing on one workspace cannot both succeed.
func (s *RedisStore) Put(ctx context.Context, rec *Record) error {
	if err := rec.validate(); err != nil {
		return err
	}
	key := s.key(rec.Name)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		var current Record
		err := tx.Get(ctx, key).Scan(&current)
		switch {
		case errors.Is(err, redis.Nil):
			err = checkVersion(nil, rec)
		case err != nil:
			return err
		default:
			err = checkVersion(&current, rec)
		}
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, rec, 0)
			pipe.SAdd(ctx, s.indexKey(), rec.Name)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: %s changed during write", ErrConflict, rec.Name)
	}
	if err != nil && !errors.Is(err, ErrConflict) {
		return fmt.Errorf("redis put %s: %w", rec.Name, err)
	}
	return err
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key(name))
		pipe.SRem(ctx, s.indexKey(), name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete %s: %w", name, err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
