package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanCount = 100

type store struct {
	rc *redis.Client
}

func NewStore(rc *redis.Client) *store {
	return &store{rc: rc}
}

func (s store) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.rc.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}

	return value, true, nil
}

func (s store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.rc.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	return nil
}

func (s store) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := s.rc.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}

	return nil
}

func (s store) Expire(ctx context.Context, ttl time.Duration, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	pipe := s.rc.TxPipeline()
	for _, key := range keys {
		pipe.Expire(ctx, key, ttl)
	}

	if err := s.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to expire keys: %w", err)
	}

	return nil
}

func (s store) Keys(ctx context.Context, prefix string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)

	for {
		batch, next, err := s.rc.Scan(ctx, cursor, prefix+"*", scanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", prefix, err)
		}

		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

func (s store) SAdd(ctx context.Context, key string, members ...string) error {
	if err := s.rc.SAdd(ctx, key, toAny(members)...).Err(); err != nil {
		return fmt.Errorf("failed to add to set %s: %w", key, err)
	}

	return nil
}

func (s store) SRem(ctx context.Context, key string, members ...string) error {
	if err := s.rc.SRem(ctx, key, toAny(members)...).Err(); err != nil {
		return fmt.Errorf("failed to remove from set %s: %w", key, err)
	}

	return nil
}

func (s store) SMembers(ctx context.Context, key string) ([]string, error) {
	members, err := s.rc.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get set members %s: %w", key, err)
	}

	return members, nil
}

func (s store) SCard(ctx context.Context, key string) (int64, error) {
	n, err := s.rc.SCard(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get set size %s: %w", key, err)
	}

	return n, nil
}

func (s store) RPush(ctx context.Context, key string, values ...string) error {
	if err := s.rc.RPush(ctx, key, toAny(values)...).Err(); err != nil {
		return fmt.Errorf("failed to push to list %s: %w", key, err)
	}

	return nil
}

func (s store) LRem(ctx context.Context, key, value string) error {
	if err := s.rc.LRem(ctx, key, 0, value).Err(); err != nil {
		return fmt.Errorf("failed to remove from list %s: %w", key, err)
	}

	return nil
}

func (s store) LRange(ctx context.Context, key string) ([]string, error) {
	values, err := s.rc.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get list %s: %w", key, err)
	}

	return values, nil
}

func (s store) LLen(ctx context.Context, key string) (int64, error) {
	n, err := s.rc.LLen(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get list length %s: %w", key, err)
	}

	return n, nil
}

func (s store) Close() error {
	return s.rc.Close()
}

func (s store) executePipe(ctx context.Context, pipe redis.Pipeliner) error {
	cmds, err := pipe.Exec(ctx)
	if err != nil {
		for _, cmd := range cmds {
			if err := cmd.Err(); err != nil {
				return err
			}
		}

		return err
	}

	return nil
}

func toAny(values []string) []any {
	res := make([]any, len(values))
	for i, v := range values {
		res[i] = v
	}

	return res
}
