package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

const scanCount = 100

type Config struct {
	Addr     string
	Password string
}

type store struct {
	client valkey.Client
}

func NewClient(cfg *Config) (valkey.Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{cfg.Addr},
		Password:          cfg.Password,
		// Expire groups room keys in one MULTI, which cluster mode rejects across slots.
		ForceSingleClient: true,
		DisableCache:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}

	return client, nil
}

func NewStore(client valkey.Client) *store {
	return &store{client: client}
}

func (s store) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}

	return value, true, nil
}

func (s store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	cmd := s.client.B().Set().Key(key).Value(value)
	var err error
	if ttl > 0 {
		err = s.client.Do(ctx, cmd.PxMilliseconds(ttl.Milliseconds()).Build()).Error()
	} else {
		err = s.client.Do(ctx, cmd.Build()).Error()
	}
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	return nil
}

func (s store) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := s.client.Do(ctx, s.client.B().Del().Key(keys...).Build()).Error(); err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}

	return nil
}

func (s store) Expire(ctx context.Context, ttl time.Duration, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	cmds := make([]valkey.Completed, 0, len(keys)+2)
	cmds = append(cmds, s.client.B().Multi().Build())
	for _, key := range keys {
		cmds = append(cmds, s.client.B().Pexpire().Key(key).Milliseconds(ttl.Milliseconds()).Build())
	}
	cmds = append(cmds, s.client.B().Exec().Build())

	for _, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return fmt.Errorf("failed to expire keys: %w", err)
		}
	}

	return nil
}

func (s store) Keys(ctx context.Context, prefix string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)

	for {
		entry, err := s.client.Do(ctx, s.client.B().Scan().Cursor(cursor).Match(prefix+"*").Count(scanCount).Build()).AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", prefix, err)
		}

		keys = append(keys, entry.Elements...)
		cursor = entry.Cursor
		if cursor == 0 {
			return keys, nil
		}
	}
}

func (s store) SAdd(ctx context.Context, key string, members ...string) error {
	if err := s.client.Do(ctx, s.client.B().Sadd().Key(key).Member(members...).Build()).Error(); err != nil {
		return fmt.Errorf("failed to add to set %s: %w", key, err)
	}

	return nil
}

func (s store) SRem(ctx context.Context, key string, members ...string) error {
	if err := s.client.Do(ctx, s.client.B().Srem().Key(key).Member(members...).Build()).Error(); err != nil {
		return fmt.Errorf("failed to remove from set %s: %w", key, err)
	}

	return nil
}

func (s store) SMembers(ctx context.Context, key string) ([]string, error) {
	members, err := s.client.Do(ctx, s.client.B().Smembers().Key(key).Build()).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to get set members %s: %w", key, err)
	}

	return members, nil
}

func (s store) SCard(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Do(ctx, s.client.B().Scard().Key(key).Build()).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("failed to get set size %s: %w", key, err)
	}

	return n, nil
}

func (s store) RPush(ctx context.Context, key string, values ...string) error {
	if err := s.client.Do(ctx, s.client.B().Rpush().Key(key).Element(values...).Build()).Error(); err != nil {
		return fmt.Errorf("failed to push to list %s: %w", key, err)
	}

	return nil
}

func (s store) LRem(ctx context.Context, key, value string) error {
	if err := s.client.Do(ctx, s.client.B().Lrem().Key(key).Count(0).Element(value).Build()).Error(); err != nil {
		return fmt.Errorf("failed to remove from list %s: %w", key, err)
	}

	return nil
}

func (s store) LRange(ctx context.Context, key string) ([]string, error) {
	values, err := s.client.Do(ctx, s.client.B().Lrange().Key(key).Start(0).Stop(-1).Build()).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to get list %s: %w", key, err)
	}

	return values, nil
}

func (s store) LLen(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Do(ctx, s.client.B().Llen().Key(key).Build()).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("failed to get list length %s: %w", key, err)
	}

	return n, nil
}

func (s store) Close() error {
	s.client.Close()
	return nil
}
