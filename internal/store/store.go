// Package store defines the expiring key-value contract the room state lives in.
//
// Keys vanish on their own once their expiry passes. Callers must treat a
// missing key as a normal state: reads report absence with ok=false or an
// empty result, never with an error.
package store

import (
	"context"
	"time"
)

type Store interface {
	// Get returns the string value at key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set writes value at key with the given expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	// Expire renews the expiry of every given key in one round trip.
	// Missing keys are ignored.
	Expire(ctx context.Context, ttl time.Duration, keys ...string) error
	// Keys enumerates keys starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)

	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SCard(ctx context.Context, key string) (int64, error)

	RPush(ctx context.Context, key string, values ...string) error
	// LRem removes every occurrence of value from the list at key.
	LRem(ctx context.Context, key, value string) error
	LRange(ctx context.Context, key string) ([]string, error)
	LLen(ctx context.Context, key string) (int64, error)

	Close() error
}
