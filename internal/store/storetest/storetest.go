// Package storetest holds the behaviour every store.Store backend must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharetube/roomy/internal/store"
)

// Factory returns a fresh empty store and a function that moves the store's clock forward.
type Factory func(t *testing.T) (s store.Store, advance func(time.Duration))

func Run(t *testing.T, newStore Factory) {
	t.Run("GetMissing", func(t *testing.T) {
		s, _ := newStore(t)
		_, ok, err := s.Get(context.Background(), "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("SetExpires", func(t *testing.T) {
		ctx := context.Background()
		s, advance := newStore(t)

		require.NoError(t, s.Set(ctx, "k", "v", time.Minute))
		v, ok, err := s.Get(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "v", v)

		advance(61 * time.Second)
		_, ok, err = s.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok, "key must vanish after its ttl")
	})

	t.Run("ExpireRenewsGroup", func(t *testing.T) {
		ctx := context.Background()
		s, advance := newStore(t)

		require.NoError(t, s.Set(ctx, "a", "1", time.Minute))
		require.NoError(t, s.RPush(ctx, "b", "x"))
		require.NoError(t, s.Expire(ctx, time.Minute, "a", "b", "missing"))

		advance(40 * time.Second)
		require.NoError(t, s.Expire(ctx, time.Minute, "a", "b"))
		advance(40 * time.Second)

		_, ok, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.True(t, ok)
		n, err := s.LLen(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		advance(21 * time.Second)
		_, ok, err = s.Get(ctx, "a")
		require.NoError(t, err)
		assert.False(t, ok)
		n, err = s.LLen(ctx, "b")
		require.NoError(t, err)
		assert.Zero(t, n)

		_, ok, err = s.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok, "expire must not create keys")
	})

	t.Run("List", func(t *testing.T) {
		ctx := context.Background()
		s, _ := newStore(t)

		require.NoError(t, s.RPush(ctx, "l", "a", "b"))
		require.NoError(t, s.RPush(ctx, "l", "c", "b"))

		values, err := s.LRange(ctx, "l")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c", "b"}, values)

		require.NoError(t, s.LRem(ctx, "l", "b"))
		values, err = s.LRange(ctx, "l")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c"}, values)

		require.NoError(t, s.LRem(ctx, "l", "a"))
		require.NoError(t, s.LRem(ctx, "l", "c"))
		n, err := s.LLen(ctx, "l")
		require.NoError(t, err)
		assert.Zero(t, n)

		values, err = s.LRange(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, values)
	})

	t.Run("Set", func(t *testing.T) {
		ctx := context.Background()
		s, _ := newStore(t)

		require.NoError(t, s.SAdd(ctx, "s", "a", "b"))
		require.NoError(t, s.SAdd(ctx, "s", "a"))
		n, err := s.SCard(ctx, "s")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		members, err := s.SMembers(ctx, "s")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a", "b"}, members)

		require.NoError(t, s.SRem(ctx, "s", "a", "missing"))
		members, err = s.SMembers(ctx, "s")
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, members)

		n, err = s.SCard(ctx, "missing")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("KeysAndDel", func(t *testing.T) {
		ctx := context.Background()
		s, _ := newStore(t)

		require.NoError(t, s.SAdd(ctx, "room:1:connections:u1", "c1"))
		require.NoError(t, s.SAdd(ctx, "room:1:connections:u2", "c2"))
		require.NoError(t, s.Set(ctx, "room:1:metadata", "{}", time.Minute))
		require.NoError(t, s.SAdd(ctx, "room:2:connections:u1", "c3"))

		keys, err := s.Keys(ctx, "room:1:connections:")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"room:1:connections:u1", "room:1:connections:u2"}, keys)

		require.NoError(t, s.Del(ctx, keys...))
		require.NoError(t, s.Del(ctx))

		keys, err = s.Keys(ctx, "room:1:")
		require.NoError(t, err)
		assert.Equal(t, []string{"room:1:metadata"}, keys)
	})
}
