package room

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharetube/roomy/internal/store/inmemory"
	storeRedis "github.com/sharetube/roomy/internal/store/redis"
)

const testTTL = time.Minute

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type backend struct {
	name    string
	repo    *repo
	advance func(time.Duration)
}

func backends(t *testing.T) []backend {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	mem := inmemory.NewStore(inmemory.WithClock(clock.Now))

	s := miniredis.RunT(t)
	rc := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { rc.Close() })

	return []backend{
		{name: "inmemory", repo: NewRepo(mem, testTTL, logger), advance: clock.Advance},
		{name: "redis", repo: NewRepo(storeRedis.NewStore(rc), testTTL, logger), advance: s.FastForward},
	}
}

func testMetadata(hostID string) *Metadata {
	return &Metadata{
		Name:            "movie night",
		HostID:          hostID,
		IsPublic:        true,
		MaxParticipants: 10,
		CreatedAt:       time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMetadata(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			r := b.repo

			require.NoError(t, r.CreateMetadata(ctx, "r1", testMetadata("h")))

			metadata, err := r.GetMetadata(ctx, "r1")
			require.NoError(t, err)
			require.NotNil(t, metadata)
			assert.Equal(t, testMetadata("h"), metadata)

			rooms, err := r.GetActiveRooms(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"r1"}, rooms)

			require.NoError(t, r.UpdateHost(ctx, "r1", "a"))
			metadata, err = r.GetMetadata(ctx, "r1")
			require.NoError(t, err)
			assert.Equal(t, "a", metadata.HostID)

			require.NoError(t, r.DeleteMetadata(ctx, "r1"))
			metadata, err = r.GetMetadata(ctx, "r1")
			require.NoError(t, err)
			assert.Nil(t, metadata)

			assert.ErrorIs(t, r.UpdateHost(ctx, "r1", "b"), ErrMetadataNotFound)
		})
	}
}

func TestGetMetadataPrunesExpiredRoom(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			r := b.repo

			require.NoError(t, r.CreateMetadata(ctx, "r1", testMetadata("h")))
			b.advance(testTTL + time.Second)

			rooms, err := r.GetActiveRooms(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"r1"}, rooms, "index entry lingers until read")

			metadata, err := r.GetMetadata(ctx, "r1")
			require.NoError(t, err)
			assert.Nil(t, metadata)

			rooms, err = r.GetActiveRooms(ctx)
			require.NoError(t, err)
			assert.Empty(t, rooms)
		})
	}
}

func TestMembers(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			r := b.repo

			for _, id := range []string{"h", "a", "b"} {
				require.NoError(t, r.AddMember(ctx, "r1", id))
			}

			members, err := r.GetMembers(ctx, "r1")
			require.NoError(t, err)
			assert.Equal(t, []string{"h", "a", "b"}, members)

			count, err := r.GetMemberCount(ctx, "r1")
			require.NoError(t, err)
			assert.Equal(t, 3, count)

			ok, err := r.IsMember(ctx, "r1", "a")
			require.NoError(t, err)
			assert.True(t, ok)

			require.NoError(t, r.RemoveMember(ctx, "r1", "h"))
			members, err = r.GetMembers(ctx, "r1")
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, members)

			ok, err = r.IsMember(ctx, "r1", "h")
			require.NoError(t, err)
			assert.False(t, ok)

			count, err = r.GetMemberCount(ctx, "missing")
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestPlaybackState(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			r := b.repo

			state, err := r.GetPlaybackState(ctx, "r1")
			require.NoError(t, err)
			assert.Nil(t, state)

			initial := &PlaybackState{
				MediaURL:      "x",
				PlaybackSpeed: 1,
				LastUpdatedBy: "h",
				LastUpdated:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
			}
			require.NoError(t, r.CreatePlaybackState(ctx, "r1", initial))

			updated := *initial
			updated.IsPlaying = true
			updated.CurrentTime = 42.5
			require.NoError(t, r.UpdatePlaybackState(ctx, "r1", &updated))

			state, err = r.GetPlaybackState(ctx, "r1")
			require.NoError(t, err)
			assert.Equal(t, &updated, state)

			require.NoError(t, r.DeletePlaybackState(ctx, "r1"))
			state, err = r.GetPlaybackState(ctx, "r1")
			require.NoError(t, err)
			assert.Nil(t, state)
		})
	}
}

func TestRefreshRoomTTL(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			r := b.repo

			require.NoError(t, r.CreateMetadata(ctx, "r1", testMetadata("h")))
			require.NoError(t, r.AddMember(ctx, "r1", "h"))
			require.NoError(t, r.CreatePlaybackState(ctx, "r1", &PlaybackState{PlaybackSpeed: 1}))

			b.advance(40 * time.Second)
			require.NoError(t, r.RefreshRoomTTL(ctx, "r1"))
			b.advance(40 * time.Second)

			metadata, err := r.GetMetadata(ctx, "r1")
			require.NoError(t, err)
			assert.NotNil(t, metadata)
			state, err := r.GetPlaybackState(ctx, "r1")
			require.NoError(t, err)
			assert.NotNil(t, state)
			count, err := r.GetMemberCount(ctx, "r1")
			require.NoError(t, err)
			assert.Equal(t, 1, count)

			b.advance(21 * time.Second)
			metadata, err = r.GetMetadata(ctx, "r1")
			require.NoError(t, err)
			assert.Nil(t, metadata)
			count, err = r.GetMemberCount(ctx, "r1")
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestConnections(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			r := b.repo

			has, err := r.HasActiveConnections(ctx, "r1", "u")
			require.NoError(t, err)
			assert.False(t, has)

			require.NoError(t, r.AddConnection(ctx, "r1", "u", "c1"))
			require.NoError(t, r.AddConnection(ctx, "r1", "u", "c2"))

			require.NoError(t, r.RemoveConnection(ctx, "r1", "u", "c1"))
			has, err = r.HasActiveConnections(ctx, "r1", "u")
			require.NoError(t, err)
			assert.True(t, has)

			require.NoError(t, r.RemoveConnection(ctx, "r1", "u", "c2"))
			has, err = r.HasActiveConnections(ctx, "r1", "u")
			require.NoError(t, err)
			assert.False(t, has)

			keys, err := r.store.Keys(ctx, r.getConnectionsPrefix("r1"))
			require.NoError(t, err)
			assert.Empty(t, keys, "drained connection set must not linger")

			require.NoError(t, r.RemoveConnection(ctx, "r1", "u", "never-added"))
		})
	}
}

func TestConnectionTTL(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			r := b.repo

			require.NoError(t, r.AddConnection(ctx, "r1", "u", "c1"))
			b.advance(40 * time.Second)
			require.NoError(t, r.RefreshConnectionTTL(ctx, "r1", "u"))
			b.advance(40 * time.Second)

			has, err := r.HasActiveConnections(ctx, "r1", "u")
			require.NoError(t, err)
			assert.True(t, has)

			b.advance(21 * time.Second)
			has, err = r.HasActiveConnections(ctx, "r1", "u")
			require.NoError(t, err)
			assert.False(t, has)
		})
	}
}

func TestDeleteRoom(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			r := b.repo

			require.NoError(t, r.CreateMetadata(ctx, "r1", testMetadata("h")))
			require.NoError(t, r.AddMember(ctx, "r1", "h"))
			require.NoError(t, r.AddMember(ctx, "r1", "a"))
			require.NoError(t, r.CreatePlaybackState(ctx, "r1", &PlaybackState{PlaybackSpeed: 1}))
			require.NoError(t, r.AddConnection(ctx, "r1", "h", "c1"))
			require.NoError(t, r.AddConnection(ctx, "r1", "a", "c2"))

			require.NoError(t, r.CreateMetadata(ctx, "r2", testMetadata("z")))

			require.NoError(t, r.DeleteRoom(ctx, "r1"))

			keys, err := r.store.Keys(ctx, r.getRoomPrefix("r1"))
			require.NoError(t, err)
			assert.Empty(t, keys)

			rooms, err := r.GetActiveRooms(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"r2"}, rooms)
		})
	}
}
