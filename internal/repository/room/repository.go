package room

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sharetube/roomy/internal/store"
)

const activeRoomsKey = "active_rooms"

type repo struct {
	store  store.Store
	ttl    time.Duration
	logger *slog.Logger
}

func NewRepo(s store.Store, ttl time.Duration, logger *slog.Logger) *repo {
	return &repo{
		store:  s,
		ttl:    ttl,
		logger: logger,
	}
}

func (r repo) getRoomPrefix(roomID string) string {
	return "room:" + roomID + ":"
}

func (r repo) getMetadataKey(roomID string) string {
	return r.getRoomPrefix(roomID) + "metadata"
}

func (r repo) getMembersKey(roomID string) string {
	return r.getRoomPrefix(roomID) + "members"
}

func (r repo) getPlaybackKey(roomID string) string {
	return r.getRoomPrefix(roomID) + "playback"
}

func (r repo) getConnectionsPrefix(roomID string) string {
	return r.getRoomPrefix(roomID) + "connections:"
}

func (r repo) getConnectionsKey(roomID, userID string) string {
	return r.getConnectionsPrefix(roomID) + userID
}

// RefreshRoomTTL renews metadata, membership and playback expiry together.
func (r repo) RefreshRoomTTL(ctx context.Context, roomID string) error {
	r.logger.DebugContext(ctx, "refresh room ttl", "room_id", roomID)
	if err := r.store.Expire(ctx, r.ttl,
		r.getMetadataKey(roomID),
		r.getMembersKey(roomID),
		r.getPlaybackKey(roomID),
	); err != nil {
		return fmt.Errorf("failed to refresh room ttl: %w", err)
	}

	return nil
}

func (r repo) GetActiveRooms(ctx context.Context) ([]string, error) {
	roomIDs, err := r.store.SMembers(ctx, activeRoomsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get active rooms: %w", err)
	}

	return roomIDs, nil
}

// DeleteRoom removes every key of the room, including all users' connection sets.
func (r repo) DeleteRoom(ctx context.Context, roomID string) error {
	r.logger.DebugContext(ctx, "delete room", "room_id", roomID)
	if err := r.DeleteMetadata(ctx, roomID); err != nil {
		return err
	}

	if err := r.store.Del(ctx, r.getMembersKey(roomID)); err != nil {
		return fmt.Errorf("failed to delete members: %w", err)
	}

	if err := r.DeletePlaybackState(ctx, roomID); err != nil {
		return err
	}

	connKeys, err := r.store.Keys(ctx, r.getConnectionsPrefix(roomID))
	if err != nil {
		return fmt.Errorf("failed to list connection keys: %w", err)
	}

	if err := r.store.Del(ctx, connKeys...); err != nil {
		return fmt.Errorf("failed to delete connections: %w", err)
	}

	return nil
}

func (r repo) setJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	return r.store.Set(ctx, key, string(data), r.ttl)
}

// getJSON reports ok=false when the key is absent.
func (r repo) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, ok, err := r.store.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}

	if err := json.Unmarshal([]byte(data), dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	return true, nil
}
