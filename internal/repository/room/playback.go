package room

import (
	"context"
	"fmt"
)

func (r repo) CreatePlaybackState(ctx context.Context, roomID string, state *PlaybackState) error {
	if err := r.setJSON(ctx, r.getPlaybackKey(roomID), state); err != nil {
		return fmt.Errorf("failed to set playback state: %w", err)
	}

	return nil
}

// GetPlaybackState returns nil when no playback state is stored.
func (r repo) GetPlaybackState(ctx context.Context, roomID string) (*PlaybackState, error) {
	var state PlaybackState
	ok, err := r.getJSON(ctx, r.getPlaybackKey(roomID), &state)
	if err != nil {
		return nil, fmt.Errorf("failed to get playback state: %w", err)
	}

	if !ok {
		return nil, nil
	}

	return &state, nil
}

func (r repo) UpdatePlaybackState(ctx context.Context, roomID string, state *PlaybackState) error {
	r.logger.DebugContext(ctx, "update playback state", "room_id", roomID, "state", state)
	if err := r.CreatePlaybackState(ctx, roomID, state); err != nil {
		return err
	}

	return r.RefreshRoomTTL(ctx, roomID)
}

func (r repo) DeletePlaybackState(ctx context.Context, roomID string) error {
	if err := r.store.Del(ctx, r.getPlaybackKey(roomID)); err != nil {
		return fmt.Errorf("failed to delete playback state: %w", err)
	}

	return nil
}
