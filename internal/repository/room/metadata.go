package room

import (
	"context"
	"fmt"
)

func (r repo) CreateMetadata(ctx context.Context, roomID string, metadata *Metadata) error {
	r.logger.DebugContext(ctx, "create metadata", "room_id", roomID, "metadata", metadata)
	if err := r.setJSON(ctx, r.getMetadataKey(roomID), metadata); err != nil {
		return fmt.Errorf("failed to set metadata: %w", err)
	}

	if err := r.store.SAdd(ctx, activeRoomsKey, roomID); err != nil {
		return fmt.Errorf("failed to index room: %w", err)
	}

	return nil
}

// GetMetadata returns nil when the room is gone and drops it from the active-room index.
func (r repo) GetMetadata(ctx context.Context, roomID string) (*Metadata, error) {
	var metadata Metadata
	ok, err := r.getJSON(ctx, r.getMetadataKey(roomID), &metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata: %w", err)
	}

	if !ok {
		r.logger.DebugContext(ctx, "metadata missing, pruning index", "room_id", roomID)
		if err := r.store.SRem(ctx, activeRoomsKey, roomID); err != nil {
			return nil, fmt.Errorf("failed to prune room index: %w", err)
		}
		return nil, nil
	}

	return &metadata, nil
}

func (r repo) DeleteMetadata(ctx context.Context, roomID string) error {
	if err := r.store.Del(ctx, r.getMetadataKey(roomID)); err != nil {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}

	if err := r.store.SRem(ctx, activeRoomsKey, roomID); err != nil {
		return fmt.Errorf("failed to prune room index: %w", err)
	}

	return nil
}

func (r repo) UpdateHost(ctx context.Context, roomID, hostID string) error {
	r.logger.DebugContext(ctx, "update host", "room_id", roomID, "host_id", hostID)
	metadata, err := r.GetMetadata(ctx, roomID)
	if err != nil {
		return err
	}

	if metadata == nil {
		return ErrMetadataNotFound
	}

	metadata.HostID = hostID
	return r.CreateMetadata(ctx, roomID, metadata)
}
