package room

import (
	"context"
	"fmt"
)

func (r repo) AddConnection(ctx context.Context, roomID, userID, connID string) error {
	r.logger.DebugContext(ctx, "add connection", "room_id", roomID, "user_id", userID, "conn_id", connID)
	key := r.getConnectionsKey(roomID, userID)
	if err := r.store.SAdd(ctx, key, connID); err != nil {
		return fmt.Errorf("failed to add connection: %w", err)
	}

	if err := r.store.Expire(ctx, r.ttl, key); err != nil {
		return fmt.Errorf("failed to expire connections: %w", err)
	}

	return nil
}

// RemoveConnection deletes the user's connection set once it drains.
func (r repo) RemoveConnection(ctx context.Context, roomID, userID, connID string) error {
	r.logger.DebugContext(ctx, "remove connection", "room_id", roomID, "user_id", userID, "conn_id", connID)
	key := r.getConnectionsKey(roomID, userID)
	if err := r.store.SRem(ctx, key, connID); err != nil {
		return fmt.Errorf("failed to remove connection: %w", err)
	}

	n, err := r.store.SCard(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to count connections: %w", err)
	}

	if n == 0 {
		if err := r.store.Del(ctx, key); err != nil {
			return fmt.Errorf("failed to delete connections: %w", err)
		}
	}

	return nil
}

func (r repo) HasActiveConnections(ctx context.Context, roomID, userID string) (bool, error) {
	n, err := r.store.SCard(ctx, r.getConnectionsKey(roomID, userID))
	if err != nil {
		return false, fmt.Errorf("failed to count connections: %w", err)
	}

	return n > 0, nil
}

func (r repo) RefreshConnectionTTL(ctx context.Context, roomID, userID string) error {
	if err := r.store.Expire(ctx, r.ttl, r.getConnectionsKey(roomID, userID)); err != nil {
		return fmt.Errorf("failed to refresh connection ttl: %w", err)
	}

	return nil
}
