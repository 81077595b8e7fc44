package room

import (
	"context"
	"fmt"

	"golang.org/x/exp/slices"
)

func (r repo) AddMember(ctx context.Context, roomID, userID string) error {
	r.logger.DebugContext(ctx, "add member", "room_id", roomID, "user_id", userID)
	if err := r.store.RPush(ctx, r.getMembersKey(roomID), userID); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}

	return r.RefreshRoomTTL(ctx, roomID)
}

func (r repo) RemoveMember(ctx context.Context, roomID, userID string) error {
	r.logger.DebugContext(ctx, "remove member", "room_id", roomID, "user_id", userID)
	if err := r.store.LRem(ctx, r.getMembersKey(roomID), userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return r.RefreshRoomTTL(ctx, roomID)
}

// GetMembers returns user ids in join order.
func (r repo) GetMembers(ctx context.Context, roomID string) ([]string, error) {
	members, err := r.store.LRange(ctx, r.getMembersKey(roomID))
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}

	return members, nil
}

func (r repo) GetMemberCount(ctx context.Context, roomID string) (int, error) {
	n, err := r.store.LLen(ctx, r.getMembersKey(roomID))
	if err != nil {
		return 0, fmt.Errorf("failed to get member count: %w", err)
	}

	return int(n), nil
}

func (r repo) IsMember(ctx context.Context, roomID, userID string) (bool, error) {
	members, err := r.GetMembers(ctx, roomID)
	if err != nil {
		return false, err
	}

	return slices.Contains(members, userID), nil
}
