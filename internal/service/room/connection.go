package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharetube/roomy/internal/repository/room"
)

type ConnectionParams struct {
	RoomID string
	UserID string
	ConnID string
}

// HandleUserConnection admits the user on their first connection and registers connID.
// Further connections from the same user do not join again.
func (s service) HandleUserConnection(ctx context.Context, params *ConnectionParams) (Result, error) {
	isMember, err := s.roomRepo.IsMember(ctx, params.RoomID, params.UserID)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to check membership", "error", err)
		return Result{}, err
	}

	if !isMember {
		if err := s.JoinRoom(ctx, params.RoomID, params.UserID); err != nil {
			return Result{}, err
		}
	}

	if err := s.roomRepo.AddConnection(ctx, params.RoomID, params.UserID, params.ConnID); err != nil {
		s.logger.InfoContext(ctx, "failed to add connection", "error", err)
		return Result{}, err
	}

	count, err := s.roomRepo.GetMemberCount(ctx, params.RoomID)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to get member count", "error", err)
		return Result{}, err
	}

	s.logger.InfoContext(ctx, "user connected", "room_id", params.RoomID, "user_id", params.UserID, "member_count", count)
	return Result{
		Action: ActionPublish,
		Message: Message{
			Type: MessageTypeUserJoined,
			Payload: UserJoinedPayload{
				UserID:      params.UserID,
				MemberCount: count,
			},
		},
	}, nil
}

type UserMessageParams struct {
	RoomID  string
	UserID  string
	Message InboundMessage
}

// HandleUserMessage returns no results for a heartbeat.
func (s service) HandleUserMessage(ctx context.Context, params *UserMessageParams) ([]Result, error) {
	switch msg := params.Message.(type) {
	case UpdatePlayback:
		state, err := s.UpdatePlayback(ctx, &UpdatePlaybackParams{
			RoomID: params.RoomID,
			UserID: params.UserID,
			Update: msg.Update,
		})
		if err != nil {
			return nil, err
		}

		if err := s.refreshConnectionTTL(ctx, params); err != nil {
			return nil, err
		}

		return []Result{{
			Action:  ActionPublish,
			Message: Message{Type: MessageTypePlaybackUpdated, Payload: state},
		}}, nil
	case SyncRequest:
		details, err := s.GetRoomDetails(ctx, params.RoomID)
		if err != nil {
			return nil, err
		}

		if err := s.refreshConnectionTTL(ctx, params); err != nil {
			return nil, err
		}

		return []Result{{
			Action:  ActionSend,
			Message: Message{Type: MessageTypeSyncFullState, Payload: details},
		}}, nil
	case Heartbeat:
		if err := s.roomRepo.RefreshRoomTTL(ctx, params.RoomID); err != nil {
			s.logger.InfoContext(ctx, "failed to refresh room ttl", "error", err)
			return nil, err
		}

		if err := s.refreshConnectionTTL(ctx, params); err != nil {
			return nil, err
		}

		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported message %T", params.Message)
	}
}

// refreshConnectionTTL keeps the sender's connection set alive while any of its tabs is active.
func (s service) refreshConnectionTTL(ctx context.Context, params *UserMessageParams) error {
	if err := s.roomRepo.RefreshConnectionTTL(ctx, params.RoomID, params.UserID); err != nil {
		s.logger.InfoContext(ctx, "failed to refresh connection ttl", "error", err)
		return err
	}

	return nil
}

// HandleUserDisconnection drops connID and, when it was the user's last connection,
// removes the user from the room. Results are ordered USER_LEFT then HOST_CHANGED.
// USER_LEFT is produced with memberCount 0 when the room is deleted.
// On ErrHostUpdateFailed the results produced so far are returned with the error.
func (s service) HandleUserDisconnection(ctx context.Context, params *ConnectionParams) ([]Result, error) {
	if err := s.roomRepo.RemoveConnection(ctx, params.RoomID, params.UserID, params.ConnID); err != nil {
		s.logger.InfoContext(ctx, "failed to remove connection", "error", err)
		return nil, err
	}

	hasConns, err := s.roomRepo.HasActiveConnections(ctx, params.RoomID, params.UserID)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to check connections", "error", err)
		return nil, err
	}

	if hasConns {
		return nil, nil
	}

	// Read the host before leaving; the metadata is gone once the room is deleted.
	metadata, err := s.roomRepo.GetMetadata(ctx, params.RoomID)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to get metadata", "error", err)
		return nil, err
	}

	leaveRes, err := s.LeaveRoom(ctx, params.RoomID, params.UserID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user left", "room_id", params.RoomID, "user_id", params.UserID, "is_room_deleted", leaveRes.IsRoomDeleted)
	results := []Result{{
		Action: ActionPublish,
		Message: Message{
			Type: MessageTypeUserLeft,
			Payload: UserLeftPayload{
				UserID:      params.UserID,
				MemberCount: len(leaveRes.Members),
			},
		},
	}}

	if leaveRes.IsRoomDeleted || metadata == nil || metadata.HostID != params.UserID {
		return results, nil
	}

	newHostID := leaveRes.Members[0]
	if err := s.roomRepo.UpdateHost(ctx, params.RoomID, newHostID); err != nil {
		s.logger.InfoContext(ctx, "failed to update host", "error", err)
		if errors.Is(err, room.ErrMetadataNotFound) {
			return results, ErrHostUpdateFailed
		}
		return results, fmt.Errorf("%w: %w", ErrHostUpdateFailed, err)
	}

	s.logger.InfoContext(ctx, "host changed", "room_id", params.RoomID, "host_id", newHostID)
	return append(results, Result{
		Action: ActionPublish,
		Message: Message{
			Type:    MessageTypeHostChanged,
			Payload: HostChangedPayload{NewHostID: newHostID},
		},
	}), nil
}
