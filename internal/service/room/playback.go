package room

import (
	"context"
)

type UpdatePlaybackParams struct {
	RoomID string
	UserID string
	Update PlaybackUpdate
}

// UpdatePlayback merges a partial update into the room's playback state. Last writer wins.
func (s service) UpdatePlayback(ctx context.Context, params *UpdatePlaybackParams) (PlaybackState, error) {
	isMember, err := s.roomRepo.IsMember(ctx, params.RoomID, params.UserID)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to check membership", "error", err)
		return PlaybackState{}, err
	}

	if !isMember {
		return PlaybackState{}, ErrNotAMember
	}

	state, err := s.roomRepo.GetPlaybackState(ctx, params.RoomID)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to get playback state", "error", err)
		return PlaybackState{}, err
	}

	if state == nil {
		return PlaybackState{}, ErrPlaybackStateNotFound
	}

	params.Update.apply(state)
	state.LastUpdatedBy = params.UserID
	state.LastUpdated = s.now()

	if err := s.roomRepo.UpdatePlaybackState(ctx, params.RoomID, state); err != nil {
		s.logger.InfoContext(ctx, "failed to update playback state", "error", err)
		return PlaybackState{}, err
	}

	return *newPlaybackState(state), nil
}

func (s service) GetPlaybackState(ctx context.Context, roomID string) (PlaybackState, error) {
	metadata, err := s.roomRepo.GetMetadata(ctx, roomID)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to get metadata", "error", err)
		return PlaybackState{}, err
	}

	if metadata == nil {
		return PlaybackState{}, ErrRoomNotFound
	}

	state, err := s.roomRepo.GetPlaybackState(ctx, roomID)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to get playback state", "error", err)
		return PlaybackState{}, err
	}

	if state == nil {
		return PlaybackState{}, ErrPlaybackStateNotFound
	}

	return *newPlaybackState(state), nil
}
