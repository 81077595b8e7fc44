package room

import (
	"context"
	"strings"

	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/sharetube/roomy/internal/repository/room"
)

type CreateRoomParams struct {
	HostID          string
	Name            string
	MediaURL        string
	MediaType       string
	IsPlaying       bool
	IsPublic        *bool
	MaxParticipants *int
}

func (s service) CreateRoom(ctx context.Context, params *CreateRoomParams) (Room, error) {
	roomID := s.newRoomID()
	now := s.now()

	metadata := room.Metadata{
		Name:            params.Name,
		HostID:          params.HostID,
		IsPublic:        true,
		MaxParticipants: s.defaultMaxParticipants,
		CreatedAt:       now,
	}
	if params.IsPublic != nil {
		metadata.IsPublic = *params.IsPublic
	}
	if params.MaxParticipants != nil {
		metadata.MaxParticipants = *params.MaxParticipants
	}

	if err := s.roomRepo.CreateMetadata(ctx, roomID, &metadata); err != nil {
		s.logger.InfoContext(ctx, "failed to create metadata", "error", err)
		return Room{}, err
	}

	if err := s.roomRepo.AddMember(ctx, roomID, params.HostID); err != nil {
		s.logger.InfoContext(ctx, "failed to add host", "error", err)
		return Room{}, err
	}

	if err := s.roomRepo.CreatePlaybackState(ctx, roomID, &room.PlaybackState{
		MediaURL:      params.MediaURL,
		MediaType:     params.MediaType,
		IsPlaying:     params.IsPlaying,
		CurrentTime:   0,
		PlaybackSpeed: 1,
		LastUpdatedBy: params.HostID,
		LastUpdated:   now,
	}); err != nil {
		s.logger.InfoContext(ctx, "failed to create playback state", "error", err)
		return Room{}, err
	}

	s.logger.InfoContext(ctx, "room created", "room_id", roomID, "host_id", params.HostID)
	return newRoom(roomID, &metadata), nil
}

func (s service) GetRoomDetails(ctx context.Context, roomID string) (RoomDetails, error) {
	metadata, err := s.roomRepo.GetMetadata(ctx, roomID)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to get metadata", "error", err)
		return RoomDetails{}, err
	}

	if metadata == nil {
		return RoomDetails{}, ErrRoomNotFound
	}

	members, err := s.roomRepo.GetMembers(ctx, roomID)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to get members", "error", err)
		return RoomDetails{}, err
	}

	playbackState, err := s.roomRepo.GetPlaybackState(ctx, roomID)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to get playback state", "error", err)
		return RoomDetails{}, err
	}

	return RoomDetails{
		Room:          newRoom(roomID, metadata),
		Members:       members,
		PlaybackState: newPlaybackState(playbackState),
	}, nil
}

// ListActiveRooms loads every indexed room concurrently. Rooms that expired since
// they were indexed are pruned by the metadata read and left out of the result.
func (s service) ListActiveRooms(ctx context.Context) ([]RoomSummary, error) {
	roomIDs, err := s.roomRepo.GetActiveRooms(ctx)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to get active rooms", "error", err)
		return nil, err
	}

	summaries := make([]*RoomSummary, len(roomIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.listConcurrency)
	for i, roomID := range roomIDs {
		i, roomID := i, roomID
		g.Go(func() error {
			metadata, err := s.roomRepo.GetMetadata(gctx, roomID)
			if err != nil || metadata == nil {
				return err
			}

			count, err := s.roomRepo.GetMemberCount(gctx, roomID)
			if err != nil {
				return err
			}

			summaries[i] = &RoomSummary{
				Room:           newRoom(roomID, metadata),
				CurrentMembers: count,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.InfoContext(ctx, "failed to load rooms", "error", err)
		return nil, err
	}

	res := make([]RoomSummary, 0, len(summaries))
	for _, summary := range summaries {
		if summary != nil {
			res = append(res, *summary)
		}
	}

	slices.SortFunc(res, func(a, b RoomSummary) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.RoomID, b.RoomID)
	})

	return res, nil
}

func (s service) JoinRoom(ctx context.Context, roomID, userID string) error {
	metadata, err := s.roomRepo.GetMetadata(ctx, roomID)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to get metadata", "error", err)
		return err
	}

	if metadata == nil {
		return ErrRoomNotFound
	}

	members, err := s.roomRepo.GetMembers(ctx, roomID)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to get members", "error", err)
		return err
	}

	if slices.Contains(members, userID) {
		return ErrAlreadyMember
	}

	if len(members) >= metadata.MaxParticipants {
		return ErrRoomFull
	}

	if err := s.roomRepo.AddMember(ctx, roomID, userID); err != nil {
		s.logger.InfoContext(ctx, "failed to add member", "error", err)
		return err
	}

	return nil
}

type LeaveRoomResponse struct {
	IsRoomDeleted bool
	// Members left in the room, in join order.
	Members []string
}

func (s service) LeaveRoom(ctx context.Context, roomID, userID string) (LeaveRoomResponse, error) {
	isMember, err := s.roomRepo.IsMember(ctx, roomID, userID)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to check membership", "error", err)
		return LeaveRoomResponse{}, err
	}

	if !isMember {
		return LeaveRoomResponse{}, ErrNotAMember
	}

	if err := s.roomRepo.RemoveMember(ctx, roomID, userID); err != nil {
		s.logger.InfoContext(ctx, "failed to remove member", "error", err)
		return LeaveRoomResponse{}, err
	}

	members, err := s.roomRepo.GetMembers(ctx, roomID)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to get members", "error", err)
		return LeaveRoomResponse{}, err
	}

	if len(members) == 0 {
		if err := s.roomRepo.DeleteRoom(ctx, roomID); err != nil {
			s.logger.InfoContext(ctx, "failed to delete room", "error", err)
			return LeaveRoomResponse{}, err
		}

		s.logger.InfoContext(ctx, "room deleted", "room_id", roomID)
		return LeaveRoomResponse{IsRoomDeleted: true}, nil
	}

	return LeaveRoomResponse{Members: members}, nil
}
