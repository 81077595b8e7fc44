package room

import (
	"time"

	"github.com/sharetube/roomy/internal/repository/room"
)

type Room struct {
	RoomID          string    `json:"roomId"`
	Name            string    `json:"name"`
	HostID          string    `json:"hostId"`
	IsPublic        bool      `json:"isPublic"`
	MaxParticipants int       `json:"maxParticipants"`
	CreatedAt       time.Time `json:"createdAt"`
}

type RoomSummary struct {
	Room
	CurrentMembers int `json:"currentMembers"`
}

// RoomDetails is the full room snapshot sent on SYNC_FULL_STATE.
type RoomDetails struct {
	Room
	Members       []string       `json:"members"`
	PlaybackState *PlaybackState `json:"playbackState"`
}

type PlaybackState struct {
	MediaURL      string    `json:"mediaUrl"`
	MediaType     string    `json:"mediaType"`
	IsPlaying     bool      `json:"isPlaying"`
	CurrentTime   float64   `json:"currentTime"`
	PlaybackSpeed float64   `json:"playbackSpeed"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// PlaybackUpdate is a partial playback change; nil fields keep their current value.
type PlaybackUpdate struct {
	MediaURL      *string  `json:"mediaUrl" validate:"omitnil,max=2048"`
	MediaType     *string  `json:"mediaType" validate:"omitnil,max=64"`
	IsPlaying     *bool    `json:"isPlaying"`
	CurrentTime   *float64 `json:"currentTime" validate:"omitnil,gte=0"`
	PlaybackSpeed *float64 `json:"playbackSpeed" validate:"omitnil,gt=0,lte=16"`
}

func newRoom(roomID string, m *room.Metadata) Room {
	return Room{
		RoomID:          roomID,
		Name:            m.Name,
		HostID:          m.HostID,
		IsPublic:        m.IsPublic,
		MaxParticipants: m.MaxParticipants,
		CreatedAt:       m.CreatedAt,
	}
}

func newPlaybackState(s *room.PlaybackState) *PlaybackState {
	if s == nil {
		return nil
	}

	return &PlaybackState{
		MediaURL:      s.MediaURL,
		MediaType:     s.MediaType,
		IsPlaying:     s.IsPlaying,
		CurrentTime:   s.CurrentTime,
		PlaybackSpeed: s.PlaybackSpeed,
		LastUpdatedBy: s.LastUpdatedBy,
		LastUpdated:   s.LastUpdated,
	}
}

// apply merges the non-nil fields of u into s.
func (u PlaybackUpdate) apply(s *room.PlaybackState) {
	if u.MediaURL != nil {
		s.MediaURL = *u.MediaURL
	}
	if u.MediaType != nil {
		s.MediaType = *u.MediaType
	}
	if u.IsPlaying != nil {
		s.IsPlaying = *u.IsPlaying
	}
	if u.CurrentTime != nil {
		s.CurrentTime = *u.CurrentTime
	}
	if u.PlaybackSpeed != nil {
		s.PlaybackSpeed = *u.PlaybackSpeed
	}
}
