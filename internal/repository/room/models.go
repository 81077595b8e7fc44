package room

import "time"

type Metadata struct {
	Name            string    `json:"name"`
	HostID          string    `json:"hostId"`
	IsPublic        bool      `json:"isPublic"`
	MaxParticipants int       `json:"maxParticipants"`
	CreatedAt       time.Time `json:"createdAt"`
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
