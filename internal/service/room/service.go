package room

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sharetube/roomy/internal/repository/room"
)

var (
	ErrRoomNotFound          = errors.New("room not found")
	ErrAlreadyMember         = errors.New("you are already in this room")
	ErrNotAMember            = errors.New("you are not in this room")
	ErrRoomFull              = errors.New("room is full")
	ErrPlaybackStateNotFound = errors.New("playback state not found")
	ErrHostUpdateFailed      = errors.New("failed to update host")
)

type iRoomRepo interface {
	RefreshRoomTTL(ctx context.Context, roomID string) error
	GetActiveRooms(ctx context.Context) ([]string, error)
	DeleteRoom(ctx context.Context, roomID string) error
	// metadata
	CreateMetadata(ctx context.Context, roomID string, metadata *room.Metadata) error
	GetMetadata(ctx context.Context, roomID string) (*room.Metadata, error)
	UpdateHost(ctx context.Context, roomID, hostID string) error
	// member
	AddMember(ctx context.Context, roomID, userID string) error
	RemoveMember(ctx context.Context, roomID, userID string) error
	GetMembers(ctx context.Context, roomID string) ([]string, error)
	GetMemberCount(ctx context.Context, roomID string) (int, error)
	IsMember(ctx context.Context, roomID, userID string) (bool, error)
	// playback
	CreatePlaybackState(ctx context.Context, roomID string, state *room.PlaybackState) error
	GetPlaybackState(ctx context.Context, roomID string) (*room.PlaybackState, error)
	UpdatePlaybackState(ctx context.Context, roomID string, state *room.PlaybackState) error
	// connection
	AddConnection(ctx context.Context, roomID, userID, connID string) error
	RemoveConnection(ctx context.Context, roomID, userID, connID string) error
	HasActiveConnections(ctx context.Context, roomID, userID string) (bool, error)
	RefreshConnectionTTL(ctx context.Context, roomID, userID string) error
}

type Config struct {
	DefaultMaxParticipants int
	// ListConcurrency bounds parallel store reads while listing rooms.
	ListConcurrency int
	// Now defaults to time.Now.
	Now func() time.Time
	// NewRoomID defaults to uuid.NewString.
	NewRoomID func() string
}

type service struct {
	roomRepo               iRoomRepo
	logger                 *slog.Logger
	defaultMaxParticipants int
	listConcurrency        int
	now                    func() time.Time
	newRoomID              func() string
}

func NewService(roomRepo iRoomRepo, cfg *Config, logger *slog.Logger) *service {
	s := &service{
		roomRepo:               roomRepo,
		logger:                 logger,
		defaultMaxParticipants: cfg.DefaultMaxParticipants,
		listConcurrency:        cfg.ListConcurrency,
		now:                    cfg.Now,
		newRoomID:              cfg.NewRoomID,
	}

	if s.defaultMaxParticipants <= 0 {
		s.defaultMaxParticipants = 10
	}
	if s.listConcurrency <= 0 {
		s.listConcurrency = 16
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newRoomID == nil {
		s.newRoomID = uuid.NewString
	}

	return s
}
