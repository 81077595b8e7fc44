package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sharetube/roomy/internal/repository/connection"
	"github.com/sharetube/roomy/internal/service/room"
	"github.com/sharetube/roomy/pkg/validator"
	"github.com/sharetube/roomy/pkg/wsrouter"
)

type iRoomService interface {
	CreateRoom(ctx context.Context, params *room.CreateRoomParams) (room.Room, error)
	GetRoomDetails(ctx context.Context, roomID string) (room.RoomDetails, error)
	ListActiveRooms(ctx context.Context) ([]room.RoomSummary, error)
	GetPlaybackState(ctx context.Context, roomID string) (room.PlaybackState, error)
	HandleUserConnection(ctx context.Context, params *room.ConnectionParams) (room.Result, error)
	HandleUserMessage(ctx context.Context, params *room.UserMessageParams) ([]room.Result, error)
	HandleUserDisconnection(ctx context.Context, params *room.ConnectionParams) ([]room.Result, error)
}

type iConnRepo interface {
	Subscribe(roomID, connID string, sub connection.Subscriber) error
	Unsubscribe(roomID, connID string) error
	Send(roomID, connID string, data []byte) error
	Publish(roomID string, data []byte) error
}

type iAuthenticator interface {
	Middleware(next http.Handler) http.Handler
}

type Config struct {
	// MembersLimit caps maxParticipants accepted on room creation.
	MembersLimit int
	PingInterval time.Duration
	WriteTimeout time.Duration
}

type controller struct {
	roomService  iRoomService
	connRepo     iConnRepo
	auth         iAuthenticator
	upgrader     websocket.Upgrader
	validate     *validator.Validator
	inbound      *wsrouter.WSRouter[room.InboundMessage]
	logger       *slog.Logger
	membersLimit int
	pingInterval time.Duration
	pongWait     time.Duration
	writeTimeout time.Duration
}

func NewController(roomService iRoomService, connRepo iConnRepo, auth iAuthenticator, cfg *Config, logger *slog.Logger) *controller {
	validate := validator.NewValidator()

	c := &controller{
		roomService: roomService,
		connRepo:    connRepo,
		auth:        auth,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate:     validate,
		inbound:      room.NewInboundRouter(validate),
		logger:       logger,
		membersLimit: cfg.MembersLimit,
		pingInterval: cfg.PingInterval,
		writeTimeout: cfg.WriteTimeout,
	}

	if c.membersLimit <= 0 {
		c.membersLimit = 50
	}
	if c.pingInterval <= 0 {
		c.pingInterval = 30 * time.Second
	}
	if c.writeTimeout <= 0 {
		c.writeTimeout = 10 * time.Second
	}
	c.pongWait = c.pingInterval * 2

	return c
}
