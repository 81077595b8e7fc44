package room

import (
	"github.com/sharetube/roomy/pkg/validator"
	"github.com/sharetube/roomy/pkg/wsrouter"
)

type MessageType string

const (
	// inbound
	MessageTypeUpdatePlayback MessageType = "UPDATE_PLAYBACK"
	MessageTypeSyncRequest    MessageType = "SYNC_REQUEST"
	MessageTypeHeartbeat      MessageType = "HEARTBEAT"
	// outbound
	MessageTypeUserJoined      MessageType = "USER_JOINED"
	MessageTypeUserLeft        MessageType = "USER_LEFT"
	MessageTypeHostChanged     MessageType = "HOST_CHANGED"
	MessageTypePlaybackUpdated MessageType = "PLAYBACK_UPDATED"
	MessageTypeSyncFullState   MessageType = "SYNC_FULL_STATE"
	MessageTypeError           MessageType = "ERROR"
)

// InboundMessage is one of UpdatePlayback, SyncRequest or Heartbeat.
type InboundMessage interface {
	MessageType() MessageType
}

type UpdatePlayback struct {
	Update PlaybackUpdate
}

func (UpdatePlayback) MessageType() MessageType { return MessageTypeUpdatePlayback }

type SyncRequest struct{}

func (SyncRequest) MessageType() MessageType { return MessageTypeSyncRequest }

type Heartbeat struct{}

func (Heartbeat) MessageType() MessageType { return MessageTypeHeartbeat }

// NewInboundRouter returns the decoder for client frames. Playback updates are validated on decode.
func NewInboundRouter(v *validator.Validator) *wsrouter.WSRouter[InboundMessage] {
	r := wsrouter.New[InboundMessage]()

	r.Handle(string(MessageTypeUpdatePlayback), wsrouter.Payload(func(u PlaybackUpdate) (InboundMessage, error) {
		if err := v.Validate(u); err != nil {
			return nil, err
		}
		return UpdatePlayback{Update: u}, nil
	}))
	r.Handle(string(MessageTypeSyncRequest), wsrouter.Payload(func(struct{}) (InboundMessage, error) {
		return SyncRequest{}, nil
	}))
	r.Handle(string(MessageTypeHeartbeat), wsrouter.Payload(func(struct{}) (InboundMessage, error) {
		return Heartbeat{}, nil
	}))

	return r
}

type Message struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload"`
}

type UserJoinedPayload struct {
	UserID      string `json:"userId"`
	MemberCount int    `json:"memberCount"`
}

type UserLeftPayload struct {
	UserID      string `json:"userId"`
	MemberCount int    `json:"memberCount"`
}

type HostChangedPayload struct {
	NewHostID string `json:"newHostId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func NewErrorMessage(err error) Message {
	return Message{
		Type:    MessageTypeError,
		Payload: ErrorPayload{Message: err.Error()},
	}
}

// Action says how the transport must deliver a message.
type Action string

const (
	// ActionSend delivers to the originating connection only.
	ActionSend Action = "send"
	// ActionPublish delivers to every subscriber of the room.
	ActionPublish Action = "publish"
)

type Result struct {
	Action  Action
	Message Message
}
