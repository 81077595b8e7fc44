package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/sharetube/roomy/internal/auth"
	"github.com/sharetube/roomy/internal/repository/connection"
	"github.com/sharetube/roomy/internal/service/room"
	"github.com/sharetube/roomy/pkg/ctxlogger"
)

const maxMessageSize = 64 << 10

func (c controller) serveWS(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "room-id")
	userID := auth.UserIDFromCtx(r.Context())
	connID := uuid.NewString()

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	ctx := context.WithoutCancel(r.Context())
	ctx = ctxlogger.AppendCtx(ctx, slog.String("room_id", roomID))
	ctx = ctxlogger.AppendCtx(ctx, slog.String("conn_id", connID))

	params := &room.ConnectionParams{
		RoomID: roomID,
		UserID: userID,
		ConnID: connID,
	}

	joined, err := c.roomService.HandleUserConnection(ctx, params)
	if err != nil {
		c.logger.InfoContext(ctx, "failed to connect user", "error", err)
		c.rejectConn(ctx, conn, err)
		return
	}

	client := newWSClient(conn, c.pingInterval, c.writeTimeout)
	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		client.writePump()
	}()

	if err := c.connRepo.Subscribe(roomID, connID, client); err != nil {
		c.logger.WarnContext(ctx, "failed to subscribe", "error", err)
	}
	c.deliver(ctx, roomID, connID, []room.Result{joined})

	c.readLoop(ctx, conn, client, params)

	if err := c.connRepo.Unsubscribe(roomID, connID); err != nil && !errors.Is(err, connection.ErrNotFound) {
		c.logger.WarnContext(ctx, "failed to unsubscribe", "error", err)
	}

	results, err := c.roomService.HandleUserDisconnection(ctx, params)
	c.deliver(ctx, roomID, connID, results)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to disconnect user", "error", err)
	}

	client.close()
	<-pumpDone
}

// rejectConn writes an ERROR message and a close frame directly; no write pump is running yet.
func (c controller) rejectConn(ctx context.Context, conn *websocket.Conn, err error) {
	data, mErr := json.Marshal(room.NewErrorMessage(err))
	if mErr != nil {
		c.logger.ErrorContext(ctx, "failed to marshal error", "error", mErr)
		return
	}

	deadline := time.Now().Add(c.writeTimeout)
	conn.SetWriteDeadline(deadline)
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.logger.InfoContext(ctx, "failed to write error", "error", err)
		return
	}

	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()),
		deadline)
}

func (c controller) readLoop(ctx context.Context, conn *websocket.Conn, client *wsClient, params *room.ConnectionParams) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(c.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.InfoContext(ctx, "websocket closed unexpectedly", "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(c.pongWait))

		c.handleMessage(ctx, client, params, data)
	}
}

func (c controller) handleMessage(ctx context.Context, client *wsClient, params *room.ConnectionParams, data []byte) {
	start := time.Now()

	messageType, msg, err := c.inbound.Decode(data)
	ctx = ctxlogger.AppendCtx(ctx, slog.String("message_type", messageType))
	if err != nil {
		c.logger.InfoContext(ctx, "failed to decode message", "error", err)
		c.sendError(ctx, client, err)
		return
	}

	results, err := c.roomService.HandleUserMessage(ctx, &room.UserMessageParams{
		RoomID:  params.RoomID,
		UserID:  params.UserID,
		Message: msg,
	})
	if err != nil {
		c.logger.InfoContext(ctx, "failed to handle message", "error", err)
		c.sendError(ctx, client, err)
		return
	}

	c.deliver(ctx, params.RoomID, params.ConnID, results)
	c.logger.InfoContext(ctx, "websocket message handled", "processing_time_us", time.Since(start).Microseconds())
}

func (c controller) sendError(ctx context.Context, client *wsClient, err error) {
	data, mErr := json.Marshal(room.NewErrorMessage(err))
	if mErr != nil {
		c.logger.ErrorContext(ctx, "failed to marshal error", "error", mErr)
		return
	}

	if err := client.Send(data); err != nil {
		c.logger.InfoContext(ctx, "failed to send error", "error", err)
	}
}

// deliver maps each result onto a unicast to connID or a publish to the room, in order.
func (c controller) deliver(ctx context.Context, roomID, connID string, results []room.Result) {
	for _, res := range results {
		data, err := json.Marshal(res.Message)
		if err != nil {
			c.logger.ErrorContext(ctx, "failed to marshal message", "error", err, "type", res.Message.Type)
			continue
		}

		switch res.Action {
		case room.ActionSend:
			err = c.connRepo.Send(roomID, connID, data)
		case room.ActionPublish:
			err = c.connRepo.Publish(roomID, data)
		}
		if err != nil {
			c.logger.InfoContext(ctx, "failed to deliver message", "error", err, "type", res.Message.Type, "action", res.Action)
		}
	}
}
