package controller

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const sendBufferSize = 64

var (
	errClientClosed = errors.New("client closed")
	errSlowClient   = errors.New("client send buffer full")
)

// wsClient owns the write side of one websocket. All writes go through send so
// only writePump touches the connection.
type wsClient struct {
	conn         *websocket.Conn
	send         chan []byte
	done         chan struct{}
	closeOnce    sync.Once
	pingInterval time.Duration
	writeTimeout time.Duration
}

func newWSClient(conn *websocket.Conn, pingInterval, writeTimeout time.Duration) *wsClient {
	return &wsClient{
		conn:         conn,
		send:         make(chan []byte, sendBufferSize),
		done:         make(chan struct{}),
		pingInterval: pingInterval,
		writeTimeout: writeTimeout,
	}
}

func (c *wsClient) Send(data []byte) error {
	select {
	case <-c.done:
		return errClientClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return errClientClosed
	default:
		return errSlowClient
	}
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// writePump drains queued messages until the client is closed, then flushes
// what is left and sends a close frame. A write failure closes the connection,
// which unblocks the reader.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case data := <-c.send:
			if err := c.write(websocket.TextMessage, data); err != nil {
				c.conn.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout)); err != nil {
				c.conn.Close()
				return
			}
		case <-c.done:
			for {
				select {
				case data := <-c.send:
					if err := c.write(websocket.TextMessage, data); err != nil {
						return
					}
				default:
					c.conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
						time.Now().Add(c.writeTimeout))
					return
				}
			}
		}
	}
}

func (c *wsClient) write(messageType int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.conn.WriteMessage(messageType, data)
}
