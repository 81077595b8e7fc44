// Package wsrouter decodes {"type": ..., "payload": ...} websocket frames into typed values.
package wsrouter

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidMessage     = errors.New("invalid message")
	ErrUnknownMessageType = errors.New("unknown message type")
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// DecodeFunc turns the raw payload of one message type into T. payload is nil
// when the frame had no payload field.
type DecodeFunc[T any] func(payload json.RawMessage) (T, error)

type WSRouter[T any] struct {
	routes map[string]DecodeFunc[T]
}

func New[T any]() *WSRouter[T] {
	return &WSRouter[T]{routes: make(map[string]DecodeFunc[T])}
}

func (r *WSRouter[T]) Handle(messageType string, decode DecodeFunc[T]) {
	r.routes[messageType] = decode
}

// Payload is a DecodeFunc helper that unmarshals the payload into P and wraps it with build.
func Payload[P, T any](build func(P) (T, error)) DecodeFunc[T] {
	return func(raw json.RawMessage) (T, error) {
		var p P
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &p); err != nil {
				var zero T
				return zero, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
			}
		}

		return build(p)
	}
}

// Decode parses one frame and returns its message type together with the decoded value.
func (r *WSRouter[T]) Decode(data []byte) (string, T, error) {
	var zero T

	var msg message
	if err := json.Unmarshal(data, &msg); err != nil {
		return "", zero, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	decode, ok := r.routes[msg.Type]
	if !ok {
		return msg.Type, zero, fmt.Errorf("%w: %q", ErrUnknownMessageType, msg.Type)
	}

	v, err := decode(msg.Payload)
	if err != nil {
		return msg.Type, zero, err
	}

	return msg.Type, v, nil
}
