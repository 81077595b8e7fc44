package connection

import "errors"

var (
	ErrNotFound      = errors.New("connection not found")
	ErrAlreadyExists = errors.New("connection already exists")
)

// Subscriber receives encoded messages for one physical connection.
// Send must not block on network I/O.
type Subscriber interface {
	Send(data []byte) error
}
