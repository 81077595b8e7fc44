package inmemory

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/sharetube/roomy/internal/repository/connection"
)

// repo tracks the subscribers of every room served by this process.
type repo struct {
	rooms map[string]map[string]connection.Subscriber
	mu    sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		rooms: make(map[string]map[string]connection.Subscriber),
	}
}

func (r *repo) Subscribe(roomID, connID string, sub connection.Subscriber) error {
	funcName := "connection.inmemory.Subscribe"
	r.mu.Lock()
	defer r.mu.Unlock()

	slog.Debug(funcName, "room_id", roomID, "conn_id", connID)
	subs, ok := r.rooms[roomID]
	if !ok {
		subs = make(map[string]connection.Subscriber)
		r.rooms[roomID] = subs
	}

	if _, ok := subs[connID]; ok {
		slog.Info(funcName, "error", connection.ErrAlreadyExists)
		return connection.ErrAlreadyExists
	}

	subs[connID] = sub

	slog.Debug(funcName, "result", "OK")
	return nil
}

func (r *repo) Unsubscribe(roomID, connID string) error {
	funcName := "connection.inmemory.Unsubscribe"
	r.mu.Lock()
	defer r.mu.Unlock()

	slog.Debug(funcName, "room_id", roomID, "conn_id", connID)
	subs, ok := r.rooms[roomID]
	if !ok {
		return connection.ErrNotFound
	}

	if _, ok := subs[connID]; !ok {
		return connection.ErrNotFound
	}

	delete(subs, connID)
	if len(subs) == 0 {
		delete(r.rooms, roomID)
	}

	slog.Debug(funcName, "result", "OK")
	return nil
}

// Send delivers data to a single subscriber of the room.
func (r *repo) Send(roomID, connID string, data []byte) error {
	funcName := "connection.inmemory.Send"
	r.mu.RLock()
	sub, ok := r.rooms[roomID][connID]
	r.mu.RUnlock()

	if !ok {
		slog.Info(funcName, "room_id", roomID, "conn_id", connID, "error", connection.ErrNotFound)
		return connection.ErrNotFound
	}

	return sub.Send(data)
}

// Publish delivers data to every subscriber of the room. A failing subscriber
// does not stop delivery to the others.
func (r *repo) Publish(roomID string, data []byte) error {
	funcName := "connection.inmemory.Publish"
	r.mu.RLock()
	subs := make([]connection.Subscriber, 0, len(r.rooms[roomID]))
	for _, sub := range r.rooms[roomID] {
		subs = append(subs, sub)
	}
	r.mu.RUnlock()

	slog.Debug(funcName, "room_id", roomID, "subscribers", len(subs))
	var errs []error
	for _, sub := range subs {
		if err := sub.Send(data); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
