package inmemory

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharetube/roomy/internal/repository/connection"
)

type fakeSub struct {
	mu   sync.Mutex
	msgs []string
	err  error
}

func (s *fakeSub) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.msgs = append(s.msgs, string(data))
	return nil
}

func TestSubscribe(t *testing.T) {
	r := NewRepo()

	require.NoError(t, r.Subscribe("room", "c1", &fakeSub{}))
	assert.ErrorIs(t, r.Subscribe("room", "c1", &fakeSub{}), connection.ErrAlreadyExists)
	assert.Len(t, r.rooms["room"], 1)

	require.NoError(t, r.Unsubscribe("room", "c1"))
	assert.ErrorIs(t, r.Unsubscribe("room", "c1"), connection.ErrNotFound)
	assert.ErrorIs(t, r.Unsubscribe("other", "c1"), connection.ErrNotFound)
	assert.NotContains(t, r.rooms, "room", "drained rooms are dropped")
}

func TestPublishAndSend(t *testing.T) {
	r := NewRepo()

	a, b, other := &fakeSub{}, &fakeSub{}, &fakeSub{}
	require.NoError(t, r.Subscribe("room", "a", a))
	require.NoError(t, r.Subscribe("room", "b", b))
	require.NoError(t, r.Subscribe("other", "o", other))

	require.NoError(t, r.Publish("room", []byte("one")))
	require.NoError(t, r.Publish("room", []byte("two")))
	require.NoError(t, r.Send("room", "b", []byte("only-b")))

	assert.Equal(t, []string{"one", "two"}, a.msgs)
	assert.Equal(t, []string{"one", "two", "only-b"}, b.msgs)
	assert.Empty(t, other.msgs)

	assert.ErrorIs(t, r.Send("room", "missing", []byte("x")), connection.ErrNotFound)
}

func TestPublishContinuesPastFailingSubscriber(t *testing.T) {
	r := NewRepo()

	errClosed := errors.New("closed")
	bad, good := &fakeSub{err: errClosed}, &fakeSub{}
	require.NoError(t, r.Subscribe("room", "bad", bad))
	require.NoError(t, r.Subscribe("room", "good", good))

	err := r.Publish("room", []byte("hi"))
	assert.ErrorIs(t, err, errClosed)
	assert.Equal(t, []string{"hi"}, good.msgs)
}
