package wsrouter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event interface{ kind() string }

type ping struct{}

func (ping) kind() string { return "ping" }

type say struct{ Text string }

func (say) kind() string { return "say" }

func newRouter() *WSRouter[event] {
	r := New[event]()
	r.Handle("PING", Payload(func(struct{}) (event, error) {
		return ping{}, nil
	}))
	r.Handle("SAY", Payload(func(p struct {
		Text string `json:"text"`
	}) (event, error) {
		if p.Text == "" {
			return nil, errors.New("text is required")
		}
		return say{Text: p.Text}, nil
	}))

	return r
}

func TestDecode(t *testing.T) {
	r := newRouter()

	typ, ev, err := r.Decode([]byte(`{"type":"PING"}`))
	require.NoError(t, err)
	assert.Equal(t, "PING", typ)
	assert.Equal(t, ping{}, ev)

	_, ev, err = r.Decode([]byte(`{"type":"SAY","payload":{"text":"hi"}}`))
	require.NoError(t, err)
	assert.Equal(t, say{Text: "hi"}, ev)
}

func TestDecodeErrors(t *testing.T) {
	r := newRouter()

	_, _, err := r.Decode([]byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidMessage)

	typ, _, err := r.Decode([]byte(`{"type":"NOPE"}`))
	assert.ErrorIs(t, err, ErrUnknownMessageType)
	assert.Equal(t, "NOPE", typ)

	_, _, err = r.Decode([]byte(`{"type":"SAY","payload":{"text":5}}`))
	assert.ErrorIs(t, err, ErrInvalidMessage)

	_, _, err = r.Decode([]byte(`{"type":"SAY","payload":{}}`))
	assert.EqualError(t, err, "text is required")
}
