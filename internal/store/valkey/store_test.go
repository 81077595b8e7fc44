package valkey

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	storepkg "github.com/sharetube/roomy/internal/store"
	"github.com/sharetube/roomy/internal/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) (storepkg.Store, func(time.Duration)) {
		s := miniredis.RunT(t)
		client, err := NewClient(&Config{Addr: s.Addr()})
		require.NoError(t, err)
		t.Cleanup(client.Close)

		return NewStore(client), s.FastForward
	})
}
