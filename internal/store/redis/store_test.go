package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	storepkg "github.com/sharetube/roomy/internal/store"
	"github.com/sharetube/roomy/internal/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) (storepkg.Store, func(time.Duration)) {
		s := miniredis.RunT(t)
		rc := redis.NewClient(&redis.Options{Addr: s.Addr()})
		t.Cleanup(func() { rc.Close() })

		return NewStore(rc), s.FastForward
	})
}
