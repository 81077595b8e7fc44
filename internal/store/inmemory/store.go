package inmemory

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type entry struct {
	str      *string
	list     []string
	set      map[string]struct{}
	expireAt time.Time
}

func (e *entry) empty() bool {
	return e.str == nil && len(e.list) == 0 && len(e.set) == 0
}

// store keeps every key in process memory. Expired keys are dropped lazily on access.
type store struct {
	mu   sync.Mutex
	data map[string]*entry
	now  func() time.Time
}

type Option func(*store)

// WithClock replaces time.Now, letting tests move time forward deterministically.
func WithClock(now func() time.Time) Option {
	return func(s *store) {
		s.now = now
	}
}

func NewStore(opts ...Option) *store {
	s := &store{
		data: make(map[string]*entry),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// lookup must be called with mu held.
func (s *store) lookup(key string) *entry {
	e, ok := s.data[key]
	if !ok {
		return nil
	}

	if !e.expireAt.IsZero() && !s.now().Before(e.expireAt) {
		delete(s.data, key)
		return nil
	}

	return e
}

// lookupOrCreate must be called with mu held.
func (s *store) lookupOrCreate(key string) *entry {
	if e := s.lookup(key); e != nil {
		return e
	}

	e := &entry{}
	s.data[key] = e
	return e
}

// dropIfEmpty must be called with mu held; it mirrors redis deleting drained lists and sets.
func (s *store) dropIfEmpty(key string, e *entry) {
	if e.empty() {
		delete(s.data, key)
	}
}

func (s *store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(key)
	if e == nil || e.str == nil {
		return "", false, nil
	}

	return *e.str, true, nil
}

func (s *store) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &entry{str: &value}
	if ttl > 0 {
		e.expireAt = s.now().Add(ttl)
	}
	s.data[key] = e

	return nil
}

func (s *store) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.data, key)
	}

	return nil
}

func (s *store) Expire(_ context.Context, ttl time.Duration, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expireAt := s.now().Add(ttl)
	for _, key := range keys {
		if e := s.lookup(key); e != nil {
			e.expireAt = expireAt
		}
	}

	return nil
}

func (s *store) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0)
	for _, key := range maps.Keys(s.data) {
		if strings.HasPrefix(key, prefix) && s.lookup(key) != nil {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	return keys, nil
}

func (s *store) SAdd(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookupOrCreate(key)
	if e.set == nil {
		e.set = make(map[string]struct{}, len(members))
	}
	for _, m := range members {
		e.set[m] = struct{}{}
	}
	s.dropIfEmpty(key, e)

	return nil
}

func (s *store) SRem(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(key)
	if e == nil {
		return nil
	}
	for _, m := range members {
		delete(e.set, m)
	}
	s.dropIfEmpty(key, e)

	return nil
}

func (s *store) SMembers(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(key)
	if e == nil {
		return []string{}, nil
	}

	members := maps.Keys(e.set)
	slices.Sort(members)
	return members, nil
}

func (s *store) SCard(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(key)
	if e == nil {
		return 0, nil
	}

	return int64(len(e.set)), nil
}

func (s *store) RPush(_ context.Context, key string, values ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookupOrCreate(key)
	e.list = append(e.list, values...)
	s.dropIfEmpty(key, e)

	return nil
}

func (s *store) LRem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(key)
	if e == nil {
		return nil
	}
	e.list = slices.DeleteFunc(e.list, func(v string) bool {
		return v == value
	})
	s.dropIfEmpty(key, e)

	return nil
}

func (s *store) LRange(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(key)
	if e == nil {
		return []string{}, nil
	}

	return slices.Clone(e.list), nil
}

func (s *store) LLen(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(key)
	if e == nil {
		return 0, nil
	}

	return int64(len(e.list)), nil
}

func (s *store) Close() error {
	return nil
}
