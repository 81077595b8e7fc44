package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *AppConfig {
	return &AppConfig{
		Secret:                 "secret",
		Host:                   "127.0.0.1",
		Port:                   8080,
		LogLevel:               "debug",
		Store:                  StoreMemory,
		RedisHost:              "localhost",
		RedisPort:              6379,
		RoomTTL:                time.Minute,
		DefaultMaxParticipants: 10,
		MembersLimit:           50,
		PingInterval:           30 * time.Second,
		WriteTimeout:           10 * time.Second,
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		modify func(*AppConfig)
	}{
		{"no secret", func(c *AppConfig) { c.Secret = "" }},
		{"bad port", func(c *AppConfig) { c.Port = 0 }},
		{"unknown store", func(c *AppConfig) { c.Store = "etcd" }},
		{"zero ttl", func(c *AppConfig) { c.RoomTTL = 0 }},
		{"members limit", func(c *AppConfig) { c.MembersLimit = 1 }},
		{"max participants above limit", func(c *AppConfig) { c.DefaultMaxParticipants = 51 }},
		{"ping interval", func(c *AppConfig) { c.PingInterval = 0 }},
		{"write timeout", func(c *AppConfig) { c.WriteTimeout = -time.Second }},
		{"log level", func(c *AppConfig) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewStoreRedis(t *testing.T) {
	m := miniredis.RunT(t)
	port, err := strconv.Atoi(m.Port())
	require.NoError(t, err)

	cfg := validConfig()
	cfg.Store = StoreRedis
	cfg.RedisHost = m.Host()
	cfg.RedisPort = port

	ctx := context.Background()
	s, err := newStore(ctx, cfg)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))
	assert.True(t, m.Exists("k"))
}

func TestHandler(t *testing.T) {
	cfg := validConfig()
	s, err := newStore(context.Background(), cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(newHandler(cfg, s, slog.New(slog.NewTextHandler(io.Discard, nil))))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/v1/rooms")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
