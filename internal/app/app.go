package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sharetube/roomy/internal/auth"
	"github.com/sharetube/roomy/internal/controller"
	"github.com/sharetube/roomy/internal/repository/connection/inmemory"
	"github.com/sharetube/roomy/internal/repository/room"
	roomService "github.com/sharetube/roomy/internal/service/room"
	"github.com/sharetube/roomy/internal/store"
	storeInmemory "github.com/sharetube/roomy/internal/store/inmemory"
	storeRedis "github.com/sharetube/roomy/internal/store/redis"
	storeValkey "github.com/sharetube/roomy/internal/store/valkey"
	"github.com/sharetube/roomy/pkg/ctxlogger"
	"github.com/sharetube/roomy/pkg/redisclient"
)

const (
	StoreRedis  = "redis"
	StoreValkey = "valkey"
	StoreMemory = "memory"
)

type AppConfig struct {
	Secret                 string        `json:"-"`
	Host                   string        `json:"host"`
	Port                   int           `json:"port"`
	LogLevel               string        `json:"log_level"`
	Store                  string        `json:"store"`
	RedisPort              int           `json:"redis_port"`
	RedisHost              string        `json:"redis_host"`
	RedisPassword          string        `json:"-"`
	RoomTTL                time.Duration `json:"room_ttl"`
	DefaultMaxParticipants int           `json:"max_participants"`
	MembersLimit           int           `json:"members_limit"`
	PingInterval           time.Duration `json:"ping_interval"`
	WriteTimeout           time.Duration `json:"write_timeout"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Secret == "" {
		return errors.New("secret must be set")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d", cfg.Port)
	}
	switch cfg.Store {
	case StoreRedis, StoreValkey, StoreMemory:
	default:
		return fmt.Errorf("unknown store %q", cfg.Store)
	}
	if cfg.RoomTTL <= 0 {
		return errors.New("room ttl must be greater than 0")
	}
	if cfg.MembersLimit < 2 {
		return errors.New("members limit must be at least 2")
	}
	if cfg.DefaultMaxParticipants < 2 || cfg.DefaultMaxParticipants > cfg.MembersLimit {
		return fmt.Errorf("max participants must be between 2 and %d", cfg.MembersLimit)
	}
	if cfg.PingInterval <= 0 {
		return errors.New("ping interval must be greater than 0")
	}
	if cfg.WriteTimeout <= 0 {
		return errors.New("write timeout must be greater than 0")
	}
	if _, err := parseLogLevel(cfg.LogLevel); err != nil {
		return err
	}

	return nil
}

func parseLogLevel(level string) (slog.Level, error) {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	return logLevel, nil
}

func newStore(ctx context.Context, cfg *AppConfig) (store.Store, error) {
	switch cfg.Store {
	case StoreRedis:
		rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		return storeRedis.NewStore(rc), nil
	case StoreValkey:
		vc, err := storeValkey.NewClient(&storeValkey.Config{
			Addr:     fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create valkey client: %w", err)
		}
		return storeValkey.NewStore(vc), nil
	case StoreMemory:
		return storeInmemory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func newHandler(cfg *AppConfig, s store.Store, logger *slog.Logger) http.Handler {
	roomRepo := room.NewRepo(s, cfg.RoomTTL, logger)
	connectionRepo := inmemory.NewRepo()
	service := roomService.NewService(roomRepo, &roomService.Config{
		DefaultMaxParticipants: cfg.DefaultMaxParticipants,
	}, logger)
	controller := controller.NewController(service, connectionRepo, auth.NewAuthenticator(cfg.Secret), &controller.Config{
		MembersLimit: cfg.MembersLimit,
		PingInterval: cfg.PingInterval,
		WriteTimeout: cfg.WriteTimeout,
	}, logger)

	return controller.GetMux()
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logLevel, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)
	slog.SetDefault(logger)

	s, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           newHandler(cfg, s, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr, "store", cfg.Store)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
