package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/roomy/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
	usage        string
}

var (
	secret = configVar[string]{
		envKey:       "SERVER_SECRET",
		flagKey:      "secret",
		defaultValue: "",
		usage:        "JWT signing secret",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
		usage:        "Server port",
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
		usage:        "Server host",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
		usage:        "Logging level",
	}
	storeKind = configVar[string]{
		envKey:       "SERVER_STORE",
		flagKey:      "store",
		defaultValue: app.StoreRedis,
		usage:        "Room state store: redis, valkey or memory",
	}
	roomTTL = configVar[time.Duration]{
		envKey:       "SERVER_ROOM_TTL",
		flagKey:      "room-ttl",
		defaultValue: 60 * time.Second,
		usage:        "Expiry of idle room state",
	}
	maxParticipants = configVar[int]{
		envKey:       "SERVER_MAX_PARTICIPANTS",
		flagKey:      "max-participants",
		defaultValue: 10,
		usage:        "Default room capacity",
	}
	membersLimit = configVar[int]{
		envKey:       "SERVER_MEMBERS_LIMIT",
		flagKey:      "members-limit",
		defaultValue: 50,
		usage:        "Maximum capacity a room can be created with",
	}
	pingInterval = configVar[time.Duration]{
		envKey:       "SERVER_PING_INTERVAL",
		flagKey:      "ping-interval",
		defaultValue: 30 * time.Second,
		usage:        "Websocket ping interval",
	}
	writeTimeout = configVar[time.Duration]{
		envKey:       "SERVER_WRITE_TIMEOUT",
		flagKey:      "write-timeout",
		defaultValue: 10 * time.Second,
		usage:        "Websocket write timeout",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
		usage:        "Redis port",
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
		usage:        "Redis host",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
		usage:        "Redis password",
	}
)

func bindString(v configVar[string]) {
	pflag.String(v.flagKey, v.defaultValue, v.usage)
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func bindInt(v configVar[int]) {
	pflag.Int(v.flagKey, v.defaultValue, v.usage)
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func bindDuration(v configVar[time.Duration]) {
	pflag.Duration(v.flagKey, v.defaultValue, v.usage)
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func loadAppConfig() *app.AppConfig {
	// .env is optional
	_ = godotenv.Load()

	for _, v := range []configVar[string]{secret, host, logLevel, storeKind, redisHost, redisPassword} {
		bindString(v)
	}
	for _, v := range []configVar[int]{port, maxParticipants, membersLimit, redisPort} {
		bindInt(v)
	}
	for _, v := range []configVar[time.Duration]{roomTTL, pingInterval, writeTimeout} {
		bindDuration(v)
	}
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	return &app.AppConfig{
		Secret:                 viper.GetString(secret.flagKey),
		Host:                   viper.GetString(host.flagKey),
		Port:                   viper.GetInt(port.flagKey),
		LogLevel:               viper.GetString(logLevel.flagKey),
		Store:                  viper.GetString(storeKind.flagKey),
		RedisPort:              viper.GetInt(redisPort.flagKey),
		RedisHost:              viper.GetString(redisHost.flagKey),
		RedisPassword:          viper.GetString(redisPassword.flagKey),
		RoomTTL:                viper.GetDuration(roomTTL.flagKey),
		DefaultMaxParticipants: viper.GetInt(maxParticipants.flagKey),
		MembersLimit:           viper.GetInt(membersLimit.flagKey),
		PingInterval:           viper.GetDuration(pingInterval.flagKey),
		WriteTimeout:           viper.GetDuration(writeTimeout.flagKey),
	}
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()
	if err := appConfig.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	if err := app.Run(ctx, appConfig); err != nil {
		log.Fatal(err)
	}
}
