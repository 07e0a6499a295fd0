package core

import (
	"time"

	"tunegram/internal/i18n"
)

const (
	// DefaultSearchLimit is the maximum number of search candidates offered
	DefaultSearchLimit = 6
	// DefaultDeliveryMaxAttempts is the total number of audio send attempts
	DefaultDeliveryMaxAttempts = 3
	// DefaultDeliveryRetryDelaySecs is the wait before the first retry;
	// it doubles before every subsequent attempt
	DefaultDeliveryRetryDelaySecs = 2
	// DefaultFloodLimitPerMinute caps messages per user per minute
	DefaultFloodLimitPerMinute = 6
	// DefaultTransferTimeout tolerates large audio uploads to the chat transport
	DefaultTransferTimeout = 30 * time.Second
)

type Config struct {
	Telegram TelegramConfig
	Catalog  CatalogConfig
	Access   AccessConfig
	Server   ServerConfig
	Log      LogConfig
	App      AppConfig
}

type TelegramConfig struct {
	BotToken string
}

type CatalogConfig struct {
	// Token authenticates the full-tier client; the demo-tier client is
	// always constructed without credentials.
	Token    string
	BaseURL  string
	LinkHost string // host fragment that marks an inbound catalog URL
}

type AccessConfig struct {
	AllowedUsers []int64 // empty list means open access
	OperatorID   int64   // 0 disables operator notifications
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level string
}

type AppConfig struct {
	SearchLimit            int
	DeliveryMaxAttempts    int
	DeliveryRetryDelaySecs int
	DownloadDir            string
	Language               string
	FloodLimitPerMinute    int
}

func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			BaseURL:  "https://api.music.example/v1",
			LinkHost: "music.example",
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		App: AppConfig{
			SearchLimit:            DefaultSearchLimit,
			DeliveryMaxAttempts:    DefaultDeliveryMaxAttempts,
			DeliveryRetryDelaySecs: DefaultDeliveryRetryDelaySecs,
			DownloadDir:            ".",
			Language:               i18n.DefaultLanguage,
			FloodLimitPerMinute:    DefaultFloodLimitPerMinute,
		},
	}
}
