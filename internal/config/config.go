package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the whole configuration surface, populated once at startup.
// Channel credentials are optional string fields: a channel missing its
// fields is reported as unconfigured at dispatch time, never a crash.
type Config struct {
	AppPort string

	RedisAddr     string
	RedisPassword string

	// NotifyChannel selects the push channels as a comma-separated
	// list (e.g. "bark,telegram"). Empty means the default channel.
	NotifyChannel string

	BarkURL          string
	WxPusherToken    string
	WxPusherUID      string
	TelegramBotToken string
	TelegramChatID   string

	PhoneNumber   string
	PublicBaseURL string

	StatusTTL time.Duration
}

func Load() Config {

	cfg := Config{

		AppPort: os.Getenv("APP_PORT"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		NotifyChannel: os.Getenv("NOTIFY_CHANNEL"),

		BarkURL:          os.Getenv("BARK_URL"),
		WxPusherToken:    os.Getenv("WXPUSHER_TOKEN"),
		WxPusherUID:      os.Getenv("WXPUSHER_UID"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),

		PhoneNumber:   os.Getenv("PHONE_NUMBER"),
		PublicBaseURL: os.Getenv("PUBLIC_BASE_URL"),

		StatusTTL: 3600 * time.Second,
	}

	if cfg.AppPort == "" {
		cfg.AppPort = "8080"
	}

	if v := os.Getenv("STATUS_TTL_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.StatusTTL = time.Duration(secs) * time.Second
		}
	}

	return cfg

}
