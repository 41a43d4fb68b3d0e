package channel

import "time"

// TelegramConfig configures the Telegram channel.
type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	Proxy   string `yaml:"proxy,omitempty"`
	// AllowFrom lists the chat ids the bot serves; empty serves every chat.
	AllowFrom []string `yaml:"allowFrom" split_words:"true"`
	// AdminCacheTTL bounds how long a chat member's admin status is reused.
	AdminCacheTTL time.Duration `yaml:"adminCacheTTL" envconfig:"ADMIN_CACHE_TTL"`
}

func DefaultTelegramConfig() TelegramConfig {
	return TelegramConfig{
		AllowFrom:     []string{},
		AdminCacheTTL: 5 * time.Minute,
	}
}
