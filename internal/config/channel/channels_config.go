package channel

type ChannelsConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Slack    SlackConfig    `yaml:"slack"`
}

func DefaultChannelsConfig() ChannelsConfig {
	return ChannelsConfig{
		Telegram: DefaultTelegramConfig(),
		Slack:    DefaultSlackConfig(),
	}
}
