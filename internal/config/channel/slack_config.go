package channel

// SlackConfig configures the Slack report sink. The bot only posts to Slack;
// it never reads commands from it.
type SlackConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"botToken" split_words:"true"`
}

func DefaultSlackConfig() SlackConfig {
	return SlackConfig{}
}
