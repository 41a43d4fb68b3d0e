package bus

type ChannelType string

const (
	ChannelTelegram ChannelType = "telegram"
	ChannelSlack    ChannelType = "slack"
	ChannelCLI      ChannelType = "cli"
	ChannelSystem   ChannelType = "system"
)
