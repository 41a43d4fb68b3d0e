package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "Show chat channel configuration",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		type row struct{ name, enabled, detail string }
		rows := []row{
			{"Telegram", mark(cfg.Channels.Telegram.Enabled), tokenHint(cfg.Channels.Telegram.Token)},
			{"Slack", mark(cfg.Channels.Slack.Enabled), tokenHint(cfg.Channels.Slack.BotToken)},
		}
		fmt.Printf("%-10s %-8s %s\n", "Channel", "Enabled", "Detail")
		for _, r := range rows {
			fmt.Printf("%-10s %-8s %s\n", r.name, r.enabled, r.detail)
		}
		if cfg.Noflood.Debug != "" {
			fmt.Printf("\nOperator reports go to %s\n", cfg.Noflood.Debug)
		}
		return nil
	},
}
