package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/config"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/cron"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show noflood status",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := config.ConfigPath()

	printHeader("noflood Status")

	_, statErr := os.Stat(cfgPath)
	fmt.Printf("Config:    %s %s\n", cfgPath, mark(statErr == nil))

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	dbPath := cfg.Store.StorePath()
	_, dbErr := os.Stat(dbPath)
	fmt.Printf("Store:     %s %s\n", dbPath, mark(dbErr == nil))
	if dbErr == nil {
		if db, err := store.OpenSQLite(dbPath); err == nil {
			table, err := db.LoadAll(context.Background())
			db.Close()
			if err == nil {
				fmt.Printf("Groups:    %d\n", len(table))
			}
		}
	}

	fmt.Printf("Project:   %s %s (as %s)\n", cfg.Project.Name, cfg.Project.Version, cfg.Project.Sender)
	fmt.Printf("Authority: %s, lock %s\n\n", cfg.Noflood.Authority, cfg.Noflood.LockTTL)

	fmt.Println("Channels:")
	fmt.Printf("  %-10s %s %s\n", "Telegram", mark(cfg.Channels.Telegram.Enabled), tokenHint(cfg.Channels.Telegram.Token))
	fmt.Printf("  %-10s %s %s\n", "Slack", mark(cfg.Channels.Slack.Enabled), tokenHint(cfg.Channels.Slack.BotToken))

	fmt.Println("Exchange:")
	fmt.Printf("  %-10s %s %v topic=%s\n", "Kafka", mark(cfg.Exchange.Enabled), cfg.Exchange.Brokers, cfg.Exchange.Topic)

	jobs := cron.NewService(config.CronStatePath()).ListJobs()
	fmt.Println("Jobs:")
	if len(jobs) == 0 {
		fmt.Println("  (never run)")
	}
	for _, j := range jobs {
		last := "never"
		if j.State.LastRunAtMs != nil {
			last = time.UnixMilli(*j.State.LastRunAtMs).Format("2006-01-02 15:04")
		}
		status := ""
		if j.State.LastStatus != nil {
			status = *j.State.LastStatus
		}
		fmt.Printf("  %-10s %-12s last=%s %s\n", j.Name, j.Expr, last, status)
	}
	return nil
}
