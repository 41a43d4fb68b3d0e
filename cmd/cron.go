package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/config"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/cron"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/dependency"
)

var cronCmd = &cobra.Command{
	Use:   "cron",
	Short: "Inspect and trigger periodic jobs",
}

func init() {
	cronCmd.AddCommand(cronListCmd)
	cronCmd.AddCommand(cronRunCmd)
}

var cronListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs and their last run",
	RunE: func(_ *cobra.Command, _ []string) error {
		jobs := cron.NewService(config.CronStatePath()).ListJobs()
		if len(jobs) == 0 {
			fmt.Println("No job has run yet.")
			return nil
		}
		fmt.Printf("%-10s %-15s %-8s %-17s %-17s\n", "Name", "Schedule", "Status", "Last Run", "Next Run")
		for _, j := range jobs {
			status := ""
			if j.State.LastStatus != nil {
				status = *j.State.LastStatus
			}
			fmt.Printf("%-10s %-15s %-8s %-17s %-17s\n", j.Name, j.Expr, status, formatMs(j.State.LastRunAtMs), formatMs(j.State.NextRunAtMs))
			if j.State.LastError != nil {
				fmt.Printf("  error: %s\n", *j.State.LastError)
			}
		}
		return nil
	},
}

var cronRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run a job now",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		container, err := dependency.New(cfg)
		if err != nil {
			return fmt.Errorf("wire services: %w", err)
		}
		defer container.Close()

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if !container.CronService().RunJob(ctx, args[0]) {
			return fmt.Errorf("no job named %q", args[0])
		}
		fmt.Printf("✓ Job %s executed\n", args[0])
		return nil
	},
}

func formatMs(ms *int64) string {
	if ms == nil {
		return "-"
	}
	return time.UnixMilli(*ms).Format("2006-01-02 15:04")
}
