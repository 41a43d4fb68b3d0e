package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/config"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize configuration and data directory",
	RunE:  runOnboard,
}

func runOnboard(_ *cobra.Command, _ []string) error {
	cfgPath := config.ConfigPath()

	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Printf("Config already exists at %s\n", cfgPath)
		fmt.Printf("Press Enter to refresh (keep existing values) or Ctrl+C to cancel: ")
		fmt.Scanln()
		existing, loadErr := config.Load(cfgPath)
		if loadErr != nil {
			def := config.DefaultConfig()
			existing = &def
		}
		if err := config.Save(existing, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Config refreshed at %s\n", cfgPath)
	} else {
		cfg := config.DefaultConfig()
		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Created config at %s\n", cfgPath)
	}

	dataDir := config.DataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	fmt.Printf("✓ Data directory at %s\n", dataDir)

	fmt.Printf("\n%s noflood is ready!\n\n", logo)
	fmt.Println("Next steps:")
	fmt.Printf("  1. Add your Telegram bot token to %s\n", cfgPath)
	fmt.Println("  2. Point exchange.brokers at your Kafka cluster and set exchange.enabled")
	fmt.Println("  3. Try it locally: noflood console")
	fmt.Println("  4. Start: noflood run")
	return nil
}
