// Package cmd implements the noflood CLI using cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const logo = "🛡"

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "noflood",
	Short: logo + " noflood: anti-flood group bot configuration service",
	Long:  color.CyanString(logo) + " noflood keeps each group's flood settings and lets group admins change them",
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(cronCmd)
	rootCmd.AddCommand(channelsCmd)
}
