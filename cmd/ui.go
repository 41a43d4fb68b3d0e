package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/config"
)

func printHeader(title string) {
	fmt.Println(color.CyanString(logo) + " " + title)
	fmt.Println(strings.Repeat("─", 40))
}

func mark(ok bool) string {
	if ok {
		return color.GreenString("✓")
	}
	return color.RedString("✗")
}

func tokenHint(s string) string {
	if s == "" {
		return "(not configured)"
	}
	if len(s) > 10 {
		return s[:10] + "..."
	}
	return s
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
