package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/bus"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/channels"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/dependency"
)

var (
	consoleGroup   int64
	consoleUser    int64
	consoleVerbose bool
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Type group commands locally as an admin of a simulated group",
	RunE:  runConsole,
}

func init() {
	consoleCmd.Flags().Int64VarP(&consoleGroup, "group", "g", -1000000000001, "Group id to act on")
	consoleCmd.Flags().Int64VarP(&consoleUser, "user", "u", 1, "User id to act as")
	consoleCmd.Flags().BoolVarP(&consoleVerbose, "verbose", "v", false, "Verbose logging")
}

func runConsole(_ *cobra.Command, _ []string) error {
	setupLogging(consoleVerbose)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// Only the terminal talks to the bot here.
	cfg.Channels.Telegram.Enabled = false
	cfg.Channels.Slack.Enabled = false
	if cfg.Noflood.Debug == "" {
		cfg.Noflood.Debug = bus.RoutingKey(bus.ChannelCLI, strconv.FormatInt(consoleGroup, 10))
	}

	container, err := dependency.New(cfg)
	if err != nil {
		return fmt.Errorf("wire services: %w", err)
	}
	defer container.Close()

	cli := channels.NewCLIChannel(container.MessageBus(), consoleGroup, consoleUser, os.Stdin, os.Stdout)
	container.ChannelManager().Register(cli)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return container.Router().Run(gctx) })
	g.Go(func() error { return container.Receiver().Run(gctx, container.Consumer()) })
	g.Go(func() error { return container.ChannelManager().StartAll(gctx) })
	g.Go(func() error {
		select {
		case <-cli.Done():
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	fmt.Printf("%s %s console. Try: /config_%s show\n", logo, cfg.Project.Name, strings.ToLower(cfg.Project.Sender))

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
